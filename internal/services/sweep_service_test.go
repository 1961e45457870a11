package services

import (
	"context"
	"testing"
	"time"

	"merithub/internal/events"
	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingAwardService struct {
	evaluated []int64
	awards    map[int64][]*models.AwardEvent
	errOn     map[int64]error
}

func (r *recordingAwardService) CheckAndAward(_ context.Context, userID int64, trigger string) ([]*models.AwardEvent, error) {
	r.evaluated = append(r.evaluated, userID)
	if err := r.errOn[userID]; err != nil {
		return nil, err
	}
	return r.awards[userID], nil
}

func newSweepFixture(t *testing.T, candidates []int64, awards *recordingAwardService) (SweepService, *fakeUserRepo) {
	t.Helper()
	logger := zap.NewNop()
	userRepo := &fakeUserRepo{tenure: candidates}
	bus := events.NewEventBus(logger)
	t.Cleanup(bus.Close)
	return NewSweepService(userRepo, awards, bus, logger), userRepo
}

func TestRunSweepEvaluatesCandidates(t *testing.T) {
	awards := &recordingAwardService{
		awards: map[int64][]*models.AwardEvent{
			1: {{UserID: 1, BadgeID: "badge_veteran", PointsEarned: 100}},
			3: {{UserID: 3, BadgeID: "badge_veteran", PointsEarned: 100}},
		},
	}
	svc, _ := newSweepFixture(t, []int64{1, 2, 3}, awards)

	result, err := svc.RunSweep(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 2, result.AwardedCount)
	assert.Equal(t, []int64{1, 2, 3}, awards.evaluated)
}

func TestRunSweepHonorsBatchSize(t *testing.T) {
	awards := &recordingAwardService{}
	svc, userRepo := newSweepFixture(t, []int64{1, 2, 3, 4, 5}, awards)

	result, err := svc.RunSweep(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 2, userRepo.tenureLimit)
	assert.Len(t, awards.evaluated, 2)
}

func TestRunSweepContinuesPastBadCandidate(t *testing.T) {
	awards := &recordingAwardService{
		awards: map[int64][]*models.AwardEvent{
			3: {{UserID: 3, BadgeID: "badge_veteran", PointsEarned: 100}},
		},
		errOn: map[int64]error{2: NewTransientStoreError("store down", nil)},
	}
	svc, _ := newSweepFixture(t, []int64{1, 2, 3}, awards)

	result, err := svc.RunSweep(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 1, result.AwardedCount)
	assert.Equal(t, []int64{1, 2, 3}, awards.evaluated, "a failing candidate must not end the batch")
}

func TestRunSweepRejectsNonPositiveBatch(t *testing.T) {
	svc, _ := newSweepFixture(t, nil, &recordingAwardService{})

	_, err := svc.RunSweep(context.Background(), 0)
	assert.True(t, IsValidation(err))

	_, err = svc.RunSweep(context.Background(), -5)
	assert.True(t, IsValidation(err))
}

func TestRunSweepCutoffSelectsTenureThreshold(t *testing.T) {
	logger := zap.NewNop()
	userRepo := &cutoffRecordingUserRepo{}
	bus := events.NewEventBus(logger)
	defer bus.Close()
	svc := NewSweepService(userRepo, &recordingAwardService{}, bus, logger)

	_, err := svc.RunSweep(context.Background(), 10)
	require.NoError(t, err)

	wantCutoff := time.Now().AddDate(0, 0, -365)
	assert.WithinDuration(t, wantCutoff, userRepo.cutoff, time.Minute)
	assert.Equal(t, "badge_veteran", userRepo.badgeID)
}

type cutoffRecordingUserRepo struct {
	fakeUserRepo
	cutoff  time.Time
	badgeID string
}

func (r *cutoffRecordingUserRepo) GetTenureCandidates(_ context.Context, cutoff time.Time, badgeID string, _ int) ([]int64, error) {
	r.cutoff = cutoff
	r.badgeID = badgeID
	return nil, nil
}
