package services

import (
	"context"
	"testing"
	"time"

	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func earnedBadge(id, name string) *models.EarnedBadge {
	return &models.EarnedBadge{
		BadgeID:   id,
		Name:      name,
		AwardedAt: time.Now(),
	}
}

func newMilestoneFixture(earned []*models.EarnedBadge) (MilestoneService, *fakeMilestoneRepo) {
	badgeRepo := newFakeBadgeRepo(nil)
	badgeRepo.earned[7] = earned
	milestoneRepo := newFakeMilestoneRepo()
	svc := NewMilestoneService(badgeRepo, milestoneRepo, zap.NewNop())
	return svc, milestoneRepo
}

func TestGetMilestonesDerivation(t *testing.T) {
	svc, _ := newMilestoneFixture([]*models.EarnedBadge{
		earnedBadge("badge_first_sale", "First Sale"),
		earnedBadge("badge_active_seller", "Active Seller"),
		earnedBadge("badge_first_listing", "First Listing"),
		earnedBadge("badge_prolific_lister", "Prolific Lister"),
		earnedBadge("badge_verified", "Verified"),
	})

	summary, err := svc.GetMilestones(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalBadges)

	achieved := make(map[string]bool)
	for _, s := range summary.Achieved {
		achieved[s.ID] = true
	}
	pending := make(map[string]bool)
	for _, s := range summary.Pending {
		pending[s.ID] = true
	}

	assert.True(t, achieved["count_1"])
	assert.True(t, achieved["count_5"])
	assert.True(t, pending["count_10"])
	assert.True(t, pending["count_25"])

	assert.True(t, achieved["special_first_sale"])
	assert.True(t, achieved["special_first_listing"])
	assert.True(t, pending["special_5_star_seller"])
	assert.True(t, pending["special_veteran"])
}

func TestGetMilestonesNewVersusAcknowledged(t *testing.T) {
	svc, milestoneRepo := newMilestoneFixture([]*models.EarnedBadge{
		earnedBadge("badge_first_sale", "First Sale"),
	})

	_, err := milestoneRepo.InsertAck(context.Background(), 7, "count_1")
	require.NoError(t, err)

	summary, err := svc.GetMilestones(context.Background(), 7)
	require.NoError(t, err)

	newIDs := make([]string, len(summary.NewUnacknowledged))
	for i, s := range summary.NewUnacknowledged {
		newIDs[i] = s.ID
	}
	assert.Equal(t, []string{"special_first_sale"}, newIDs,
		"acknowledged milestones drop out of the new list but stay achieved")

	achieved := make(map[string]bool)
	for _, s := range summary.Achieved {
		achieved[s.ID] = true
	}
	assert.True(t, achieved["count_1"])
}

func TestGetMilestonesEmptyUser(t *testing.T) {
	svc, _ := newMilestoneFixture(nil)

	summary, err := svc.GetMilestones(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBadges)
	assert.Empty(t, summary.Achieved)
	assert.Empty(t, summary.NewUnacknowledged)
	assert.Len(t, summary.Pending, 9)
}

func TestGetMilestonesInvalidUser(t *testing.T) {
	svc, _ := newMilestoneFixture(nil)
	_, err := svc.GetMilestones(context.Background(), 0)
	assert.True(t, IsValidation(err))
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	svc, _ := newMilestoneFixture(nil)

	first, err := svc.Acknowledge(context.Background(), 7, "count_5")
	require.NoError(t, err)
	assert.True(t, first.Acknowledged)
	assert.False(t, first.AlreadyAcked)

	second, err := svc.Acknowledge(context.Background(), 7, "count_5")
	require.NoError(t, err)
	assert.True(t, second.Acknowledged)
	assert.True(t, second.AlreadyAcked)
}

func TestAcknowledgeValidation(t *testing.T) {
	svc, _ := newMilestoneFixture(nil)

	_, err := svc.Acknowledge(context.Background(), 7, "")
	assert.True(t, IsValidation(err))

	_, err = svc.Acknowledge(context.Background(), 7, "count_999")
	assert.True(t, IsValidation(err))
}
