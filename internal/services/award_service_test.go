package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"merithub/internal/catalog"
	"merithub/internal/events"
	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func catalogDefinitions(t *testing.T) []*models.BadgeDefinition {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	defs := cat.Definitions()
	out := make([]*models.BadgeDefinition, len(defs))
	for i := range defs {
		out[i] = &defs[i]
	}
	return out
}

func newAwardFixture(t *testing.T, users map[int64]*models.User, activity *fakeActivityRepo) (AwardService, *fakeBadgeRepo, *recordingNotifier) {
	t.Helper()
	logger := zap.NewNop()
	userRepo := &fakeUserRepo{users: users}
	badgeRepo := newFakeBadgeRepo(catalogDefinitions(t))
	notifier := &recordingNotifier{}
	stats := NewStatsService(userRepo, activity, logger)
	cat, err := catalog.Load()
	require.NoError(t, err)
	bus := events.NewEventBus(logger)
	t.Cleanup(bus.Close)

	svc := NewAwardService(userRepo, badgeRepo, stats, notifier, cat, bus, logger)
	return svc, badgeRepo, notifier
}

func activeUser(id int64) *models.User {
	return &models.User{
		ID:        id,
		Username:  "seller",
		IsActive:  true,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
}

func TestCheckAndAwardFirstListing(t *testing.T) {
	svc, _, notifier := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{listings: 1},
	)

	awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, catalog.BadgeFirstListing, awarded[0].BadgeID)
	assert.Equal(t, 25, awarded[0].PointsEarned)
	assert.Equal(t, "First Listing", awarded[0].BadgeName)

	// The first badge crosses count_1 and the First Listing special
	assert.ElementsMatch(t,
		[]string{"count_1", "special_first_listing"},
		notifier.milestoneIDs(),
	)
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	svc, badgeRepo, _ := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{listings: 1},
	)

	first, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, badgeRepo.inserts, 1)
}

func TestCheckAndAwardUnknownUserIsNoOp(t *testing.T) {
	svc, badgeRepo, _ := newAwardFixture(t,
		map[int64]*models.User{},
		&fakeActivityRepo{listings: 1},
	)

	awarded, err := svc.CheckAndAward(context.Background(), 99, TriggerListing)
	require.NoError(t, err)
	assert.Nil(t, awarded)
	assert.Empty(t, badgeRepo.inserts)
}

func TestCheckAndAwardMultipleBadgesOneCall(t *testing.T) {
	svc, _, _ := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{sales: 10, listings: 1},
	)

	awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerSale)
	require.NoError(t, err)

	ids := make([]string, len(awarded))
	for i, e := range awarded {
		ids[i] = e.BadgeID
	}
	assert.ElementsMatch(t, []string{
		catalog.BadgeFirstSale,
		catalog.BadgeActiveSeller,
		catalog.BadgeFirstListing,
	}, ids)
}

func TestCheckAndAwardContinuesPastStorageFault(t *testing.T) {
	svc, badgeRepo, _ := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{sales: 1, listings: 1},
	)
	badgeRepo.insertErrOn[catalog.BadgeFirstSale] = errors.New("connection reset")

	awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerSale)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, catalog.BadgeFirstListing, awarded[0].BadgeID)

	// The failed badge is retried on the next pass
	delete(badgeRepo.insertErrOn, catalog.BadgeFirstSale)
	retried, err := svc.CheckAndAward(context.Background(), 7, TriggerSale)
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.Equal(t, catalog.BadgeFirstSale, retried[0].BadgeID)
}

// racingBadgeRepo hides one held badge from the pre-read so the insert
// sees the storage-level duplicate, as a losing concurrent call would.
type racingBadgeRepo struct {
	*fakeBadgeRepo
	hidden string
}

func (r *racingBadgeRepo) GetUserBadgeIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	held, err := r.fakeBadgeRepo.GetUserBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	delete(held, r.hidden)
	return held, nil
}

func TestCheckAndAwardLostRaceAwardsNothing(t *testing.T) {
	logger := zap.NewNop()
	userRepo := &fakeUserRepo{users: map[int64]*models.User{7: activeUser(7)}}
	inner := newFakeBadgeRepo(catalogDefinitions(t))
	badgeRepo := &racingBadgeRepo{fakeBadgeRepo: inner, hidden: catalog.BadgeFirstListing}
	notifier := &recordingNotifier{}
	stats := NewStatsService(userRepo, &fakeActivityRepo{listings: 1}, logger)
	cat, err := catalog.Load()
	require.NoError(t, err)
	bus := events.NewEventBus(logger)
	defer bus.Close()
	svc := NewAwardService(userRepo, badgeRepo, stats, notifier, cat, bus, logger)

	// Another call already wrote the row
	_, err = inner.InsertUserBadge(context.Background(), &models.UserBadge{UserID: 7, BadgeID: catalog.BadgeFirstListing})
	require.NoError(t, err)
	inner.inserts = nil

	awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
	require.NoError(t, err)
	assert.Empty(t, awarded, "loser of the insert race must not emit an event")
	assert.Empty(t, inner.inserts)
	assert.Empty(t, notifier.awards)
}

func TestCheckAndAwardConcurrentCallsAwardOnce(t *testing.T) {
	svc, badgeRepo, _ := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{listings: 1},
	)

	const callers = 8
	results := make([][]*models.AwardEvent, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
			assert.NoError(t, err)
			results[i] = awarded
		}(i)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	assert.Equal(t, 1, total, "exactly one caller wins the insert")
	assert.Len(t, badgeRepo.inserts, 1)
}

func TestCheckAndAwardCountMilestoneCrossing(t *testing.T) {
	svc, badgeRepo, notifier := newAwardFixture(t,
		map[int64]*models.User{7: activeUser(7)},
		&fakeActivityRepo{sales: 10, listings: 25, reviews: 10, avgRating: 4.9},
	)

	// Already holds three badges; this pass awards two more, crossing 5
	for _, id := range []string{catalog.BadgeFirstSale, catalog.BadgeActiveSeller, catalog.BadgeFirstListing} {
		_, err := badgeRepo.InsertUserBadge(context.Background(), &models.UserBadge{UserID: 7, BadgeID: id})
		require.NoError(t, err)
	}

	awarded, err := svc.CheckAndAward(context.Background(), 7, TriggerListing)
	require.NoError(t, err)
	require.Len(t, awarded, 2)

	assert.Contains(t, notifier.milestoneIDs(), "count_5")
	assert.NotContains(t, notifier.milestoneIDs(), "count_1", "already-passed thresholds are not re-announced")
}
