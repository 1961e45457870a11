package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"merithub/internal/models"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users       map[int64]*models.User
	tenure      []int64
	tenureLimit int
	err         error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) GetTenureCandidates(_ context.Context, _ time.Time, _ string, limit int) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tenureLimit = limit
	if len(f.tenure) > limit {
		return f.tenure[:limit], nil
	}
	return f.tenure, nil
}

func (f *fakeUserRepo) GetLeaderboard(_ context.Context, _ int) ([]*models.LeaderboardEntry, error) {
	return nil, f.err
}

type fakeActivityRepo struct {
	sales       int
	listings    int
	reviews     int
	avgRating   float64
	salesErr    error
	listingsErr error
	reviewsErr  error
}

func (f *fakeActivityRepo) CountCompletedSales(_ context.Context, _ int64) (int, error) {
	return f.sales, f.salesErr
}

func (f *fakeActivityRepo) CountListings(_ context.Context, _ int64) (int, error) {
	return f.listings, f.listingsErr
}

func (f *fakeActivityRepo) ReviewSummary(_ context.Context, _ int64) (int, float64, error) {
	return f.reviews, f.avgRating, f.reviewsErr
}

type fakeBadgeRepo struct {
	mu          sync.Mutex
	definitions []*models.BadgeDefinition
	held        map[int64]map[string]bool
	earned      map[int64][]*models.EarnedBadge
	insertErrOn map[string]error // badge id -> error to return on insert
	inserts     []string
}

func newFakeBadgeRepo(defs []*models.BadgeDefinition) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		definitions: defs,
		held:        make(map[int64]map[string]bool),
		earned:      make(map[int64][]*models.EarnedBadge),
		insertErrOn: make(map[string]error),
	}
}

func (f *fakeBadgeRepo) EnsureDefinition(_ context.Context, def *models.BadgeDefinition) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.definitions {
		if d.ID == def.ID {
			return false, nil
		}
	}
	copied := *def
	f.definitions = append(f.definitions, &copied)
	return true, nil
}

func (f *fakeBadgeRepo) GetActiveDefinitions(_ context.Context) ([]*models.BadgeDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.BadgeDefinition, 0, len(f.definitions))
	for _, d := range f.definitions {
		if d.IsActive && d.AutoAward {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) GetUserBadgeIDs(_ context.Context, userID int64) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.held[userID]))
	for id := range f.held[userID] {
		out[id] = true
	}
	return out, nil
}

func (f *fakeBadgeRepo) InsertUserBadge(_ context.Context, badge *models.UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertErrOn[badge.BadgeID]; err != nil {
		return false, err
	}
	if f.held[badge.UserID] == nil {
		f.held[badge.UserID] = make(map[string]bool)
	}
	if f.held[badge.UserID][badge.BadgeID] {
		return false, nil
	}
	f.held[badge.UserID][badge.BadgeID] = true
	f.inserts = append(f.inserts, badge.BadgeID)
	return true, nil
}

func (f *fakeBadgeRepo) GetEarnedBadges(_ context.Context, userID int64) ([]*models.EarnedBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.earned[userID], nil
}

func (f *fakeBadgeRepo) CountUserBadges(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held[userID]), nil
}

type fakeMilestoneRepo struct {
	mu    sync.Mutex
	acked map[int64]map[string]bool
	err   error
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{acked: make(map[int64]map[string]bool)}
}

func (f *fakeMilestoneRepo) InsertAck(_ context.Context, userID int64, milestoneID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.acked[userID] == nil {
		f.acked[userID] = make(map[string]bool)
	}
	if f.acked[userID][milestoneID] {
		return false, nil
	}
	f.acked[userID][milestoneID] = true
	return true, nil
}

func (f *fakeMilestoneRepo) GetAckedIDs(_ context.Context, userID int64) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool, len(f.acked[userID]))
	for id := range f.acked[userID] {
		out[id] = true
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	inserted  []*models.Notification
	prefs     map[int64]*models.NotificationPreferences
	insertErr error
	markedAll []int64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{prefs: make(map[int64]*models.NotificationPreferences)}
}

func (f *fakeNotificationRepo) Insert(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.inserted {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.inserted {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID int64, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.inserted {
		if n.UserID == userID && n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedAll = append(f.markedAll, userID)
	for _, n := range f.inserted {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) GetPreferences(_ context.Context, userID int64) (*models.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs[userID], nil
}

func (f *fakeNotificationRepo) UpsertPreferences(_ context.Context, prefs *models.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[prefs.UserID] = prefs
	return nil
}

type fakeTokenRepo struct {
	mu          sync.Mutex
	tokens      map[int64]map[string][]string // userID -> family -> tokens
	invalidated []string
	removed     []string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[int64]map[string][]string)}
}

func (f *fakeTokenRepo) Register(_ context.Context, userID int64, family, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens[userID] == nil {
		f.tokens[userID] = make(map[string][]string)
	}
	f.tokens[userID][family] = append(f.tokens[userID][family], token)
	return nil
}

func (f *fakeTokenRepo) GetTokens(_ context.Context, userID int64) (map[string][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[userID], nil
}

func (f *fakeTokenRepo) Invalidate(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, token)
	return nil
}

func (f *fakeTokenRepo) Remove(_ context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, token)
	return nil
}

// recordingNotifier captures notifications the award path emits.
type recordingNotifier struct {
	mu         sync.Mutex
	awards     []*models.AwardEvent
	milestones []*models.Milestone
}

func (r *recordingNotifier) NotifyBadgeAwarded(_ context.Context, event *models.AwardEvent) *DispatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards = append(r.awards, event)
	return &DispatchResult{Outcome: DispatchNoProvider}
}

func (r *recordingNotifier) NotifyMilestoneCrossed(_ context.Context, _ int64, milestone *models.Milestone) *DispatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.milestones = append(r.milestones, milestone)
	return &DispatchResult{Outcome: DispatchNoProvider}
}

func (r *recordingNotifier) ListNotifications(context.Context, int64, int, int) ([]*models.Notification, error) {
	return nil, nil
}
func (r *recordingNotifier) UnreadCount(context.Context, int64) (int, error) { return 0, nil }
func (r *recordingNotifier) MarkRead(context.Context, int64, string) error   { return nil }
func (r *recordingNotifier) MarkAllRead(context.Context, int64) error        { return nil }
func (r *recordingNotifier) GetPreferences(context.Context, int64) (*models.NotificationPreferences, error) {
	return nil, nil
}
func (r *recordingNotifier) UpdatePreferences(context.Context, int64, *UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	return nil, nil
}
func (r *recordingNotifier) RegisterDeviceToken(context.Context, int64, *RegisterDeviceTokenRequest) error {
	return nil
}
func (r *recordingNotifier) RemoveDeviceToken(context.Context, int64, string) error { return nil }

func (r *recordingNotifier) milestoneIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.milestones))
	for i, m := range r.milestones {
		out[i] = m.ID
	}
	return out
}
