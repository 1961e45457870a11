// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"merithub/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository reads the marketplace user records this engine consumes.
type UserRepository interface {
	// GetByID returns (nil, nil) when the user does not exist; absence is
	// not an error at this layer.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetTenureCandidates lists active users created before cutoff who do
	// not yet hold badgeID, up to limit rows. Backs the periodic sweep.
	GetTenureCandidates(ctx context.Context, cutoff time.Time, badgeID string, limit int) ([]int64, error)

	// GetLeaderboard ranks users by accumulated badge points.
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ActivityRepository reads the scattered per-user activity counters.
// Each method tolerates an empty source by returning zero values.
type ActivityRepository interface {
	CountCompletedSales(ctx context.Context, userID int64) (int, error)
	CountListings(ctx context.Context, userID int64) (int, error)
	ReviewSummary(ctx context.Context, userID int64) (count int, avgRating float64, err error)
}

// BadgeRepository owns badge definitions and awarded badges.
type BadgeRepository interface {
	// EnsureDefinition inserts def if no row with its id exists and
	// reports whether a row was written. Existing rows are never touched.
	EnsureDefinition(ctx context.Context, def *models.BadgeDefinition) (bool, error)

	// GetActiveDefinitions returns active, auto-award definitions in
	// display-priority order.
	GetActiveDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error)

	// GetUserBadgeIDs returns the set of badge ids held by a user.
	GetUserBadgeIDs(ctx context.Context, userID int64) (map[string]bool, error)

	// InsertUserBadge performs an insert-if-absent on (user_id, badge_id)
	// and reports whether the row was inserted. A lost race returns
	// (false, nil); that is the idempotency signal, not an error.
	InsertUserBadge(ctx context.Context, badge *models.UserBadge) (bool, error)

	// GetEarnedBadges joins user badges with their definitions, newest
	// award first.
	GetEarnedBadges(ctx context.Context, userID int64) ([]*models.EarnedBadge, error)

	CountUserBadges(ctx context.Context, userID int64) (int, error)
}

// MilestoneRepository stores per-user milestone acknowledgments.
type MilestoneRepository interface {
	// InsertAck is insert-if-absent on (user_id, milestone_id); reports
	// whether a new row was written.
	InsertAck(ctx context.Context, userID int64, milestoneID string) (bool, error)

	GetAckedIDs(ctx context.Context, userID int64) (map[string]bool, error)
}

// NotificationRepository stores in-app notifications and preferences.
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, notificationID string) error
	MarkAllRead(ctx context.Context, userID int64) error

	// GetPreferences returns (nil, nil) when the user has no stored row;
	// callers fall back to defaults.
	GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *models.NotificationPreferences) error
}

// DeviceTokenRepository stores per-user push tokens by family.
type DeviceTokenRepository interface {
	Register(ctx context.Context, userID int64, family, token string) error
	// GetTokens returns active tokens grouped by family.
	GetTokens(ctx context.Context, userID int64) (map[string][]string, error)
	// Invalidate marks a token inactive so it is never retried.
	Invalidate(ctx context.Context, token string) error
	Remove(ctx context.Context, userID int64, token string) error
}

// Collection bundles all repositories for dependency injection.
type Collection struct {
	User         UserRepository
	Activity     ActivityRepository
	Badge        BadgeRepository
	Milestone    MilestoneRepository
	Notification NotificationRepository
	DeviceToken  DeviceTokenRepository
}
