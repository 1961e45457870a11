// file: internal/services/interface.go
package services

import (
	"context"

	"merithub/internal/models"
)

// CatalogService owns the fixed badge catalog.
type CatalogService interface {
	// EnsureInitialized seeds every catalog entry that has no stored
	// definition yet. Idempotent; safe on every process start. Existing
	// rows are never modified, preserving admin overrides.
	EnsureInitialized(ctx context.Context) error
}

// StatsService computes per-user activity snapshots.
type StatsService interface {
	// ComputeStats aggregates activity counters for a user. An absent
	// user yields zeroed stats, not an error; existence checks belong to
	// the caller.
	ComputeStats(ctx context.Context, userID int64) (*models.UserStats, error)
}

// AwardService is the badge awarding engine.
type AwardService interface {
	// CheckAndAward evaluates the catalog against the user's stats and
	// awards every qualifying badge the user does not yet hold. Returns
	// the events for badges actually awarded by this call. An absent
	// user is a silent no-op. Partial storage failure skips the affected
	// badge and continues.
	CheckAndAward(ctx context.Context, userID int64, trigger string) ([]*models.AwardEvent, error)
}

// MilestoneService derives milestones from the accumulated badge set.
type MilestoneService interface {
	GetMilestones(ctx context.Context, userID int64) (*MilestoneSummary, error)
	// Acknowledge is idempotent; acknowledging an already-acknowledged
	// milestone succeeds. Empty or unknown milestone ids fail validation.
	Acknowledge(ctx context.Context, userID int64, milestoneID string) (*AckResult, error)
}

// ProfileService backs the public shareable profile and leaderboard.
type ProfileService interface {
	// GetShareableProfile returns NOT_FOUND when the user is absent.
	GetShareableProfile(ctx context.Context, userID int64) (*ProfileSummary, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// NotificationService persists in-app notifications and dispatches push.
type NotificationService interface {
	// NotifyBadgeAwarded always writes exactly one in-app record; push
	// delivery is best-effort and its outcome is reported, not raised.
	NotifyBadgeAwarded(ctx context.Context, event *models.AwardEvent) *DispatchResult
	NotifyMilestoneCrossed(ctx context.Context, userID int64, milestone *models.Milestone) *DispatchResult

	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, notificationID string) error
	MarkAllRead(ctx context.Context, userID int64) error

	GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*models.NotificationPreferences, error)

	RegisterDeviceToken(ctx context.Context, userID int64, req *RegisterDeviceTokenRequest) error
	RemoveDeviceToken(ctx context.Context, userID int64, token string) error
}

// SweepService drives the time-based criteria family in bounded batches.
type SweepService interface {
	// RunSweep evaluates up to batchSize tenure candidates and returns
	// how many badges were awarded. Cadence is owned by an external
	// scheduler.
	RunSweep(ctx context.Context, batchSize int) (*SweepResult, error)
}
