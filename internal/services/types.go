// file: internal/services/types.go
package services

import (
	"time"

	"merithub/internal/models"
	"merithub/internal/push"
)

// ===============================
// AWARD TYPES
// ===============================

// Triggers identify what activity prompted a CheckAndAward call.
const (
	TriggerSale     = "sale"
	TriggerListing  = "listing"
	TriggerReview   = "review"
	TriggerProfile  = "profile"
	TriggerPeriodic = "periodic"
)

// ===============================
// MILESTONE TYPES
// ===============================

// MilestoneSummary backs the user-facing "my achievements" read.
type MilestoneSummary struct {
	TotalBadges       int                      `json:"total_badges"`
	Achieved          []models.MilestoneStatus `json:"achieved"`
	Pending           []models.MilestoneStatus `json:"pending"`
	NewUnacknowledged []models.MilestoneStatus `json:"new_unacknowledged"`
}

// AckResult reports a milestone acknowledgment. Repeat acknowledgments
// return AlreadyAcked=true and are still a success.
type AckResult struct {
	MilestoneID    string    `json:"milestone_id"`
	Acknowledged   bool      `json:"acknowledged"`
	AlreadyAcked   bool      `json:"already_acked"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}

// ===============================
// PROFILE TYPES
// ===============================

// ProfileSummary is the public, no-auth view of a user's earned badges.
type ProfileSummary struct {
	UserID      int64                 `json:"user_id"`
	Username    string                `json:"username"`
	DisplayName string                `json:"display_name"`
	AvatarURL   *string               `json:"avatar_url,omitempty"`
	MemberSince time.Time             `json:"member_since"`
	TotalBadges int                   `json:"total_badges"`
	TotalPoints int                   `json:"total_points"`
	Badges      []*models.EarnedBadge `json:"badges"`
}

// ===============================
// DISPATCH TYPES
// ===============================

// DispatchOutcome classifies one notify call.
const (
	DispatchDelivered  = "delivered"   // at least one provider reported success
	DispatchFailed     = "failed"      // providers attempted, none succeeded
	DispatchNoProvider = "no_provider" // no enabled provider with applicable tokens
	DispatchSkipped    = "skipped"     // user preferences opted out of push
)

// DispatchResult aggregates per-provider tallies for one notification.
// The in-app record referenced by NotificationID exists regardless of
// Outcome.
type DispatchResult struct {
	NotificationID string         `json:"notification_id"`
	Outcome        string         `json:"outcome"`
	Providers      []*push.Result `json:"providers,omitempty"`
}

// ===============================
// REQUEST TYPES
// ===============================

// CheckAndAwardRequest is the internal trigger hook payload.
type CheckAndAwardRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Trigger string `json:"trigger" validate:"required,oneof=sale listing review profile periodic"`
}

// AcknowledgeMilestoneRequest acknowledges one milestone for a user.
type AcknowledgeMilestoneRequest struct {
	MilestoneID string `json:"milestone_id" validate:"required"`
}

// RegisterDeviceTokenRequest registers a push token for the caller.
type RegisterDeviceTokenRequest struct {
	Family string `json:"family" validate:"required,oneof=fcm expo onesignal"`
	Token  string `json:"token" validate:"required,min=8"`
}

// UpdatePreferencesRequest updates the caller's push preferences.
type UpdatePreferencesRequest struct {
	BadgePush     *bool `json:"badge_push"`
	MilestonePush *bool `json:"milestone_push"`
}

// RunSweepRequest bounds one sweep invocation.
type RunSweepRequest struct {
	BatchSize int `json:"batch_size" validate:"omitempty,gt=0"`
}

// SweepResult summarizes one sweep invocation.
type SweepResult struct {
	Candidates   int `json:"candidates"`
	AwardedCount int `json:"awarded_count"`
}
