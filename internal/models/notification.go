package models

import "time"

// Notification types emitted by this engine.
const (
	NotificationTypeBadgeAwarded     = "badge_awarded"
	NotificationTypeMilestoneReached = "milestone_reached"
)

// Notification is a persisted in-app notification. Exactly one row is
// written per award and per newly-crossed milestone, independent of
// whether any push delivery succeeded.
type Notification struct {
	ID        string            `json:"id" db:"id"`
	UserID    int64             `json:"user_id" db:"user_id"`
	Type      string            `json:"type" db:"type"`
	Title     string            `json:"title" db:"title"`
	Message   string            `json:"message" db:"message"`
	Data      map[string]string `json:"data,omitempty" db:"data"`
	Read      bool              `json:"read" db:"read"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// NotificationPreferences gates push delivery per user. In-app records
// are always written regardless of these flags.
type NotificationPreferences struct {
	UserID        int64     `json:"user_id" db:"user_id"`
	BadgePush     bool      `json:"badge_push" db:"badge_push"`
	MilestonePush bool      `json:"milestone_push" db:"milestone_push"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultNotificationPreferences is what a user without a stored row gets.
func DefaultNotificationPreferences(userID int64) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:        userID,
		BadgePush:     true,
		MilestonePush: true,
	}
}

// DeviceToken is one push token registered by a client device. A user
// may hold tokens in several families at once (e.g. fcm + expo).
type DeviceToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Family    string    `json:"family" db:"family"` // fcm, expo, onesignal
	Token     string    `json:"token" db:"token"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Token families accepted by the device token store.
const (
	TokenFamilyFCM       = "fcm"
	TokenFamilyExpo      = "expo"
	TokenFamilyOneSignal = "onesignal"
)
