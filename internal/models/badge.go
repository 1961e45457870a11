package models

import "time"

// BadgeDefinition is a catalog entry describing one achievement badge.
// Definitions are seeded at startup and treated as read-only by the
// awarding engine; admins may flip is_active out of band.
type BadgeDefinition struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	Icon            string    `json:"icon" db:"icon"`
	Color           string    `json:"color" db:"color"`
	Category        string    `json:"category" db:"category"`
	CriteriaKey     string    `json:"criteria_key" db:"criteria_key"`
	DisplayPriority int       `json:"display_priority" db:"display_priority"`
	PointsValue     int       `json:"points_value" db:"points_value"`
	AutoAward       bool      `json:"auto_award" db:"auto_award"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// UserBadge records a single badge awarded to a single user. Rows are
// append-only; the (user_id, badge_id) pair is unique at the storage layer.
type UserBadge struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	BadgeID     string    `json:"badge_id" db:"badge_id"`
	AwardedAt   time.Time `json:"awarded_at" db:"awarded_at"`
	AwardedBy   string    `json:"awarded_by" db:"awarded_by"` // "system" or "admin"
	Reason      string    `json:"reason" db:"reason"`
	AutoAwarded bool      `json:"auto_awarded" db:"auto_awarded"`
}

// EarnedBadge joins a user badge with its definition for read surfaces
// (shareable profile, achievements page).
type EarnedBadge struct {
	BadgeID     string    `json:"badge_id" db:"badge_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"`
	IconURL     string    `json:"icon_url,omitempty" db:"-"`
	Color       string    `json:"color" db:"color"`
	Category    string    `json:"category" db:"category"`
	PointsValue int       `json:"points_value" db:"points_value"`
	AwardedAt   time.Time `json:"awarded_at" db:"awarded_at"`
}

// AwardEvent is the in-process record produced when a badge is newly and
// successfully awarded within one evaluation call. It is never persisted.
type AwardEvent struct {
	UserID       int64  `json:"user_id"`
	BadgeID      string `json:"badge_id"`
	BadgeName    string `json:"badge_name"`
	Reason       string `json:"reason"`
	PointsEarned int    `json:"points_earned"`
}
