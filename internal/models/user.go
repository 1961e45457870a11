package models

import "time"

// User is the slice of the marketplace user record this engine reads.
// The full account model is owned by the accounts service.
type User struct {
	ID            int64     `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	AvatarURL     *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	IDVerified    bool      `json:"id_verified" db:"id_verified"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	PhoneVerified bool      `json:"phone_verified" db:"phone_verified"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// UserStats is the ephemeral per-user activity snapshot the awarding
// engine evaluates criteria against. It is recomputed on every
// evaluation and never persisted.
type UserStats struct {
	TotalSales     int     `json:"total_sales"`
	TotalListings  int     `json:"total_listings"`
	ReviewCount    int     `json:"review_count"`
	AvgRating      float64 `json:"avg_rating"`
	AccountAgeDays int     `json:"account_age_days"`
	IDVerified     bool    `json:"id_verified"`
	EmailVerified  bool    `json:"email_verified"`
	PhoneVerified  bool    `json:"phone_verified"`
}

// LeaderboardEntry is one row of the public "top achievers" ranking.
type LeaderboardEntry struct {
	UserID      int64  `json:"user_id" db:"user_id"`
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name" db:"display_name"`
	BadgeCount  int    `json:"badge_count" db:"badge_count"`
	TotalPoints int    `json:"total_points" db:"total_points"`
}
