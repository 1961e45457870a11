package models

import "time"

// Milestone kinds.
const (
	MilestoneKindCount   = "count"
	MilestoneKindSpecial = "special"
)

// Milestone is a derived checkpoint over a user's accumulated badges.
// Milestones are not persisted; only acknowledgments are. IDs are
// deterministic ("count_5", "special_first_sale") so repeated
// derivation always maps to the same row.
type Milestone struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Icon      string `json:"icon"`
	Threshold int    `json:"threshold,omitempty"`  // count milestones only
	BadgeName string `json:"badge_name,omitempty"` // special milestones only
}

// MilestoneStatus is a milestone plus its per-user state.
type MilestoneStatus struct {
	Milestone
	Achieved bool `json:"achieved"`
	New      bool `json:"new"` // achieved and not yet acknowledged
}

// UserMilestoneAck records that a user has seen a milestone. Append-only;
// the (user_id, milestone_id) pair is unique at the storage layer.
type UserMilestoneAck struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	MilestoneID    string    `json:"milestone_id" db:"milestone_id"`
	AcknowledgedAt time.Time `json:"acknowledged_at" db:"acknowledged_at"`
}
