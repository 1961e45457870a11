package events

// Event types emitted by the achievement engine.
const (
	TypeBadgeAwarded     = "badge.awarded"
	TypeMilestoneCrossed = "milestone.crossed"
	TypeSweepCompleted   = "sweep.completed"
)

// BadgeAwardedEvent fires once per newly-inserted user badge.
type BadgeAwardedEvent struct {
	BaseEvent
	BadgeID      string `json:"badge_id"`
	BadgeName    string `json:"badge_name"`
	Trigger      string `json:"trigger"`
	PointsEarned int    `json:"points_earned"`
}

// NewBadgeAwardedEvent builds a badge awarded event.
func NewBadgeAwardedEvent(userID int64, badgeID, badgeName, trigger string, points int) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent:    NewBaseEvent(TypeBadgeAwarded, userID),
		BadgeID:      badgeID,
		BadgeName:    badgeName,
		Trigger:      trigger,
		PointsEarned: points,
	}
}

// MilestoneCrossedEvent fires when a milestone is first observed achieved
// and unacknowledged for a user.
type MilestoneCrossedEvent struct {
	BaseEvent
	MilestoneID string `json:"milestone_id"`
	Name        string `json:"name"`
}

// NewMilestoneCrossedEvent builds a milestone crossed event.
func NewMilestoneCrossedEvent(userID int64, milestoneID, name string) *MilestoneCrossedEvent {
	return &MilestoneCrossedEvent{
		BaseEvent:   NewBaseEvent(TypeMilestoneCrossed, userID),
		MilestoneID: milestoneID,
		Name:        name,
	}
}

// SweepCompletedEvent summarizes one tenure sweep invocation.
type SweepCompletedEvent struct {
	BaseEvent
	CandidateCount int `json:"candidate_count"`
	AwardedCount   int `json:"awarded_count"`
}

// NewSweepCompletedEvent builds a sweep completed event.
func NewSweepCompletedEvent(candidates, awarded int) *SweepCompletedEvent {
	e := &SweepCompletedEvent{
		CandidateCount: candidates,
		AwardedCount:   awarded,
	}
	e.BaseEvent = NewBaseEvent(TypeSweepCompleted, 0)
	e.BaseEvent.UserID = nil
	return e
}
