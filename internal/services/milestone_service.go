// file: internal/services/milestone_service.go
package services

import (
	"context"
	"time"

	"merithub/internal/catalog"
	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

type milestoneService struct {
	badges     repositories.BadgeRepository
	milestones repositories.MilestoneRepository
	logger     *zap.Logger
}

// NewMilestoneService creates the milestone tracker.
func NewMilestoneService(
	badges repositories.BadgeRepository,
	milestones repositories.MilestoneRepository,
	logger *zap.Logger,
) MilestoneService {
	return &milestoneService{
		badges:     badges,
		milestones: milestones,
		logger:     logger,
	}
}

// GetMilestones derives the milestone set from the user's badges. The
// derivation is pure: the same badge set always yields the same
// milestone ids, which is what makes acknowledgment rows meaningful.
func (s *milestoneService) GetMilestones(ctx context.Context, userID int64) (*MilestoneSummary, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user id", nil)
	}

	earned, err := s.badges.GetEarnedBadges(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load earned badges", err)
	}

	acked, err := s.milestones.GetAckedIDs(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load milestone acks", err)
	}

	heldNames := make(map[string]bool, len(earned))
	for _, b := range earned {
		heldNames[b.Name] = true
	}
	totalBadges := len(earned)

	summary := &MilestoneSummary{TotalBadges: totalBadges}
	for _, m := range catalog.Milestones() {
		status := models.MilestoneStatus{Milestone: m}
		switch m.Kind {
		case models.MilestoneKindCount:
			status.Achieved = totalBadges >= m.Threshold
		case models.MilestoneKindSpecial:
			status.Achieved = heldNames[m.BadgeName]
		}
		status.New = status.Achieved && !acked[m.ID]

		if status.Achieved {
			summary.Achieved = append(summary.Achieved, status)
		} else {
			summary.Pending = append(summary.Pending, status)
		}
		if status.New {
			summary.NewUnacknowledged = append(summary.NewUnacknowledged, status)
		}
	}
	return summary, nil
}

// Acknowledge records that the user has seen a milestone. Idempotent:
// the second acknowledgment of the same id succeeds without writing.
func (s *milestoneService) Acknowledge(ctx context.Context, userID int64, milestoneID string) (*AckResult, error) {
	if milestoneID == "" {
		return nil, NewValidationError("milestone id is required", nil)
	}
	if !catalog.IsKnownMilestoneID(milestoneID) {
		return nil, NewValidationError("unknown milestone id", nil)
	}

	inserted, err := s.milestones.InsertAck(ctx, userID, milestoneID)
	if err != nil {
		return nil, NewTransientStoreError("failed to acknowledge milestone", err)
	}

	if inserted {
		s.logger.Debug("Milestone acknowledged",
			zap.Int64("user_id", userID),
			zap.String("milestone_id", milestoneID),
		)
	}
	return &AckResult{
		MilestoneID:    milestoneID,
		Acknowledged:   true,
		AlreadyAcked:   !inserted,
		AcknowledgedAt: time.Now(),
	}, nil
}
