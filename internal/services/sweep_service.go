// file: internal/services/sweep_service.go
package services

import (
	"context"
	"time"

	"merithub/internal/catalog"
	"merithub/internal/events"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

type sweepService struct {
	users  repositories.UserRepository
	awards AwardService
	bus    events.EventBus
	logger *zap.Logger
	now    func() time.Time
}

// NewSweepService creates the tenure sweep. It drives the only criteria
// family that no user action triggers: elapsed membership duration.
func NewSweepService(
	users repositories.UserRepository,
	awards AwardService,
	bus events.EventBus,
	logger *zap.Logger,
) SweepService {
	return &sweepService{
		users:  users,
		awards: awards,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// RunSweep evaluates at most batchSize candidates per call. Invocation
// cadence and last-run bookkeeping belong to the external scheduler;
// each call is self-contained.
func (s *sweepService) RunSweep(ctx context.Context, batchSize int) (*SweepResult, error) {
	if batchSize <= 0 {
		return nil, NewValidationError("batch size must be positive", nil)
	}

	cutoff := s.now().AddDate(0, 0, -catalog.VeteranThresholdDays)
	candidates, err := s.users.GetTenureCandidates(ctx, cutoff, catalog.BadgeVeteran, batchSize)
	if err != nil {
		return nil, NewTransientStoreError("failed to select sweep candidates", err)
	}

	result := &SweepResult{Candidates: len(candidates)}
	for _, userID := range candidates {
		awarded, err := s.awards.CheckAndAward(ctx, userID, TriggerPeriodic)
		if err != nil {
			// A bad candidate must not sink the batch; the next sweep
			// picks them up again.
			s.logger.Warn("Sweep evaluation failed for user",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		result.AwardedCount += len(awarded)
	}

	s.bus.Publish(ctx, events.NewSweepCompletedEvent(result.Candidates, result.AwardedCount))
	s.logger.Info("Tenure sweep completed",
		zap.Int("candidates", result.Candidates),
		zap.Int("awarded", result.AwardedCount),
	)
	return result, nil
}
