// file: internal/services/award_service.go
package services

import (
	"context"
	"fmt"

	"merithub/internal/catalog"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

type awardService struct {
	users    repositories.UserRepository
	badges   repositories.BadgeRepository
	stats    StatsService
	notifier NotificationService
	cat      *catalog.Catalog
	bus      events.EventBus
	logger   *zap.Logger
}

// NewAwardService creates the badge awarding engine.
func NewAwardService(
	users repositories.UserRepository,
	badges repositories.BadgeRepository,
	stats StatsService,
	notifier NotificationService,
	cat *catalog.Catalog,
	bus events.EventBus,
	logger *zap.Logger,
) AwardService {
	return &awardService{
		users:    users,
		badges:   badges,
		stats:    stats,
		notifier: notifier,
		cat:      cat,
		bus:      bus,
		logger:   logger,
	}
}

// CheckAndAward runs one evaluation pass over the catalog.
//
// Concurrent calls for the same user are safe: the held-set read only
// short-circuits work, and the race between that read and the write is
// closed by the insert-if-absent in InsertUserBadge. Whichever call's
// insert wins emits the event; losers skip silently.
func (s *awardService) CheckAndAward(ctx context.Context, userID int64, trigger string) ([]*models.AwardEvent, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load user", err)
	}
	if user == nil {
		// Deleted or not-yet-provisioned users trigger activity hooks
		// too; that is a no-op, not an error.
		s.logger.Debug("CheckAndAward for unknown user, skipping",
			zap.Int64("user_id", userID), zap.String("trigger", trigger))
		return nil, nil
	}

	held, err := s.badges.GetUserBadgeIDs(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load held badges", err)
	}

	stats, err := s.stats.ComputeStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	defs, err := s.badges.GetActiveDefinitions(ctx)
	if err != nil {
		return nil, NewTransientStoreError("failed to load badge definitions", err)
	}

	var awarded []*models.AwardEvent
	for _, def := range defs {
		if held[def.ID] {
			continue
		}

		predicate, err := catalog.PredicateFor(def.CriteriaKey)
		if err != nil {
			// Stored rows can only carry keys the catalog validated at
			// startup, so this means an out-of-band edit broke the key.
			s.logger.Warn("Stored badge definition has unknown criteria key, skipping",
				zap.String("badge_id", def.ID),
				zap.String("criteria_key", def.CriteriaKey),
			)
			continue
		}
		if !predicate(stats) {
			continue
		}

		event, err := s.award(ctx, user, def, trigger)
		if err != nil {
			// One badge's storage fault must not starve the rest of the
			// catalog; the next trigger or sweep is the retry.
			s.logger.Error("Failed to award badge, continuing evaluation",
				zap.Int64("user_id", userID),
				zap.String("badge_id", def.ID),
				zap.Error(err),
			)
			continue
		}
		if event != nil {
			awarded = append(awarded, event)
		}
	}

	if len(awarded) > 0 {
		s.notifyCrossedMilestones(ctx, userID, len(held), awarded)
		s.logger.Info("Badges awarded",
			zap.Int64("user_id", userID),
			zap.String("trigger", trigger),
			zap.Int("count", len(awarded)),
		)
	}
	return awarded, nil
}

// notifyCrossedMilestones announces milestones this call's awards pushed
// the user across: count thresholds passed by the new total, and special
// milestones matching a freshly-awarded badge name.
func (s *awardService) notifyCrossedMilestones(ctx context.Context, userID int64, previousCount int, awarded []*models.AwardEvent) {
	newCount := previousCount + len(awarded)
	awardedNames := make(map[string]bool, len(awarded))
	for _, e := range awarded {
		awardedNames[e.BadgeName] = true
	}

	for _, m := range catalog.Milestones() {
		crossed := false
		switch m.Kind {
		case models.MilestoneKindCount:
			crossed = m.Threshold > previousCount && m.Threshold <= newCount
		case models.MilestoneKindSpecial:
			crossed = awardedNames[m.BadgeName]
		}
		if !crossed {
			continue
		}

		milestone := m
		s.bus.Publish(ctx, events.NewMilestoneCrossedEvent(userID, m.ID, m.Name))
		s.notifier.NotifyMilestoneCrossed(ctx, userID, &milestone)
	}
}

// award performs the insert-if-absent write and, on a win, emits the
// event and creates the in-app notification. A lost race returns
// (nil, nil).
func (s *awardService) award(ctx context.Context, user *models.User, def *models.BadgeDefinition, trigger string) (*models.AwardEvent, error) {
	row := &models.UserBadge{
		UserID:      user.ID,
		BadgeID:     def.ID,
		AwardedBy:   "system",
		Reason:      fmt.Sprintf("criteria %s met on %s trigger", def.CriteriaKey, trigger),
		AutoAwarded: true,
	}

	inserted, err := s.badges.InsertUserBadge(ctx, row)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, nil
	}

	event := &models.AwardEvent{
		UserID:       user.ID,
		BadgeID:      def.ID,
		BadgeName:    def.Name,
		Reason:       row.Reason,
		PointsEarned: def.PointsValue,
	}

	s.bus.Publish(ctx, events.NewBadgeAwardedEvent(user.ID, def.ID, def.Name, trigger, def.PointsValue))

	// The award is final once inserted; a notification fault is logged
	// inside the dispatcher and never rolls it back.
	s.notifier.NotifyBadgeAwarded(ctx, event)

	return event, nil
}
