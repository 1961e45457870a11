package services

import (
	"context"
	"time"

	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

type statsService struct {
	users    repositories.UserRepository
	activity repositories.ActivityRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatsService creates the activity aggregator.
func NewStatsService(
	users repositories.UserRepository,
	activity repositories.ActivityRepository,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		users:    users,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// ComputeStats sums counters from the independent activity sources. A
// failing or missing source contributes zero rather than failing the
// whole snapshot; criteria that need the missing counter simply won't
// qualify until the next evaluation.
func (s *statsService) ComputeStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats := &models.UserStats{}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load user for stats", err)
	}
	if user == nil {
		return stats, nil
	}

	if sales, err := s.activity.CountCompletedSales(ctx, userID); err != nil {
		s.logger.Warn("Sales source unavailable, defaulting to zero",
			zap.Int64("user_id", userID), zap.Error(err))
	} else {
		stats.TotalSales = sales
	}

	if listings, err := s.activity.CountListings(ctx, userID); err != nil {
		s.logger.Warn("Listings source unavailable, defaulting to zero",
			zap.Int64("user_id", userID), zap.Error(err))
	} else {
		stats.TotalListings = listings
	}

	if count, avg, err := s.activity.ReviewSummary(ctx, userID); err != nil {
		s.logger.Warn("Reviews source unavailable, defaulting to zero",
			zap.Int64("user_id", userID), zap.Error(err))
	} else {
		stats.ReviewCount = count
		stats.AvgRating = avg
	}

	stats.AccountAgeDays = accountAgeDays(user.CreatedAt, s.now())
	stats.IDVerified = user.IDVerified
	stats.EmailVerified = user.EmailVerified
	stats.PhoneVerified = user.PhoneVerified

	return stats, nil
}

// accountAgeDays normalizes both timestamps to UTC before computing the
// whole-day difference, so a row written with a zoned timestamp doesn't
// gain or lose a day at the boundary.
func accountAgeDays(createdAt, now time.Time) int {
	age := now.UTC().Sub(createdAt.UTC())
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}
