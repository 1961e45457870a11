// file: internal/services/profile_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"merithub/internal/cache"
	"merithub/internal/models"
	"merithub/internal/repositories"
	"merithub/internal/utils"

	"go.uber.org/zap"
)

const (
	profileCacheTTL     = 2 * time.Minute
	leaderboardCacheTTL = 5 * time.Minute
	leaderboardCacheKey = "leaderboard:points"
)

type profileService struct {
	users  repositories.UserRepository
	badges repositories.BadgeRepository
	cache  cache.Cache
	icons  *utils.IconResolver
	logger *zap.Logger
}

// NewProfileService creates the public profile read service.
func NewProfileService(
	users repositories.UserRepository,
	badges repositories.BadgeRepository,
	c cache.Cache,
	icons *utils.IconResolver,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		users:  users,
		badges: badges,
		cache:  c,
		icons:  icons,
		logger: logger,
	}
}

// GetShareableProfile is the public, no-auth view of a user's earned
// badges. Unlike the award path, an absent user here is a 404.
func (s *profileService) GetShareableProfile(ctx context.Context, userID int64) (*ProfileSummary, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user id", nil)
	}

	cacheKey := fmt.Sprintf("profile:share:%d", userID)
	var cached ProfileSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, NewNotFoundError("user not found")
	}

	earned, err := s.badges.GetEarnedBadges(ctx, userID)
	if err != nil {
		return nil, NewTransientStoreError("failed to load earned badges", err)
	}

	totalPoints := 0
	for _, b := range earned {
		totalPoints += b.PointsValue
		b.IconURL = s.icons.Resolve(b.Icon)
	}

	summary := &ProfileSummary{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		MemberSince: user.CreatedAt,
		TotalBadges: len(earned),
		TotalPoints: totalPoints,
		Badges:      earned,
	}

	if err := s.cache.Set(ctx, cacheKey, summary, profileCacheTTL); err != nil {
		s.logger.Debug("Failed to cache shareable profile", zap.Error(err))
	}
	return summary, nil
}

func (s *profileService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s:%d", leaderboardCacheKey, limit)
	var cached []*models.LeaderboardEntry
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	entries, err := s.users.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, NewTransientStoreError("failed to load leaderboard", err)
	}

	if err := s.cache.Set(ctx, cacheKey, entries, leaderboardCacheTTL); err != nil {
		s.logger.Debug("Failed to cache leaderboard", zap.Error(err))
	}
	return entries, nil
}
