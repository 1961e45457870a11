// file: internal/services/notification_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"merithub/internal/models"
	"merithub/internal/push"
	"merithub/internal/realtime"
	"merithub/internal/repositories"
	"merithub/internal/validation"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type notificationService struct {
	notifications repositories.NotificationRepository
	tokens        repositories.DeviceTokenRepository
	providers     []push.Provider
	hub           *realtime.Hub
	logger        *zap.Logger
}

// NewNotificationService creates the notification dispatcher. providers
// must already be in priority order; hub may be nil in contexts without
// websocket delivery (tests, the sweep CLI).
func NewNotificationService(
	notifications repositories.NotificationRepository,
	tokens repositories.DeviceTokenRepository,
	providers []push.Provider,
	hub *realtime.Hub,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		tokens:        tokens,
		providers:     providers,
		hub:           hub,
		logger:        logger,
	}
}

// ===============================
// DISPATCH
// ===============================

func (s *notificationService) NotifyBadgeAwarded(ctx context.Context, event *models.AwardEvent) *DispatchResult {
	n := s.buildNotification(event.UserID, models.NotificationTypeBadgeAwarded,
		"Badge earned: "+event.BadgeName,
		fmt.Sprintf("You earned the %s badge (+%d points).", event.BadgeName, event.PointsEarned),
		map[string]string{
			"badge_id": event.BadgeID,
			"points":   strconv.Itoa(event.PointsEarned),
		},
	)
	return s.dispatch(ctx, n, func(p *models.NotificationPreferences) bool { return p.BadgePush })
}

func (s *notificationService) NotifyMilestoneCrossed(ctx context.Context, userID int64, milestone *models.Milestone) *DispatchResult {
	n := s.buildNotification(userID, models.NotificationTypeMilestoneReached,
		"Milestone reached: "+milestone.Name,
		milestone.Message,
		map[string]string{"milestone_id": milestone.ID},
	)
	return s.dispatch(ctx, n, func(p *models.NotificationPreferences) bool { return p.MilestonePush })
}

func (s *notificationService) buildNotification(userID int64, notifType, title, message string, data map[string]string) *models.Notification {
	id, _ := uuid.NewV4()
	return &models.Notification{
		ID:      id.String(),
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
}

// dispatch persists the in-app record, mirrors it to open websocket
// sessions, then fans out over the push providers. Nothing here returns
// an error: a committed badge award must never be affected by how its
// announcement fares.
func (s *notificationService) dispatch(ctx context.Context, n *models.Notification, pushAllowed func(*models.NotificationPreferences) bool) *DispatchResult {
	result := &DispatchResult{NotificationID: n.ID}

	if err := s.notifications.Insert(ctx, n); err != nil {
		// The in-app record is the durable channel; losing it is worth
		// an error log, but push delivery still proceeds.
		s.logger.Error("Failed to persist notification",
			zap.Int64("user_id", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
		result.NotificationID = ""
	}

	if s.hub != nil {
		s.hub.Notify(n.UserID, n)
	}

	prefs := s.loadPreferences(ctx, n.UserID)
	if !pushAllowed(prefs) {
		result.Outcome = DispatchSkipped
		return result
	}

	tokensByFamily, err := s.tokens.GetTokens(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("Failed to resolve device tokens",
			zap.Int64("user_id", n.UserID), zap.Error(err))
		tokensByFamily = nil
	}

	msg := &push.Message{Title: n.Title, Body: n.Message, Data: n.Data}
	attempted := false
	delivered := false

	for _, provider := range s.providers {
		if !provider.Enabled() {
			continue
		}
		tokens := tokensByFamily[provider.Family()]
		if len(tokens) == 0 {
			continue
		}
		attempted = true

		providerResult, err := provider.Send(ctx, tokens, msg)
		if err != nil {
			// Providers are independent; one failing must not block the rest.
			s.logger.Warn("Push provider delivery failed",
				zap.String("provider", provider.Name()),
				zap.Int64("user_id", n.UserID),
				zap.Error(NewPushDeliveryError(provider.Name(), err)),
			)
			result.Providers = append(result.Providers, &push.Result{
				Provider:     provider.Name(),
				FailureCount: len(tokens),
			})
			continue
		}

		result.Providers = append(result.Providers, providerResult)
		if providerResult.SuccessCount > 0 {
			delivered = true
		}
		s.invalidateTokens(ctx, providerResult.InvalidTokens)
	}

	switch {
	case !attempted:
		result.Outcome = DispatchNoProvider
	case delivered:
		result.Outcome = DispatchDelivered
	default:
		result.Outcome = DispatchFailed
	}
	return result
}

func (s *notificationService) loadPreferences(ctx context.Context, userID int64) *models.NotificationPreferences {
	prefs, err := s.notifications.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load notification preferences, using defaults",
			zap.Int64("user_id", userID), zap.Error(err))
		return models.DefaultNotificationPreferences(userID)
	}
	if prefs == nil {
		return models.DefaultNotificationPreferences(userID)
	}
	return prefs
}

// invalidateTokens retires tokens a provider reported as permanently
// unregistered so they are never retried.
func (s *notificationService) invalidateTokens(ctx context.Context, tokens []string) {
	for _, token := range tokens {
		if err := s.tokens.Invalidate(ctx, token); err != nil {
			s.logger.Warn("Failed to invalidate device token", zap.Error(err))
		}
	}
}

// ===============================
// IN-APP FEED
// ===============================

func (s *notificationService) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewTransientStoreError("failed to list notifications", err)
	}
	return out, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, NewTransientStoreError("failed to count unread notifications", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID int64, notificationID string) error {
	if notificationID == "" {
		return NewValidationError("notification id is required", nil)
	}
	err := s.notifications.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("notification not found")
	}
	if err != nil {
		return NewTransientStoreError("failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return NewTransientStoreError("failed to mark notifications read", err)
	}
	return nil
}

// ===============================
// PREFERENCES & DEVICE TOKENS
// ===============================

func (s *notificationService) GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreferences, error) {
	return s.loadPreferences(ctx, userID), nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	prefs := s.loadPreferences(ctx, userID)
	if req.BadgePush != nil {
		prefs.BadgePush = *req.BadgePush
	}
	if req.MilestonePush != nil {
		prefs.MilestonePush = *req.MilestonePush
	}
	prefs.UserID = userID

	if err := s.notifications.UpsertPreferences(ctx, prefs); err != nil {
		return nil, NewTransientStoreError("failed to update preferences", err)
	}
	return prefs, nil
}

func (s *notificationService) RegisterDeviceToken(ctx context.Context, userID int64, req *RegisterDeviceTokenRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid device token registration", err)
	}
	if err := s.tokens.Register(ctx, userID, req.Family, req.Token); err != nil {
		return NewTransientStoreError("failed to register device token", err)
	}
	s.logger.Info("Device token registered",
		zap.Int64("user_id", userID),
		zap.String("family", req.Family),
	)
	return nil
}

func (s *notificationService) RemoveDeviceToken(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return NewValidationError("token is required", nil)
	}
	if err := s.tokens.Remove(ctx, userID, token); err != nil {
		return NewTransientStoreError("failed to remove device token", err)
	}
	return nil
}
