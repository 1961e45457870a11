package services

import (
	"context"
	"errors"
	"testing"

	"merithub/internal/models"
	"merithub/internal/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name    string
	family  string
	enabled bool
	result  *push.Result
	err     error
	sent    [][]string
}

func (f *fakeProvider) Name() string   { return f.name }
func (f *fakeProvider) Family() string { return f.family }
func (f *fakeProvider) Enabled() bool  { return f.enabled }

func (f *fakeProvider) Send(_ context.Context, tokens []string, _ *push.Message) (*push.Result, error) {
	f.sent = append(f.sent, tokens)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func awardEvent() *models.AwardEvent {
	return &models.AwardEvent{
		UserID:       7,
		BadgeID:      "badge_first_sale",
		BadgeName:    "First Sale",
		PointsEarned: 50,
	}
}

func newNotificationFixture(providers ...push.Provider) (NotificationService, *fakeNotificationRepo, *fakeTokenRepo) {
	notifRepo := newFakeNotificationRepo()
	tokenRepo := newFakeTokenRepo()
	svc := NewNotificationService(notifRepo, tokenRepo, providers, nil, zap.NewNop())
	return svc, notifRepo, tokenRepo
}

func TestNotifyBadgeAwardedWritesInAppRecord(t *testing.T) {
	svc, notifRepo, _ := newNotificationFixture()

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchNoProvider, result.Outcome)
	assert.NotEmpty(t, result.NotificationID)

	require.Len(t, notifRepo.inserted, 1)
	n := notifRepo.inserted[0]
	assert.Equal(t, models.NotificationTypeBadgeAwarded, n.Type)
	assert.Equal(t, int64(7), n.UserID)
	assert.Equal(t, "badge_first_sale", n.Data["badge_id"])
	assert.Equal(t, "50", n.Data["points"])
}

func TestNotifyBadgeAwardedPersistFailureStillPushes(t *testing.T) {
	provider := &fakeProvider{
		name: "fcm", family: models.TokenFamilyFCM, enabled: true,
		result: &push.Result{Provider: "fcm", SuccessCount: 1},
	}
	svc, notifRepo, tokenRepo := newNotificationFixture(provider)
	notifRepo.insertErr = errors.New("insert timeout")
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-1"))

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Empty(t, result.NotificationID, "lost in-app record is reported, not fabricated")
	assert.Len(t, provider.sent, 1)
}

func TestDispatchSkippedWhenPushOptedOut(t *testing.T) {
	provider := &fakeProvider{
		name: "fcm", family: models.TokenFamilyFCM, enabled: true,
		result: &push.Result{Provider: "fcm", SuccessCount: 1},
	}
	svc, notifRepo, tokenRepo := newNotificationFixture(provider)
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-1"))
	notifRepo.prefs[7] = &models.NotificationPreferences{UserID: 7, BadgePush: false, MilestonePush: true}

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchSkipped, result.Outcome)
	assert.Empty(t, provider.sent, "opted-out users get no push attempts")

	// The in-app record is written regardless of the opt-out
	assert.Len(t, notifRepo.inserted, 1)
}

func TestDispatchNoProviderWhenNoApplicableTokens(t *testing.T) {
	provider := &fakeProvider{name: "expo", family: models.TokenFamilyExpo, enabled: true}
	svc, _, tokenRepo := newNotificationFixture(provider)
	// Tokens exist but in a family no enabled provider consumes
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-1"))

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchNoProvider, result.Outcome)
	assert.Empty(t, provider.sent)
}

func TestDispatchFailedWhenAllProvidersFail(t *testing.T) {
	provider := &fakeProvider{
		name: "fcm", family: models.TokenFamilyFCM, enabled: true,
		err: errors.New("gateway unreachable"),
	}
	svc, _, tokenRepo := newNotificationFixture(provider)
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-1"))

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchFailed, result.Outcome)
	require.Len(t, result.Providers, 1)
	assert.Equal(t, 1, result.Providers[0].FailureCount)
}

func TestDispatchFallsThroughToSecondProvider(t *testing.T) {
	failing := &fakeProvider{
		name: "fcm", family: models.TokenFamilyFCM, enabled: true,
		err: errors.New("gateway unreachable"),
	}
	working := &fakeProvider{
		name: "expo", family: models.TokenFamilyExpo, enabled: true,
		result: &push.Result{Provider: "expo", SuccessCount: 1},
	}
	svc, _, tokenRepo := newNotificationFixture(failing, working)
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-fcm"))
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyExpo, "tok-expo"))

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Len(t, result.Providers, 2)
}

func TestDispatchInvalidatesDeadTokens(t *testing.T) {
	provider := &fakeProvider{
		name: "fcm", family: models.TokenFamilyFCM, enabled: true,
		result: &push.Result{
			Provider:      "fcm",
			SuccessCount:  1,
			FailureCount:  1,
			InvalidTokens: []string{"tok-dead"},
		},
	}
	svc, _, tokenRepo := newNotificationFixture(provider)
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-live"))
	require.NoError(t, tokenRepo.Register(context.Background(), 7, models.TokenFamilyFCM, "tok-dead"))

	result := svc.NotifyBadgeAwarded(context.Background(), awardEvent())
	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Equal(t, []string{"tok-dead"}, tokenRepo.invalidated)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc, _, _ := newNotificationFixture()

	err := svc.MarkRead(context.Background(), 7, "no-such-id")
	assert.True(t, IsNotFound(err))

	err = svc.MarkRead(context.Background(), 7, "")
	assert.True(t, IsValidation(err))
}

func TestUpdatePreferencesPartialUpdate(t *testing.T) {
	svc, notifRepo, _ := newNotificationFixture()

	off := false
	prefs, err := svc.UpdatePreferences(context.Background(), 7, &UpdatePreferencesRequest{BadgePush: &off})
	require.NoError(t, err)
	assert.False(t, prefs.BadgePush)
	assert.True(t, prefs.MilestonePush, "unset fields keep their prior value")
	assert.Equal(t, prefs, notifRepo.prefs[7])
}

func TestRegisterDeviceTokenValidation(t *testing.T) {
	svc, _, tokenRepo := newNotificationFixture()

	err := svc.RegisterDeviceToken(context.Background(), 7, &RegisterDeviceTokenRequest{Family: "pigeon", Token: "tok-12345"})
	assert.True(t, IsValidation(err))

	err = svc.RegisterDeviceToken(context.Background(), 7, &RegisterDeviceTokenRequest{Family: "fcm", Token: "short"})
	assert.True(t, IsValidation(err))

	err = svc.RegisterDeviceToken(context.Background(), 7, &RegisterDeviceTokenRequest{Family: "fcm", Token: "tok-12345"})
	require.NoError(t, err)
	tokens, err := tokenRepo.GetTokens(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-12345"}, tokens[models.TokenFamilyFCM])
}
