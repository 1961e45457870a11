package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merithub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pushConfig(endpoint string) *config.PushConfig {
	return &config.PushConfig{
		RequestTimeout:  5 * time.Second,
		MaxRetries:      1,
		FCMServerKey:    "test-server-key",
		FCMEndpoint:     endpoint,
		ExpoEndpoint:    endpoint,
		ExpoAccessToken: "test-access-token",
		OneSignalAppID:  "app-1",
		OneSignalAPIKey: "api-key-1",
		OneSignalURL:    endpoint,
	}
}

func testMessage() *Message {
	return &Message{
		Title: "Badge earned: First Sale",
		Body:  "You earned the First Sale badge (+50 points).",
		Data:  map[string]string{"badge_id": "badge_first_sale"},
	}
}

// ===============================
// FCM
// ===============================

func TestFCMSendParsesBatchResult(t *testing.T) {
	var captured fcmRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-server-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": 1,
			"failure": 2,
			"results": [
				{"message_id": "m1"},
				{"error": "NotRegistered"},
				{"error": "Unavailable"}
			]
		}`))
	}))
	defer server.Close()

	p := NewFCMProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	result, err := p.Send(context.Background(), []string{"tok-a", "tok-b", "tok-c"}, testMessage())
	require.NoError(t, err)

	assert.Equal(t, "fcm", result.Provider)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Equal(t, []string{"tok-b"}, result.InvalidTokens, "only dead tokens are surfaced, not transient errors")
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, captured.RegistrationIDs)
	assert.Equal(t, "Badge earned: First Sale", captured.Notification.Title)
}

func TestFCMSendRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": 1, "failure": 0, "results": [{"message_id": "m1"}]}`))
	}))
	defer server.Close()

	p := NewFCMProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	result, err := p.Send(context.Background(), []string{"tok-a"}, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestFCMSendClientErrorIsPermanent(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewFCMProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	_, err := p.Send(context.Background(), []string{"tok-a"}, testMessage())
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx responses must not be retried")
}

func TestFCMEnabledRequiresServerKey(t *testing.T) {
	cfg := pushConfig("http://example.invalid")
	assert.True(t, NewFCMProvider(cfg, http.DefaultClient, zap.NewNop()).Enabled())

	cfg.FCMServerKey = ""
	assert.False(t, NewFCMProvider(cfg, http.DefaultClient, zap.NewNop()).Enabled())
}

// ===============================
// Expo
// ===============================

func TestExpoSendParsesTickets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"data": [
				{"status": "ok"},
				{"status": "error", "message": "not registered", "details": {"error": "DeviceNotRegistered"}},
				{"status": "error", "message": "rate limited"}
			]
		}`))
	}))
	defer server.Close()

	p := NewExpoProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	result, err := p.Send(context.Background(), []string{"exp-a", "exp-b", "exp-c"}, testMessage())
	require.NoError(t, err)

	assert.Equal(t, "expo", result.Provider)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Equal(t, []string{"exp-b"}, result.InvalidTokens)
}

func TestExpoSendRetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": [{"status": "ok"}]}`))
	}))
	defer server.Close()

	p := NewExpoProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	result, err := p.Send(context.Background(), []string{"exp-a"}, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, result.SuccessCount)
}

// ===============================
// OneSignal
// ===============================

func TestOneSignalSendCountsRecipients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Basic api-key-1", r.Header.Get("Authorization"))
		var req oneSignalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "app-1", req.AppID)
		w.Write([]byte(`{
			"id": "n-1",
			"recipients": 2,
			"errors": {"invalid_player_ids": ["player-c"]}
		}`))
	}))
	defer server.Close()

	p := NewOneSignalProvider(pushConfig(server.URL), server.Client(), zap.NewNop())
	result, err := p.Send(context.Background(), []string{"player-a", "player-b", "player-c"}, testMessage())
	require.NoError(t, err)

	assert.Equal(t, "onesignal", result.Provider)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Equal(t, []string{"player-c"}, result.InvalidTokens)
}

// ===============================
// FACTORY
// ===============================

func TestBuildProvidersHonorsOrder(t *testing.T) {
	cfg := pushConfig("http://example.invalid")
	cfg.Order = []string{"expo", "fcm", "carrier_pigeon"}

	providers := BuildProviders(cfg, zap.NewNop())
	require.Len(t, providers, 2, "unknown provider names are skipped")
	assert.Equal(t, "expo", providers[0].Name())
	assert.Equal(t, "fcm", providers[1].Name())
}
