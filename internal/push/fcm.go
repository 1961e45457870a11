package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"merithub/internal/config"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// fcmProvider delivers through Firebase Cloud Messaging's legacy HTTP API.
type fcmProvider struct {
	serverKey  string
	endpoint   string
	maxRetries uint64
	client     *http.Client
	logger     *zap.Logger
}

// NewFCMProvider creates the FCM provider adapter.
func NewFCMProvider(cfg *config.PushConfig, client *http.Client, logger *zap.Logger) Provider {
	return &fcmProvider{
		serverKey:  cfg.FCMServerKey,
		endpoint:   cfg.FCMEndpoint,
		maxRetries: cfg.MaxRetries,
		client:     client,
		logger:     logger,
	}
}

func (p *fcmProvider) Name() string   { return "fcm" }
func (p *fcmProvider) Family() string { return models.TokenFamilyFCM }
func (p *fcmProvider) Enabled() bool  { return p.serverKey != "" }

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

func (p *fcmProvider) Send(ctx context.Context, tokens []string, msg *Message) (*Result, error) {
	payload, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:            msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("fcm: failed to encode request: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "key="+p.serverKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("fcm: server error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("fcm: unexpected status %d", resp.StatusCode))
		}
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx, p.maxRetries)); err != nil {
		return nil, fmt.Errorf("fcm: send failed: %w", err)
	}

	var parsed fcmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("fcm: failed to decode response: %w", err)
	}

	result := &Result{
		Provider:     p.Name(),
		SuccessCount: parsed.Success,
		FailureCount: parsed.Failure,
	}
	for i, r := range parsed.Results {
		if i >= len(tokens) {
			break
		}
		// NotRegistered / InvalidRegistration mean the token is dead.
		if r.Error == "NotRegistered" || r.Error == "InvalidRegistration" {
			result.InvalidTokens = append(result.InvalidTokens, tokens[i])
		}
	}

	p.logger.Debug("FCM batch sent",
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount),
		zap.Int("invalid_tokens", len(result.InvalidTokens)),
	)
	return result, nil
}
