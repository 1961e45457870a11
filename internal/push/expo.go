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

// expoProvider delivers through the Expo push service, which manages the
// underlying APNs/FCM credentials server-side.
type expoProvider struct {
	endpoint    string
	accessToken string
	maxRetries  uint64
	client      *http.Client
	logger      *zap.Logger
}

// NewExpoProvider creates the Expo provider adapter.
func NewExpoProvider(cfg *config.PushConfig, client *http.Client, logger *zap.Logger) Provider {
	return &expoProvider{
		endpoint:    cfg.ExpoEndpoint,
		accessToken: cfg.ExpoAccessToken,
		maxRetries:  cfg.MaxRetries,
		client:      client,
		logger:      logger,
	}
}

func (p *expoProvider) Name() string   { return "expo" }
func (p *expoProvider) Family() string { return models.TokenFamilyExpo }

// Enabled is true whenever the endpoint is configured; Expo accepts
// unauthenticated sends, the access token only lifts rate limits.
func (p *expoProvider) Enabled() bool { return p.endpoint != "" }

type expoPushMessage struct {
	To    []string          `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoPushResponse struct {
	Data []struct {
		Status  string `json:"status"` // "ok" or "error"
		Message string `json:"message,omitempty"`
		Details struct {
			Error string `json:"error,omitempty"` // e.g. "DeviceNotRegistered"
		} `json:"details,omitempty"`
	} `json:"data"`
}

func (p *expoProvider) Send(ctx context.Context, tokens []string, msg *Message) (*Result, error) {
	payload, err := json.Marshal(expoPushMessage{
		To:    tokens,
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("expo: failed to encode request: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+p.accessToken)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("expo: retryable status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("expo: unexpected status %d", resp.StatusCode))
		}
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx, p.maxRetries)); err != nil {
		return nil, fmt.Errorf("expo: send failed: %w", err)
	}

	var parsed expoPushResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("expo: failed to decode response: %w", err)
	}

	result := &Result{Provider: p.Name()}
	for i, ticket := range parsed.Data {
		if ticket.Status == "ok" {
			result.SuccessCount++
			continue
		}
		result.FailureCount++
		if ticket.Details.Error == "DeviceNotRegistered" && i < len(tokens) {
			result.InvalidTokens = append(result.InvalidTokens, tokens[i])
		}
	}

	p.logger.Debug("Expo batch sent",
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount),
	)
	return result, nil
}
