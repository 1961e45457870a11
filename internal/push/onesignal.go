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

// oneSignalProvider delivers through the OneSignal REST API. Tokens in
// the onesignal family are player ids.
type oneSignalProvider struct {
	appID      string
	apiKey     string
	endpoint   string
	maxRetries uint64
	client     *http.Client
	logger     *zap.Logger
}

// NewOneSignalProvider creates the OneSignal provider adapter.
func NewOneSignalProvider(cfg *config.PushConfig, client *http.Client, logger *zap.Logger) Provider {
	return &oneSignalProvider{
		appID:      cfg.OneSignalAppID,
		apiKey:     cfg.OneSignalAPIKey,
		endpoint:   cfg.OneSignalURL,
		maxRetries: cfg.MaxRetries,
		client:     client,
		logger:     logger,
	}
}

func (p *oneSignalProvider) Name() string   { return "onesignal" }
func (p *oneSignalProvider) Family() string { return models.TokenFamilyOneSignal }
func (p *oneSignalProvider) Enabled() bool  { return p.appID != "" && p.apiKey != "" }

type oneSignalRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	Data             map[string]string `json:"data,omitempty"`
}

type oneSignalResponse struct {
	ID         string   `json:"id"`
	Recipients int      `json:"recipients"`
	Errors     struct {
		InvalidPlayerIDs []string `json:"invalid_player_ids,omitempty"`
	} `json:"errors,omitempty"`
}

func (p *oneSignalProvider) Send(ctx context.Context, tokens []string, msg *Message) (*Result, error) {
	payload, err := json.Marshal(oneSignalRequest{
		AppID:            p.appID,
		IncludePlayerIDs: tokens,
		Headings:         map[string]string{"en": msg.Title},
		Contents:         map[string]string{"en": msg.Body},
		Data:             msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("onesignal: failed to encode request: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Basic "+p.apiKey)

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
			return fmt.Errorf("onesignal: server error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("onesignal: unexpected status %d", resp.StatusCode))
		}
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx, p.maxRetries)); err != nil {
		return nil, fmt.Errorf("onesignal: send failed: %w", err)
	}

	var parsed oneSignalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("onesignal: failed to decode response: %w", err)
	}

	invalid := parsed.Errors.InvalidPlayerIDs
	result := &Result{
		Provider:      p.Name(),
		SuccessCount:  parsed.Recipients,
		FailureCount:  len(tokens) - parsed.Recipients,
		InvalidTokens: invalid,
	}
	if result.FailureCount < 0 {
		result.FailureCount = 0
	}

	p.logger.Debug("OneSignal batch sent",
		zap.String("notification_id", parsed.ID),
		zap.Int("recipients", parsed.Recipients),
		zap.Int("invalid_player_ids", len(invalid)),
	)
	return result, nil
}
