// Package push contains the provider adapters for mobile push delivery.
// Each provider implements the same narrow Send contract so the
// dispatcher can iterate an ordered list uniformly; providers are
// independent and one failing never blocks another.
package push

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"merithub/internal/config"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// Message is the provider-agnostic push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result is the per-provider delivery tally. InvalidTokens lists tokens
// the provider reported as permanently unregistered; the caller must
// invalidate them so they are never retried.
type Result struct {
	Provider      string   `json:"provider"`
	SuccessCount  int      `json:"success_count"`
	FailureCount  int      `json:"failure_count"`
	InvalidTokens []string `json:"-"`
}

// Provider is one push delivery channel.
type Provider interface {
	// Name identifies the provider in logs and tallies.
	Name() string
	// Family is the device-token family this provider consumes.
	Family() string
	// Enabled reports whether the provider has usable credentials.
	Enabled() bool
	// Send attempts delivery to the given tokens. Partial failure is
	// reported in the Result, not as an error; an error means the whole
	// provider call failed.
	Send(ctx context.Context, tokens []string, msg *Message) (*Result, error)
}

// BuildProviders constructs the configured providers in priority order.
// Unknown names are skipped with a warning rather than failing startup.
func BuildProviders(cfg *config.PushConfig, logger *zap.Logger) []Provider {
	client := &http.Client{Timeout: cfg.RequestTimeout}

	available := map[string]Provider{
		models.TokenFamilyFCM:       NewFCMProvider(cfg, client, logger),
		models.TokenFamilyExpo:      NewExpoProvider(cfg, client, logger),
		models.TokenFamilyOneSignal: NewOneSignalProvider(cfg, client, logger),
	}

	var out []Provider
	for _, name := range cfg.Order {
		p, ok := available[name]
		if !ok {
			logger.Warn("Unknown push provider in PUSH_PROVIDER_ORDER, skipping",
				zap.String("provider", name))
			continue
		}
		out = append(out, p)
	}
	return out
}

// retryPolicy builds the shared bounded-retry policy for provider HTTP
// calls. Transport faults and 5xx responses are retried; any other
// non-200 status is permanent.
func retryPolicy(ctx context.Context, maxRetries uint64) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)
}
