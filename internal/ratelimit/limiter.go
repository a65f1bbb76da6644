// Package ratelimit implements a token bucket throttle enforcing a fixed
// minimum spacing between external provider calls.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/belivan/prospect-discovery/internal/metrics"
)

// Limiter spaces provider calls at a fixed interval. It is a flat throttle,
// not exponential backoff; provider-side throttling failures are handled
// upstream as transient errors. Safe for concurrent use, so concurrent
// query executions within one iteration still observe the spacing.
type Limiter struct {
	rl       *rate.Limiter
	provider string
}

// Config holds throttle configuration.
type Config struct {
	// MinSpacing is the minimum delay between consecutive calls.
	// Zero or negative disables throttling.
	MinSpacing time.Duration
	// Burst allows this many calls to proceed without waiting.
	Burst int
	// Provider labels the throttle in metrics.
	Provider string
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Inf
	if cfg.MinSpacing > 0 {
		limit = rate.Every(cfg.MinSpacing)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "default"
	}
	return &Limiter{
		rl:       rate.NewLimiter(limit, burst),
		provider: provider,
	}
}

// Wait blocks until the next call slot is available, respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.rl.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	// Only waits long enough to matter are worth a histogram sample.
	if delay := time.Since(start); delay > time.Millisecond {
		metrics.ObserveThrottleDelay(l.provider, delay)
	}
	return nil
}
