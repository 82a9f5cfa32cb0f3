// Package ratelimit provides fixed-window rate limiting over a pluggable counter store.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"projectgateway/internal/domain"
)

// Limiter checks per-key request counts against a limit.
type Limiter struct {
	store domain.KeyedCounterStore
}

// New creates a Limiter backed by store.
func New(store domain.KeyedCounterStore) *Limiter {
	return &Limiter{store: store}
}

// Check counts one request for key. It allows up to limit requests per window; the window is fixed,
// so up to 2*limit requests can pass around a window boundary.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 || window <= 0 {
		return domain.RateLimitDecision{}, errors.New("rate limit and window must be positive")
	}
	return l.store.Take(ctx, key, limit, window)
}

// Key builds a bucket key of the form "<purpose>:<client>".
func Key(purpose, client string) string {
	return purpose + ":" + client
}

// retryAfterSeconds is ceil(d / 1s), never below 1 for a denied request.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
