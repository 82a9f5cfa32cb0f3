package domain

import (
	"context"
	"time"
)

// RateLimitBucket is one fixed window for a key of the form "<purpose>:<client>".
type RateLimitBucket struct {
	Key     string
	Count   int
	ResetAt time.Time
}

// RateLimitDecision is the result of a rate limit check.
type RateLimitDecision struct {
	Allowed           bool
	RetryAfterSeconds int
	Remaining         int
}

// KeyedCounterStore performs the fixed-window check-then-increment as one atomic step.
type KeyedCounterStore interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
