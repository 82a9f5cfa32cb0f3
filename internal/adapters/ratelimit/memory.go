package ratelimit

import (
	"context"
	"sync"
	"time"

	"projectgateway/internal/domain"
)

// MemoryStore keeps buckets in a process-local map. Limits are enforced per process instance.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*domain.RateLimitBucket
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock returns an empty MemoryStore using now as its clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*domain.RateLimitBucket), now: now}
}

// Take implements domain.KeyedCounterStore.
func (s *MemoryStore) Take(_ context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || now.After(b.ResetAt) {
		b = &domain.RateLimitBucket{Key: key, Count: 0, ResetAt: now.Add(window)}
		s.buckets[key] = b
	}
	if b.Count >= limit {
		return domain.RateLimitDecision{
			Allowed:           false,
			RetryAfterSeconds: retryAfterSeconds(b.ResetAt.Sub(now)),
		}, nil
	}
	b.Count++
	return domain.RateLimitDecision{Allowed: true, Remaining: limit - b.Count}, nil
}

// Bucket returns a copy of the bucket for key, if any.
func (s *MemoryStore) Bucket(key string) (domain.RateLimitBucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		return domain.RateLimitBucket{}, false
	}
	return *b, true
}

// Prune drops buckets whose window has ended. It bounds memory for long-running processes.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, b := range s.buckets {
		if now.After(b.ResetAt) {
			delete(s.buckets, k)
			n++
		}
	}
	return n
}

// RunPruner calls Prune every interval until ctx is done.
func (s *MemoryStore) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}
