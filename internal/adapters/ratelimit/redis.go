package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"projectgateway/internal/domain"
)

// fixedWindowScript runs the fixed-window step atomically. A missing or expired key starts a new
// window of ARGV[2] milliseconds; INCR keeps the key's TTL so reset_at stays fixed for the window.
// Returns {allowed, pttl_ms, count}.
var fixedWindowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  count = 0
  redis.call('SET', KEYS[1], 0, 'PX', window)
  ttl = window
end
if count >= limit then
  return {0, ttl, count}
end
count = redis.call('INCR', KEYS[1])
return {1, ttl, count}
`)

// RedisStore shares buckets across instances through Redis.
type RedisStore struct {
	client    redis.Scripter
	keyPrefix string
}

// NewRedisStore returns a RedisStore. keyPrefix is prepended to every bucket key.
func NewRedisStore(client redis.Scripter, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// Take implements domain.KeyedCounterStore.
func (s *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	res, err := fixedWindowScript.Run(ctx, s.client, []string{s.keyPrefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}
	if res[0] == 0 {
		return domain.RateLimitDecision{
			Allowed:           false,
			RetryAfterSeconds: retryAfterSeconds(time.Duration(res[1]) * time.Millisecond),
		}, nil
	}
	return domain.RateLimitDecision{Allowed: true, Remaining: limit - int(res[2])}, nil
}
