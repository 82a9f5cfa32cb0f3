package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "rl:"), mr
}

func TestRedisStore_FixedWindow(t *testing.T) {
	store, mr := newRedisStore(t)
	limiter := New(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Check(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := limiter.Check(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 60, d.RetryAfterSeconds)
	assert.True(t, mr.Exists("rl:k"))

	mr.FastForward(61 * time.Second)

	d, err = limiter.Check(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestRedisStore_ConcurrentCallers(t *testing.T) {
	store, _ := newRedisStore(t)
	limiter := New(store)
	ctx := context.Background()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Check(ctx, "burst", 10, time.Minute)
			if err == nil && d.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), admitted.Load())
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Take(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
