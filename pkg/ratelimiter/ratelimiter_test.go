package ratelimiter_test

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

	"github.com/dmitrymomot/otpgate/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testConfig = ratelimiter.Config{
	Capacity:       3,
	RefillRate:     1,
	RefillInterval: 30 * time.Second,
}

// stores returns every Store implementation driven by clock.
func stores(t *testing.T, clock *fakeClock) map[string]ratelimiter.Store {
	t.Helper()

	mem := ratelimiter.NewMemoryStore(
		ratelimiter.WithClock(clock.Now),
		ratelimiter.WithCleanupInterval(0),
	)
	t.Cleanup(mem.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]ratelimiter.Store{
		"memory": mem,
		"redis":  ratelimiter.NewRedisStore(client, ratelimiter.WithRedisClock(clock.Now)),
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	defer store.Close()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}},
		{"zero rate", ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.New(store, tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}

	_, err := ratelimiter.New(nil, testConfig)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, name := range []string{"memory", "redis"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			clock := newFakeClock()
			store := stores(t, clock)[name]

			b, err := ratelimiter.New(store, testConfig)
			require.NoError(t, err)

			t.Run("burst up to capacity", func(t *testing.T) {
				for i := range testConfig.Capacity {
					res, err := b.Allow(ctx, "burst")
					require.NoError(t, err)
					assert.True(t, res.Allowed())
					assert.Equal(t, testConfig.Capacity-1-i, res.Remaining)
					assert.Equal(t, testConfig.Capacity, res.Limit)
				}

				res, err := b.Allow(ctx, "burst")
				require.NoError(t, err)
				assert.False(t, res.Allowed())
			})

			t.Run("denied attempts do not drain the bucket", func(t *testing.T) {
				for range 10 {
					res, err := b.Allow(ctx, "burst")
					require.NoError(t, err)
					assert.False(t, res.Allowed())
				}

				clock.Advance(testConfig.RefillInterval)
				res, err := b.Allow(ctx, "burst")
				require.NoError(t, err)
				assert.True(t, res.Allowed())
				assert.Equal(t, 0, res.Remaining)
			})

			t.Run("refill is capped at capacity", func(t *testing.T) {
				clock.Advance(24 * time.Hour)
				res, err := b.Peek(ctx, "burst")
				require.NoError(t, err)
				assert.Equal(t, testConfig.Capacity, res.Remaining)
			})

			t.Run("keys are independent", func(t *testing.T) {
				res, err := b.AllowN(ctx, "a", testConfig.Capacity)
				require.NoError(t, err)
				assert.True(t, res.Allowed())

				res, err = b.Allow(ctx, "b")
				require.NoError(t, err)
				assert.True(t, res.Allowed())
			})

			t.Run("reset restores the bucket", func(t *testing.T) {
				_, err := b.AllowN(ctx, "r", testConfig.Capacity)
				require.NoError(t, err)
				require.NoError(t, b.Reset(ctx, "r"))

				res, err := b.Peek(ctx, "r")
				require.NoError(t, err)
				assert.Equal(t, testConfig.Capacity, res.Remaining)
			})

			t.Run("reset time follows the last refill", func(t *testing.T) {
				res, err := b.Allow(ctx, "reset-at")
				require.NoError(t, err)
				assert.True(t, res.ResetAt.Equal(clock.Now().Add(testConfig.RefillInterval)))
			})
		})
	}
}

func TestLimiter_InvalidTokenCount(t *testing.T) {
	t.Parallel()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	defer store.Close()
	b, err := ratelimiter.New(store, testConfig)
	require.NoError(t, err)

	_, err = b.AllowN(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	defer store.Close()

	cfg := ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour}
	b, err := ratelimiter.New(store, cfg)
	require.NoError(t, err)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := b.Allow(context.Background(), "shared")
			if err == nil && res.Allowed() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(cfg.Capacity), allowed.Load())
}

func TestMemoryStore_RemoveStale(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithClock(clock.Now),
		ratelimiter.WithCleanupInterval(0),
		ratelimiter.WithStaleAfter(time.Minute),
	)
	defer store.Close()

	ctx := context.Background()
	_, _, err := store.ConsumeTokens(ctx, "old", 1, testConfig)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, _, err = store.ConsumeTokens(ctx, "fresh", 1, testConfig)
	require.NoError(t, err)

	assert.Equal(t, 1, store.RemoveStale())
	assert.Equal(t, 1, store.Len())
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	b, err := ratelimiter.New(ratelimiter.NewRedisStore(client), testConfig)
	require.NoError(t, err)

	_, err = b.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
}

func TestRedisStore_KeyExpires(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("test:"))
	_, _, err := store.ConsumeTokens(context.Background(), "k", 1, testConfig)
	require.NoError(t, err)

	require.True(t, mr.Exists("test:k"))
	assert.Equal(t, 4*testConfig.RefillInterval, mr.TTL("test:k"))
}
