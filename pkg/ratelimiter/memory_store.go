package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/cache"
	"github.com/dmitrymomot/otpgate/pkg/periodic"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultStaleAfter      = time.Hour
)

// bucket represents a token bucket state.
type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time // Used by cleanup to identify stale buckets
}

// MemoryStore implements Store on a sharded in-process map.
type MemoryStore struct {
	buckets *cache.Sharded[string, bucket]
	now     func() time.Time

	cleanupInterval time.Duration
	staleAfter      time.Duration
	logger          *slog.Logger
	cleaner         *periodic.Runner
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle buckets are removed.
// A non-positive interval disables background cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithStaleAfter sets how long a bucket may stay untouched before cleanup drops it.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if d > 0 {
			ms.staleAfter = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// WithLogger sets the logger used by the cleanup loop.
func WithLogger(l *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if l != nil {
			ms.logger = l
		}
	}
}

// NewMemoryStore creates a new in-memory store and starts its cleanup loop.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         cache.NewSharded[string, bucket](),
		now:             time.Now,
		cleanupInterval: defaultCleanupInterval,
		staleAfter:      defaultStaleAfter,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(ms)
	}

	ms.cleaner = periodic.New("ratelimiter.cleanup", ms.cleanupInterval, func(context.Context) {
		ms.RemoveStale()
	}, periodic.WithLogger(ms.logger))
	_ = ms.cleaner.Start(context.Background())

	return ms
}

// ConsumeTokens implements Store.
func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	now := ms.now()
	var remaining int

	b, _ := ms.buckets.Compute(key, func(b bucket, loaded bool) (bucket, bool) {
		if !loaded {
			b = bucket{tokens: config.Capacity, lastRefill: now}
		}
		b.tokens, b.lastRefill = config.refill(b.tokens, b.lastRefill, now)
		b.lastAccess = now

		remaining = b.tokens - tokens
		if remaining >= 0 {
			b.tokens = remaining
		}
		return b, true
	})

	return remaining, b.lastRefill.Add(config.RefillInterval), nil
}

// Reset implements Store.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.buckets.Delete(key)
	return nil
}

// RemoveStale drops buckets that have not been touched recently and
// returns how many were removed.
func (ms *MemoryStore) RemoveStale() int {
	cutoff := ms.now().Add(-ms.staleAfter)
	return ms.buckets.DeleteFunc(func(_ string, b bucket) bool {
		return b.lastAccess.Before(cutoff)
	})
}

// Len returns the number of tracked buckets.
func (ms *MemoryStore) Len() int {
	return ms.buckets.Len()
}

// Close stops the cleanup loop. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.cleaner.Stop()
}
