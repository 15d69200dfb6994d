package ratelimiter

import (
	"context"
	"errors"
	"fmt"
)

// Limiter applies one token bucket configuration to any number of keys.
type Limiter struct {
	store Store
	cfg   Config
}

// New creates a Limiter over store.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("store is nil"))
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Join(err, fmt.Errorf("capacity=%d refill_rate=%d refill_interval=%s",
			cfg.Capacity, cfg.RefillRate, cfg.RefillInterval))
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Config returns the bucket configuration.
func (l *Limiter) Config() Config { return l.cfg }

// Allow spends one token of key.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN spends n tokens of key, or none when fewer than n are left.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, errors.Join(ErrInvalidTokenCount, fmt.Errorf("got %d", n))
	}
	return l.take(ctx, key, n)
}

// Peek reports the state of key without spending tokens.
func (l *Limiter) Peek(ctx context.Context, key string) (*Result, error) {
	return l.take(ctx, key, 0)
}

// Reset forgets key, giving it a full bucket.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

func (l *Limiter) take(ctx context.Context, key string, n int) (*Result, error) {
	remaining, resetAt, err := l.store.ConsumeTokens(ctx, key, n, l.cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: l.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}
