package secretstore

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

const (
	backendRedis = "redis"

	// DefaultRedisKey is the hash holding one sealed record per user.
	DefaultRedisKey = "otpgate:totp_secrets"
)

// RedisStore keeps every secret as a separate sealed field of one Redis hash.
type RedisStore struct {
	client redis.UniversalClient
	sealer sealer
	opts   options
}

// NewRedisStore creates a store on client sealed under a subkey of masterKey.
// The client stays owned by the caller.
func NewRedisStore(client redis.UniversalClient, masterKey []byte, opts ...Option) (*RedisStore, error) {
	if client == nil {
		return nil, ErrBackendNotWired
	}
	s, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, sealer: s, opts: newOptions(opts)}, nil
}

func (r *RedisStore) StoreSecret(ctx context.Context, userID, secret string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if secret == "" {
		return ErrInvalidSecret
	}

	rec, err := r.sealer.seal([]byte(secret))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := r.client.HSet(ctx, r.opts.redisKey, userID, rec.Marshal()).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (r *RedisStore) GetSecret(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	blob, err := r.client.HGet(ctx, r.opts.redisKey, userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrStorage, err)
	}

	rec, err := cryptobox.Parse(blob)
	if err != nil {
		r.opts.corrupted(ctx, backendRedis, userID, errors.Join(ErrCorrupted, err))
		return "", ErrNotFound
	}
	plain, err := r.sealer.open(rec)
	if err != nil {
		r.opts.corrupted(ctx, backendRedis, userID, errors.Join(ErrCorrupted, err))
		return "", ErrNotFound
	}
	return string(plain), nil
}

func (r *RedisStore) HasSecret(ctx context.Context, userID string) (bool, error) {
	return hasSecret(ctx, r, userID)
}

func (r *RedisStore) RemoveSecret(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := r.client.HDel(ctx, r.opts.redisKey, userID).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (r *RedisStore) Users(ctx context.Context) ([]string, error) {
	users, err := r.client.HKeys(ctx, r.opts.redisKey).Result()
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	slices.Sort(users)
	return users, nil
}

// Close wipes the store subkey. The Redis client is left open.
func (r *RedisStore) Close() error {
	r.sealer.wipe()
	return nil
}
