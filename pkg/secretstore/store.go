package secretstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/otpgate/pkg/logger"
)

// Store is a durable mapping from user id to Base32 secret text.
// Implementations encrypt every secret at rest.
type Store interface {
	// StoreSecret inserts or replaces the secret of userID.
	StoreSecret(ctx context.Context, userID, secret string) error
	// GetSecret returns the secret of userID or ErrNotFound.
	GetSecret(ctx context.Context, userID string) (string, error)
	// HasSecret reports whether a readable secret exists for userID.
	HasSecret(ctx context.Context, userID string) (bool, error)
	// RemoveSecret deletes the secret of userID. Removing an absent secret is not an error.
	RemoveSecret(ctx context.Context, userID string) error
	// Users lists every user id with a stored secret, sorted.
	Users(ctx context.Context) ([]string, error)
	// Close wipes key material held by the store.
	Close() error
}

// CorruptionHandler is notified when stored data cannot be decrypted or
// decoded and is being treated as absent. userID is empty when the whole
// table is affected.
type CorruptionHandler func(ctx context.Context, userID string, err error)

// Option configures any Store implementation in this package.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	onCorruption CorruptionHandler
	redisKey     string
	collection   string
}

func newOptions(opts []Option) options {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		redisKey:   DefaultRedisKey,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCorruptionHandler registers fn to be called whenever data is dropped
// because it could not be decrypted.
func WithCorruptionHandler(fn CorruptionHandler) Option {
	return func(o *options) {
		o.onCorruption = fn
	}
}

// WithRedisKey sets the hash key used by RedisStore.
func WithRedisKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.redisKey = key
		}
	}
}

// WithCollection sets the collection name used by MongoStore.
func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collection = name
		}
	}
}

// corrupted logs a warning and notifies the corruption handler.
func (o options) corrupted(ctx context.Context, backend, userID string, err error) {
	attrs := []any{logger.Backend(backend), logger.Error(err)}
	if userID != "" {
		attrs = append(attrs, logger.UserID(userID))
	}
	o.logger.WarnContext(ctx, "secret store data unreadable, treating as absent", attrs...)

	if o.onCorruption != nil {
		o.onCorruption(ctx, userID, err)
	}
}

func validateUserID(userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return nil
}

// hasSecret reports true only for secrets that can actually be read, so a
// corrupted record looks absent everywhere.
func hasSecret(ctx context.Context, s Store, userID string) (bool, error) {
	_, err := s.GetSecret(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
