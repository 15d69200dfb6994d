package secretstore

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

// Connections carries the client for the backend selected in Config.
// Only the one matching Config.Backend needs to be set.
type Connections struct {
	Redis    redis.UniversalClient
	Postgres Querier
	Mongo    *mongo.Database
}

// Open loads or creates the master key at cfg.KeyPath and builds the backend
// named by cfg.Backend. If the key had to be generated while a file table
// already exists, the loss is reported through the corruption handler.
func Open(ctx context.Context, cfg Config, conns Connections, opts ...Option) (Store, error) {
	key, created, err := LoadOrCreateKey(cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	defer cryptobox.Wipe(key)

	if cfg.RedisKey != "" {
		opts = append(opts, WithRedisKey(cfg.RedisKey))
	}
	if cfg.Collection != "" {
		opts = append(opts, WithCollection(cfg.Collection))
	}

	switch cfg.Backend {
	case "", BackendFile:
		if created {
			if _, err := os.Stat(cfg.Path); err == nil {
				o := newOptions(opts)
				o.corrupted(ctx, backendFile, "", ErrKeyRegenerated)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, errors.Join(ErrStorage, err)
			}
		}
		return NewFileStore(cfg.Path, key, opts...)
	case BackendRedis:
		if conns.Redis == nil {
			return nil, errors.Join(ErrBackendNotWired, errors.New(cfg.Backend))
		}
		return NewRedisStore(conns.Redis, key, opts...)
	case BackendPostgres:
		if conns.Postgres == nil {
			return nil, errors.Join(ErrBackendNotWired, errors.New(cfg.Backend))
		}
		return NewPostgresStore(conns.Postgres, key, opts...)
	case BackendMongo:
		if conns.Mongo == nil {
			return nil, errors.Join(ErrBackendNotWired, errors.New(cfg.Backend))
		}
		return NewMongoStore(conns.Mongo, key, opts...)
	default:
		return nil, errors.Join(ErrUnknownBackend, errors.New(cfg.Backend))
	}
}
