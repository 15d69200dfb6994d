package main

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/otpgate/pkg/authenticator"
	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/httpserver"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/mongo"
	"github.com/dmitrymomot/otpgate/pkg/pg"
	"github.com/dmitrymomot/otpgate/pkg/ratelimiter"
	"github.com/dmitrymomot/otpgate/pkg/redis"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

// backend is an opened secret store together with the client it runs on.
type backend struct {
	store  secretstore.Store
	checks map[string]httpserver.CheckFunc
	close  func()

	// redis is set when the store runs on Redis; the rate limiter shares it.
	redis goredis.UniversalClient
}

// openBackend connects to the client required by cfg.Store.Backend and opens
// the secret store on top of it. auditLog may be nil.
func openBackend(ctx context.Context, cfg appConfig, log *slog.Logger, auditLog *audit.Logger) (*backend, error) {
	b := &backend{
		checks: map[string]httpserver.CheckFunc{},
		close:  func() {},
	}
	var conns secretstore.Connections

	switch cfg.Store.Backend {
	case secretstore.BackendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		conns.Redis = client
		b.redis = client
		b.checks["redis"] = redis.Healthcheck(client)
		b.close = func() { _ = client.Close() }

	case secretstore.BackendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, secretstore.Migrations, secretstore.MigrationsDir, cfg.Postgres, log); err != nil {
			pool.Close()
			return nil, err
		}
		conns.Postgres = pool
		b.checks["postgres"] = pg.Healthcheck(pool)
		b.close = pool.Close

	case secretstore.BackendMongo:
		db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		conns.Mongo = db
		b.checks["mongo"] = mongo.Healthcheck(db.Client())
		b.close = func() { _ = db.Client().Disconnect(context.Background()) }
	}

	opts := []secretstore.Option{
		secretstore.WithLogger(log.With(logger.Component("secretstore"))),
	}
	if auditLog != nil {
		opts = append(opts, secretstore.WithCorruptionHandler(authenticator.CorruptionAuditor(auditLog)))
	}

	store, err := secretstore.Open(ctx, cfg.Store, conns, opts...)
	if err != nil {
		b.close()
		return nil, err
	}
	b.store = store

	log.InfoContext(ctx, "secret store opened", logger.Backend(cfg.Store.Backend))
	return b, nil
}

// newLimiter builds the attempt limiter, or returns nil when it is disabled
// by a zero refill interval. Buckets live in Redis when the store does.
func newLimiter(cfg ratelimiter.Config, b *backend, log *slog.Logger) (*ratelimiter.Limiter, func(), error) {
	if cfg.RefillInterval <= 0 {
		return nil, func() {}, nil
	}

	var (
		store   ratelimiter.Store
		cleanup = func() {}
	)
	if b.redis != nil {
		store = ratelimiter.NewRedisStore(b.redis)
	} else {
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithLogger(log.With(logger.Component("ratelimiter"))))
		store, cleanup = mem, mem.Close
	}

	limiter, err := ratelimiter.New(store, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return limiter, cleanup, nil
}
