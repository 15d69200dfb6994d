package main

import (
	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/authenticator"
	"github.com/dmitrymomot/otpgate/pkg/httpserver"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/mongo"
	"github.com/dmitrymomot/otpgate/pkg/pg"
	"github.com/dmitrymomot/otpgate/pkg/ratelimiter"
	"github.com/dmitrymomot/otpgate/pkg/redis"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
	"github.com/dmitrymomot/otpgate/pkg/session"
	"github.com/dmitrymomot/otpgate/pkg/totp"
	"github.com/dmitrymomot/otpgate/pkg/vault"
)

// appConfig aggregates every component's environment configuration.
type appConfig struct {
	Log           logger.Config
	HTTP          httpserver.Config
	Store         secretstore.Config
	TOTP          totp.Config
	Vault         vault.Config
	Session       session.Config
	Authenticator authenticator.Config
	Audit         auditConfig
	RateLimit     ratelimiter.Config

	Redis    redis.Config
	Postgres pg.Config
	Mongo    mongo.Config
}

type auditConfig struct {
	BufferSize int `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	BatchSize  int `env:"AUDIT_BATCH_SIZE" envDefault:"64"`
}

func (c auditConfig) options() audit.AsyncOptions {
	return audit.AsyncOptions{
		BufferSize: c.BufferSize,
		BatchSize:  c.BatchSize,
	}
}
