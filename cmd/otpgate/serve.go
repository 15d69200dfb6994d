package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/authenticator"
	"github.com/dmitrymomot/otpgate/pkg/httpapi"
	"github.com/dmitrymomot/otpgate/pkg/httpserver"
	"github.com/dmitrymomot/otpgate/pkg/logger"
)

const closeTimeout = 10 * time.Second

func newLogger(cfg appConfig) *slog.Logger {
	log := logger.New(append(cfg.Log.Options(),
		logger.WithContextExtractors(httpapi.LogRequestID),
	)...)
	logger.SetAsDefault(log)
	return log
}

func serve(ctx context.Context, cfg appConfig) error {
	log := newLogger(cfg)

	auditWriter, flushAudit := audit.NewAsyncWriter(
		audit.NewSlogStorage(log),
		withAuditLogger(cfg.Audit.options(), log),
	)
	auditLog := audit.NewLogger(auditWriter,
		audit.WithRequestIDExtractor(httpapi.RequestID),
		audit.WithIPExtractor(httpapi.ClientIP),
	)

	b, err := openBackend(ctx, cfg, log, auditLog)
	if err != nil {
		_ = flushAudit(context.Background())
		return err
	}
	defer b.close()

	opts := append(cfg.Authenticator.Options(),
		authenticator.WithLogger(log.With(logger.Component("authenticator"))),
		authenticator.WithAuditLogger(auditLog, flushAudit),
		authenticator.WithTOTPConfig(cfg.TOTP),
		authenticator.WithVaultOptions(cfg.Vault.Options()...),
		authenticator.WithSessionOptions(cfg.Session.Options()...),
	)
	svc, err := authenticator.New(b.store, opts...)
	if err != nil {
		_ = b.store.Close()
		_ = flushAudit(context.Background())
		return err
	}

	limiter, stopLimiter, err := newLimiter(cfg.RateLimit, b, log)
	if err != nil {
		_ = svc.Close(context.Background())
		return err
	}
	defer stopLimiter()

	routerOpts := []httpapi.Option{
		httpapi.WithLogger(log.With(logger.Component("http"))),
		httpapi.WithRateLimiter(limiter),
	}
	for name, check := range b.checks {
		routerOpts = append(routerOpts, httpapi.WithReadinessCheck(name, check))
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log.With(logger.Component("httpserver"))))
	runErr := srv.Run(ctx, httpapi.NewRouter(svc, routerOpts...))

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := svc.Close(closeCtx); err != nil {
		log.Error("shutdown incomplete", logger.Error(err))
		return errors.Join(runErr, err)
	}
	return runErr
}

func withAuditLogger(o audit.AsyncOptions, log *slog.Logger) audit.AsyncOptions {
	o.Logger = log.With(logger.Component("audit"))
	return o
}
