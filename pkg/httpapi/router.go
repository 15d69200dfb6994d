package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/otpgate/pkg/authenticator"
	"github.com/dmitrymomot/otpgate/pkg/httpserver"
	"github.com/dmitrymomot/otpgate/pkg/ratelimiter"
	"github.com/dmitrymomot/otpgate/pkg/session"
)

// Authenticator is the subset of *authenticator.Service served over HTTP.
type Authenticator interface {
	SetupSecret(ctx context.Context, userID, issuer string) (authenticator.Enrollment, error)
	ResetSecret(ctx context.Context, userID, issuer string) (authenticator.Enrollment, error)
	RemoveSecret(ctx context.Context, userID string) error
	HasSecret(ctx context.Context, userID string) bool
	ValidateCode(ctx context.Context, userID, code string) bool
	CreateSession(ctx context.Context, userID, code string, timeout time.Duration) session.Result
	ValidateSession(ctx context.Context, id string) bool
	TerminateSession(ctx context.Context, id string) bool
	ListActiveSessions() []session.Session
	ProvisioningQRDataURI(uri string) (string, error)
	DefaultSessionTimeout() time.Duration
}

const defaultMaxBodyBytes = 16 << 10

type options struct {
	logger       *slog.Logger
	checks       map[string]httpserver.CheckFunc
	maxBodyBytes int64
	timeout      time.Duration
	limiter      *ratelimiter.Limiter
}

// Option configures the router.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReadinessCheck adds a named dependency check served on /readyz.
func WithReadinessCheck(name string, fn httpserver.CheckFunc) Option {
	return func(o *options) {
		if name != "" && fn != nil {
			o.checks[name] = fn
		}
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithRateLimiter throttles code submissions: POST /totp/{userID}/verify per
// client and user, POST /sessions per client.
func WithRateLimiter(b *ratelimiter.Limiter) Option {
	return func(o *options) {
		o.limiter = b
	}
}

// WithRequestTimeout bounds the handling time of each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

type api struct {
	svc          Authenticator
	logger       *slog.Logger
	maxBodyBytes int64
	limiter      *ratelimiter.Limiter
}

// NewRouter returns the HTTP handler serving svc.
func NewRouter(svc Authenticator, opts ...Option) chi.Router {
	o := options{
		logger:       slog.New(slog.DiscardHandler),
		checks:       map[string]httpserver.CheckFunc{},
		maxBodyBytes: defaultMaxBodyBytes,
		timeout:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	a := &api{svc: svc, logger: o.logger, maxBodyBytes: o.maxBodyBytes, limiter: o.limiter}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(o.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(o.timeout))

	r.Get("/healthz", httpserver.HealthCheckHandler(o.logger, nil))
	if len(o.checks) > 0 {
		r.Get("/readyz", httpserver.HealthCheckHandler(o.logger, o.checks))
	}

	r.Route("/totp/{userID}", func(r chi.Router) {
		r.Get("/", a.hasSecret)
		r.Delete("/", a.removeSecret)
		r.Post("/setup", a.setupSecret)
		r.Post("/reset", a.resetSecret)
		r.With(a.throttle("verify", clientKey, userKey)).Post("/verify", a.verifyCode)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", a.listSessions)
		r.With(a.throttle("session", clientKey)).Post("/", a.createSession)
		r.Get("/{sessionID}", a.validateSession)
		r.Delete("/{sessionID}", a.terminateSession)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}
