package authenticator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/session"
	"github.com/dmitrymomot/otpgate/pkg/totp"
	"github.com/dmitrymomot/otpgate/pkg/vault"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger shared with the vault and the session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditLogger sets the audit logger. flush, when not nil, is called last
// during Close to drain buffered events.
func WithAuditLogger(l *audit.Logger, flush func(context.Context) error) Option {
	return func(s *Service) {
		s.audit = l
		s.auditFlush = flush
	}
}

// WithIssuer sets the issuer used when SetupSecret receives none.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithDefaultSessionTimeout sets the timeout reported by DefaultSessionTimeout.
func WithDefaultSessionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTimeout = d
		}
	}
}

// WithQRSize sets the provisioning QR image size in pixels.
func WithQRSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrSize = px
		}
	}
}

// WithTOTPConfig applies engine parameters and the replay guard setting.
func WithTOTPConfig(cfg totp.Config) Option {
	return func(s *Service) {
		s.engineOpts = cfg.Options()
		if cfg.ReplayGuard {
			s.replay = totp.NewReplayGuard()
		} else {
			s.replay = nil
		}
	}
}

// WithReplayGuard rejects a code whose time step is not newer than the last
// one accepted for the same user.
func WithReplayGuard() Option {
	return func(s *Service) {
		s.replay = totp.NewReplayGuard()
	}
}

// WithVaultOptions passes options to the ephemeral vault.
func WithVaultOptions(opts ...vault.Option) Option {
	return func(s *Service) {
		s.vaultOpts = append(s.vaultOpts, opts...)
	}
}

// WithSessionOptions passes options to the session manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithClock overrides the time source of the service, the vault and the
// session manager.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
