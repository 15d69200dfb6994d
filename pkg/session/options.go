package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/audit"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithVault stores a random ephemeral key for every session in v.
func WithVault(v KeyVault) Option {
	return func(m *Manager) {
		m.vault = v
	}
}

// WithAuditLogger emits session lifecycle events to l.
func WithAuditLogger(l *audit.Logger) Option {
	return func(m *Manager) {
		m.audit = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCleanupInterval sets the sweep cadence for expired sessions.
// Zero keeps the default; a negative value disables the background sweep.
func WithCleanupInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval != 0 {
			m.cleanupInterval = interval
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
