package vault

import (
	"log/slog"
	"time"
)

// Option configures a Vault.
type Option func(*Vault)

// WithSweepInterval sets the background sweep cadence. Zero keeps the
// default; a negative value disables the sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(v *Vault) {
		if d != 0 {
			v.sweepInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}
