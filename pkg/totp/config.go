package totp

import "time"

// Config holds engine parameters loaded from the environment.
type Config struct {
	Step        time.Duration `env:"TOTP_STEP" envDefault:"30s"`
	Digits      int           `env:"TOTP_DIGITS" envDefault:"6"`
	ReplayGuard bool          `env:"TOTP_REPLAY_GUARD" envDefault:"false"` // Reject codes at or below the last accepted step
}

// DefaultConfig returns RFC 6238 defaults.
func DefaultConfig() Config {
	return Config{
		Step:   DefaultStep,
		Digits: DefaultDigits,
	}
}

// Options converts the config into engine options.
func (c Config) Options() []Option {
	return []Option{WithStep(c.Step), WithDigits(c.Digits)}
}
