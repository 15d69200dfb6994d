package session

import "time"

// DefaultCleanupInterval is how often expired sessions are swept.
const DefaultCleanupInterval = time.Minute

// Config holds session configuration
type Config struct {
	// CleanupInterval for expired sessions (negative to disable)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Options converts the config into manager options.
func (c Config) Options() []Option {
	return []Option{WithCleanupInterval(c.CleanupInterval)}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, verifier CodeVerifier, opts ...Option) *Manager {
	return New(verifier, append(cfg.Options(), opts...)...)
}
