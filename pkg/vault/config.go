package vault

import "time"

// DefaultSweepInterval is how often expired entries are purged.
const DefaultSweepInterval = 5 * time.Minute

// Config holds environment-driven vault settings.
type Config struct {
	SweepInterval time.Duration `env:"VAULT_SWEEP_INTERVAL" envDefault:"5m"`
}

// Options converts the config into vault options.
func (c Config) Options() []Option {
	return []Option{WithSweepInterval(c.SweepInterval)}
}
