package authenticator

import "time"

// Config holds facade settings loaded from the environment.
type Config struct {
	Issuer         string        `env:"OTPGATE_ISSUER" envDefault:"otpgate"`
	SessionTimeout time.Duration `env:"OTPGATE_SESSION_TIMEOUT" envDefault:"15m"` // used when a caller gives none
	QRSize         int           `env:"OTPGATE_QR_SIZE" envDefault:"256"`
}

// Options converts the config into service options.
func (c Config) Options() []Option {
	return []Option{
		WithIssuer(c.Issuer),
		WithDefaultSessionTimeout(c.SessionTimeout),
		WithQRSize(c.QRSize),
	}
}
