package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultDigits = 6                // Standard 6-digit codes
	DefaultStep   = 30 * time.Second // RFC 6238 time step
	SecretSize    = 20               // 160-bit secret (RFC 4226 recommendation)

	maxDigits = 10
)

// Option configures an Engine.
type Option func(*Engine)

// WithStep sets the time-step size. Values below one second are ignored.
func WithStep(step time.Duration) Option {
	return func(e *Engine) {
		if step >= time.Second {
			e.step = step
		}
	}
}

// WithDigits sets the number of digits in generated codes. Zero keeps the default.
func WithDigits(digits int) Option {
	return func(e *Engine) {
		if digits != 0 {
			e.digits = digits
		}
	}
}

// Engine computes and validates RFC 6238 codes for a single shared secret.
// It is safe for concurrent use.
type Engine struct {
	secret []byte
	step   time.Duration
	digits int
	mod    uint64
}

// New creates an Engine bound to secret. The secret is copied; call Wipe when
// the engine is no longer needed to clear the copy.
func New(secret []byte, opts ...Option) (*Engine, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	e := &Engine{
		secret: append([]byte(nil), secret...),
		step:   DefaultStep,
		digits: DefaultDigits,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.digits < 1 || e.digits > maxDigits {
		return nil, errors.Join(ErrInvalidDigits, fmt.Errorf("got %d", e.digits))
	}
	e.mod = pow10(e.digits)

	return e, nil
}

// Step returns the configured time-step size.
func (e *Engine) Step() time.Duration { return e.step }

// Digits returns the configured code length.
func (e *Engine) Digits() int { return e.digits }

// Counter returns the number of whole time steps elapsed since the Unix epoch at t.
// Times before the epoch map to counter 0.
func (e *Engine) Counter(t time.Time) uint64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec) / uint64(e.step/time.Second)
}

// Code computes the HOTP value (RFC 4226) for counter, zero-padded to the configured digits.
func (e *Engine) Code(counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, e.secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 4-byte window.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", e.digits, uint64(value)%e.mod)
}

// CurrentCode returns the code for the step containing t. A zero t means now.
func (e *Engine) CurrentCode(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return e.Code(e.Counter(t))
}

// Validate reports whether code matches the step before, at, or after now.
// A zero now means the current time.
func (e *Engine) Validate(code string, now time.Time) bool {
	_, ok := e.Match(code, now)
	return ok
}

// Match works like Validate and also returns the counter the code matched.
func (e *Engine) Match(code string, now time.Time) (uint64, bool) {
	if len(code) != e.digits {
		return 0, false
	}
	if now.IsZero() {
		now = time.Now()
	}

	current := e.Counter(now)
	matched, ok := uint64(0), false
	// All three windows are always computed so timing does not reveal which one matched.
	for _, counter := range []uint64{current - 1, current, current + 1} {
		if current == 0 && counter > current+1 {
			continue // underflow below the epoch
		}
		if subtle.ConstantTimeCompare([]byte(e.Code(counter)), []byte(code)) == 1 && !ok {
			matched, ok = counter, true
		}
	}

	return matched, ok
}

// Wipe overwrites the engine's copy of the secret with zeros.
// The engine must not be used afterwards.
func (e *Engine) Wipe() {
	if e == nil {
		return
	}
	clear(e.secret)
}

// Validate checks code against secret with default parameters at now.
// An empty secret never validates.
func Validate(secret []byte, code string, now time.Time) bool {
	e, err := New(secret)
	if err != nil {
		return false
	}
	defer e.Wipe()
	return e.Validate(code, now)
}

// GenerateSecret returns a new random 160-bit shared secret.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return secret, nil
}

func pow10(n int) uint64 {
	result := uint64(1)
	for range n {
		result *= 10
	}
	return result
}
