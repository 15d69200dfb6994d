package authenticator

import (
	"context"
	"errors"
	"hash/maphash"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/base32"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/qrcode"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
	"github.com/dmitrymomot/otpgate/pkg/session"
	"github.com/dmitrymomot/otpgate/pkg/totp"
	"github.com/dmitrymomot/otpgate/pkg/vault"
)

const (
	enrollStripes = 64

	defaultIssuer         = "otpgate"
	defaultSessionTimeout = 15 * time.Minute
)

// Enrollment is returned once when a secret is created.
type Enrollment struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// Service implements the authenticator operations. It is safe for concurrent use.
type Service struct {
	store    secretstore.Store
	vault    *vault.Vault
	sessions *session.Manager

	audit      *audit.Logger
	auditFlush func(context.Context) error
	replay     *totp.ReplayGuard
	logger     *slog.Logger
	now        func() time.Time

	// enrollMu serializes secret mutations per user.
	enrollSeed maphash.Seed
	enrollMu   [enrollStripes]sync.Mutex

	issuer         string
	sessionTimeout time.Duration
	qrSize         int

	engineOpts  []totp.Option
	vaultOpts   []vault.Option
	sessionOpts []session.Option
}

// New builds the service around store and starts the vault and session
// manager it owns.
func New(store secretstore.Store, opts ...Option) (*Service, error) {
	if store == nil {
		panic("authenticator: secret store cannot be nil")
	}

	s := &Service{
		store:          store,
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
		issuer:         defaultIssuer,
		sessionTimeout: defaultSessionTimeout,
		qrSize:         qrcode.DefaultSize,
		enrollSeed:     maphash.MakeSeed(),
	}
	for _, opt := range opts {
		opt(s)
	}

	v, err := vault.New(append([]vault.Option{
		vault.WithLogger(s.logger.With(logger.Component("vault"))),
		vault.WithClock(s.now),
	}, s.vaultOpts...)...)
	if err != nil {
		return nil, errors.Join(ErrVault, err)
	}
	s.vault = v

	sessionOpts := []session.Option{
		session.WithVault(v),
		session.WithLogger(s.logger.With(logger.Component("session"))),
		session.WithClock(s.now),
	}
	if s.audit != nil {
		sessionOpts = append(sessionOpts, session.WithAuditLogger(s.audit))
	}
	s.sessions = session.New(s, append(sessionOpts, s.sessionOpts...)...)

	return s, nil
}

// Issuer returns the default issuer name.
func (s *Service) Issuer() string { return s.issuer }

// DefaultSessionTimeout returns the timeout used by callers that do not pick one.
func (s *Service) DefaultSessionTimeout() time.Duration { return s.sessionTimeout }

// SetupSecret generates and stores a new secret for userID and returns it
// with its provisioning URI. An empty issuer falls back to the configured
// one. A user that already has a secret gets ErrSecretAlreadyExists.
func (s *Service) SetupSecret(ctx context.Context, userID, issuer string) (Enrollment, error) {
	if userID == "" {
		return Enrollment{}, ErrInvalidUserID
	}

	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.store.HasSecret(ctx, userID)
	if err != nil {
		s.systemError(ctx, "has secret", err, userID)
		return Enrollment{}, errors.Join(ErrStorage, err)
	}
	if exists {
		s.failure(ctx, audit.ActionTOTPSetup, "secret already configured", userID)
		return Enrollment{}, ErrSecretAlreadyExists
	}

	return s.enroll(ctx, userID, issuer, audit.ActionTOTPSetup)
}

// ResetSecret replaces the secret of userID, whether or not one exists.
// Existing sessions are left untouched.
func (s *Service) ResetSecret(ctx context.Context, userID, issuer string) (Enrollment, error) {
	if userID == "" {
		return Enrollment{}, ErrInvalidUserID
	}

	unlock := s.lockUser(userID)
	defer unlock()

	return s.enroll(ctx, userID, issuer, audit.ActionTOTPReset)
}

func (s *Service) lockUser(userID string) func() {
	mu := &s.enrollMu[maphash.String(s.enrollSeed, userID)%enrollStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Service) enroll(ctx context.Context, userID, issuer, action string) (Enrollment, error) {
	if issuer == "" {
		issuer = s.issuer
	}

	raw, err := totp.GenerateSecret()
	if err != nil {
		s.systemError(ctx, "generate secret", err, userID)
		return Enrollment{}, errors.Join(ErrSecretGeneration, err)
	}
	secret := base32.Encode(raw)
	clear(raw)

	uri, err := totp.ProvisioningURI(totp.ProvisioningParams{
		Secret:      secret,
		AccountName: userID,
		Issuer:      issuer,
	})
	if err != nil {
		return Enrollment{}, errors.Join(ErrProvisioning, err)
	}

	if err := s.store.StoreSecret(ctx, userID, secret); err != nil {
		s.systemError(ctx, "store secret", err, userID)
		return Enrollment{}, errors.Join(ErrStorage, err)
	}
	if s.replay != nil {
		s.replay.Forget(userID)
	}

	s.logger.InfoContext(ctx, "totp secret enrolled", logger.UserID(userID), slog.String("action", action))
	s.emit(ctx, action, audit.WithUserID(userID), audit.WithMetadata("issuer", issuer))

	return Enrollment{Secret: secret, ProvisioningURI: uri}, nil
}

// RemoveSecret deletes the secret of userID. Removing an absent secret
// returns ErrSecretNotFound.
func (s *Service) RemoveSecret(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.store.HasSecret(ctx, userID)
	if err != nil {
		s.systemError(ctx, "has secret", err, userID)
		return errors.Join(ErrStorage, err)
	}
	if !exists {
		return ErrSecretNotFound
	}

	if err := s.store.RemoveSecret(ctx, userID); err != nil {
		s.systemError(ctx, "remove secret", err, userID)
		return errors.Join(ErrStorage, err)
	}
	if s.replay != nil {
		s.replay.Forget(userID)
	}

	s.emit(ctx, audit.ActionTOTPRemoved, audit.WithUserID(userID))
	return nil
}

// HasSecret reports whether userID has a readable secret.
func (s *Service) HasSecret(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	ok, err := s.store.HasSecret(ctx, userID)
	if err != nil {
		s.systemError(ctx, "has secret", err, userID)
		return false
	}
	return ok
}

// ValidateCode reports whether code is valid for userID at the current time,
// allowing one time step of clock drift either way.
func (s *Service) ValidateCode(ctx context.Context, userID, code string) bool {
	if userID == "" {
		return false
	}

	secret, err := s.store.GetSecret(ctx, userID)
	switch {
	case errors.Is(err, secretstore.ErrNotFound):
		s.failure(ctx, audit.ActionTOTPValidation, "no secret configured", userID)
		s.violation(ctx, "validation attempted without a configured secret", userID)
		return false
	case err != nil:
		s.systemError(ctx, "get secret", err, userID)
		return false
	}

	raw := base32.Decode(secret)
	defer clear(raw)

	engine, err := totp.New(raw, s.engineOpts...)
	if err != nil {
		s.systemError(ctx, "build engine", err, userID)
		return false
	}
	defer engine.Wipe()

	counter, ok := engine.Match(code, s.now())
	if !ok {
		s.failure(ctx, audit.ActionTOTPValidation, "code mismatch", userID)
		return false
	}

	if s.replay != nil && !s.replay.Accept(userID, counter) {
		s.failure(ctx, audit.ActionTOTPValidation, "code already used", userID)
		s.violation(ctx, "one-time code replayed", userID)
		return false
	}

	s.emit(ctx, audit.ActionTOTPValidation, audit.WithUserID(userID))
	return true
}

// VerifyCode implements session.CodeVerifier.
func (s *Service) VerifyCode(ctx context.Context, userID, code string) bool {
	return s.ValidateCode(ctx, userID, code)
}

// CreateSession validates code and opens a session lasting timeout.
func (s *Service) CreateSession(ctx context.Context, userID, code string, timeout time.Duration) session.Result {
	return s.sessions.Create(ctx, userID, code, timeout)
}

// ValidateSession reports whether id names a live session and refreshes it.
func (s *Service) ValidateSession(ctx context.Context, id string) bool {
	return s.sessions.Validate(ctx, id)
}

// TerminateSession ends the session, reporting whether it existed.
func (s *Service) TerminateSession(ctx context.Context, id string) bool {
	return s.sessions.Terminate(ctx, id)
}

// ListActiveSessions returns a snapshot of live sessions.
func (s *Service) ListActiveSessions() []session.Session {
	return s.sessions.ListActive()
}

// SessionKey returns the ephemeral key bound to a live session.
func (s *Service) SessionKey(id string) ([]byte, bool) {
	return s.sessions.SessionKey(id)
}

// ProvisioningQRCode renders uri as a PNG image.
func (s *Service) ProvisioningQRCode(uri string) ([]byte, error) {
	png, err := qrcode.PNG(uri, qrcode.WithSize(s.qrSize))
	if err != nil {
		return nil, errors.Join(ErrProvisioning, err)
	}
	return png, nil
}

// ProvisioningQRDataURI renders uri as a base64 PNG data URI.
func (s *Service) ProvisioningQRDataURI(uri string) (string, error) {
	src, err := qrcode.DataURI(uri, qrcode.WithSize(s.qrSize))
	if err != nil {
		return "", errors.Join(ErrProvisioning, err)
	}
	return src, nil
}

// Close terminates every session, tears down the vault, wipes the store key
// and flushes the audit log, in that order.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if err := s.sessions.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.vault.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.auditFlush != nil {
		if err := s.auditFlush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
