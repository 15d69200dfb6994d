package session

import (
	"cmp"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/cache"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/periodic"
)

const (
	idSize  = 32 // 256-bit session ids
	keySize = 32 // ephemeral session key

	maxIDAttempts = 3
)

// Manager owns the table of live sessions. It is safe for concurrent use.
type Manager struct {
	verifier        CodeVerifier
	vault           KeyVault
	audit           *audit.Logger
	logger          *slog.Logger
	cleanupInterval time.Duration
	now             func() time.Time

	mu      sync.RWMutex // write-held only while closing
	closed  bool
	table   *cache.Sharded[string, *Session]
	sweeper *periodic.Runner
}

// New creates a Manager that opens sessions for codes accepted by verifier
// and starts the background sweep.
func New(verifier CodeVerifier, opts ...Option) *Manager {
	if verifier == nil {
		panic("session: code verifier cannot be nil")
	}

	m := &Manager{
		verifier:        verifier,
		logger:          slog.New(slog.DiscardHandler),
		cleanupInterval: DefaultCleanupInterval,
		now:             time.Now,
		table:           cache.NewSharded[string, *Session](),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.sweeper = periodic.New("session.sweep", m.cleanupInterval, func(ctx context.Context) {
		if n := m.SweepExpired(ctx); n > 0 {
			m.logger.Debug("session sweep removed expired sessions", logger.Count(n))
		}
	}, periodic.WithLogger(m.logger))
	// A fresh runner only fails to start after Stop.
	_ = m.sweeper.Start(context.Background())

	return m
}

// Create verifies code for userID and, on success, opens a session that
// expires timeout from now. A failed verification creates nothing.
func (m *Manager) Create(ctx context.Context, userID, code string, timeout time.Duration) Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return failure(MessageUnavailable)
	}
	if userID == "" {
		return failure(MessageInvalidRequest)
	}
	if !m.verifier.VerifyCode(ctx, userID, code) {
		return failure(MessageInvalidCode)
	}

	timeout = max(timeout, 0)
	now := m.now()
	s := &Session{
		UserID:         userID,
		StartedAt:      now,
		ExpiresAt:      now.Add(timeout),
		LastActivityAt: now,
	}

	if m.vault != nil {
		vaultID, err := m.storeKey(timeout)
		if err != nil {
			m.systemError(ctx, "create session key", err, audit.WithUserID(userID))
			return failure(MessageUnavailable)
		}
		s.VaultID = vaultID
	}

	if err := m.insert(s); err != nil {
		if s.VaultID != "" {
			m.vault.Delete(s.VaultID)
		}
		m.systemError(ctx, "create session id", err, audit.WithUserID(userID))
		return failure(MessageUnavailable)
	}

	m.logger.InfoContext(ctx, "session created",
		logger.UserID(userID),
		slog.Time("expires_at", s.ExpiresAt),
	)
	m.emit(ctx, audit.ActionSessionCreated,
		audit.WithUserID(userID),
		audit.WithSessionID(s.ID),
		audit.WithMetadata("timeout", timeout.String()),
	)

	return Result{OK: true, SessionID: s.ID, ExpiresAt: s.ExpiresAt}
}

// insert assigns a fresh id to s and stores it, retrying on the
// astronomically unlikely collision.
func (m *Manager) insert(s *Session) error {
	for range maxIDAttempts {
		id, err := newID()
		if err != nil {
			return err
		}
		s.ID = id
		if _, loaded := m.table.LoadOrStore(id, s); !loaded {
			return nil
		}
	}
	return ErrTokenGeneration
}

func (m *Manager) storeKey(ttl time.Duration) (string, error) {
	key := make([]byte, keySize)
	defer clear(key)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	// A zero ttl would mean "never expires" to the vault.
	id, err := m.vault.Put(key, max(ttl, time.Nanosecond))
	if err != nil {
		return "", errors.Join(ErrKeyStorage, err)
	}
	return id, nil
}

// Validate reports whether id names a live session and refreshes its last
// activity. An expired session is terminated and reported as not live.
func (m *Manager) Validate(ctx context.Context, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed || id == "" {
		return false
	}

	var (
		expired *Session
		live    bool
		userID  string
	)
	now := m.now()
	m.table.Compute(id, func(s *Session, loaded bool) (*Session, bool) {
		if !loaded {
			return nil, false
		}
		if s.ExpiredAt(now) {
			expired = s
			return nil, false
		}
		s.LastActivityAt = now
		live, userID = true, s.UserID
		return s, true
	})

	switch {
	case expired != nil:
		m.release(ctx, expired, audit.ActionSessionExpired)
		return false
	case live:
		m.emit(ctx, audit.ActionSessionValidated,
			audit.WithUserID(userID),
			audit.WithSessionID(id),
		)
		return true
	default:
		return false
	}
}

// Terminate removes the session and its ephemeral key, reporting whether it existed.
func (m *Manager) Terminate(ctx context.Context, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed || id == "" {
		return false
	}

	s, ok := m.table.LoadAndDelete(id)
	if !ok {
		return false
	}
	m.release(ctx, s, audit.ActionSessionTerminated)
	return true
}

// SessionKey returns the ephemeral key of a live session.
func (m *Manager) SessionKey(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed || m.vault == nil {
		return nil, false
	}

	s, ok := m.table.Load(id)
	if !ok || s.VaultID == "" {
		return nil, false
	}
	// Only fields immutable after insert are read outside the shard lock.
	if !m.now().Before(s.ExpiresAt) {
		return nil, false
	}
	return m.vault.Get(s.VaultID)
}

// ListActive returns a snapshot of the sessions that are not expired,
// ordered by start time.
func (m *Manager) ListActive() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}

	now := m.now()
	out := make([]Session, 0, m.table.Len())
	m.table.Range(func(_ string, s *Session) bool {
		if !s.ExpiredAt(now) {
			out = append(out, *s)
		}
		return true
	})

	slices.SortFunc(out, func(a, b Session) int {
		return cmp.Or(a.StartedAt.Compare(b.StartedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// SweepExpired terminates every session past its expiry and returns how many
// were removed.
func (m *Manager) SweepExpired(ctx context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}

	now := m.now()
	var removed []*Session
	m.table.DeleteFunc(func(_ string, s *Session) bool {
		if s.ExpiredAt(now) {
			removed = append(removed, s)
			return true
		}
		return false
	})

	for _, s := range removed {
		m.release(ctx, s, audit.ActionSessionExpired)
	}
	return len(removed)
}

// Len returns the number of sessions in the table, expired or not.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}
	return m.table.Len()
}

// Close stops the sweeper and terminates every remaining session.
// It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	// Stop before taking the lock: a running sweep holds a read lock.
	m.sweeper.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var all []*Session
	m.table.DeleteFunc(func(_ string, s *Session) bool {
		all = append(all, s)
		return true
	})
	for _, s := range all {
		m.release(ctx, s, audit.ActionSessionTerminated, audit.WithMetadata("reason", "shutdown"))
	}

	m.logger.DebugContext(ctx, "session manager closed", slog.Int("terminated", len(all)))
	return nil
}

// release drops the session's ephemeral key and records why it ended.
func (m *Manager) release(ctx context.Context, s *Session, action string, opts ...audit.EventOption) {
	if s.VaultID != "" && m.vault != nil {
		m.vault.Delete(s.VaultID)
	}
	m.emit(ctx, action, append([]audit.EventOption{
		audit.WithUserID(s.UserID),
		audit.WithSessionID(s.ID),
	}, opts...)...)
}

func (m *Manager) emit(ctx context.Context, action string, opts ...audit.EventOption) {
	if m.audit == nil {
		return
	}
	if err := m.audit.Log(ctx, action, opts...); err != nil {
		m.logger.WarnContext(ctx, "audit event dropped",
			slog.String("action", action),
			logger.Error(err),
		)
	}
}

func (m *Manager) systemError(ctx context.Context, op string, err error, opts ...audit.EventOption) {
	m.logger.ErrorContext(ctx, "session operation failed",
		slog.String("op", op),
		logger.Error(err),
	)
	if m.audit != nil {
		_ = m.audit.LogError(ctx, audit.ActionSystemError, err,
			append(opts, audit.WithMetadata("op", op))...)
	}
}

func newID() (string, error) {
	b := make([]byte, idSize)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
