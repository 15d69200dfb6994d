package vault

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"github.com/dmitrymomot/otpgate/pkg/cache"
	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/periodic"
)

type entry struct {
	record    cryptobox.Record
	createdAt time.Time
	expiresAt *time.Time // nil never expires
}

func (e *entry) expired(now time.Time) bool {
	return e.expiresAt != nil && !now.Before(*e.expiresAt)
}

func (e *entry) wipe() {
	e.record.Wipe()
}

// Vault stores encrypted blobs in memory. It is safe for concurrent use.
type Vault struct {
	sweepInterval time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu      sync.RWMutex // write-held only while closing
	key     *memguard.LockedBuffer
	closed  bool
	table   *cache.Sharded[string, *entry]
	sweeper *periodic.Runner
}

// New creates a vault with a fresh process key and starts its sweeper.
func New(opts ...Option) (*Vault, error) {
	v := &Vault{
		sweepInterval: DefaultSweepInterval,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.key = memguard.NewBufferRandom(cryptobox.KeySize)
	if v.key.Size() != cryptobox.KeySize {
		v.key.Destroy()
		return nil, ErrKeyGeneration
	}
	v.key.Freeze()

	v.table = cache.NewSharded(cache.WithEvictCallback(func(_ string, e *entry) {
		e.wipe()
	}))

	v.sweeper = periodic.New("vault.sweep", v.sweepInterval, func(context.Context) {
		if n := v.Sweep(); n > 0 {
			v.logger.Debug("vault sweep removed expired entries", logger.Count(n))
		}
	}, periodic.WithLogger(v.logger))
	if err := v.sweeper.Start(context.Background()); err != nil {
		v.key.Destroy()
		return nil, err
	}

	return v, nil
}

// Put seals data and returns the id it is stored under. A non-positive ttl
// stores the entry without expiry.
func (v *Vault) Put(data []byte, ttl time.Duration) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return "", ErrClosed
	}

	rec, err := cryptobox.Seal(v.key.Bytes(), data)
	if err != nil {
		v.logger.Error("vault seal failed", logger.Error(err))
		return "", errors.Join(ErrSealFailed, err)
	}

	now := v.now()
	e := &entry{record: rec, createdAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.expiresAt = &exp
	}

	id := uuid.NewString()
	v.table.Store(id, e)
	return id, nil
}

// Get returns the plaintext stored under id. Absent and expired entries yield
// false; an expired entry is removed and zeroed on the way.
func (v *Vault) Get(id string) ([]byte, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, false
	}

	var (
		plain []byte
		found bool
	)
	now := v.now()
	v.table.Compute(id, func(e *entry, loaded bool) (*entry, bool) {
		if !loaded {
			return nil, false
		}
		if e.expired(now) {
			e.wipe()
			return nil, false
		}
		p, err := cryptobox.Open(v.key.Bytes(), e.record)
		if err != nil {
			// Unreadable entries are useless; drop them.
			v.logger.Error("vault open failed", slog.String("id", id), logger.Error(err))
			e.wipe()
			return nil, false
		}
		plain, found = p, true
		return e, true
	})

	if found && plain == nil {
		plain = []byte{}
	}
	return plain, found
}

// Delete removes id, zeroing its ciphertext, and reports whether it existed.
func (v *Vault) Delete(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return false
	}
	return v.table.Delete(id)
}

// Sweep removes every expired entry and returns how many were removed.
func (v *Vault) Sweep() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return 0
	}

	now := v.now()
	return v.table.DeleteFunc(func(_ string, e *entry) bool {
		return e.expired(now)
	})
}

// Len returns the number of stored entries, expired or not.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return 0
	}
	return v.table.Len()
}

// Close stops the sweeper, zeroes every ciphertext, destroys the key and
// empties the table. It is safe to call more than once.
func (v *Vault) Close() error {
	// Stop before taking the lock: a running sweep holds a read lock.
	v.sweeper.Stop()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true

	n := v.table.Len()
	v.table.Clear()
	v.key.Destroy()

	v.logger.Debug("vault closed", slog.Int("wiped_entries", n))
	return nil
}
