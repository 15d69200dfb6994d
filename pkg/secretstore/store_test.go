package secretstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

func newMasterKey(t *testing.T) []byte {
	t.Helper()
	key, err := cryptobox.GenerateKey()
	require.NoError(t, err)
	return key
}

// testStoreContract exercises the behaviour every backend must share.
// The store must start empty.
func testStoreContract(t *testing.T, s secretstore.Store) {
	ctx := context.Background()

	t.Run("absent secret", func(t *testing.T) {
		_, err := s.GetSecret(ctx, "nobody")
		assert.ErrorIs(t, err, secretstore.ErrNotFound)

		ok, err := s.HasSecret(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store and get", func(t *testing.T) {
		require.NoError(t, s.StoreSecret(ctx, "alice", "JBSWY3DPEHPK3PXP"))

		got, err := s.GetSecret(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", got)

		ok, err := s.HasSecret(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, s.StoreSecret(ctx, "alice", "MZXW6YTBOI"))
		got, err := s.GetSecret(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "MZXW6YTBOI", got)
	})

	t.Run("users sorted", func(t *testing.T) {
		require.NoError(t, s.StoreSecret(ctx, "carol", "GEZDGNBV"))
		require.NoError(t, s.StoreSecret(ctx, "bob", "MFRGGZDF"))

		users, err := s.Users(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob", "carol"}, users)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.RemoveSecret(ctx, "bob"))
		require.NoError(t, s.RemoveSecret(ctx, "bob"), "removing twice is not an error")

		_, err := s.GetSecret(ctx, "bob")
		assert.ErrorIs(t, err, secretstore.ErrNotFound)

		users, err := s.Users(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "carol"}, users)
	})

	t.Run("invalid input", func(t *testing.T) {
		assert.ErrorIs(t, s.StoreSecret(ctx, "", "JBSWY3DP"), secretstore.ErrInvalidUserID)
		assert.ErrorIs(t, s.StoreSecret(ctx, "dave", ""), secretstore.ErrInvalidSecret)
		_, err := s.GetSecret(ctx, "")
		assert.ErrorIs(t, err, secretstore.ErrInvalidUserID)
		assert.ErrorIs(t, s.RemoveSecret(ctx, ""), secretstore.ErrInvalidUserID)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.StoreSecret(ctx, fmt.Sprintf("user-%02d", i), "JBSWY3DPEHPK3PXP"))
			}()
		}
		wg.Wait()

		for i := range 20 {
			ok, err := s.HasSecret(ctx, fmt.Sprintf("user-%02d", i))
			require.NoError(t, err)
			assert.True(t, ok, "user-%02d", i)
		}
	})
}

// corruptionRecorder collects corruption notifications.
type corruptionRecorder struct {
	mu     sync.Mutex
	events []corruptionEvent
}

type corruptionEvent struct {
	userID string
	err    error
}

func (r *corruptionRecorder) handle(_ context.Context, userID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, corruptionEvent{userID: userID, err: err})
}

func (r *corruptionRecorder) all() []corruptionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]corruptionEvent(nil), r.events...)
}
