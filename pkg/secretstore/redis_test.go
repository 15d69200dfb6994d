package secretstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestRedisStore_Contract(t *testing.T) {
	t.Parallel()
	_, client := newRedisClient(t)

	s, err := secretstore.NewRedisStore(client, newMasterKey(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	testStoreContract(t, s)
}

func TestRedisStore_SealsEachField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, client := newRedisClient(t)

	s, err := secretstore.NewRedisStore(client, newMasterKey(t), secretstore.WithRedisKey("test:secrets"))
	require.NoError(t, err)
	require.NoError(t, s.StoreSecret(ctx, "alice", "JBSWY3DPEHPK3PXP"))

	raw := srv.HGet("test:secrets", "alice")
	assert.NotEmpty(t, raw)
	assert.NotContains(t, raw, "JBSWY3DPEHPK3PXP")
}

func TestRedisStore_CorruptedField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, client := newRedisClient(t)

	rec := &corruptionRecorder{}
	s, err := secretstore.NewRedisStore(client, newMasterKey(t), secretstore.WithCorruptionHandler(rec.handle))
	require.NoError(t, err)

	srv.HSet(secretstore.DefaultRedisKey, "alice", "garbage")
	srv.HSet(secretstore.DefaultRedisKey, "bob", "0123456789abcdef-not-a-valid-ciphertext")

	_, err = s.GetSecret(ctx, "alice")
	assert.ErrorIs(t, err, secretstore.ErrNotFound)

	ok, err := s.HasSecret(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, "alice", events[0].userID)
	assert.ErrorIs(t, events[0].err, secretstore.ErrCorrupted)
	assert.Equal(t, "bob", events[1].userID)
}

func TestRedisStore_ServerDown(t *testing.T) {
	t.Parallel()
	srv, client := newRedisClient(t)
	s, err := secretstore.NewRedisStore(client, newMasterKey(t))
	require.NoError(t, err)

	srv.Close()
	_, err = s.GetSecret(context.Background(), "alice")
	assert.ErrorIs(t, err, secretstore.ErrStorage)
}

func TestNewRedisStore_NilClient(t *testing.T) {
	t.Parallel()
	_, err := secretstore.NewRedisStore(nil, newMasterKey(t))
	assert.ErrorIs(t, err, secretstore.ErrBackendNotWired)
}
