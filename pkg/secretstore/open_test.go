package secretstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("file backend by default", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := secretstore.Config{
			Path:    filepath.Join(dir, "secrets.enc"),
			KeyPath: filepath.Join(dir, "secrets.key"),
		}

		s, err := secretstore.Open(ctx, cfg, secretstore.Connections{})
		require.NoError(t, err)
		assert.IsType(t, &secretstore.FileStore{}, s)
		require.NoError(t, s.StoreSecret(ctx, "alice", "JBSWY3DPEHPK3PXP"))
		require.NoError(t, s.Close())

		reopened, err := secretstore.Open(ctx, cfg, secretstore.Connections{})
		require.NoError(t, err)
		got, err := reopened.GetSecret(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", got)
	})

	t.Run("lost key is reported", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := secretstore.Config{
			Backend: secretstore.BackendFile,
			Path:    filepath.Join(dir, "secrets.enc"),
			KeyPath: filepath.Join(dir, "secrets.key"),
		}

		s, err := secretstore.Open(ctx, cfg, secretstore.Connections{})
		require.NoError(t, err)
		require.NoError(t, s.StoreSecret(ctx, "alice", "JBSWY3DPEHPK3PXP"))
		require.NoError(t, os.Remove(cfg.KeyPath))

		rec := &corruptionRecorder{}
		s, err = secretstore.Open(ctx, cfg, secretstore.Connections{}, secretstore.WithCorruptionHandler(rec.handle))
		require.NoError(t, err)

		events := rec.all()
		require.Len(t, events, 1)
		assert.ErrorIs(t, events[0].err, secretstore.ErrKeyRegenerated)

		ok, err := s.HasSecret(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("redis backend", func(t *testing.T) {
		t.Parallel()
		_, client := newRedisClient(t)
		cfg := secretstore.Config{
			Backend: secretstore.BackendRedis,
			KeyPath: filepath.Join(t.TempDir(), "secrets.key"),
		}

		s, err := secretstore.Open(ctx, cfg, secretstore.Connections{Redis: client})
		require.NoError(t, err)
		assert.IsType(t, &secretstore.RedisStore{}, s)
	})

	t.Run("missing connection", func(t *testing.T) {
		t.Parallel()
		keyPath := filepath.Join(t.TempDir(), "secrets.key")
		for _, backend := range []string{secretstore.BackendRedis, secretstore.BackendPostgres, secretstore.BackendMongo} {
			_, err := secretstore.Open(ctx, secretstore.Config{Backend: backend, KeyPath: keyPath}, secretstore.Connections{})
			assert.ErrorIs(t, err, secretstore.ErrBackendNotWired, backend)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		cfg := secretstore.Config{Backend: "etcd", KeyPath: filepath.Join(t.TempDir(), "secrets.key")}
		_, err := secretstore.Open(ctx, cfg, secretstore.Connections{})
		assert.ErrorIs(t, err, secretstore.ErrUnknownBackend)
	})
}
