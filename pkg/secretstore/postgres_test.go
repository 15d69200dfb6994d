package secretstore_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/pg"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

func TestPostgresStore_Contract(t *testing.T) {
	url := os.Getenv("OTPGATE_TEST_PG_URL")
	if url == "" {
		t.Skip("OTPGATE_TEST_PG_URL not set")
	}
	ctx := context.Background()

	cfg := pg.Config{ConnectionString: url, RetryAttempts: 1, MigrationsTable: "otpgate_test_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, secretstore.Migrations, secretstore.MigrationsDir, cfg, slog.New(slog.DiscardHandler)))
	_, err = pool.Exec(ctx, "TRUNCATE totp_secrets")
	require.NoError(t, err)

	s, err := secretstore.NewPostgresStore(pool, newMasterKey(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	testStoreContract(t, s)
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	t.Parallel()
	_, err := secretstore.NewPostgresStore(nil, newMasterKey(t))
	require.ErrorIs(t, err, secretstore.ErrBackendNotWired)
}
