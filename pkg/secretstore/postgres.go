package secretstore

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

const backendPostgres = "postgres"

// Migrations holds the goose migrations for the totp_secrets table.
// Apply them with pg.Migrate(ctx, pool, secretstore.Migrations, MigrationsDir, ...).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"

// Querier is the subset of *pgxpool.Pool used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	upsertSecretSQL = `INSERT INTO totp_secrets (user_id, iv, ciphertext)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET iv = EXCLUDED.iv, ciphertext = EXCLUDED.ciphertext, updated_at = now()`
	selectSecretSQL = `SELECT iv, ciphertext FROM totp_secrets WHERE user_id = $1`
	deleteSecretSQL = `DELETE FROM totp_secrets WHERE user_id = $1`
	selectUsersSQL  = `SELECT user_id FROM totp_secrets ORDER BY user_id`
)

// PostgresStore keeps one row per user with the IV and ciphertext in
// separate columns.
type PostgresStore struct {
	db     Querier
	sealer sealer
	opts   options
}

// NewPostgresStore creates a store on db, usually a *pgxpool.Pool on which
// Migrations have been applied.
func NewPostgresStore(db Querier, masterKey []byte, opts ...Option) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrBackendNotWired
	}
	s, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, sealer: s, opts: newOptions(opts)}, nil
}

func (p *PostgresStore) StoreSecret(ctx context.Context, userID, secret string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if secret == "" {
		return ErrInvalidSecret
	}

	rec, err := p.sealer.seal([]byte(secret))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if _, err := p.db.Exec(ctx, upsertSecretSQL, userID, rec.IV, rec.Ciphertext); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (p *PostgresStore) GetSecret(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	var rec cryptobox.Record
	if err := p.db.QueryRow(ctx, selectSecretSQL, userID).Scan(&rec.IV, &rec.Ciphertext); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrStorage, err)
	}

	plain, err := p.sealer.open(rec)
	if err != nil {
		p.opts.corrupted(ctx, backendPostgres, userID, errors.Join(ErrCorrupted, err))
		return "", ErrNotFound
	}
	return string(plain), nil
}

func (p *PostgresStore) HasSecret(ctx context.Context, userID string) (bool, error) {
	return hasSecret(ctx, p, userID)
}

func (p *PostgresStore) RemoveSecret(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, deleteSecretSQL, userID); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (p *PostgresStore) Users(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, selectUsersSQL)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return users, nil
}

// Close wipes the store subkey. The pool is left open.
func (p *PostgresStore) Close() error {
	p.sealer.wipe()
	return nil
}
