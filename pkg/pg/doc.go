// Package pg connects to PostgreSQL through a pgx/v5 pool and applies
// embedded goose migrations.
//
// # Architecture
//
//   - Config is populated from PG_* environment variables.
//   - Connect opens a *pgxpool.Pool and pings it, retrying with a linearly
//     growing delay while the database starts up.
//   - Migrate runs goose migrations from an fs.FS (usually an embed.FS) over
//     the same pool, bridged to database/sql with pgx's stdlib adapter.
//   - Healthcheck returns a probe for the HTTP health endpoint.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
//
// IsNotFoundError and IsDuplicateKeyError classify driver errors.
package pg
