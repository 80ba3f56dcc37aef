package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	infraconfig "fxrates-ingest/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending up migration. The database may still be
// starting, so the first ping is retried.
func RunMigrations(ctx context.Context, db *DB) error {
	m, closeDB, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	defer closeDB()
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// ResetSchema runs every down migration, dropping all tables.
func ResetSchema(ctx context.Context, db *DB) error {
	m, closeDB, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	defer closeDB()
	defer m.Close()
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func newMigrator(ctx context.Context, db *DB) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("migrate src: %w", err)
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return nil, nil, fmt.Errorf("open sql db: %w", err)
	}
	closeDB := func() { _ = sqldb.Close() }

	b := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewConstantBackOff(infraconfig.DefaultMigratePingEvery),
		infraconfig.DefaultMigratePingTries,
	), ctx)
	if err := backoff.Retry(func() error { return sqldb.PingContext(ctx) }, b); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{})
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate init: %w", err)
	}
	return m, closeDB, nil
}
