package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

type migrationSet struct {
	dialect goose.Dialect
	dir     string
}

// dialectMap maps database drivers to Goose dialects and their migration directory
var dialectMap = map[string]migrationSet{
	"sqlite":   {dialect: goose.DialectSQLite3, dir: "migrations/sqlite"},
	"pgx":      {dialect: goose.DialectPostgres, dir: "migrations/postgres"},
	"postgres": {dialect: goose.DialectPostgres, dir: "migrations/postgres"},
}

func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	set, ok := dialectMap[driver]
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	migrationsDir, err := fs.Sub(migrationsFS, set.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations directory: %w", err)
	}

	provider, err := goose.NewProvider(set.dialect, db, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully", "applied", len(results))
	return nil
}

func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration", "version", result.Source.Version)
	return nil
}
