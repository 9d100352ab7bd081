package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationsTable keeps the ledger's schema version apart from any other
// migrate-managed tables that share the database file.
const migrationsTable = "seen_items_schema"

//go:embed migrations/*.sql
var migrationFS embed.FS

type SchemaInfo struct {
	Version uint
	Applied bool
}

// ErrDirtySchema means an earlier migration stopped halfway. The ledger is
// left untouched until the schema is repaired by hand.
var ErrDirtySchema = errors.New("ledger schema is dirty")

func RunMigrations(db *DB) (SchemaInfo, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return SchemaInfo{}, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return SchemaInfo{}, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return SchemaInfo{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		before = 0
	case err != nil:
		return SchemaInfo{}, fmt.Errorf("failed to get schema version: %w", err)
	case dirty:
		return SchemaInfo{Version: before}, fmt.Errorf("%w at version %d (%s)", ErrDirtySchema, before, db.Path())
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaInfo{Version: before}, fmt.Errorf("failed to run migrations: %w", err)
	}

	after, _, err := m.Version()
	if err != nil {
		return SchemaInfo{Version: before}, fmt.Errorf("failed to get schema version: %w", err)
	}

	if after != before {
		slog.Info("Ledger schema migrated", "path", db.Path(), "from", before, "to", after)
	}

	return SchemaInfo{Version: after, Applied: after != before}, nil
}
