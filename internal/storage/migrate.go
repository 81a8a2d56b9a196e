package storage

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateURL rewrites a postgres:// DSN to the scheme the pgx/v5 driver registers.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. Running it on an up-to-date schema is a no-op.
func MigrateUp(dsn string, logger internal.Logger) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Errorf("migration failed: %v", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logSchemaVersion(m, logger)
	return nil
}

type schemaVersioner interface {
	Version() (version uint, dirty bool, err error)
}

func logSchemaVersion(v schemaVersioner, logger internal.Logger) {
	version, dirty, err := v.Version()
	if err != nil {
		logger.Warnf("could not read schema version: %v", err)
		return
	}
	logger.Infof("database schema at version %d (dirty=%t)", version, dirty)
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(dsn string, steps int, logger internal.Logger) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Errorf("rollback failed: %v", err)
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logger.Infof("rolled back %d migration(s)", steps)
	return nil
}
