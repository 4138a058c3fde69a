package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"idregistry/migrations"
)

// MigrationsTable keeps migration bookkeeping out of the registry tables.
const MigrationsTable = "idregistry_schema_migrations"

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens a dedicated connection to databaseURL. The migrate driver
// closes its handle on Close, so it never shares the server pool.
func NewMigrator(databaseURL string) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		src.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("open database: %w", err)
	}
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		src.Close() //nolint:errcheck // best-effort cleanup on init failure
		db.Close()  //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	return newMigrator(src, driver, migrate.NewWithInstance)
}

type migrateFactory func(sourceName string, src source.Driver, databaseName string, driver migratedb.Driver) (*migrate.Migrate, error)

// newMigrator owns src and driver: both are closed if build fails.
func newMigrator(src source.Driver, driver migratedb.Driver, build migrateFactory) (*Migrator, error) {
	m, err := build("iofs", src, "pgx5", driver)
	if err != nil {
		src.Close()    //nolint:errcheck // best-effort cleanup on init failure
		driver.Close() //nolint:errcheck // closes the dedicated connection
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrate down: steps must be positive, got %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version reports the applied version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the source and the dedicated connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
