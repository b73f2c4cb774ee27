package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate moves the cache schema of backend to targetVersion and reports what happened.
//   - If targetVersion < 0, it migrates to the latest version.
//   - If targetVersion == 0, it rolls back all migrations.
//   - If targetVersion > 0, it migrates to the specified version.
func Migrate(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	from, to, err := runMigrations(backend, connStr, targetVersion)
	if err != nil {
		return err
	}
	if from == to {
		contract.LogInfo("No migration needed. Cache schema is already at version %d", to)
		return nil
	}
	contract.LogInfo("Successfully migrated cache schema from version %d to version %d", from, to)
	return nil
}

// runMigrations applies the embedded migrations of backend on a dedicated connection
// and returns the schema versions before and after.
func runMigrations(backend schema.DatabaseBackend, connStr string, targetVersion int) (uint, uint, error) {
	if backend == schema.NoneBackend {
		return 0, 0, fmt.Errorf("migrations are not supported for the none backend")
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return 0, 0, err
	}

	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return 0, 0, err
	}
	// Closing the migrator closes db as well.
	defer func() { _, _ = m.Close() }()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return current, current, fmt.Errorf("cache schema is in a dirty state at version %d. Clear the cache or fix it manually", current)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return current, current, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	after, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return current, 0, nil
	}
	if err != nil {
		return current, current, fmt.Errorf("failed to read migrated version: %w", err)
	}
	return current, after, nil
}

// newMigrator binds the embedded per-dialect migrations to db.
func newMigrator(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = pgx.WithInstance(db, &pgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	dialectFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(dialectFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(backend), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
