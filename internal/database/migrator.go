package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// MigrationRunner applies the embedded SQL migrations for one driver over a
// dedicated connection.
type MigrationRunner struct {
	db     *sql.DB
	driver string
}

func NewMigrationRunner(db *sql.DB, driver string) *MigrationRunner {
	return &MigrationRunner{db: db, driver: driver}
}

// WaitForDatabase pings until the database answers or retries run out.
// Postgres in docker-compose usually needs a few seconds.
func (mr *MigrationRunner) WaitForDatabase() error {
	for i := 0; i < maxRetries; i++ {
		err := mr.db.Ping()
		if err == nil {
			return nil
		}
		slog.Info("database not ready", slog.Int("attempt", i+1), slog.Int("max_attempts", maxRetries), slog.Any("error", err))
		time.Sleep(retryInterval)
	}
	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

func (mr *MigrationRunner) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+mr.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var driver database.Driver
	switch mr.driver {
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(mr.db, &postgres.Config{})
	case config.DriverSQLite:
		driver, err = sqlite3.WithInstance(mr.db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", mr.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", mr.driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, mr.driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies pending migrations. A dirty version left by a
// crashed run is forced clean before retrying.
func (mr *MigrationRunner) RunMigrations() error {
	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		slog.Warn("database is in dirty state, forcing version", slog.Uint64("version", uint64(version)))
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no new migrations to apply", slog.Uint64("version", uint64(version)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	slog.Info("applied migrations", slog.Uint64("version", uint64(newVersion)))
	return nil
}

func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	m, err := mr.newMigrate()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// OpenMigrationDB opens the connection the runner owns. Postgres goes
// through lib/pq, SQLite through the cgo sqlite3 driver gorm also uses.
func OpenMigrationDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return sql.Open("postgres", cfg.MigrationURL())
	case config.DriverSQLite:
		return sql.Open("sqlite3", cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func RunMigrations(cfg *config.DatabaseConfig) error {
	db, err := OpenMigrationDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	runner := NewMigrationRunner(db, cfg.Driver)

	if err := runner.WaitForDatabase(); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}
	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("migration execution failed: %w", err)
	}

	if version, dirty, err := runner.GetMigrationStatus(); err != nil {
		slog.Warn("failed to get migration status", slog.Any("error", err))
	} else {
		slog.Info("migration status", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
