package database

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"walletwhiz/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFastRetries(t *testing.T, retries int) {
	t.Helper()
	originalRetries, originalInterval := maxRetries, retryInterval
	maxRetries = retries
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() {
		maxRetries = originalRetries
		retryInterval = originalInterval
	})
}

func TestWaitForDatabase_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(nil)

	err = NewMigrationRunner(db, config.DriverPostgres).WaitForDatabase()

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDatabase_FailureThenSuccess(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	withFastRetries(t, 3)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(nil)

	err = NewMigrationRunner(db, config.DriverPostgres).WaitForDatabase()

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDatabase_AlwaysFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	withFastRetries(t, 2)

	for i := 0; i < maxRetries; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	err = NewMigrationRunner(db, config.DriverPostgres).WaitForDatabase()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not ready after 2 attempts")
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = NewMigrationRunner(db, "mysql").RunMigrations()

	require.Error(t, err)
}

func TestEmbeddedMigrations_PairedPerDriver(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			files, err := fs.Glob(migrationsFS, "migrations/"+driver+"/*.sql")
			require.NoError(t, err)
			require.NotEmpty(t, files)

			ups := map[string]bool{}
			downs := map[string]bool{}
			for _, f := range files {
				base := filepath.Base(f)
				switch {
				case strings.HasSuffix(base, ".up.sql"):
					ups[strings.TrimSuffix(base, ".up.sql")] = true
				case strings.HasSuffix(base, ".down.sql"):
					downs[strings.TrimSuffix(base, ".down.sql")] = true
				}
			}
			assert.Equal(t, ups, downs)
		})
	}
}

func TestRunMigrations_SQLiteFile(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "walletwhiz.db"),
	}

	require.NoError(t, RunMigrations(cfg))
	// A second run is a no-op.
	require.NoError(t, RunMigrations(cfg))

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.Table("currencies").Count(&count).Error)
	assert.EqualValues(t, 5, count)

	for _, table := range []string{"users", "transactions", "budgets", "financial_insights", "lending_records"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
