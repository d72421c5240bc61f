package database

import (
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, config: cfg}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Currency{},
		&models.User{},
		&models.RefreshToken{},
		&models.BlacklistedToken{},
		&models.AuditLog{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
		&models.SavingsGoal{},
		&models.TransactionTemplate{},
		&models.FinancialInsight{},
		&models.RecurringPayment{},
		&models.LendingRecord{},
	}
}

func (db *DB) AutoMigrate() error {
	if err := db.DB.AutoMigrate(Models()...); err != nil {
		return err
	}
	return db.SeedCurrencies()
}

// SeedCurrencies inserts the default currencies, leaving existing codes alone.
func (db *DB) SeedCurrencies() error {
	currencies := make([]models.Currency, len(models.DefaultCurrencies))
	copy(currencies, models.DefaultCurrencies)

	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&currencies).Error
	if err != nil {
		return fmt.Errorf("failed to seed currencies: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateIndexes adds the composite indexes the report queries lean on.
// Failures are logged, not fatal.
func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, transaction_date)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_type_date ON transactions(user_id, type, transaction_date)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_category ON transactions(user_id, category_id)",
		"CREATE INDEX IF NOT EXISTS idx_insights_user_expires ON financial_insights(user_id, expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_recurring_active_due ON recurring_payments(active, next_due_date)",
		"CREATE INDEX IF NOT EXISTS idx_lending_user_paid ON lending_records(user_id, paid)",
		"CREATE INDEX IF NOT EXISTS idx_templates_user_usage ON transaction_templates(user_id, usage_count)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("failed to create index", slog.String("query", query), slog.Any("error", err))
		}
	}
	return nil
}

// Initialize connects and brings the schema up to date: SQL migrations when
// AUTO_MIGRATE is on, gorm AutoMigrate when they are off or fail.
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	migrated := false
	if cfg.Database.AutoMigrate && !cfg.Database.IsInMemory() {
		if err := RunMigrations(&cfg.Database); err != nil {
			slog.Warn("migration runner failed, falling back to AutoMigrate", slog.Any("error", err))
		} else {
			migrated = true
		}
	}

	if !migrated {
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("failed to create some indexes", slog.Any("error", err))
	}

	slog.Info("database initialized", slog.String("driver", cfg.Database.Driver), slog.Bool("sql_migrations", migrated))
	return db, nil
}
