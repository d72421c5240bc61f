package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Security SecurityConfig
	Worker   WorkerConfig
	AMQP     AMQPConfig
	Sheets   SheetsConfig
	Demo     DemoConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	LogLevel         string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	SQLitePath      string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	SeedDemoData    bool
}

type SecurityConfig struct {
	BCryptCost         int
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxFailedAttempts  int
	PasswordMinLength  int
	LockoutDuration    time.Duration
}

// WorkerConfig controls the background loops run next to the API.
type WorkerConfig struct {
	RecurringInterval    time.Duration
	InsightsInterval     time.Duration
	TokenCleanupInterval time.Duration
	MaxConcurrent        int
}

// AMQPConfig is optional. An empty URL disables event publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// SheetsConfig is optional. An empty SpreadsheetID disables cloud backup.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func (c SheetsConfig) Enabled() bool {
	return c.SpreadsheetID != ""
}

// DemoConfig describes the account created when SEED_DATABASE is true.
type DemoConfig struct {
	Username     string
	Email        string
	Password     string
	Days         int
	Transactions int
	Seed         int64
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "localhost"),
			Environment:     getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			SQLitePath:      getEnv("SQLITE_PATH", "walletwhiz.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "walletwhiz"),
			Password:        getEnv("DB_PASSWORD", "walletwhiz"),
			Name:            getEnv("DB_NAME", "walletwhiz"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:     getBoolEnv("AUTO_MIGRATE", true),
			SeedDemoData:    getBoolEnv("SEED_DATABASE", false),
		},
		Security: SecurityConfig{
			BCryptCost:         getIntEnv("BCRYPT_COST", 12),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
			MaxFailedAttempts:  getIntEnv("MAX_FAILED_ATTEMPTS", 3),
			PasswordMinLength:  getIntEnv("PASSWORD_MIN_LENGTH", 12),
			LockoutDuration:    getDurationEnv("LOCKOUT_DURATION", 15*time.Minute),
		},
		JWT: JWTConfig{
			AccessTokenDuration:  getDurationEnv("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour),
			RefreshTokenDuration: getDurationEnv("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			Issuer:               getEnv("JWT_ISSUER", "walletwhiz"),
		},
		Worker: WorkerConfig{
			RecurringInterval:    getDurationEnv("RECURRING_INTERVAL", time.Minute),
			InsightsInterval:     getDurationEnv("INSIGHTS_INTERVAL", time.Hour),
			TokenCleanupInterval: getDurationEnv("TOKEN_CLEANUP_INTERVAL", time.Hour),
			MaxConcurrent:        getIntEnv("WORKER_MAX_CONCURRENT", 5),
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "walletwhiz"),
			Queue:    getEnv("AMQP_QUEUE", "transaction.created"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
			SheetName:       getEnv("GOOGLE_SHEET_NAME", "Transactions"),
			CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
			CredentialsFile: firstNonEmpty(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		},
		Demo: DemoConfig{
			Username:     getEnv("DEMO_USERNAME", "demo"),
			Email:        getEnv("DEMO_EMAIL", "demo@walletwhiz.local"),
			Password:     getEnv("DEMO_PASSWORD", "Demo@Wallet2024"),
			Days:         getIntEnv("DEMO_DAYS", 90),
			Transactions: getIntEnv("DEMO_TRANSACTIONS", 150),
			Seed:         int64(getIntEnv("DEMO_SEED", 42)),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	var err error
	config.JWT.PrivateKey, config.JWT.PublicKey, err = config.loadJWTKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load RSA keys: %w", err)
	}

	return config, nil
}

// Validate reports configuration that cannot work at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Security.BCryptCost < 4 || c.Security.BCryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BCryptCost))
	}
	if c.Security.LockoutDuration < 0 {
		errs = append(errs, errors.New("LOCKOUT_DURATION must not be negative"))
	}
	if c.Worker.MaxConcurrent < 1 {
		errs = append(errs, errors.New("WORKER_MAX_CONCURRENT must be at least 1"))
	}
	if c.Worker.RecurringInterval <= 0 {
		errs = append(errs, errors.New("RECURRING_INTERVAL must be positive"))
	}
	if c.Database.SeedDemoData && c.IsProduction() {
		errs = append(errs, errors.New("SEED_DATABASE must not be enabled in production"))
	}
	if c.Sheets.Enabled() && c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
		errs = append(errs, errors.New("google credentials are required when GOOGLE_SPREADSHEET_ID is set"))
	}

	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsInMemory is true for SQLite databases that only live inside one
// connection, which a separate migration connection cannot reach.
func (c *DatabaseConfig) IsInMemory() bool {
	return c.Driver == DriverSQLite && (c.SQLitePath == ":memory:" || strings.HasPrefix(c.SQLitePath, "file::memory:"))
}

// MigrationURL is the postgres URL form used by the migration connection.
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")
	if corsOrigins == "" {
		if c.IsProduction() {
			slog.Warn("CORS_ALLOW_ORIGINS not set in production, defaulting to all origins")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}
