package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Driver          string
	DSN             string // full DSN; for sqlite, built from Path when empty
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
	SlowThreshold   time.Duration
}

// SQLiteDSN builds the sqlite DSN used for file databases
func SQLiteDSN(path string) string {
	// Enable WAL mode for better concurrency
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
}

// Open creates a GORM connection for the configured driver
func Open(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:  NewGormLogger(logger, cfg.LogLevel, cfg.SlowThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = SQLiteDSN(cfg.Path)
		}

		sqlDB, openErr := sql.Open("sqlite3", dsn)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open database: %w", openErr)
		}
		db, err = gorm.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), gormCfg)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("driver", cfg.Driver),
		zap.String("path", cfg.Path))
	return db, nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB, logger *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	logger.Info("Closing database connection")
	return sqlDB.Close()
}
