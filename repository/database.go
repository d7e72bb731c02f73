package repository

import (
	"fmt"
	"log"
	"time"

	"github.com/amirphl/Kyu-Ar/config"
	"github.com/amirphl/Kyu-Ar/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the configured database and applies pool settings.
// The returned handle is owned by the caller and released with CloseDatabase.
func OpenDatabase(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logLevel, cfg.SlowQueryLog, cfg.SlowQueryTime),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established (driver=%s, max_open=%d, max_idle=%d)",
		cfg.Driver, maxOpen, cfg.MaxIdleConns)

	return db, nil
}

// SQLiteDSN builds a DSN with foreign keys enforced so cascading deletes apply
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

// Migrate creates or updates the codes and scan_events tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Code{}, &models.ScanEvent{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CloseDatabase releases the connection pool behind db
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func newGormLogger(level string, slowQueryLog bool, slowThreshold time.Duration) logger.Interface {
	lvl := logger.Warn
	switch level {
	case "debug":
		lvl = logger.Info
	case "error":
		lvl = logger.Error
	}
	if !slowQueryLog {
		slowThreshold = 0
	}
	return logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
