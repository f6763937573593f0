package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"orga-bot/internal/config"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured backend and migrates the tasks table.
// The returned handle pools connections; every store call acquires one for
// the duration of its statement and releases it on return.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dsn, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		// glebarez/sqlite is a pure Go implementation (no CGO required)
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	appLog.Info("database ready", "driver", cfg.Driver)
	return db, nil
}

// mysqlDSN forces clientFoundRows so RowsAffected counts matched rows, not
// only changed ones. Marking an already done task done again on the same
// day then still reports it as found.
func mysqlDSN(dsn string) (string, error) {
	c, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

// Migrate creates or updates the tasks table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger is gorm's default logger without the "record not found" noise
// of dedup lookups.
func newLogger(level string) logger.Interface {
	return logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  LogLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// LogLevel maps a config string to a gorm logger level.
func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
