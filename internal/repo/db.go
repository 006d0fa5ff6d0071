// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

// Option customizes OpenSQLite.
type Option func(*openConfig)

type openConfig struct {
	tracing  bool
	maxConns int
	logLevel logger.LogLevel
}

// WithTracing installs the OpenTelemetry GORM plugin so every query becomes
// a span under the request's trace.
func WithTracing(on bool) Option {
	return func(c *openConfig) { c.tracing = on }
}

// WithMaxOpenConns overrides the pool size.
func WithMaxOpenConns(n int) Option {
	return func(c *openConfig) {
		if n > 0 {
			c.maxConns = n
		}
	}
}

// WithLogLevel sets the GORM logger level (Silent by default).
func WithLogLevel(l logger.LogLevel) Option {
	return func(c *openConfig) { c.logLevel = l }
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string, opts ...Option) (*gorm.DB, error) {
	cfg := openConfig{maxConns: 10, logLevel: logger.Silent}
	for _, o := range opts {
		o(&cfg)
	}

	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(withConnPragmas(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.maxConns)
		sqlDB.SetMaxIdleConns(cfg.maxConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("gorm tracing: %w", err)
		}
	}

	return db, nil
}

// withConnPragmas adds the per-connection PRAGMAs to the DSN so every pooled
// connection enforces foreign keys and waits on locks, not just the first.
func withConnPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// AutoMigrate creates or updates every table the game uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ShopItem{},
		&domain.EvolutionStage{},
		&domain.Pet{},
		&domain.InventoryEntry{},
		&domain.PendingAdoption{},
		&domain.Idempotency{},
	)
}
