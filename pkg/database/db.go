// Package database stores run history in SQLite via GORM, using the pure
// Go modernc driver so builds stay CGO-free.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linelab/linelab/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// DB wraps the GORM connection for the run history store
type DB struct {
	db     *gorm.DB
	logger *logger.Logger
}

// Config holds database configuration
type Config struct {
	Path string // Path to the SQLite database file
}

// The store sees short bursts of single-row writes from the studio plus
// reads from the dashboard; WAL with a busy timeout covers that.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// NewDB opens (creating if needed) the run history database, applies the
// connection pragmas and migrates the schema.
func NewDB(cfg Config, log *logger.Logger) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = "linelab.db"
	}
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Route GORM's own logging through ours
	gormLog := gormlogger.New(
		&gormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// DriverName selects the modernc driver registration
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: cfg.Path}, &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&SignalRun{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database initialized", logger.String("path", cfg.Path))
	return &DB{db: db, logger: log}, nil
}

// Close closes the underlying connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM handle for repositories
func (d *DB) GetDB() *gorm.DB {
	return d.db
}

// gormLogAdapter satisfies GORM's Printf-style writer interface
type gormLogAdapter struct {
	log *logger.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}
