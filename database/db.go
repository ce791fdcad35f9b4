package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"owlistic-notes/notes/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB

	path      string
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex
}

type Options struct {
	LogLevel      logger.LogLevel
	BusyTimeoutMs int
	Logger        *slog.Logger
}

// Setup opens the store configured in cfg.
func Setup(cfg config.Config) (*Database, error) {
	return Open(cfg.StorePath, Options{
		LogLevel:      parseLogLevel(cfg.DBLogLevel),
		BusyTimeoutMs: cfg.DBBusyTimeoutMs,
		Logger:        slog.Default(),
	})
}

// Open opens the store file at path, creating it if absent and migrating it
// to the current schema version.
func Open(path string, opts Options) (*Database, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &StoreOpenError{Path: path, Err: errors.New("store path is required")}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &StoreOpenError{Path: path, Err: err}
	}

	gormConfig := &gorm.Config{
		Logger:                 logger.Default.LogMode(opts.LogLevel),
		AllowGlobalUpdate:      false,
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn(path, opts.BusyTimeoutMs)), gormConfig)
	if err != nil {
		return nil, &StoreOpenError{Path: path, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	// One connection keeps the single-writer model honest.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, &StoreOpenError{Path: path, Err: fmt.Errorf("failed to get database instance: %w", err)}
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	database := &Database{DB: db, path: path}

	opts.Logger.Debug("running store migrations", "path", path)
	if err := RunMigrations(db, path, opts.Logger); err != nil {
		database.Close()
		return nil, &StoreOpenError{Path: path, Err: err}
	}

	return database, nil
}

func dsn(path string, busyTimeoutMs int) string {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}
	return fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=FULL", path, busyTimeoutMs)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Path returns the location of the store file.
func (d *Database) Path() string {
	return d.path
}

// Close releases the store file. It is safe to call more than once.
func (d *Database) Close() error {
	var closeErr error
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		if d.DB == nil {
			return
		}
		sqlDB, err := d.DB.DB()
		if err != nil {
			closeErr = fmt.Errorf("failed to get database connection: %w", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close database connection: %w", err)
		}
	})
	return closeErr
}

// Ping reports whether the store is still reachable.
func (d *Database) Ping() error {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed || d.DB == nil {
		return ErrStoreClosed
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
