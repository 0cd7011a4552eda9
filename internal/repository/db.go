package repository

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"philabid/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Options tune the embedded store connection
type Options struct {
	// BusyTimeout bounds how long a writer waits for the SQLite write lock
	BusyTimeout  time.Duration
	MaxOpenConns int
	// SlowQuery is logged at warn level when exceeded; zero disables
	SlowQuery time.Duration
}

// DefaultOptions are used when zero-valued fields are passed to Open
var DefaultOptions = Options{
	BusyTimeout:  5 * time.Second,
	MaxOpenConns: 8,
	SlowQuery:    200 * time.Millisecond,
}

// uriPath escapes the characters that would end the path of a file: URI
var uriPath = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// DSN builds the SQLite connection string. Write transactions begin IMMEDIATE,
// so two writers never both read a lot and then race to update it.
func DSN(path string, busy time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", fmt.Sprintf("%d", busy.Milliseconds()))
	return "file:" + uriPath.Replace(path) + "?" + q.Encode()
}

// Open opens (creating if needed) the on-disk store at path.
func Open(path string, opts Options) (*gorm.DB, error) {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultOptions.BusyTimeout
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = DefaultOptions.MaxOpenConns
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir %s: %w", dir, err)
		}
	}

	logLevel := gormLogger.Warn
	if opts.SlowQuery <= 0 {
		logLevel = gormLogger.Error
	}

	db, err := gorm.Open(sqlite.Open(DSN(path, opts.BusyTimeout)), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: gormLogger.New(utils.StandardLogger(), gormLogger.Config{
			SlowThreshold:             opts.SlowQuery,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	utils.Info("database opened", map[string]any{"path": path})
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
