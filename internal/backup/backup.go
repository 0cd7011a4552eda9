// Package backup writes rotating snapshots of the embedded ledger database.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"philabid/utils"

	"gorm.io/gorm"
)

const (
	filePrefix = "philabid_"
	fileSuffix = ".db"
	// timeLayout sorts lexically in chronological order
	timeLayout = "2006-01-02_15-04-05"
)

type Backuper struct {
	db   *gorm.DB
	dir  string
	keep int
	now  func() time.Time
}

type Option func(*Backuper)

// WithClock overrides the time used to name snapshots
func WithClock(now func() time.Time) Option {
	return func(b *Backuper) { b.now = now }
}

// New returns a Backuper that keeps the newest keep snapshots in dir
func New(db *gorm.DB, dir string, keep int, opts ...Option) *Backuper {
	b := &Backuper{db: db, dir: dir, keep: keep, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FileName returns the snapshot name for t, always in UTC
func FileName(t time.Time) string {
	return filePrefix + t.UTC().Format(timeLayout) + fileSuffix
}

// Snapshot writes a transactionally consistent copy of the database and
// prunes old snapshots. It returns the new snapshot's path.
func (b *Backuper) Snapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir %s: %w", b.dir, err)
	}

	dest := filepath.Join(b.dir, FileName(b.now()))
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("replace backup %s: %w", dest, err)
	}
	if err := b.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return "", fmt.Errorf("write backup %s: %w", dest, err)
	}
	utils.Info("database backup created", map[string]any{"path": dest})

	if err := b.Prune(); err != nil {
		return dest, err
	}
	return dest, nil
}

// Prune deletes all but the newest keep snapshots in the backup dir
func (b *Backuper) Prune() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= b.keep {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	utils.Info("pruning old backups", map[string]any{"found": len(names), "keep": b.keep})

	var errs []error
	for _, name := range names[b.keep:] {
		path := filepath.Join(b.dir, name)
		if err := os.Remove(path); err != nil {
			utils.Error("failed to delete old backup", map[string]any{"path": path, "error": err.Error()})
			errs = append(errs, err)
			continue
		}
		utils.Debug("deleted old backup", map[string]any{"path": path})
	}
	return errors.Join(errs...)
}

// Run snapshots every interval until ctx is done. Failures are logged and
// the loop keeps going.
func (b *Backuper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("backup interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := b.Snapshot(ctx); err != nil {
				utils.Error("database backup failed", map[string]any{"error": err.Error()})
			}
		}
	}
}
