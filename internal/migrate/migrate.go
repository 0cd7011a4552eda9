// Package migrate applies forward-only, checksummed schema migrations to the
// embedded store and records them in the schema_versions ledger.
package migrate

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"philabid/internal/biddingerrors"
	"philabid/internal/models"
	"philabid/utils"

	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embedded embed.FS

const reversibleDirective = "-- +reversible"

// Migration is one forward-only schema script
type Migration struct {
	Version    int
	Name       string
	Script     string
	Checksum   string
	Reversible bool
}

// NewMigration builds a Migration and computes its checksum from script.
func NewMigration(version int, name, script string) Migration {
	return Migration{
		Version:    version,
		Name:       name,
		Script:     script,
		Checksum:   Checksum(script),
		Reversible: strings.Contains(script, reversibleDirective),
	}
}

// Checksum returns the hex sha256 of a migration script.
func Checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

// schemaVersionRow is the persisted ledger row
type schemaVersionRow struct {
	Version    int       `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name       string    `gorm:"column:name"`
	Checksum   string    `gorm:"column:checksum"`
	Reversible bool      `gorm:"column:reversible"`
	AppliedAt  time.Time `gorm:"column:applied_at"`
}

func (schemaVersionRow) TableName() string { return "schema_versions" }

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_versions (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    checksum   TEXT NOT NULL,
    reversible INTEGER NOT NULL DEFAULT 0,
    applied_at DATETIME NOT NULL
)`

// Embedded returns the migrations shipped with the binary.
func Embedded() ([]Migration, error) {
	return Load(embedded, "sql")
}

// Load reads NNNN_name.sql files from dir, in file-name order.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration file %s: expected NNNN_name.sql", e.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration file %s: bad version: %w", e.Name(), err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, NewMigration(version, name, string(raw)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrator runs migrations once at startup and gates repository access until done.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	ready      atomic.Bool
	now        func() time.Time
}

// New creates a Migrator over an ordered list of migrations.
func New(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{
		db:         db,
		migrations: migrations,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ready reports whether Run has completed successfully.
func (m *Migrator) Ready() bool {
	return m.ready.Load()
}

// Run verifies the applied ledger and applies pending migrations in order.
// It returns the versions applied by this call.
func (m *Migrator) Run(ctx context.Context) ([]int, error) {
	if err := validateSequence(m.migrations); err != nil {
		return nil, err
	}

	if err := m.db.WithContext(ctx).Exec(ledgerDDL).Error; err != nil {
		return nil, &biddingerrors.MigrationFailedError{Version: 0, Cause: fmt.Errorf("create ledger: %w", err)}
	}

	applied, err := m.loadLedger(ctx, m.db)
	if err != nil {
		return nil, err
	}
	if err := m.verify(applied); err != nil {
		return nil, err
	}

	highest := 0
	if len(applied) > 0 {
		highest = applied[len(applied)-1].Version
	}

	var done []int
	for _, mig := range m.migrations {
		if mig.Version <= highest {
			continue
		}
		ran, err := m.apply(ctx, mig)
		if err != nil {
			utils.Error("migration failed", map[string]any{
				"version": mig.Version,
				"name":    mig.Name,
				"error":   err.Error(),
			})
			return done, err
		}
		if ran {
			done = append(done, mig.Version)
			utils.Info("migration applied", map[string]any{
				"version":    mig.Version,
				"name":       mig.Name,
				"reversible": mig.Reversible,
			})
		}
	}

	m.ready.Store(true)
	utils.Info("schema ready", map[string]any{
		"applied_now":    len(done),
		"schema_version": m.latest(),
	})
	return done, nil
}

// Applied returns the persisted ledger in version order.
func (m *Migrator) Applied(ctx context.Context) ([]models.SchemaVersion, error) {
	rows, err := m.loadLedger(ctx, m.db)
	if err != nil {
		return nil, err
	}
	out := make([]models.SchemaVersion, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SchemaVersion{
			Version:   r.Version,
			Name:      r.Name,
			Checksum:  r.Checksum,
			AppliedAt: r.AppliedAt,
		})
	}
	return out, nil
}

func (m *Migrator) latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

func (m *Migrator) loadLedger(ctx context.Context, db *gorm.DB) ([]schemaVersionRow, error) {
	var rows []schemaVersionRow
	if err := db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, &biddingerrors.MigrationFailedError{Version: 0, Cause: fmt.Errorf("read ledger: %w", err)}
	}
	return rows, nil
}

// validateSequence requires versions 1..n, strictly ascending, in the given order
func validateSequence(migrations []Migration) error {
	for i, mig := range migrations {
		want := i + 1
		if mig.Version != want {
			return &biddingerrors.MigrationFailedError{
				Version: mig.Version,
				Cause:   fmt.Errorf("out of order or missing version: expected %d at position %d", want, i),
			}
		}
	}
	return nil
}

func (m *Migrator) verify(applied []schemaVersionRow) error {
	byVersion := make(map[int]Migration, len(m.migrations))
	for _, mig := range m.migrations {
		byVersion[mig.Version] = mig
	}

	for i, row := range applied {
		if row.Version != i+1 {
			return &biddingerrors.MigrationFailedError{
				Version: row.Version,
				Cause:   fmt.Errorf("ledger gap: expected version %d", i+1),
			}
		}
		mig, ok := byVersion[row.Version]
		if !ok {
			return &biddingerrors.MigrationFailedError{
				Version: row.Version,
				Cause:   errors.New("applied version unknown to this build"),
			}
		}
		if mig.Checksum != row.Checksum {
			return &biddingerrors.ChecksumMismatchError{
				Version:  row.Version,
				Recorded: row.Checksum,
				Computed: mig.Checksum,
			}
		}
	}
	return nil
}

// apply runs one migration in its own transaction. It reports false when
// another process applied the same version first.
func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	ran := false
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&schemaVersionRow{}).Where("version = ?", mig.Version).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Exec(mig.Script).Error; err != nil {
			return fmt.Errorf("exec script: %w", err)
		}
		row := schemaVersionRow{
			Version:    mig.Version,
			Name:       mig.Name,
			Checksum:   mig.Checksum,
			Reversible: mig.Reversible,
			AppliedAt:  m.now(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("record version: %w", err)
		}
		ran = true
		return nil
	})
	if err != nil {
		return false, &biddingerrors.MigrationFailedError{Version: mig.Version, Cause: err}
	}
	return ran, nil
}
