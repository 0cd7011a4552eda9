// Package repotest opens migrated throwaway stores for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"philabid/internal/migrate"
	"philabid/internal/repository"

	"github.com/stretchr/testify/require"
)

// New returns a repository over a freshly migrated database in t's temp dir.
func New(t testing.TB) *repository.SQLRepo {
	t.Helper()
	repo, _ := NewWithMigrator(t)
	return repo
}

// NewWithMigrator is New that also hands back the migrator gating the repository.
func NewWithMigrator(t testing.TB) (*repository.SQLRepo, *migrate.Migrator) {
	t.Helper()

	db, err := repository.Open(filepath.Join(t.TempDir(), "philabid.db"), repository.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })

	migrations, err := migrate.Embedded()
	require.NoError(t, err)
	migrator := migrate.New(db, migrations)
	_, err = migrator.Run(context.Background())
	require.NoError(t, err)

	return repository.NewSQLRepo(db, migrator, 10*time.Second), migrator
}
