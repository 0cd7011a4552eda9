package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "philabid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/philabid/ledger.db
log_level: debug
storage_timeout: 2s
bid_retries: 5
sweep_interval: 1m
tracing: true
backup:
  dir: /var/backups/philabid
  keep: 7
  interval: 24h
`)

	t.Setenv("PHILABID_LOG_LEVEL", "warn")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/var/lib/philabid/ledger.db", cfg.DBPath)
	require.Equal(t, "warn", cfg.LogLevel, "environment wins over file")
	require.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	require.Equal(t, 2*time.Second, cfg.StorageTimeout)
	require.Equal(t, 5, cfg.BidRetries)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.True(t, cfg.Tracing)
	require.True(t, cfg.Backup.Enabled, "unset keys keep their defaults")
	require.Equal(t, 7, cfg.Backup.Keep)
	require.Equal(t, 24*time.Hour, cfg.Backup.Interval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "malformed_yaml", file: "db_path: [unterminated"},
		{name: "bad_duration_env", env: map[string]string{"PHILABID_STORAGE_TIMEOUT": "soon"}},
		{name: "bad_int_env", env: map[string]string{"PHILABID_BID_RETRIES": "three"}},
		{name: "bad_bool_env", env: map[string]string{"PHILABID_TRACING": "maybe"}},
		{name: "zero_retries", file: "bid_retries: 0"},
		{name: "empty_db_path", env: map[string]string{"PHILABID_DB_PATH": ""}},
		{name: "db_path_with_query", env: map[string]string{"PHILABID_DB_PATH": "data/philabid.db?mode=memory"}},
		{name: "db_path_with_fragment", file: "db_path: data/lots#1.db"},
		{name: "backup_keep_zero", file: "backup:\n  enabled: true\n  keep: 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvConfigPath, "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.file != "" {
				path = writeConfig(t, tc.file)
			}
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := Load(missing)
	require.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv(EnvConfigPath, missing)
	cfg, err := Load("")
	require.Error(t, err, "path from environment is explicit too")
	require.Equal(t, Config{}, cfg)
}

func TestValidate_BackupDisabled(t *testing.T) {
	cfg := Default()
	cfg.Backup = Backup{Enabled: false}
	require.NoError(t, cfg.Validate())
}
