// Package config loads runtime settings from an optional YAML file and
// PHILABID_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the YAML file to load when no path is passed explicitly
const EnvConfigPath = "PHILABID_CONFIG"

type Config struct {
	DBPath         string        `yaml:"db_path"`
	HTTPAddr       string        `yaml:"http_addr"`
	LogLevel       string        `yaml:"log_level"`
	StorageTimeout time.Duration `yaml:"storage_timeout"`
	BusyTimeout    time.Duration `yaml:"busy_timeout"`
	BidRetries     int           `yaml:"bid_retries"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	Tracing        bool          `yaml:"tracing"`
	Backup         Backup        `yaml:"backup"`
}

type Backup struct {
	Enabled  bool          `yaml:"enabled"`
	Dir      string        `yaml:"dir"`
	Keep     int           `yaml:"keep"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the settings used for keys absent from file and environment
func Default() Config {
	return Config{
		DBPath:         "data/philabid.db",
		HTTPAddr:       "127.0.0.1:8080",
		LogLevel:       "info",
		StorageTimeout: 5 * time.Second,
		BusyTimeout:    5 * time.Second,
		BidRetries:     3,
		SweepInterval:  30 * time.Second,
		Backup: Backup{
			Enabled:  true,
			Dir:      "backups",
			Keep:     50,
			Interval: 6 * time.Hour,
		},
	}
}

// Load reads path (or $PHILABID_CONFIG when path is empty) over the defaults,
// then applies environment overrides. With neither set only defaults and
// environment are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot run with
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if strings.ContainsAny(c.DBPath, "?#") {
		errs = append(errs, fmt.Errorf("db_path %q must not contain '?' or '#'", c.DBPath))
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.StorageTimeout <= 0 {
		errs = append(errs, errors.New("storage_timeout must be positive"))
	}
	if c.BidRetries < 1 {
		errs = append(errs, errors.New("bid_retries must be at least 1"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("sweep_interval must be positive"))
	}
	if c.Backup.Enabled {
		if strings.TrimSpace(c.Backup.Dir) == "" {
			errs = append(errs, errors.New("backup.dir is required when backups are enabled"))
		}
		if c.Backup.Keep < 1 {
			errs = append(errs, errors.New("backup.keep must be at least 1"))
		}
		if c.Backup.Interval <= 0 {
			errs = append(errs, errors.New("backup.interval must be positive"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	setString("PHILABID_DB_PATH", &cfg.DBPath)
	setString("PHILABID_HTTP_ADDR", &cfg.HTTPAddr)
	// PORT keeps the listener on loopback
	if p := os.Getenv("PORT"); p != "" {
		cfg.HTTPAddr = "127.0.0.1:" + p
	}
	setString("PHILABID_LOG_LEVEL", &cfg.LogLevel)
	setDuration("PHILABID_STORAGE_TIMEOUT", &cfg.StorageTimeout)
	setDuration("PHILABID_BUSY_TIMEOUT", &cfg.BusyTimeout)
	setInt("PHILABID_BID_RETRIES", &cfg.BidRetries)
	setDuration("PHILABID_SWEEP_INTERVAL", &cfg.SweepInterval)
	setBool("PHILABID_TRACING", &cfg.Tracing)
	setBool("PHILABID_BACKUP_ENABLED", &cfg.Backup.Enabled)
	setString("PHILABID_BACKUP_DIR", &cfg.Backup.Dir)
	setInt("PHILABID_BACKUP_KEEP", &cfg.Backup.Keep)
	setDuration("PHILABID_BACKUP_INTERVAL", &cfg.Backup.Interval)

	return errors.Join(errs...)
}
