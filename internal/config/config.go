package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backends accepted by STORE_BACKEND.
const (
	BackendBolt   = "bolt"
	BackendLibSQL = "libsql"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"web"`

	DataDir    string `env:"DATA_DIR" envDefault:"data"`
	Backend    string `env:"STORE_BACKEND" envDefault:"bolt"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	StorageKey string `env:"STORAGE_KEY" envDefault:"proxima_rescue_data"`

	OverrideCode     string `env:"OVERRIDE_CODE" envDefault:"tlsekq"`
	OverrideCodeHash string `env:"OVERRIDE_CODE_HASH"`
	CatalogPath      string `env:"CATALOG_PATH"`

	AdvanceDelay    time.Duration `env:"ADVANCE_DELAY" envDefault:"2s"`
	CheckpointEvery int           `env:"CHECKPOINT_EVERY" envDefault:"10"`
	RestoreOnStart  bool          `env:"RESTORE_ON_START" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendBolt, BackendLibSQL, BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}
	if c.StorageKey == "" {
		return errors.New("STORAGE_KEY must not be empty")
	}
	if c.OverrideCode == "" && c.OverrideCodeHash == "" {
		return errors.New("one of OVERRIDE_CODE or OVERRIDE_CODE_HASH is required")
	}
	if c.AdvanceDelay < 0 {
		return errors.New("ADVANCE_DELAY must not be negative")
	}
	if c.CheckpointEvery < 1 {
		return errors.New("CHECKPOINT_EVERY must be at least 1")
	}
	return nil
}
