package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Backend != BackendBolt {
		t.Errorf("backend = %q, want %q", cfg.Backend, BackendBolt)
	}
	if cfg.StorageKey != "proxima_rescue_data" {
		t.Errorf("storage key = %q", cfg.StorageKey)
	}
	if cfg.AdvanceDelay != 2*time.Second {
		t.Errorf("advance delay = %v, want 2s", cfg.AdvanceDelay)
	}
	if cfg.CheckpointEvery != 10 {
		t.Errorf("checkpoint every = %d, want 10", cfg.CheckpointEvery)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ADVANCE_DELAY", "500ms")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("backend = %q, want memory", cfg.Backend)
	}
	if cfg.AdvanceDelay != 500*time.Millisecond {
		t.Errorf("advance delay = %v", cfg.AdvanceDelay)
	}
	if cfg.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Backend:         BackendBolt,
		StorageKey:      "k",
		OverrideCode:    "x",
		CheckpointEvery: 10,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Backend = "etcd" }, true},
		{"empty key", func(c *Config) { c.StorageKey = "" }, true},
		{"no override", func(c *Config) { c.OverrideCode = "" }, true},
		{"hash only", func(c *Config) { c.OverrideCode = ""; c.OverrideCodeHash = "$2a$10$abc" }, false},
		{"negative delay", func(c *Config) { c.AdvanceDelay = -time.Second }, true},
		{"zero checkpoint", func(c *Config) { c.CheckpointEvery = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
