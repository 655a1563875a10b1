// Package kv provides the single-process key-value backends that hold the
// persisted game record.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playperu/proxima/internal/database"
	"github.com/playperu/proxima/internal/migrations"
)

var ErrNotFound = errors.New("not found")

// Store is a minimal string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Check reports whether the backend is reachable.
	Check(ctx context.Context) error
	Close() error
}

type Options struct {
	Backend  string
	DataDir  string
	RedisURL string
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "bolt":
		return OpenBolt(filepath.Join(opts.DataDir, "proxima.bolt"))
	case "libsql", "sqlite":
		if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err := database.Open(ctx, opts.Backend, filepath.Join(opts.DataDir, "proxima.db"))
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", opts.Backend, err)
		}
		if err := migrations.RunContext(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return NewSQL(db), nil
	case "redis":
		return OpenRedis(ctx, opts.RedisURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
