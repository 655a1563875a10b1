package kv_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/playperu/proxima/internal/kv"
)

func TestBackends(t *testing.T) {
	backends := []string{"bolt", "libsql", "sqlite", "memory"}
	if os.Getenv("REDIS_URL") != "" {
		backends = append(backends, "redis")
	}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			store, err := kv.Open(ctx, kv.Options{
				Backend:  backend,
				DataDir:  t.TempDir(),
				RedisURL: os.Getenv("REDIS_URL"),
			})
			if err != nil {
				t.Fatalf("opening %s: %v", backend, err)
			}
			defer store.Close()

			if err := store.Check(ctx); err != nil {
				t.Fatalf("check: %v", err)
			}

			key := "kv_test_" + backend
			if _, err := store.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("get missing: err = %v, want ErrNotFound", err)
			}

			if err := store.Set(ctx, key, []byte(`{"currentStage":1}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, key, []byte(`{"currentStage":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !bytes.Equal(got, []byte(`{"currentStage":2}`)) {
				t.Errorf("get = %s, want overwritten value", got)
			}

			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/proxima.bolt"

	b, err := kv.OpenBolt(path)
	if err != nil {
		t.Fatalf("opening bolt: %v", err)
	}
	if err := b.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	b.Close()

	b, err = kv.OpenBolt(path)
	if err != nil {
		t.Fatalf("reopening bolt: %v", err)
	}
	defer b.Close()

	got, err := b.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("get = %q, want v", got)
	}
}

func TestMemoryFail(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	boom := errors.New("quota exceeded")

	m.Fail(boom)
	if err := m.Set(ctx, "k", nil); !errors.Is(err, boom) {
		t.Fatalf("set err = %v, want %v", err, boom)
	}
	if err := m.Check(ctx); !errors.Is(err, boom) {
		t.Fatalf("check err = %v, want %v", err, boom)
	}

	m.Fail(nil)
	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set after recovery: %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := kv.Open(context.Background(), kv.Options{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
