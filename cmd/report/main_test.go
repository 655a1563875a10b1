package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/report" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte("# PROXIMA RESCUE COMMAND\n\n| 팀 | Orion |\n"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-url", srv.URL, "-raw"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "| 팀 | Orion |") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"-url", srv.URL, "-style", "notty"}, &out); err != nil {
		t.Fatalf("run styled: %v", err)
	}
	if !strings.Contains(out.String(), "Orion") {
		t.Errorf("styled output = %q", out.String())
	}
}

func TestRunServerError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := run(context.Background(), []string{"-url", srv.URL, "-raw"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestRunFromMemoryStore(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-raw"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "익명 팀") {
		t.Errorf("output = %q", out.String())
	}
}
