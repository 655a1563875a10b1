// Command report prints the mission report in the terminal, either from the
// configured store or from a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/playperu/proxima/internal/config"
	"github.com/playperu/proxima/internal/kv"
	"github.com/playperu/proxima/internal/report"
	"github.com/playperu/proxima/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	serverURL := fs.String("url", "", "fetch the report from a running server instead of the store")
	raw := fs.Bool("raw", false, "print Markdown without terminal styling")
	style := fs.String("style", "dark", "glamour style (dark, light, notty)")
	width := fs.Int("width", 78, "word wrap width")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		md  string
		err error
	)
	if *serverURL != "" {
		md, err = fetch(ctx, *serverURL)
	} else {
		md, err = fromStore(ctx)
	}
	if err != nil {
		return err
	}

	if *raw {
		_, err = io.WriteString(stdout, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(*style),
		glamour.WithWordWrap(*width),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(stdout, out)
	return err
}

func fromStore(ctx context.Context) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	backend, err := kv.Open(ctx, kv.Options{
		Backend:  cfg.Backend,
		DataDir:  cfg.DataDir,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return "", fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	defer backend.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(backend, logger, storage.WithKey(cfg.StorageKey))
	return report.Build(store.Load(ctx), time.Now()).Markdown()
}

func fetch(ctx context.Context, base string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/report", nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching report: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	return string(body), nil
}
