package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/proxima/internal/answers"
	"github.com/playperu/proxima/internal/catalog"
	"github.com/playperu/proxima/internal/clock"
	"github.com/playperu/proxima/internal/config"
	"github.com/playperu/proxima/internal/events"
	"github.com/playperu/proxima/internal/handler/health"
	"github.com/playperu/proxima/internal/handler/wsevents"
	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/kv"
	"github.com/playperu/proxima/internal/score"
	"github.com/playperu/proxima/internal/server"
	"github.com/playperu/proxima/internal/stages"
	"github.com/playperu/proxima/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Content ---
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		logger.Info("loaded catalog", "path", cfg.CatalogPath, "stages", len(cat.Stages))
	}

	// --- Storage ---
	backend, err := kv.Open(ctx, kv.Options{
		Backend:  cfg.Backend,
		DataDir:  cfg.DataDir,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	defer backend.Close()
	logger.Info("opened store", "backend", cfg.Backend, "key", cfg.StorageKey)

	store := storage.New(backend, logger, storage.WithKey(cfg.StorageKey))

	// --- Engine ---
	broker := events.NewBroker()
	sink := events.Fanout{broker, events.Log{Logger: logger}}
	clk := clock.New(store, logger,
		clock.WithCheckpointEvery(cfg.CheckpointEvery),
		clock.WithOnTick(func(elapsed int) {
			e := events.New(events.TypeTimer, 0)
			e.Text = score.FormatElapsed(elapsed)
			broker.Publish(e)
		}),
	)
	hs := hints.New(store, cat.Hints(), sink, logger)
	ctl := stages.New(stages.Deps{
		Catalog: cat,
		Store:   store,
		Clock:   clk,
		Hints:   hs,
		Checker: answers.New(cat.Answers, answers.NewOverride(cfg.OverrideCode, cfg.OverrideCodeHash)),
		Sink:    sink,
		Logger:  logger,
	}, stages.WithDelay(cfg.AdvanceDelay))

	if cfg.RestoreOnStart {
		v := ctl.Restore(ctx)
		logger.Info("restored view", "stage", v.Stage, "result", v.Result)
	}

	// --- HTTP Server ---
	game := server.Game{Controller: ctl, Hints: hs, Clock: clk, Store: store, Broker: broker}
	srv := server.New(cfg.HTTPAddr, logger, game, cfg.SPADir, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"store":   backend,
			"catalog": cat,
		}).Routes())
		r.Mount("/ws", wsevents.NewHandler(logger, broker).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		if clk.Running() {
			elapsed := clk.Stop(context.Background())
			logger.Info("timer checkpointed", "elapsed", elapsed)
		}
		return err
	})

	return g.Wait()
}
