// Package server exposes the game engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/proxima/internal/clock"
	"github.com/playperu/proxima/internal/events"
	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/stages"
	"github.com/playperu/proxima/internal/storage"
)

// Game is everything the handlers drive.
type Game struct {
	Controller *stages.Controller
	Hints      *hints.Service
	Clock      *clock.Clock
	Store      *storage.Store
	Broker     *events.Broker
	// Now stamps reports. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New builds the server. mount attaches routes owned by other packages,
// such as /healthz and /ws.
func New(addr string, logger *slog.Logger, game Game, spaDir string, mount func(r chi.Router)) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(logger, game, spaDir, mount),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter returns the fully wired handler.
func NewRouter(logger *slog.Logger, game Game, spaDir string, mount func(r chi.Router)) http.Handler {
	if game.Now == nil {
		game.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	if mount != nil {
		mount(r)
	}
	addRoutes(r, logger, game, spaDir)
	return r
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
