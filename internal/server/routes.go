package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, g Game, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Proxima Rescue API", "/openapi.json", "/docs"))

	r.Route("/api/game", func(r chi.Router) {
		r.Use(limitBody)
		r.Get("/state", handleGameState(g))
		r.Post("/start", handleStart(g))
		r.Post("/home", handleHome(g))
		r.Post("/phase/next", handleNextPhase(g))
		r.Post("/phase/prev", handlePrevPhase(g))
		r.Post("/stage/prev", handlePrevStage(g))
		r.Post("/stages/{stage}/answer", handleAnswer(g))
		r.Post("/unlock", handleUnlock(g))
		r.Post("/complete", handleComplete(g))
		r.Get("/result", handleResult(g))
		r.Post("/reset", handleReset(g))
		r.Get("/events", handleEvents(g.Broker))

		r.Post("/hints/confirm", handleHintConfirm(g))
		r.Post("/hints/cancel", handleHintCancel(g))
		r.Post("/hints/{stage}/request", handleHintRequest(g))
		r.Get("/hints/{stage}", handleHintShow(g))
	})

	r.With(limitBody).Post("/api/admin/jump", handleAdminJump(g))
	r.Get("/api/report", handleReport(logger, g))

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
