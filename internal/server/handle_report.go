package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/playperu/proxima/internal/report"
)

// handleReport serves the mission report as a Markdown download, or as
// JSON with ?format=json.
func handleReport(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := g.Store.Load(r.Context())
		if !st.IsCompleted {
			st.ElapsedTime = g.Clock.Elapsed()
		}
		rep := report.Build(st, g.Now())

		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, rep)
			return
		}

		md, err := rep.Markdown()
		if err != nil {
			logger.Error("report render failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(rep.Filename())))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(md))
	}
}
