// Package wsevents pushes game events to WebSocket clients.
package wsevents

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
)

const writeTimeout = 5 * time.Second

// Source hands out event subscriptions. *events.Broker satisfies it.
type Source interface {
	Subscribe() chan []byte
	Unsubscribe(ch chan []byte)
}

type Handler struct {
	source Source
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, source Source) *Handler {
	return &Handler{source: source, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.events)
	return r
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := h.source.Subscribe()
	defer h.source.Unsubscribe(ch)

	// Clients only listen; CloseRead cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("websocket closed", "error", ctx.Err())
			return
		case data := <-ch:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
