package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/proxima/internal/hints"
)

type HintStateResponse struct {
	Stage int         `json:"stage"`
	State hints.State `json:"state"`
	Text  string      `json:"text,omitempty"`
}

func stageParam(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "stage"))
	return n, err == nil
}

func handleHintRequest(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, ok := stageParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid stage")
			return
		}
		state, err := g.Controller.RequestHint(r.Context(), stage)
		if err != nil {
			writeGameError(w, err)
			return
		}
		resp := HintStateResponse{Stage: stage, State: state}
		if state == hints.Revealed {
			resp.Text, _ = g.Hints.Show(stage)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHintConfirm(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rev, err := g.Controller.ConfirmHint(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rev)
	}
}

func handleHintCancel(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Hints.Cancel()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleHintShow(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, ok := stageParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid stage")
			return
		}
		text, revealed := g.Hints.Show(stage)
		if !revealed {
			writeError(w, http.StatusNotFound, "hint not revealed")
			return
		}
		writeJSON(w, http.StatusOK, HintStateResponse{Stage: stage, State: hints.Revealed, Text: text})
	}
}
