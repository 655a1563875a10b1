package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/proxima/internal/stages"
	"github.com/playperu/proxima/internal/storage"
)

// GameStateResponse is the full picture the page renders from.
type GameStateResponse struct {
	View        stages.View       `json:"view"`
	Record      storage.GameState `json:"record"`
	Elapsed     int               `json:"elapsed"`
	Time        string            `json:"time"`
	Penalty     int               `json:"penalty"`
	PendingHint *int              `json:"pendingHint,omitempty"`
}

type StartRequest struct {
	TeamName string `json:"teamName"`
}

type PhaseRequest struct {
	Target   *int              `json:"target,omitempty"`
	Validate []string          `json:"validate,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type PrevPhaseRequest struct {
	Target *int `json:"target,omitempty"`
}

type PrevStageRequest struct {
	Stage int `json:"stage"`
}

type AnswerRequest struct {
	Stage  int               `path:"stage" json:"-"`
	Fields map[string]string `json:"fields"`
}

type UnlockRequest struct {
	Code string `json:"code"`
}

func handleGameState(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gameState(r, g))
	}
}

func gameState(r *http.Request, g Game) GameStateResponse {
	resp := GameStateResponse{
		View:    g.Controller.View(),
		Record:  g.Store.Load(r.Context()),
		Elapsed: g.Clock.Elapsed(),
		Time:    g.Clock.Formatted(),
		Penalty: g.Hints.Penalty(r.Context()),
	}
	if stage, ok := g.Hints.PendingStage(); ok {
		resp.PendingHint = &stage
	}
	return resp
}

func handleStart(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.Start(r.Context(), req.TeamName)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleHome(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Controller.Home(r.Context()))
	}
}

func handleNextPhase(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PhaseRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.NextPhase(r.Context(), stages.PhaseMove{
			Target:   req.Target,
			Validate: req.Validate,
			Fields:   req.Fields,
		})
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handlePrevPhase(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PrevPhaseRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.PrevPhase(req.Target)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handlePrevStage(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PrevStageRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.PrevStage(r.Context(), req.Stage)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// handleAnswer returns the outcome even when the answer is refused, so the
// page can show which part was wrong.
func handleAnswer(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := strconv.Atoi(chi.URLParam(r, "stage"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid stage")
			return
		}
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := g.Controller.Submit(r.Context(), stage, req.Fields)
		var fb *stages.Feedback
		switch {
		case errors.As(err, &fb):
			writeJSON(w, statusFor(err), out)
		case err != nil:
			writeGameError(w, err)
		default:
			writeJSON(w, http.StatusOK, out)
		}
	}
}

func handleUnlock(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnlockRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.Unlock(r.Context(), req.Code)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleComplete(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := g.Controller.Complete(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// handleResult reads the score card. It only switches to the result screen
// once the game is completed.
func handleResult(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := g.Controller.Result(r.Context())
		if res.Completed {
			res = g.Controller.ShowResult(r.Context())
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleReset(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Controller.Reset(r.Context()))
	}
}
