package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/stages"
	"github.com/playperu/proxima/internal/storage"
)

// ErrorResponse is returned for all error responses. Kind is set for
// player-facing feedback.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readJSON decodes the body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeGameError renders an engine error with the status it maps to.
func writeGameError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	resp := ErrorResponse{Error: err.Error()}
	var fb *stages.Feedback
	if errors.As(err, &fb) {
		resp.Kind = fb.Kind
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, stages.ErrInputMissing),
		errors.Is(err, stages.ErrInvalidStage),
		errors.Is(err, stages.ErrInvalidPhase):
		return http.StatusBadRequest
	case errors.Is(err, stages.ErrIncorrect),
		errors.Is(err, stages.ErrAccessDenied):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stages.ErrTransitionPending),
		errors.Is(err, stages.ErrAwaitingCode),
		errors.Is(err, stages.ErrNoPendingUnlock),
		errors.Is(err, stages.ErrGameCompleted),
		errors.Is(err, stages.ErrWrongStage),
		errors.Is(err, storage.ErrTeamNameLocked),
		errors.Is(err, hints.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, hints.ErrNoHint):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
