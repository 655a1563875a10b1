package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/stages"
	"github.com/playperu/proxima/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&stages.Feedback{Kind: stages.KindWarning, Err: stages.ErrInputMissing}, http.StatusBadRequest},
		{&stages.Feedback{Kind: stages.KindError, Err: stages.ErrIncorrect}, http.StatusUnprocessableEntity},
		{&stages.Feedback{Kind: stages.KindError, Err: stages.ErrAccessDenied}, http.StatusUnprocessableEntity},
		{stages.ErrTransitionPending, http.StatusConflict},
		{stages.ErrAwaitingCode, http.StatusConflict},
		{stages.ErrGameCompleted, http.StatusConflict},
		{stages.ErrWrongStage, http.StatusConflict},
		{stages.ErrInvalidPhase, http.StatusBadRequest},
		{fmt.Errorf("starting: %w", storage.ErrTeamNameLocked), http.StatusConflict},
		{hints.ErrNotPending, http.StatusConflict},
		{hints.ErrNoHint, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteGameErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeGameError(rec, errors.New("bolt: database not open"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Error != "internal error" {
		t.Errorf("error = %q", got.Error)
	}
}
