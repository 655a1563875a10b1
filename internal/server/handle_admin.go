package server

import (
	"errors"
	"net/http"

	"github.com/playperu/proxima/internal/stages"
)

type JumpRequest struct {
	Code  string `json:"code"`
	Stage int    `json:"stage"`
}

// handleAdminJump lets the operator show any stage with the override code.
func handleAdminJump(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JumpRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := g.Controller.AdminJump(r.Context(), req.Code, req.Stage)
		if errors.Is(err, stages.ErrAccessDenied) {
			writeError(w, http.StatusForbidden, "invalid admin code")
			return
		}
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
