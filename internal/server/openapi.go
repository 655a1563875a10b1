package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/report"
	"github.com/playperu/proxima/internal/stages"
)

// HealthResponse maps each checked dependency to its status.
type HealthResponse map[string]struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

// stagePath documents the {stage} path parameter.
type stagePath struct {
	Stage int `path:"stage"`
}

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               any
	errors                             []int
}

var operations = []operation{
	{http.MethodGet, "/healthz", "Health check",
		"Returns the health status of the storage backend and content catalog.",
		nil, HealthResponse{}, []int{http.StatusServiceUnavailable}},
	{http.MethodGet, "/ws/events", "WebSocket event feed",
		"Upgrades to a WebSocket connection that pushes every game event as JSON.",
		nil, nil, nil},
	{http.MethodGet, "/api/game/state", "Get game state",
		"Returns the visible stage and phase, the saved record, the timer and the hint penalty.",
		nil, GameStateResponse{}, nil},
	{http.MethodPost, "/api/game/start", "Start game",
		"Records the team name, starts the timer and shows stage 1.",
		StartRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusConflict}},
	{http.MethodPost, "/api/game/home", "Return to intro",
		"Stops the timer and shows the intro. Progress is kept.",
		nil, stages.View{}, nil},
	{http.MethodPost, "/api/game/phase/next", "Next phase",
		"Moves forward within the current stage once every validation key passes.",
		PhaseRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict}},
	{http.MethodPost, "/api/game/phase/prev", "Previous phase",
		"Moves back within the current stage.",
		PrevPhaseRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusConflict}},
	{http.MethodPost, "/api/game/stage/prev", "Previous stage",
		"Shows an earlier stage without any gate.",
		PrevStageRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusConflict}},
	{http.MethodPost, "/api/game/stages/{stage}/answer", "Submit answer",
		"Checks the stage answer. A correct answer schedules the advance to the next stage.",
		AnswerRequest{}, stages.Outcome{}, []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict}},
	{http.MethodPost, "/api/game/unlock", "Enter access code",
		"Enters the stage waiting for its access code. Codes are case-insensitive.",
		UnlockRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict}},
	{http.MethodPost, "/api/game/complete", "Complete game",
		"Stops the timer and records completion. Accepted once.",
		nil, stages.Result{}, []int{http.StatusConflict}},
	{http.MethodGet, "/api/game/result", "Get result",
		"Returns the score card, showing the result screen once the game is completed.",
		nil, stages.Result{}, nil},
	{http.MethodPost, "/api/game/reset", "Reset game",
		"Cancels pending transitions and erases all progress.",
		nil, stages.View{}, nil},
	{http.MethodGet, "/api/game/events", "SSE event stream",
		"Server-Sent Events stream of game events.",
		nil, nil, nil},
	{http.MethodPost, "/api/game/hints/{stage}/request", "Request hint",
		"Asks for the hint of the stage on screen. Nothing is charged until confirmed.",
		stagePath{}, HintStateResponse{}, []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict}},
	{http.MethodPost, "/api/game/hints/confirm", "Confirm hint",
		"Charges the pending hint and reveals it.",
		nil, hints.Reveal{}, []int{http.StatusConflict}},
	{http.MethodPost, "/api/game/hints/cancel", "Cancel hint",
		"Withdraws the pending hint request without charge.",
		nil, nil, nil},
	{http.MethodGet, "/api/game/hints/{stage}", "Show hint",
		"Returns a hint that was already revealed. Never charges.",
		stagePath{}, HintStateResponse{}, []int{http.StatusBadRequest, http.StatusNotFound}},
	{http.MethodPost, "/api/admin/jump", "Jump to stage",
		"Shows any stage. Requires the override code.",
		JumpRequest{}, stages.View{}, []int{http.StatusBadRequest, http.StatusForbidden}},
	{http.MethodGet, "/api/report", "Mission report",
		"Markdown mission report download. Pass format=json for the structured form.",
		nil, report.Report{}, nil},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Proxima Rescue API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the PROXIMA RESCUE COMMAND escape game.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		switch {
		case op.path == "/ws/events":
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
				openapi.WithContentType("text/plain"))
		case op.path == "/api/game/events":
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
				openapi.WithContentType("text/event-stream"))
		case op.resp == nil:
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
		default:
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(http.StatusOK))
		}
		for _, status := range op.errors {
			if status == http.StatusServiceUnavailable {
				oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(status))
				continue
			}
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}
	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
