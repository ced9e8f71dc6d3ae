package scheduler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/apperror"
)

// Handler serves the agent-trigger and run-history endpoints. It lives
// alongside the run registry and runner it wraps rather than in
// domain/agents, since domain/agents has no reason to import this
// package back.
type Handler struct {
	registry *RunRegistry
	runner   *Runner
}

// NewHandler builds a scheduler Handler.
func NewHandler(registry *RunRegistry, runner *Runner) *Handler {
	return &Handler{registry: registry, runner: runner}
}

type triggerRequest struct {
	AgentName string `json:"agent_name"`
}

type triggerResponse struct {
	RunID     string `json:"run_id"`
	AgentName string `json:"agent_name"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type runsResponse struct {
	Runs []intel.AgentRunStatus `json:"runs"`
}

// Trigger registers a new run for the named agent and spawns its
// collect→extract→store pipeline in the background, returning the run_id
// immediately. An unknown agent name returns 404 without starting a run.
func (h *Handler) Trigger(c echo.Context) error {
	var req triggerRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body").WithInternal(err).ToEchoError()
	}

	runID, err := h.runner.Trigger(req.AgentName)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusAccepted, triggerResponse{
		RunID:     runID,
		AgentName: req.AgentName,
		Status:    string(intel.RunRunning),
		Message:   "agent run started",
	})
}

// Runs returns the run registry's newest-first snapshot.
func (h *Handler) Runs(c echo.Context) error {
	return c.JSON(http.StatusOK, runsResponse{Runs: h.registry.Snapshot()})
}
