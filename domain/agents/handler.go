package agents

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/intel"
)

// Handler serves the read-only agent listing endpoint. Triggering a run
// and listing past runs live in domain/scheduler instead, since that
// package already owns the run registry and importing it back here would
// cycle.
type Handler struct {
	registry Registry
}

// NewHandler builds an agents Handler over the shared registry.
func NewHandler(registry Registry) *Handler {
	return &Handler{registry: registry}
}

// listResponse is the GET /api/agents response body.
type listResponse struct {
	Agents []intel.AgentStatus `json:"agents"`
}

// List fans Status(ctx) out over every registered agent.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	statuses := make([]intel.AgentStatus, 0, len(h.registry))
	for _, agent := range h.registry {
		statuses = append(statuses, agent.Status(ctx))
	}
	return c.JSON(http.StatusOK, listResponse{Agents: statuses})
}
