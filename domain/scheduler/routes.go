package scheduler

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the agent-trigger and run-history endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/agents/trigger", h.Trigger)
	e.GET("/api/agents/runs", h.Runs)
}
