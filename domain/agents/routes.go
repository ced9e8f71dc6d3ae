package agents

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the agent listing endpoint.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/agents", h.List)
}
