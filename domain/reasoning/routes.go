package reasoning

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the reasoning-query endpoint.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/reasoning/query", h.Query)
}
