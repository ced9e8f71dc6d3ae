package graph

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the entity, graph-query, and timeline endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/entities/search", h.SearchEntities)
	e.GET("/api/entities/:id", h.GetEntity)
	e.POST("/api/graph/query", h.Query)
	e.GET("/api/graph/stats", h.Stats)
	e.GET("/api/graph/neighbors/:id", h.GetNeighbors)
	e.POST("/api/timeline", h.Timeline)
}
