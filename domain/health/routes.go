package health

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the health endpoint, the JSON job/scheduler
// metrics endpoints, and a raw Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, h *Handler, m *MetricsHandler) {
	e.GET("/api/health", h.Health)
	e.GET("/api/metrics/jobs", m.JobMetrics)
	e.GET("/api/metrics/scheduler", m.SchedulerMetrics)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
