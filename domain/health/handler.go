// Package health exposes the service's own health-check endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/graph"
)

// healthCheckTimeout bounds how long the graph-connectivity probe may
// take before the endpoint reports unhealthy anyway.
const healthCheckTimeout = 3 * time.Second

// Handler serves the health endpoint.
type Handler struct {
	store   graph.Store
	startAt time.Time
}

// NewHandler builds a health Handler over the shared graph store.
func NewHandler(store graph.Store) *Handler {
	return &Handler{store: store, startAt: time.Now()}
}

// Response is the health endpoint's JSON body.
type Response struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Uptime          string `json:"uptime"`
	GraphConnected  bool   `json:"graph_connected"`
	QdrantConnected bool   `json:"qdrant_connected"`
	EntityCount     uint64 `json:"entity_count"`
	RelationCount   uint64 `json:"relationship_count"`
}

// version is the service's reported build version. ARGUS has no build-time
// stamping step, so this is a fixed literal rather than an unfilled
// ldflags variable.
const version = "0.1.0"

// Health probes graph connectivity within healthCheckTimeout and reports
// overall status, entity/relationship counts, and connection flags.
// qdrant_connected is hardwired false: no vector backend is wired up.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	resp := Response{
		Status:          "ok",
		Version:         version,
		Uptime:          time.Since(h.startAt).String(),
		GraphConnected:  h.store.IsConnected(),
		QdrantConnected: false,
	}

	if !resp.GraphConnected {
		resp.Status = "degraded"
	} else if entityCount, err := h.store.EntityCount(ctx); err == nil {
		resp.EntityCount = entityCount
		if relCount, err := h.store.RelationshipCount(ctx); err == nil {
			resp.RelationCount = relCount
		}
	} else {
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, resp)
}
