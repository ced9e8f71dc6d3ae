package health

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/agents"
	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/domain/scheduler"
)

// MetricsHandler serves JSON summaries of extraction throughput and
// per-agent scheduler run counts, backed by the same in-memory run
// registry and agent registry the scheduler uses. Raw Prometheus
// counters for the same data are scraped separately at /metrics.
type MetricsHandler struct {
	registry *scheduler.RunRegistry
	agents   agents.Registry
}

// NewMetricsHandler builds a MetricsHandler over the shared run registry
// and agent registry.
func NewMetricsHandler(registry *scheduler.RunRegistry, agentRegistry agents.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry, agents: agentRegistry}
}

// AgentJobMetrics summarizes one agent's run history from the run
// registry: counts by terminal state plus totals collected/extracted.
type AgentJobMetrics struct {
	Agent              string `json:"agent"`
	Running            int    `json:"running"`
	Completed          int    `json:"completed"`
	Failed             int    `json:"failed"`
	Total              int    `json:"total"`
	DocumentsCollected uint64 `json:"documents_collected"`
	EntitiesExtracted  uint64 `json:"entities_extracted"`
}

// AllJobMetrics is the /api/metrics/jobs response body.
type AllJobMetrics struct {
	Agents    []AgentJobMetrics `json:"agents"`
	Timestamp string            `json:"timestamp"`
}

// JobMetrics aggregates the run registry's retained history into
// per-agent counters.
func (h *MetricsHandler) JobMetrics(c echo.Context) error {
	byAgent := make(map[string]*AgentJobMetrics)
	order := make([]string, 0)

	for _, run := range h.registry.Snapshot() {
		m, ok := byAgent[run.AgentName]
		if !ok {
			m = &AgentJobMetrics{Agent: run.AgentName}
			byAgent[run.AgentName] = m
			order = append(order, run.AgentName)
		}
		m.Total++
		m.DocumentsCollected += run.DocumentsCollected
		m.EntitiesExtracted += run.EntitiesExtracted
		switch run.Status {
		case intel.RunRunning:
			m.Running++
		case intel.RunCompleted:
			m.Completed++
		case intel.RunFailed:
			m.Failed++
		}
	}

	metrics := make([]AgentJobMetrics, 0, len(order))
	for _, name := range order {
		metrics = append(metrics, *byAgent[name])
	}

	return c.JSON(http.StatusOK, AllJobMetrics{
		Agents:    metrics,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SchedulerMetrics reports the currently-registered agents and their
// rolling counters, drawn straight from each agent's own Status().
func (h *MetricsHandler) SchedulerMetrics(c echo.Context) error {
	ctx := c.Request().Context()

	statuses := make([]intel.AgentStatus, 0, len(h.agents))
	for _, agent := range h.agents {
		statuses = append(statuses, agent.Status(ctx))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents":    statuses,
		"run_count": len(h.registry.Snapshot()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
