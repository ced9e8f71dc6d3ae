// Package metrics exposes the process's Prometheus collectors: extraction
// concurrency/throughput and per-agent scheduler run counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionConcurrency is the number of documents currently in
	// flight inside a single ExtractBatch call.
	ExtractionConcurrency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "argus_extraction_worker_concurrency",
		Help: "Documents currently being extracted concurrently",
	})

	// ExtractionDocumentsTotal counts documents extracted, by outcome.
	ExtractionDocumentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_extraction_documents_total",
		Help: "Total documents run through the extraction pipeline",
	}, []string{"outcome"})

	// SchedulerRunsTotal counts agent runs, by agent and terminal status.
	SchedulerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_scheduler_runs_total",
		Help: "Total agent collection runs completed",
	}, []string{"agent", "status"})

	// AgentDocumentsCollected tracks cumulative documents collected per
	// agent, mirroring AgentStatus.DocumentsCollected as a gauge.
	AgentDocumentsCollected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "argus_agent_documents_collected",
		Help: "Cumulative documents collected by an agent since process start",
	}, []string{"agent"})
)
