package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sportinger/argus/domain/agents"
	"github.com/Sportinger/argus/domain/extraction"
	"github.com/Sportinger/argus/domain/graph"
	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/logger"
	"github.com/Sportinger/argus/pkg/metrics"
)

// Runner executes one full collect→extract→store→cross-reference pass for
// a named agent and records its outcome in the run registry.
type Runner struct {
	registry *RunRegistry
	agents   agents.Registry
	pipeline *extraction.Pipeline
	store    graph.Store
	log      *slog.Logger
}

// NewRunner builds a Runner over the shared agent registry, extraction
// pipeline, and graph store.
func NewRunner(registry *RunRegistry, agentRegistry agents.Registry, pipeline *extraction.Pipeline, store graph.Store, log *slog.Logger) *Runner {
	return &Runner{
		registry: registry,
		agents:   agentRegistry,
		pipeline: pipeline,
		store:    store,
		log:      log.With(logger.Scope("scheduler")),
	}
}

// errMsg turns an error into the *string the run registry stores.
func errMsg(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}

// RunOnce runs one collect→extract→store→cross-reference pass for the
// named agent, blocking until it completes. Per-stage failures mark the
// run failed without panicking the caller; RunOnce itself only returns
// an error for conditions the caller must act on (an unknown agent name).
func (r *Runner) RunOnce(ctx context.Context, agentName string) error {
	if _, ok := r.agents[agentName]; !ok {
		return intel.NewNotFoundError(fmt.Sprintf("unknown agent: %s", agentName))
	}
	runID := r.registry.Start(agentName)
	r.runPipeline(ctx, agentName, runID)
	return nil
}

// Trigger starts a run for the named agent and returns its run_id
// immediately, running the rest of the pipeline on a detached
// background goroutine. Returns a NotFoundError for an unknown agent
// name without starting a run.
func (r *Runner) Trigger(agentName string) (string, error) {
	if _, ok := r.agents[agentName]; !ok {
		return "", intel.NewNotFoundError(fmt.Sprintf("unknown agent: %s", agentName))
	}
	runID := r.registry.Start(agentName)
	go r.runPipeline(context.Background(), agentName, runID)
	return runID, nil
}

// runPipeline executes the collect→extract→store→cross-reference pass
// for a run that has already been registered, finishing it in the
// registry before returning.
func (r *Runner) runPipeline(ctx context.Context, agentName, runID string) {
	agent := r.agents[agentName]
	r.log.Info("scheduled collection starting", slog.String("agent", agentName), slog.String("run_id", runID))

	docs, err := agent.Collect(ctx)
	if err != nil {
		r.log.Error("collection failed", slog.String("agent", agentName), logger.Error(err))
		r.registry.Finish(runID, intel.RunFailed, 0, 0, errMsg(err))
		metrics.SchedulerRunsTotal.WithLabelValues(agentName, string(intel.RunFailed)).Inc()
		return
	}
	r.log.Info("collection complete", slog.String("agent", agentName), slog.Int("count", len(docs)))
	metrics.AgentDocumentsCollected.WithLabelValues(agentName).Set(float64(agent.Status(ctx).DocumentsCollected))

	if len(docs) == 0 {
		r.registry.Finish(runID, intel.RunCompleted, 0, 0, nil)
		metrics.SchedulerRunsTotal.WithLabelValues(agentName, string(intel.RunCompleted)).Inc()
		return
	}

	results, err := r.pipeline.ExtractBatch(ctx, docs)
	if err != nil {
		r.log.Error("extraction failed", slog.String("agent", agentName), logger.Error(err))
		r.registry.Finish(runID, intel.RunFailed, uint64(len(docs)), 0, errMsg(err))
		metrics.SchedulerRunsTotal.WithLabelValues(agentName, string(intel.RunFailed)).Inc()
		return
	}
	r.log.Info("extraction complete", slog.String("agent", agentName), slog.Int("results", len(results)))

	var entityCount uint64
	var storeErrors int
	for i := range results {
		entityCount += uint64(len(results[i].Entities))
		if err := r.store.StoreExtraction(ctx, &results[i]); err != nil {
			r.log.Error("failed to store extraction result", slog.String("agent", agentName), logger.Error(err))
			storeErrors++
		}
	}

	r.crossReference(ctx, agentName, results)

	if storeErrors > 0 {
		msg := fmt.Sprintf("%d storage errors", storeErrors)
		r.registry.Finish(runID, intel.RunCompleted, uint64(len(docs)), entityCount, &msg)
	} else {
		r.registry.Finish(runID, intel.RunCompleted, uint64(len(docs)), entityCount, nil)
	}
	metrics.SchedulerRunsTotal.WithLabelValues(agentName, string(intel.RunCompleted)).Inc()

	r.log.Info("scheduled run complete",
		slog.String("agent", agentName), slog.Uint64("documents", uint64(len(docs))), slog.Uint64("entities", entityCount))
}

// crossReference asks every other lookup-capable agent about each newly
// extracted entity, feeding anything found back through extraction and
// storage. Failures are logged and otherwise ignored; cross-referencing
// never aborts the run that triggered it.
func (r *Runner) crossReference(ctx context.Context, sourceAgent string, results []intel.ExtractionResult) {
	for _, result := range results {
		for _, entity := range result.Entities {
			for name, agent := range r.agents {
				if name == sourceAgent {
					continue
				}

				lookup, ok := agent.(agents.Lookup)
				if !ok || !lookup.CanLookup(entity.EntityType) {
					continue
				}

				r.log.Info("cross-referencing entity",
					slog.String("entity", entity.Name), slog.String("entity_type", string(entity.EntityType)), slog.String("lookup_agent", name))

				docs, err := lookup.Lookup(ctx, entity.Name, entity.EntityType)
				if err != nil {
					r.log.Warn("cross-reference lookup failed",
						slog.String("entity", entity.Name), slog.String("lookup_agent", name), logger.Error(err))
					continue
				}
				if len(docs) == 0 {
					continue
				}

				r.log.Info("cross-reference found documents",
					slog.String("entity", entity.Name), slog.String("lookup_agent", name), slog.Int("docs", len(docs)))

				crossResults, err := r.pipeline.ExtractBatch(ctx, docs)
				if err != nil {
					r.log.Warn("cross-reference extraction failed", logger.Error(err))
					continue
				}
				for i := range crossResults {
					if err := r.store.StoreExtraction(ctx, &crossResults[i]); err != nil {
						r.log.Warn("failed to store cross-reference extraction", logger.Error(err))
					}
				}
			}
		}
	}
}
