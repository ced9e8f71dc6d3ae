package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sportinger/argus/domain/intel"
)

// maxRuns bounds the in-memory run registry; once it fills, the oldest
// entries are dropped first.
const maxRuns = 100

// RunRegistry is an append-only, capped history of agent runs, guarded by
// a single reader-writer lock shared by the scheduler and the trigger
// handler's write path.
type RunRegistry struct {
	mu   sync.RWMutex
	runs []intel.AgentRunStatus
}

// NewRunRegistry builds an empty run registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{}
}

// Start appends a new "running" record and returns its run id.
func (r *RunRegistry) Start(agentName string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	r.runs = append(r.runs, intel.AgentRunStatus{
		RunID:     runID,
		AgentName: agentName,
		Status:    intel.RunRunning,
		StartedAt: time.Now().UTC(),
	})

	if len(r.runs) > maxRuns {
		r.runs = r.runs[len(r.runs)-maxRuns:]
	}

	return runID
}

// Finish mutates the named run's terminal fields in place.
func (r *RunRegistry) Finish(runID string, status intel.AgentRunState, docs, entities uint64, errMsg *string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.runs {
		if r.runs[i].RunID == runID {
			finishedAt := time.Now().UTC()
			r.runs[i].Status = status
			r.runs[i].FinishedAt = &finishedAt
			r.runs[i].DocumentsCollected = docs
			r.runs[i].EntitiesExtracted = entities
			r.runs[i].Error = errMsg
			return
		}
	}
}

// Snapshot returns every retained run, newest-first.
func (r *RunRegistry) Snapshot() []intel.AgentRunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]intel.AgentRunStatus, len(r.runs))
	for i, run := range r.runs {
		out[len(r.runs)-1-i] = run
	}
	return out
}
