package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sportinger/argus/domain/intel"
)

func TestRunRegistryStartAndFinish(t *testing.T) {
	reg := NewRunRegistry()

	runID := reg.Start("gdelt")
	require.NotEmpty(t, runID)

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, intel.RunRunning, snap[0].Status)

	reg.Finish(runID, intel.RunCompleted, 3, 7, nil)

	snap = reg.Snapshot()
	assert.Equal(t, intel.RunCompleted, snap[0].Status)
	assert.EqualValues(t, 3, snap[0].DocumentsCollected)
	assert.EqualValues(t, 7, snap[0].EntitiesExtracted)
	assert.NotNil(t, snap[0].FinishedAt)
}

func TestRunRegistrySnapshotNewestFirst(t *testing.T) {
	reg := NewRunRegistry()

	first := reg.Start("gdelt")
	second := reg.Start("adsb")

	snap := reg.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, second, snap[0].RunID)
	assert.Equal(t, first, snap[1].RunID)
}

func TestRunRegistryEvictsOldestOverCap(t *testing.T) {
	reg := NewRunRegistry()

	var lastID string
	for i := 0; i < maxRuns+10; i++ {
		lastID = reg.Start("gdelt")
	}

	snap := reg.Snapshot()
	require.Len(t, snap, maxRuns)
	assert.Equal(t, lastID, snap[0].RunID, "newest run should survive eviction")
}

func TestRunRegistryFinishUnknownRunIsNoop(t *testing.T) {
	reg := NewRunRegistry()
	reg.Start("gdelt")

	reg.Finish("does-not-exist", intel.RunFailed, 0, 0, nil)

	snap := reg.Snapshot()
	assert.Equal(t, intel.RunRunning, snap[0].Status, "Finish on an unknown run id must not mutate the existing run")
}
