package graph

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Sportinger/argus/domain/intel"
)

func TestEntityUpsertCypherMergesByIDWithoutSourceID(t *testing.T) {
	cypher := entityUpsertCypher("Organization", false)

	assert.Contains(t, cypher, "MERGE (n:Organization {id: $id})")
	assert.Contains(t, cypher, "n.confidence = CASE WHEN $confidence > n.confidence THEN $confidence ELSE n.confidence END",
		"confidence must be raised monotonically on match, never lowered")
	assert.Contains(t, cypher, "n.sources = CASE", "sources should accumulate rather than overwrite on match")
}

func TestEntityUpsertCypherMergesBySourceIDWhenPresent(t *testing.T) {
	cypher := entityUpsertCypher("Organization", true)

	assert.Contains(t, cypher, "MERGE (n:Organization {source: $source, source_id: $source_id})")
	assert.Contains(t, cypher, "n.id = $id", "id should be set on create when keyed on source_id")
}

func TestEntityUpsertCypherCrossSourceMergeRaisesNotLowers(t *testing.T) {
	cypher := entityUpsertCypher("Organization", false)

	assert.Contains(t, cypher, "WHERE toLower(existing.name) = toLower($name) AND existing.source <> $source",
		"cross-source lookup should match on case-insensitive name from a different source")
	assert.Contains(t, cypher, "existing.confidence = CASE WHEN $confidence > existing.confidence THEN $confidence ELSE existing.confidence END",
		"cross-source branch should raise confidence monotonically, matching the in-place branch")
	assert.Contains(t, cypher, "WHEN NOT $source IN existing.sources THEN existing.sources + $source",
		"cross-source branch should append the new source without duplicating an existing one")
}

func TestBuildTimelineQueryGlobalDefaultsToEntityScan(t *testing.T) {
	cypher, params := buildTimelineQuery(intel.TimelineQuery{}, 20)

	assert.Contains(t, cypher, "MATCH (e)")
	assert.Contains(t, cypher, "RETURN e")
	assert.Contains(t, cypher, "ORDER BY e.last_seen DESC", "expected newest-first ordering")
	assert.Equal(t, int64(20), params["limit"])
	assert.NotContains(t, params, "entity_id", "entity_id should not be bound for a global timeline query")
}

func TestBuildTimelineQueryScopedToEntityWalksOneHop(t *testing.T) {
	id := uuid.New()
	cypher, params := buildTimelineQuery(intel.TimelineQuery{EntityID: &id}, 20)

	assert.Contains(t, cypher, "MATCH (e {id: $entity_id})-[r]->(ev)")
	assert.Equal(t, id.String(), params["entity_id"])
}

func TestBuildTimelineQueryAppliesTimeWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cypher, params := buildTimelineQuery(intel.TimelineQuery{Start: &start, End: &end}, 20)

	assert.Contains(t, cypher, "WHERE e.last_seen >= $start")
	assert.Contains(t, cypher, "AND e.last_seen <= $end")
	assert.NotContains(t, cypher, start.Format(time.RFC3339), "timestamps must be bound parameters, not interpolated into the Cypher text")
	assert.Equal(t, start.Format(time.RFC3339), params["start"])
	assert.Equal(t, end.Format(time.RFC3339), params["end"])
}
