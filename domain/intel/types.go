// Package intel holds the domain types shared by every other package in
// this service: the raw documents agents collect, the entities and
// relationships extraction produces, and the graph/reasoning/agent-run
// shapes exposed at the HTTP boundary.
package intel

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntityType enumerates the kinds of entity the graph can hold.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityVessel       EntityType = "vessel"
	EntityAircraft     EntityType = "aircraft"
	EntityLocation     EntityType = "location"
	EntityEvent        EntityType = "event"
	EntityDocument     EntityType = "document"
	EntityTransaction  EntityType = "transaction"
	EntitySanction     EntityType = "sanction"
)

// RelationType enumerates the kinds of relationship the graph can hold.
type RelationType string

const (
	RelationOwnerOf        RelationType = "owner_of"
	RelationDirectorOf     RelationType = "director_of"
	RelationEmployeeOf     RelationType = "employee_of"
	RelationRelatedTo      RelationType = "related_to"
	RelationLocatedAt      RelationType = "located_at"
	RelationTransactedWith RelationType = "transacted_with"
	RelationSanctionedBy   RelationType = "sanctioned_by"
	RelationRegisteredIn   RelationType = "registered_in"
	RelationFlaggedAs      RelationType = "flagged_as"
	RelationMeetingWith    RelationType = "meeting_with"
	RelationTraveledTo     RelationType = "traveled_to"
	RelationPartOf         RelationType = "part_of"
)

// RawDocument is the unit of work an agent produces and extraction consumes.
type RawDocument struct {
	Source      string          `json:"source"`
	SourceID    string          `json:"source_id"`
	Title       *string         `json:"title,omitempty"`
	Content     string          `json:"content"`
	URL         *string         `json:"url,omitempty"`
	CollectedAt time.Time       `json:"collected_at"`
	Metadata    json.RawMessage `json:"metadata"`
}

// Entity is a node in the intelligence graph.
type Entity struct {
	ID         uuid.UUID       `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	Name       string          `json:"name"`
	Aliases    []string        `json:"aliases"`
	Properties json.RawMessage `json:"properties"`
	Source     string          `json:"source"`
	SourceID   *string         `json:"source_id,omitempty"`
	Confidence float64         `json:"confidence"`
	FirstSeen  time.Time       `json:"first_seen"`
	LastSeen   time.Time       `json:"last_seen"`
}

// NewEntity builds a fresh entity with sensible defaults: a new id, an
// empty alias list, an empty properties object, confidence 1.0, and
// first_seen/last_seen both set to now.
func NewEntity(entityType EntityType, name, source string) *Entity {
	now := time.Now().UTC()
	return &Entity{
		ID:         uuid.New(),
		EntityType: entityType,
		Name:       name,
		Aliases:    []string{},
		Properties: json.RawMessage("{}"),
		Source:     source,
		Confidence: 1.0,
		FirstSeen:  now,
		LastSeen:   now,
	}
}

// Relationship is an edge in the intelligence graph.
type Relationship struct {
	ID             uuid.UUID       `json:"id"`
	SourceEntityID uuid.UUID       `json:"source_entity_id"`
	TargetEntityID uuid.UUID       `json:"target_entity_id"`
	RelationType   RelationType    `json:"relation_type"`
	Properties     json.RawMessage `json:"properties"`
	Confidence     float64         `json:"confidence"`
	Source         string          `json:"source"`
	Timestamp      *time.Time      `json:"timestamp,omitempty"`
}

// NewRelationship builds a fresh relationship with confidence 1.0 and no
// timestamp, matching Entity's "caller fills in the rest" convention.
func NewRelationship(sourceEntityID, targetEntityID uuid.UUID, relationType RelationType, source string) *Relationship {
	return &Relationship{
		ID:             uuid.New(),
		SourceEntityID: sourceEntityID,
		TargetEntityID: targetEntityID,
		RelationType:   relationType,
		Properties:     json.RawMessage("{}"),
		Confidence:     1.0,
		Source:         source,
	}
}

// ExtractionResult is what the extraction pipeline hands to the graph store.
type ExtractionResult struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	RawSource     string         `json:"raw_source"`
	ExtractedAt   time.Time      `json:"extracted_at"`
}

// AgentStatus reports an agent's current configuration and health.
type AgentStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	LastRun            *time.Time `json:"last_run,omitempty"`
	DocumentsCollected uint64     `json:"documents_collected"`
	Error              *string    `json:"error,omitempty"`
}

// AgentRunState is the lifecycle state of one scheduled agent run.
type AgentRunState string

const (
	RunRunning   AgentRunState = "running"
	RunCompleted AgentRunState = "completed"
	RunFailed    AgentRunState = "failed"
)

// AgentRunStatus records one execution of an agent's collect→extract→store
// pipeline, as tracked by the scheduler's in-memory run registry.
type AgentRunStatus struct {
	RunID              string        `json:"run_id"`
	AgentName          string        `json:"agent_name"`
	Status             AgentRunState `json:"status"`
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         *time.Time    `json:"finished_at,omitempty"`
	DocumentsCollected uint64        `json:"documents_collected"`
	EntitiesExtracted  uint64        `json:"entities_extracted"`
	Error              *string       `json:"error,omitempty"`
}

// ReasoningStep narrates one phase of the reasoning engine's execution.
type ReasoningStep struct {
	Description   string  `json:"description"`
	Cypher        *string `json:"cypher,omitempty"`
	ResultSummary string  `json:"result_summary"`
}

// ReasoningQuery is a natural-language question posed to the reasoning engine.
type ReasoningQuery struct {
	Question string  `json:"question"`
	Context  *string `json:"context,omitempty"`
	MaxHops  *uint32 `json:"max_hops,omitempty"`
}

// ReasoningResponse is the engine's answer, with its working shown.
type ReasoningResponse struct {
	Answer             string          `json:"answer"`
	Confidence         float64         `json:"confidence"`
	Steps              []ReasoningStep `json:"steps"`
	EntitiesReferenced []Entity        `json:"entities_referenced"`
	Sources            []string        `json:"sources"`
}

// GraphNeighbors is the result of a neighborhood traversal: the root
// entity plus every distinct entity and relationship reachable within
// the requested depth.
type GraphNeighbors struct {
	Entity        Entity         `json:"entity"`
	Relationships []Relationship `json:"relationships"`
	Neighbors     []Entity       `json:"neighbors"`
}

// GraphQuery is a raw query-language statement with bound parameters,
// accepted by GraphStore.ExecuteQuery and the reasoning engine's
// generated queries alike.
type GraphQuery struct {
	Cypher string         `json:"cypher"`
	Params map[string]any `json:"params,omitempty"`
}

// EntityTypeStat is one row of the graph's entity-type histogram.
type EntityTypeStat struct {
	EntityType EntityType `json:"entity_type"`
	Count      uint64     `json:"count"`
}

// TimelineEvent is one chronological entry in an entity's history.
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Entity      Entity    `json:"entity"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
}

// TimelineQuery narrows a timeline request to an optional entity and/or
// time window. Limit defaults to 20 when zero.
type TimelineQuery struct {
	EntityID *uuid.UUID
	Start    *time.Time
	End      *time.Time
	Limit    int
}
