// Package graph implements the Neo4j-backed labeled-property-graph store:
// entity/relationship upserts with cross-source merge, neighborhood
// traversal, substring search, and raw Cypher execution.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/logger"
)

// operationTimeout bounds every single Neo4j operation this store performs.
const operationTimeout = 5 * time.Second

// Store is the graph backend every reasoning and HTTP-boundary caller
// depends on.
type Store interface {
	StoreExtraction(ctx context.Context, result *intel.ExtractionResult) error
	GetEntity(ctx context.Context, id uuid.UUID) (*intel.Entity, error)
	SearchEntities(ctx context.Context, query string, limit int) ([]intel.Entity, error)
	GetNeighbors(ctx context.Context, entityID uuid.UUID, depth uint32) (*intel.GraphNeighbors, error)
	ExecuteQuery(ctx context.Context, q intel.GraphQuery) (any, error)
	Timeline(ctx context.Context, q intel.TimelineQuery) ([]intel.TimelineEvent, error)
	EntityCount(ctx context.Context) (uint64, error)
	RelationshipCount(ctx context.Context) (uint64, error)
	EntityTypeStats(ctx context.Context) ([]intel.EntityTypeStat, error)
	IsConnected() bool
	Close(ctx context.Context) error
}

// Neo4jStore is a Store backed by a live Neo4j connection. It is built in
// "degraded mode" (driver left nil) when the initial connection attempt
// fails, so the rest of the service can start and report the outage via
// the health endpoint instead of refusing to boot.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	log    *slog.Logger
}

// NewStore connects to Neo4j at the given URI. A connection failure is
// logged and the store is returned in degraded mode rather than as an
// error, matching the original implementation's "run without a graph
// backend" tolerance.
func NewStore(ctx context.Context, uri, username, password string, log *slog.Logger) *Neo4jStore {
	log = log.With(logger.Scope("graph"))

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		log.Warn("failed to create neo4j driver, running in degraded mode", slog.String("uri", uri), logger.Error(err))
		return &Neo4jStore{log: log}
	}

	verifyCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		log.Warn("failed to connect to neo4j, running in degraded mode", slog.String("uri", uri), logger.Error(err))
		return &Neo4jStore{log: log}
	}

	log.Info("connected to neo4j", slog.String("uri", uri))
	return &Neo4jStore{driver: driver, log: log}
}

// IsConnected reports whether the store has a live Neo4j driver.
func (s *Neo4jStore) IsConnected() bool {
	return s.driver != nil
}

// Close releases the underlying driver, if any.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) (neo4j.SessionWithContext, error) {
	if s.driver == nil {
		return nil, intel.NewError(intel.ErrKindGraph, "neo4j not connected", nil)
	}
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode}), nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, operationTimeout)
}

// StoreExtraction writes every entity and relationship in result within a
// single transaction. See entityUpsertCypher/relationshipUpsertCypher for
// the upsert algorithms.
func (s *Neo4jStore) StoreExtraction(ctx context.Context, result *intel.ExtractionResult) error {
	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	_, err = session.ExecuteWrite(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, entity := range result.Entities {
			if err := storeEntity(opCtx, tx, &entity); err != nil {
				return nil, err
			}
		}
		for _, rel := range result.Relationships {
			if err := storeRelationship(opCtx, tx, &rel); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return intel.NewError(intel.ErrKindGraph, "failed to store extraction", err)
	}

	s.log.Info("stored extraction result",
		slog.Int("entities", len(result.Entities)), slog.Int("relationships", len(result.Relationships)))
	return nil
}

func storeEntity(ctx context.Context, tx neo4j.ManagedTransaction, entity *intel.Entity) error {
	label := entityTypeToLabel(entity.EntityType)
	aliasesJSON, err := json.Marshal(entity.Aliases)
	if err != nil {
		return fmt.Errorf("failed to serialize aliases: %w", err)
	}
	propertiesJSON, err := json.Marshal(entity.Properties)
	if err != nil {
		return fmt.Errorf("failed to serialize properties: %w", err)
	}

	sourceID := ""
	if entity.SourceID != nil {
		sourceID = *entity.SourceID
	}

	cypher := entityUpsertCypher(label, entity.SourceID != nil)
	params := map[string]any{
		"id":         entity.ID.String(),
		"name":       entity.Name,
		"source":     entity.Source,
		"source_id":  sourceID,
		"aliases":    string(aliasesJSON),
		"properties": string(propertiesJSON),
		"confidence": entity.Confidence,
		"first_seen": entity.FirstSeen.Format(time.RFC3339),
		"last_seen":  entity.LastSeen.Format(time.RFC3339),
	}

	if _, err := tx.Run(ctx, cypher, params); err != nil {
		return fmt.Errorf("failed to store entity %s: %w", entity.ID, err)
	}
	return nil
}

// entityUpsertCypher builds the cross-source-merge-then-upsert statement.
// When an existing node of the same label matches the incoming name
// case-insensitively but was written by a different source, it is
// mutated in place (sources accumulated, confidence raised monotonically)
// rather than creating a duplicate node; otherwise a normal MERGE upsert
// runs, keyed on (source, source_id) when a source_id was supplied, or on
// id otherwise.
func entityUpsertCypher(label string, hasSourceID bool) string {
	mergeKey := "{id: $id}"
	createExtra := "n.source = $source, n.source_id = $source_id, "
	if hasSourceID {
		mergeKey = "{source: $source, source_id: $source_id}"
		createExtra = "n.id = $id, "
	}

	return fmt.Sprintf(`OPTIONAL MATCH (existing:%[1]s)
WHERE toLower(existing.name) = toLower($name) AND existing.source <> $source
WITH existing
FOREACH (_ IN CASE WHEN existing IS NOT NULL THEN [1] ELSE [] END |
  SET existing.sources = CASE
      WHEN existing.sources IS NULL THEN [$source]
      WHEN NOT $source IN existing.sources THEN existing.sources + $source
      ELSE existing.sources END,
    existing.aliases = $aliases,
    existing.properties = $properties,
    existing.confidence = CASE WHEN $confidence > existing.confidence THEN $confidence ELSE existing.confidence END,
    existing.last_seen = $last_seen
)
WITH existing
FOREACH (_ IN CASE WHEN existing IS NULL THEN [1] ELSE [] END |
  MERGE (n:%[1]s %[2]s)
  ON CREATE SET %[3]sn.name = $name, n.aliases = $aliases, n.properties = $properties,
    n.confidence = $confidence, n.first_seen = $first_seen, n.last_seen = $last_seen,
    n.sources = [$source]
  ON MATCH SET n.name = $name, n.aliases = $aliases, n.properties = $properties,
    n.confidence = CASE WHEN $confidence > n.confidence THEN $confidence ELSE n.confidence END,
    n.last_seen = $last_seen,
    n.sources = CASE
      WHEN n.sources IS NULL THEN [$source]
      WHEN NOT $source IN n.sources THEN n.sources + $source
      ELSE n.sources END
)`, label, mergeKey, createExtra)
}

func storeRelationship(ctx context.Context, tx neo4j.ManagedTransaction, rel *intel.Relationship) error {
	relLabel := relationTypeToLabel(rel.RelationType)
	propertiesJSON, err := json.Marshal(rel.Properties)
	if err != nil {
		return fmt.Errorf("failed to serialize relationship properties: %w", err)
	}

	timestamp := ""
	if rel.Timestamp != nil {
		timestamp = rel.Timestamp.Format(time.RFC3339)
	}

	cypher := fmt.Sprintf(`MATCH (a {id: $source_id})
MATCH (b {id: $target_id})
MERGE (a)-[r:%s {source: $source}]->(b)
ON CREATE SET r.id = $rel_id, r.properties = $properties, r.confidence = $confidence, r.timestamp = $timestamp
ON MATCH SET r.properties = $properties,
  r.confidence = CASE WHEN $confidence > r.confidence THEN $confidence ELSE r.confidence END,
  r.timestamp = CASE WHEN $timestamp <> '' THEN $timestamp ELSE r.timestamp END`, relLabel)

	params := map[string]any{
		"source_id":  rel.SourceEntityID.String(),
		"target_id":  rel.TargetEntityID.String(),
		"rel_id":     rel.ID.String(),
		"properties": string(propertiesJSON),
		"confidence": rel.Confidence,
		"source":     rel.Source,
		"timestamp":  timestamp,
	}

	if _, err := tx.Run(ctx, cypher, params); err != nil {
		return fmt.Errorf("failed to store relationship %s: %w", rel.ID, err)
	}
	return nil
}

// GetEntity fetches a single entity by id.
func (s *Neo4jStore) GetEntity(ctx context.Context, id uuid.UUID) (*intel.Entity, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, "MATCH (n {id: $id}) RETURN n", map[string]any{"id": id.String()})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(opCtx)
		if err != nil {
			return nil, nil // nolint:nilerr -- neo4j.Single errors when there is no row
		}
		node, ok := record.Get("n")
		if !ok {
			return nil, nil
		}
		return nodeToEntity(node.(neo4j.Node), s.log)
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to query entity", err)
	}
	if result == nil {
		return nil, nil
	}
	entity := result.(*intel.Entity)
	return entity, nil
}

// SearchEntities runs a case-sensitive substring match on name.
func (s *Neo4jStore) SearchEntities(ctx context.Context, query string, limit int) ([]intel.Entity, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, "MATCH (n) WHERE n.name CONTAINS $query RETURN n LIMIT $limit",
			map[string]any{"query": query, "limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(opCtx)
		if err != nil {
			return nil, err
		}

		entities := make([]intel.Entity, 0, len(records))
		for _, record := range records {
			nodeVal, ok := record.Get("n")
			if !ok {
				continue
			}
			entity, err := nodeToEntity(nodeVal.(neo4j.Node), s.log)
			if err != nil {
				s.log.Warn("skipping malformed entity node", logger.Error(err))
				continue
			}
			entities = append(entities, *entity)
		}
		return entities, nil
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to search entities", err)
	}

	entities := result.([]intel.Entity)
	s.log.Debug("entity search completed", slog.String("query", query), slog.Int("results", len(entities)))
	return entities, nil
}

// GetNeighbors traverses up to depth hops from entityID in any direction,
// returning distinct neighbor entities and distinct relationships.
func (s *Neo4jStore) GetNeighbors(ctx context.Context, entityID uuid.UUID, depth uint32) (*intel.GraphNeighbors, error) {
	root, err := s.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, intel.NewNotFoundError(fmt.Sprintf("entity %s not found", entityID))
	}

	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	cypher := fmt.Sprintf(`MATCH (n {id: $id})-[r*1..%d]-(m)
RETURN DISTINCT m,
  [rel IN r | type(rel)] AS rel_types,
  [rel IN r | properties(rel)] AS rel_props,
  [rel IN r | startNode(rel).id] AS rel_sources,
  [rel IN r | endNode(rel).id] AS rel_targets`, depth)

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, cypher, map[string]any{"id": entityID.String()})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(opCtx)
		if err != nil {
			return nil, err
		}

		neighbors := make([]intel.Entity, 0)
		relationships := make([]intel.Relationship, 0)
		seenNeighbors := make(map[uuid.UUID]struct{})
		seenRels := make(map[uuid.UUID]struct{})

		for _, record := range records {
			nodeVal, ok := record.Get("m")
			if !ok {
				continue
			}
			neighbor, err := nodeToEntity(nodeVal.(neo4j.Node), s.log)
			if err != nil {
				s.log.Warn("skipping malformed neighbor node", logger.Error(err))
				continue
			}
			if _, seen := seenNeighbors[neighbor.ID]; !seen {
				seenNeighbors[neighbor.ID] = struct{}{}
				neighbors = append(neighbors, *neighbor)
			}

			relTypesRaw, _ := record.Get("rel_types")
			relSourcesRaw, _ := record.Get("rel_sources")
			relTargetsRaw, _ := record.Get("rel_targets")
			relTypes := anySliceToStrings(relTypesRaw)
			relSources := anySliceToStrings(relSourcesRaw)
			relTargets := anySliceToStrings(relTargetsRaw)
			relPropsRaw, _ := record.Get("rel_props")
			relProps, _ := relPropsRaw.([]any)

			for i, relTypeLabel := range relTypes {
				relType := labelToRelationType(relTypeLabel)

				sourceID := entityID
				if i < len(relSources) {
					if parsed, err := uuid.Parse(relSources[i]); err == nil {
						sourceID = parsed
					}
				}
				targetID := entityID
				if i < len(relTargets) {
					if parsed, err := uuid.Parse(relTargets[i]); err == nil {
						targetID = parsed
					}
				}

				var props map[string]any
				if i < len(relProps) {
					props, _ = relProps[i].(map[string]any)
				}

				relID := uuid.New()
				if idStr, ok := props["id"].(string); ok {
					if parsed, err := uuid.Parse(idStr); err == nil {
						relID = parsed
					}
				}
				if _, seen := seenRels[relID]; seen {
					continue
				}
				seenRels[relID] = struct{}{}

				confidence := 1.0
				if c, ok := props["confidence"].(float64); ok {
					confidence = c
				}
				source := ""
				if s, ok := props["source"].(string); ok {
					source = s
				}

				var timestamp *time.Time
				if tsStr, ok := props["timestamp"].(string); ok && tsStr != "" {
					if parsed, err := time.Parse(time.RFC3339, tsStr); err == nil {
						timestamp = &parsed
					}
				}

				innerProps := json.RawMessage("{}")
				if rawProps, ok := props["properties"].(string); ok {
					if json.Valid([]byte(rawProps)) {
						innerProps = json.RawMessage(rawProps)
					}
				}

				relationships = append(relationships, intel.Relationship{
					ID:             relID,
					SourceEntityID: sourceID,
					TargetEntityID: targetID,
					RelationType:   relType,
					Properties:     innerProps,
					Confidence:     confidence,
					Source:         source,
					Timestamp:      timestamp,
				})
			}
		}

		return &intel.GraphNeighbors{Entity: *root, Relationships: relationships, Neighbors: neighbors}, nil
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to get neighbors", err)
	}

	neighborsResult := result.(*intel.GraphNeighbors)
	s.log.Debug("fetched neighbors", slog.String("entity_id", entityID.String()), slog.Uint64("depth", uint64(depth)),
		slog.Int("neighbor_count", len(neighborsResult.Neighbors)), slog.Int("relationship_count", len(neighborsResult.Relationships)))
	return neighborsResult, nil
}

func anySliceToStrings(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ExecuteQuery runs an arbitrary parameterized Cypher statement and
// returns its rows as a JSON-friendly array of maps.
func (s *Neo4jStore) ExecuteQuery(ctx context.Context, q intel.GraphQuery) (any, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, q.Cypher, q.Params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(opCtx)
		if err != nil {
			return nil, err
		}

		rows := make([]map[string]any, 0, len(records))
		for _, record := range records {
			rows = append(rows, record.AsMap())
		}
		return rows, nil
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to execute cypher", err)
	}

	rows := result.([]map[string]any)
	s.log.Debug("executed raw cypher query", slog.String("cypher", q.Cypher), slog.Int("rows", len(rows)))
	return rows, nil
}

// EntityCount returns the total number of entity nodes in the graph.
func (s *Neo4jStore) EntityCount(ctx context.Context) (uint64, error) {
	return s.countQuery(ctx, "MATCH (n) RETURN count(n) AS cnt")
}

// RelationshipCount returns the total number of relationships in the graph.
func (s *Neo4jStore) RelationshipCount(ctx context.Context) (uint64, error) {
	return s.countQuery(ctx, "MATCH ()-[r]->() RETURN count(r) AS cnt")
}

func (s *Neo4jStore) countQuery(ctx context.Context, cypher string) (uint64, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return 0, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, cypher, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(opCtx)
		if err != nil {
			return int64(0), nil // nolint:nilerr -- no rows means zero
		}
		cnt, _ := record.Get("cnt")
		if i, ok := cnt.(int64); ok {
			return i, nil
		}
		return int64(0), nil
	})
	if err != nil {
		return 0, intel.NewError(intel.ErrKindGraph, "failed to count", err)
	}
	return uint64(result.(int64)), nil
}

// EntityTypeStats returns the number of entities per entity type.
func (s *Neo4jStore) EntityTypeStats(ctx context.Context) ([]intel.EntityTypeStat, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	stats := make([]intel.EntityTypeStat, 0, len(allEntityLabels))
	_, err = session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, entityType := range allEntityLabels {
			label := entityTypeToLabel(entityType)
			res, err := tx.Run(opCtx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS cnt", label), nil)
			if err != nil {
				return nil, err
			}
			record, err := res.Single(opCtx)
			if err != nil {
				stats = append(stats, intel.EntityTypeStat{EntityType: entityType, Count: 0})
				continue
			}
			cnt, _ := record.Get("cnt")
			count, _ := cnt.(int64)
			if count > 0 {
				stats = append(stats, intel.EntityTypeStat{EntityType: entityType, Count: uint64(count)})
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to compute entity type stats", err)
	}
	return stats, nil
}

// Timeline returns entities ordered newest-first by last_seen, optionally
// restricted to a single entity's neighborhood and/or a time window.
// Mirrors the original implementation's two-shaped query: with an
// entity_id it walks one hop out from that entity, without one it scans
// every entity node directly.
func (s *Neo4jStore) Timeline(ctx context.Context, q intel.TimelineQuery) ([]intel.TimelineEvent, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	opCtx, cancel := withTimeout(ctx)
	defer cancel()

	cypher, params := buildTimelineQuery(q, limit)

	result, err := session.ExecuteRead(opCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(opCtx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(opCtx)
		if err != nil {
			return nil, err
		}

		events := make([]intel.TimelineEvent, 0, len(records))
		for _, record := range records {
			nodeKey := "e"
			if q.EntityID != nil {
				nodeKey = "ev"
			}
			nodeVal, ok := record.Get(nodeKey)
			if !ok {
				continue
			}
			entity, err := nodeToEntity(nodeVal.(neo4j.Node), s.log)
			if err != nil {
				s.log.Warn("skipping malformed timeline node", logger.Error(err))
				continue
			}

			eventType := "observation"
			if q.EntityID != nil {
				if et, ok := record.Get("event_type"); ok {
					if s, ok := et.(string); ok && s != "" {
						eventType = s
					}
				}
			}

			events = append(events, intel.TimelineEvent{
				Timestamp:   entity.LastSeen,
				Entity:      *entity,
				EventType:   eventType,
				Description: fmt.Sprintf("%s — %s", entity.Name, entity.Source),
				Source:      "graph",
			})
		}
		return events, nil
	})
	if err != nil {
		return nil, intel.NewError(intel.ErrKindGraph, "failed to fetch timeline", err)
	}

	return result.([]intel.TimelineEvent), nil
}

func buildTimelineQuery(q intel.TimelineQuery, limit int) (string, map[string]any) {
	params := map[string]any{"limit": int64(limit)}
	if q.Start != nil {
		params["start"] = q.Start.Format(time.RFC3339)
	}
	if q.End != nil {
		params["end"] = q.End.Format(time.RFC3339)
	}

	if q.EntityID != nil {
		params["entity_id"] = q.EntityID.String()
		filter := ""
		if q.Start != nil {
			filter += " AND ev.last_seen >= $start"
		}
		if q.End != nil {
			filter += " AND ev.last_seen <= $end"
		}
		cypher := fmt.Sprintf(`MATCH (e {id: $entity_id})-[r]->(ev)
WHERE true%s
RETURN DISTINCT ev, type(r) AS event_type
ORDER BY ev.last_seen DESC
LIMIT $limit`, filter)
		return cypher, params
	}

	filter := ""
	if q.Start != nil {
		filter = "WHERE e.last_seen >= $start"
	}
	if q.End != nil {
		cond := "e.last_seen <= $end"
		if filter == "" {
			filter = "WHERE " + cond
		} else {
			filter += " AND " + cond
		}
	}
	cypher := fmt.Sprintf(`MATCH (e)
%s
RETURN e
ORDER BY e.last_seen DESC
LIMIT $limit`, filter)
	return cypher, params
}

// nodeToEntity decodes a Neo4j node into the in-memory Entity shape,
// defaulting missing or malformed fields sensibly rather than failing
// the whole read.
func nodeToEntity(node neo4j.Node, log *slog.Logger) (*intel.Entity, error) {
	idStr, ok := node.Props["id"].(string)
	if !ok {
		return nil, fmt.Errorf("missing id on node")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}

	entityType := intel.EntityEvent
	if len(node.Labels) > 0 {
		entityType = labelToEntityType(node.Labels[0])
	}

	name, _ := node.Props["name"].(string)

	var aliases []string
	if aliasesRaw, ok := node.Props["aliases"].(string); ok {
		if err := json.Unmarshal([]byte(aliasesRaw), &aliases); err != nil {
			aliases = []string{}
		}
	}
	if aliases == nil {
		aliases = []string{}
	}

	properties := json.RawMessage("{}")
	if propsRaw, ok := node.Props["properties"].(string); ok && json.Valid([]byte(propsRaw)) {
		properties = json.RawMessage(propsRaw)
	}

	source, _ := node.Props["source"].(string)

	var sourceID *string
	if sidRaw, ok := node.Props["source_id"].(string); ok && sidRaw != "" {
		sourceID = &sidRaw
	}

	confidence := 1.0
	if c, ok := node.Props["confidence"].(float64); ok {
		confidence = c
	}

	now := time.Now().UTC()
	firstSeen := now
	if fsRaw, ok := node.Props["first_seen"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, fsRaw); err == nil {
			firstSeen = parsed
		}
	}
	lastSeen := now
	if lsRaw, ok := node.Props["last_seen"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, lsRaw); err == nil {
			lastSeen = parsed
		}
	}

	return &intel.Entity{
		ID:         id,
		EntityType: entityType,
		Name:       name,
		Aliases:    aliases,
		Properties: properties,
		Source:     source,
		SourceID:   sourceID,
		Confidence: confidence,
		FirstSeen:  firstSeen,
		LastSeen:   lastSeen,
	}, nil
}
