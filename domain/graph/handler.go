package graph

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/apperror"
)

// defaultSearchLimit matches the original implementation's default page
// size for entity search and timeline requests.
const defaultSearchLimit = 20

// Handler serves the entity, graph-query, and timeline endpoints as thin
// pass-throughs to the underlying Store.
type Handler struct {
	store Store
}

// NewHandler builds a graph Handler over the shared Store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type searchRequest struct {
	Query      string            `json:"query"`
	Limit      int               `json:"limit"`
	EntityType *intel.EntityType `json:"entity_type,omitempty"`
}

type searchResponse struct {
	Entities []intel.Entity `json:"entities"`
	Total    int            `json:"total"`
}

// SearchEntities runs a substring search, optionally filtered to a single
// entity type after the store returns its results.
func (h *Handler) SearchEntities(c echo.Context) error {
	req := searchRequest{Limit: defaultSearchLimit}
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body").WithInternal(err).ToEchoError()
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	entities, err := h.store.SearchEntities(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	if req.EntityType != nil {
		filtered := entities[:0]
		for _, e := range entities {
			if e.EntityType == *req.EntityType {
				filtered = append(filtered, e)
			}
		}
		entities = filtered
	}

	return c.JSON(http.StatusOK, searchResponse{Entities: entities, Total: len(entities)})
}

type entityDetailResponse struct {
	Entity        intel.Entity         `json:"entity"`
	Relationships []intel.Relationship `json:"relationships"`
	Neighbors     []intel.Entity       `json:"neighbors"`
}

// GetEntity fetches an entity by id along with its immediate neighborhood.
func (h *Handler) GetEntity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.NewBadRequest("invalid entity id").WithInternal(err).ToEchoError()
	}

	ctx := c.Request().Context()
	entity, err := h.store.GetEntity(ctx, id)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}
	if entity == nil {
		return apperror.NewNotFound("entity", id.String()).ToEchoError()
	}

	neighbors, err := h.store.GetNeighbors(ctx, id, 1)
	if err != nil {
		// The entity itself is still returned even if the neighborhood
		// traversal fails.
		return c.JSON(http.StatusOK, entityDetailResponse{Entity: *entity})
	}

	return c.JSON(http.StatusOK, entityDetailResponse{
		Entity:        neighbors.Entity,
		Relationships: neighbors.Relationships,
		Neighbors:     neighbors.Neighbors,
	})
}

// GetNeighbors fetches an entity's one-hop neighborhood by id.
func (h *Handler) GetNeighbors(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.NewBadRequest("invalid entity id").WithInternal(err).ToEchoError()
	}

	neighbors, err := h.store.GetNeighbors(c.Request().Context(), id, 1)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusOK, entityDetailResponse{
		Entity:        neighbors.Entity,
		Relationships: neighbors.Relationships,
		Neighbors:     neighbors.Neighbors,
	})
}

type graphQueryRequest struct {
	Cypher string         `json:"cypher"`
	Params map[string]any `json:"params"`
}

type graphQueryResponse struct {
	Result any `json:"result"`
}

// Query executes an arbitrary, caller-supplied Cypher statement.
func (h *Handler) Query(c echo.Context) error {
	var req graphQueryRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body").WithInternal(err).ToEchoError()
	}

	result, err := h.store.ExecuteQuery(c.Request().Context(), intel.GraphQuery{Cypher: req.Cypher, Params: req.Params})
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusOK, graphQueryResponse{Result: result})
}

type statsResponse struct {
	EntityCount       uint64                 `json:"entity_count"`
	RelationshipCount uint64                 `json:"relationship_count"`
	EntityTypes       []intel.EntityTypeStat `json:"entity_types"`
}

// Stats reports entity/relationship totals and a per-type histogram.
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	entityCount, err := h.store.EntityCount(ctx)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}
	relationshipCount, err := h.store.RelationshipCount(ctx)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}
	entityTypes, err := h.store.EntityTypeStats(ctx)
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusOK, statsResponse{
		EntityCount:       entityCount,
		RelationshipCount: relationshipCount,
		EntityTypes:       entityTypes,
	})
}

type timelineRequest struct {
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Limit    int        `json:"limit"`
}

type timelineResponse struct {
	Events []intel.TimelineEvent `json:"events"`
}

// Timeline returns a chronological slice of events, optionally scoped to
// one entity and/or a time window.
func (h *Handler) Timeline(c echo.Context) error {
	req := timelineRequest{Limit: defaultSearchLimit}
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body").WithInternal(err).ToEchoError()
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	events, err := h.store.Timeline(c.Request().Context(), intel.TimelineQuery{
		EntityID: req.EntityID,
		Start:    req.Start,
		End:      req.End,
		Limit:    req.Limit,
	})
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusOK, timelineResponse{Events: events})
}
