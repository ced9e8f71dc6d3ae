package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sportinger/argus/domain/intel"
)

// fakeStore is a minimal Store test double recording the arguments it was
// called with alongside the canned results it returns.
type fakeStore struct {
	entities    []intel.Entity
	entityByID  map[uuid.UUID]intel.Entity
	neighbors   *intel.GraphNeighbors
	queryResult any
	entityCount uint64
	relCount    uint64
	typeStats   []intel.EntityTypeStat
	timeline    []intel.TimelineEvent

	searchLimit   int
	timelineQuery intel.TimelineQuery
}

func (s *fakeStore) StoreExtraction(ctx context.Context, result *intel.ExtractionResult) error {
	return nil
}

func (s *fakeStore) GetEntity(ctx context.Context, id uuid.UUID) (*intel.Entity, error) {
	if e, ok := s.entityByID[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *fakeStore) SearchEntities(ctx context.Context, query string, limit int) ([]intel.Entity, error) {
	s.searchLimit = limit
	return s.entities, nil
}

func (s *fakeStore) GetNeighbors(ctx context.Context, entityID uuid.UUID, depth uint32) (*intel.GraphNeighbors, error) {
	if s.neighbors != nil {
		return s.neighbors, nil
	}
	return nil, intel.NewNotFoundError("no neighbors")
}

func (s *fakeStore) ExecuteQuery(ctx context.Context, q intel.GraphQuery) (any, error) {
	return s.queryResult, nil
}

func (s *fakeStore) Timeline(ctx context.Context, q intel.TimelineQuery) ([]intel.TimelineEvent, error) {
	s.timelineQuery = q
	return s.timeline, nil
}

func (s *fakeStore) EntityCount(ctx context.Context) (uint64, error)       { return s.entityCount, nil }
func (s *fakeStore) RelationshipCount(ctx context.Context) (uint64, error) { return s.relCount, nil }
func (s *fakeStore) EntityTypeStats(ctx context.Context) ([]intel.EntityTypeStat, error) {
	return s.typeStats, nil
}
func (s *fakeStore) IsConnected() bool          { return true }
func (s *fakeStore) Close(ctx context.Context) error { return nil }

func TestHandlerSearchEntitiesDefaultsLimit(t *testing.T) {
	e := echo.New()
	store := &fakeStore{entities: []intel.Entity{
		{ID: uuid.New(), Name: "Acme", EntityType: intel.EntityOrganization},
	}}
	h := NewHandler(store)

	body, _ := json.Marshal(map[string]any{"query": "acme"})
	req := httptest.NewRequest(http.MethodPost, "/api/entities/search", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.SearchEntities(c))
	assert.Equal(t, defaultSearchLimit, store.searchLimit)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestHandlerSearchEntitiesFiltersByType(t *testing.T) {
	e := echo.New()
	store := &fakeStore{entities: []intel.Entity{
		{ID: uuid.New(), Name: "Acme", EntityType: intel.EntityOrganization},
		{ID: uuid.New(), Name: "Jane Doe", EntityType: intel.EntityPerson},
	}}
	h := NewHandler(store)

	entityType := intel.EntityPerson
	body, _ := json.Marshal(searchRequest{Query: "a", EntityType: &entityType})
	req := httptest.NewRequest(http.MethodPost, "/api/entities/search", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.SearchEntities(c))

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, intel.EntityPerson, resp.Entities[0].EntityType)
}

func TestHandlerGetEntityNotFound(t *testing.T) {
	e := echo.New()
	store := &fakeStore{entityByID: map[uuid.UUID]intel.Entity{}}
	h := NewHandler(store)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/entities/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := h.GetEntity(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError")
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHandlerGetEntityReturnsNeighborhood(t *testing.T) {
	e := echo.New()
	id := uuid.New()
	entity := intel.Entity{ID: id, Name: "Acme", EntityType: intel.EntityOrganization}
	store := &fakeStore{
		entityByID: map[uuid.UUID]intel.Entity{id: entity},
		neighbors:  &intel.GraphNeighbors{Entity: entity, Neighbors: []intel.Entity{{ID: uuid.New(), Name: "Jane"}}},
	}
	h := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/entities/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.GetEntity(c))

	var resp entityDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Neighbors, 1)
}

func TestHandlerStatsAggregatesCounts(t *testing.T) {
	e := echo.New()
	store := &fakeStore{
		entityCount: 10,
		relCount:    4,
		typeStats:   []intel.EntityTypeStat{{EntityType: intel.EntityOrganization, Count: 10}},
	}
	h := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/graph/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Stats(c))

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 10, resp.EntityCount)
	assert.EqualValues(t, 4, resp.RelationshipCount)
}

func TestHandlerTimelineDefaultsLimit(t *testing.T) {
	e := echo.New()
	store := &fakeStore{}
	h := NewHandler(store)

	body, _ := json.Marshal(map[string]any{})
	req := httptest.NewRequest(http.MethodPost, "/api/timeline", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Timeline(c))
	assert.Equal(t, defaultSearchLimit, store.timelineQuery.Limit)
}
