package extraction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sportinger/argus/domain/intel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseEntityTypes(t *testing.T) {
	log := discardLogger()
	assert.Equal(t, intel.EntityPerson, parseEntityType("person", log))
	assert.Equal(t, intel.EntityOrganization, parseEntityType("Organization", log))
	assert.Equal(t, intel.EntityVessel, parseEntityType("VESSEL", log))
	assert.Equal(t, intel.EntityEvent, parseEntityType("unknown_thing", log))
}

func TestParseRelationTypes(t *testing.T) {
	log := discardLogger()
	assert.Equal(t, intel.RelationOwnerOf, parseRelationType("owner_of", log))
	assert.Equal(t, intel.RelationLocatedAt, parseRelationType("located_in", log))
	assert.Equal(t, intel.RelationRelatedTo, parseRelationType("something_else", log))
}

func TestParseLLMResponseValid(t *testing.T) {
	json := `{
		"entities": [
			{
				"name": "Acme Corp",
				"type": "organization",
				"aliases": ["ACME"],
				"properties": {"industry": "defense"},
				"confidence": 0.95
			},
			{
				"name": "John Smith",
				"type": "person",
				"aliases": [],
				"properties": {},
				"confidence": 0.9
			}
		],
		"relationships": [
			{
				"source": "John Smith",
				"target": "Acme Corp",
				"type": "director_of",
				"properties": {"since": "2020"},
				"confidence": 0.85
			}
		]
	}`

	entities, relationships, err := parseLLMResponse(json, "test", discardLogger())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Len(t, relationships, 1)

	assert.Equal(t, "Acme Corp", entities[0].Name)
	assert.Equal(t, intel.EntityOrganization, entities[0].EntityType)
	assert.Equal(t, 0.95, entities[0].Confidence)
	assert.Equal(t, []string{"ACME"}, entities[0].Aliases)

	assert.Equal(t, "John Smith", entities[1].Name)
	assert.Equal(t, intel.EntityPerson, entities[1].EntityType)

	assert.Equal(t, entities[1].ID, relationships[0].SourceEntityID, "source should resolve to John Smith's id")
	assert.Equal(t, entities[0].ID, relationships[0].TargetEntityID, "target should resolve to Acme Corp's id")
	assert.Equal(t, intel.RelationDirectorOf, relationships[0].RelationType)
	assert.Equal(t, 0.85, relationships[0].Confidence)
}

func TestParseLLMResponseWithCodeFences(t *testing.T) {
	json := "```json\n{\n    \"entities\": [\n        {\"name\": \"TestEntity\", \"type\": \"location\", \"properties\": {}, \"confidence\": 1.0}\n    ],\n    \"relationships\": []\n}\n```"

	entities, relationships, err := parseLLMResponse(json, "test", discardLogger())
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "TestEntity", entities[0].Name)
	assert.Equal(t, intel.EntityLocation, entities[0].EntityType)
	assert.Empty(t, relationships)
}

func TestParseLLMResponseEmpty(t *testing.T) {
	entities, relationships, err := parseLLMResponse(`{"entities": [], "relationships": []}`, "test", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.Empty(t, relationships)
}

func TestParseLLMResponseMissingRelationshipEntity(t *testing.T) {
	json := `{
		"entities": [
			{"name": "Alpha", "type": "organization", "properties": {}, "confidence": 1.0}
		],
		"relationships": [
			{
				"source": "Alpha",
				"target": "NonExistent",
				"type": "related_to",
				"properties": {},
				"confidence": 0.5
			}
		]
	}`

	entities, relationships, err := parseLLMResponse(json, "test", discardLogger())
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Empty(t, relationships, "relationship with a missing target entity must be dropped")
}

func TestParseLLMResponseInvalidJSON(t *testing.T) {
	_, _, err := parseLLMResponse("not json at all", "test", discardLogger())
	assert.Error(t, err)
}

func TestParseLLMResponseAliasLookup(t *testing.T) {
	json := `{
		"entities": [
			{
				"name": "United States of America",
				"type": "location",
				"aliases": ["USA", "US"],
				"properties": {},
				"confidence": 1.0
			},
			{
				"name": "Acme Corp",
				"type": "organization",
				"aliases": [],
				"properties": {},
				"confidence": 0.9
			}
		],
		"relationships": [
			{
				"source": "Acme Corp",
				"target": "USA",
				"type": "registered_in",
				"properties": {},
				"confidence": 0.8
			}
		]
	}`

	entities, relationships, err := parseLLMResponse(json, "test", discardLogger())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Len(t, relationships, 1)
	assert.Equal(t, entities[0].ID, relationships[0].TargetEntityID, "USA alias should resolve to United States of America")
}

// fakeProvider is a minimal llm.Provider test double. When failOn is set,
// any prompt containing it fails.
type fakeProvider struct {
	configured bool
	response   string
	err        error
	failOn     string
	calls      int
}

func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("boom")
	}
	return f.response, nil
}

func TestExtractNotConfigured(t *testing.T) {
	p := NewPipeline(&fakeProvider{configured: false}, discardLogger())
	doc := &intel.RawDocument{Source: "test", SourceID: "1", Content: "hello"}
	_, err := p.Extract(context.Background(), doc)
	assert.Error(t, err)
}

func TestExtractBatchAllFail(t *testing.T) {
	provider := &fakeProvider{configured: true, err: errors.New("boom")}
	p := NewPipeline(provider, discardLogger())
	docs := []intel.RawDocument{
		{Source: "test", SourceID: "1", Content: "a"},
		{Source: "test", SourceID: "2", Content: "b"},
	}
	_, err := p.ExtractBatch(context.Background(), docs)
	assert.Error(t, err, "expected an aggregated error when every document fails")
}

func TestExtractBatchPartialFailure(t *testing.T) {
	provider := &fakeProvider{configured: true, response: `{"entities": [], "relationships": []}`, failOn: "fail-me"}
	p := NewPipeline(provider, discardLogger())
	docs := []intel.RawDocument{
		{Source: "test", SourceID: "1", Content: "a"},
		{Source: "test", SourceID: "2", Content: "fail-me"},
	}
	results, err := p.ExtractBatch(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].RawSource)
}
