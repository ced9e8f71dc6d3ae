package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCypherQueriesFenced(t *testing.T) {
	response := "Here are the queries:\n\n" +
		"```cypher\nMATCH (p:Person)-[:OWNER_OF]->(o:Organization) RETURN p, o LIMIT 10\n```\n\n" +
		"```cypher\nMATCH (e:Event) WHERE e.name CONTAINS 'summit' RETURN e\n```\n"

	queries := ExtractCypherQueries(response)
	a := assert.New(t)
	a.Len(queries, 2)
	a.Contains(queries[0], "MATCH (p:Person)")
	a.Contains(queries[1], "summit")
}

func TestExtractCypherQueriesFallback(t *testing.T) {
	response := "MATCH (n:Person) WHERE n.name = 'Alice' RETURN n LIMIT 5"
	queries := ExtractCypherQueries(response)
	assert.Len(t, queries, 1)
	assert.Contains(t, queries[0], "MATCH")
}

func TestExtractCypherQueriesEmpty(t *testing.T) {
	response := "I'm sorry, I cannot generate a query for that."
	assert.Empty(t, ExtractCypherQueries(response))
}

func TestParseInterpretationFull(t *testing.T) {
	response := "ANSWER: The entity John Doe is connected to Acme Corp through a directorship.\n" +
		"CONFIDENCE: 0.85\n" +
		"ENTITIES: John Doe, Acme Corp\n" +
		"SOURCES: ofac_sdn, un_sanctions"

	answer, confidence, entities, sources := ParseInterpretation(response)

	assert.Contains(t, answer, "John Doe")
	assert.InDelta(t, 0.85, confidence, 1e-9)
	assert.Len(t, entities, 2)
	assert.Len(t, sources, 2)
}

func TestParseInterpretationFallback(t *testing.T) {
	response := "Some unstructured response without markers."

	answer, confidence, entities, sources := ParseInterpretation(response)

	assert.Equal(t, response, answer)
	assert.InDelta(t, 0.5, confidence, 1e-9)
	assert.Empty(t, entities)
	assert.Empty(t, sources)
}

func TestParseInterpretationClampsConfidence(t *testing.T) {
	response := "ANSWER: test\nCONFIDENCE: 1.5\nENTITIES: NONE\nSOURCES: NONE"
	_, confidence, _, _ := ParseInterpretation(response)
	assert.InDelta(t, 1.0, confidence, 1e-9)
}

func TestParseInterpretationMultilineAnswer(t *testing.T) {
	response := "ANSWER: Line one.\nLine two continues the answer.\nLine three as well.\n" +
		"CONFIDENCE: 0.7\nENTITIES: NONE\nSOURCES: NONE"

	answer, confidence, _, _ := ParseInterpretation(response)

	for _, want := range []string{"Line one.", "Line two", "Line three"} {
		assert.Contains(t, answer, want)
	}
	assert.InDelta(t, 0.7, confidence, 1e-9)
}

func TestIsEmptyResult(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"empty rows", []map[string]any{}, true},
		{"non-empty rows", []map[string]any{{"n": 1}}, false},
		{"empty slice", []any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEmptyResult(tt.v))
		})
	}
}
