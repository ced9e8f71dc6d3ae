package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityToDocumentPrefersCaption(t *testing.T) {
	e := openSanctionsEntity{ID: "Q1", Caption: strPtr("Jane Doe"), SchemaName: strPtr("Person")}
	doc := entityToDocument(e)
	assert.Equal(t, "Q1", doc.SourceID)
	require.NotNil(t, doc.Title)
	assert.Equal(t, "Jane Doe", *doc.Title)
	assert.Contains(t, doc.Content, "Schema: Person")
}

func TestEntityToDocumentFallsBackToPropertiesName(t *testing.T) {
	e := openSanctionsEntity{
		ID:         "Q2",
		Properties: json.RawMessage(`{"name": ["Acme Holdings", "Acme Corp"]}`),
	}
	doc := entityToDocument(e)
	require.NotNil(t, doc.Title)
	assert.Equal(t, "Acme Holdings", *doc.Title)
}

func TestEntityToDocumentFallsBackToID(t *testing.T) {
	e := openSanctionsEntity{ID: "Q3"}
	doc := entityToDocument(e)
	require.NotNil(t, doc.Title)
	assert.Equal(t, "Q3", *doc.Title)
	assert.Contains(t, doc.Content, "Schema: Unknown")
}

func TestSanctionsCollectStopsWhenPageBelowLimit(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		resp := openSanctionsResponse{
			Results: []openSanctionsEntity{{ID: "E1"}, {ID: "E2"}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := NewSanctionsAgent()
	a.apiURL = server.URL
	docs, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "a page below the limit must end pagination")
}

func TestSanctionsCollectDiscardsAllPagesOnMidPaginationError(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			results := make([]openSanctionsEntity, openSanctionsPageLimit)
			for i := range results {
				results[i] = openSanctionsEntity{ID: fmt.Sprintf("E%d", i)}
			}
			json.NewEncoder(w).Encode(openSanctionsResponse{Results: results})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	a := &SanctionsAgent{client: server.Client(), apiURL: server.URL, enabled: true}

	docs, err := a.Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, docs)

	status := a.Status(context.Background())
	require.NotNil(t, status.Error)
}

func TestOrEmptyJSON(t *testing.T) {
	assert.Equal(t, []byte("null"), orEmptyJSON(nil))
	raw := json.RawMessage(`{"a":1}`)
	assert.Equal(t, []byte(`{"a":1}`), orEmptyJSON(raw))
}
