package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLobbyistResponseBareArray(t *testing.T) {
	body := []byte(`[{"registrationId": "123", "name": "Acme Lobby Group"}]`)

	entries, err := parseLobbyistResponse(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].RegistrationID)
	assert.Equal(t, "123", *entries[0].RegistrationID)
}

func TestParseLobbyistResponseResultsShape(t *testing.T) {
	body := []byte(`{"results": [{"id": "456", "organisationName": "Beta Advocacy"}]}`)

	entries, err := parseLobbyistResponse(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].RegistrationIDAlt)
	assert.Equal(t, "456", *entries[0].RegistrationIDAlt)
}

func TestParseLobbyistResponseDataShape(t *testing.T) {
	body := []byte(`{"data": [{"id": "789"}]}`)

	entries, err := parseLobbyistResponse(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseLobbyistResponseInvalidJSON(t *testing.T) {
	_, err := parseLobbyistResponse([]byte("not json at all"))
	require.Error(t, err)
}

func TestLobbyistEntryToDocumentSkipsMissingRegistrationID(t *testing.T) {
	e := lobbyistEntry{Name: strPtr("No ID Org")}
	assert.Nil(t, lobbyistEntryToDocument(e))
}

func TestLobbyistEntryToDocumentFallbackFields(t *testing.T) {
	e := lobbyistEntry{RegistrationIDAlt: strPtr("999")}
	doc := lobbyistEntryToDocument(e)
	require.NotNil(t, doc)
	assert.Equal(t, "999", doc.SourceID)
	require.NotNil(t, doc.Title)
	assert.Equal(t, "Unknown Organisation", *doc.Title)
	assert.Contains(t, doc.Content, "Uncategorised")
	assert.Contains(t, doc.Content, "Country: unknown")
}

func TestLobbyistEntryToDocumentPrefersPrimaryOverAlt(t *testing.T) {
	e := lobbyistEntry{
		RegistrationID:    strPtr("111"),
		RegistrationIDAlt: strPtr("222"),
		Name:              strPtr("Primary Name"),
		NameAlt:           strPtr("Alt Name"),
	}
	doc := lobbyistEntryToDocument(e)
	require.NotNil(t, doc)
	assert.Equal(t, "111", doc.SourceID)
	assert.Contains(t, doc.Content, "Primary Name")
}

func TestFirstNonEmpty(t *testing.T) {
	blank := "   "
	val := "value"
	assert.Equal(t, "", firstNonEmpty(nil, &blank))
	assert.Equal(t, "value", firstNonEmpty(nil, &val))
}

func TestFirstNonEmptyOrFallback(t *testing.T) {
	assert.Equal(t, "fallback", firstNonEmptyOr(nil, nil, "fallback"))
}
