package agents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMsg(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return json.RawMessage(b)
}

func TestParseStateVectorEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, parseStateVector(nil))
}

func TestParseStateVectorMissingICAO24ReturnsNil(t *testing.T) {
	sv := []json.RawMessage{rawMsg(t, "")}
	assert.Nil(t, parseStateVector(sv))
}

func TestParseStateVectorFullFidelity(t *testing.T) {
	sv := make([]json.RawMessage, 17)
	for i := range sv {
		sv[i] = rawMsg(t, nil)
	}
	sv[0] = rawMsg(t, "a1b2c3")
	sv[1] = rawMsg(t, "UAL123  ")
	sv[2] = rawMsg(t, "United States")
	sv[5] = rawMsg(t, -122.4)
	sv[6] = rawMsg(t, 37.7)
	sv[7] = rawMsg(t, 10000.0)
	sv[8] = rawMsg(t, false)
	sv[9] = rawMsg(t, 230.5)
	sv[10] = rawMsg(t, 90.0)
	sv[11] = rawMsg(t, 1.5)
	sv[13] = rawMsg(t, 10500.0)
	sv[14] = rawMsg(t, "1200")

	doc := parseStateVector(sv)
	require.NotNil(t, doc)
	assert.Equal(t, "adsb", doc.Source)
	assert.Equal(t, "a1b2c3", doc.SourceID)
	require.NotNil(t, doc.Title)
	assert.Contains(t, *doc.Title, "a1b2c3")
	assert.Contains(t, doc.Content, "United States")
	assert.Contains(t, doc.Content, "10000m")
	assert.Contains(t, doc.Content, "230.5m/s")
	assert.Contains(t, doc.Content, "on_ground=false")

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(doc.Metadata, &metadata))
	assert.Equal(t, "a1b2c3", metadata["icao24"])
	assert.Equal(t, "1200", metadata["squawk"])
}

func TestParseStateVectorNullSafeFields(t *testing.T) {
	sv := []json.RawMessage{rawMsg(t, "d4e5f6")}
	doc := parseStateVector(sv)
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "unknown alt")
	assert.Contains(t, doc.Content, "unknown vel")
	assert.Contains(t, doc.Content, "unknown position")
	assert.Contains(t, doc.Content, "from unknown at")
}

func TestRawHelpersOutOfRangeIndex(t *testing.T) {
	sv := []json.RawMessage{rawMsg(t, "x")}
	assert.Equal(t, "", rawString(sv, 5))
	assert.Nil(t, rawFloat(sv, 5))
	assert.False(t, rawBool(sv, 5))
}
