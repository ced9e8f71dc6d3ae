package agents

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameoEventDescriptionKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "Make Public Statement", cameoEventDescription("01"))
	assert.Equal(t, "Engage in Unconventional Mass Violence", cameoEventDescription("20"))
	assert.Equal(t, "Interact With", cameoEventDescription("99"))
	assert.Equal(t, "Interact With", cameoEventDescription(""))
}

func TestBuildEventTitle(t *testing.T) {
	assert.Equal(t, "USA Make Public Statement RUS in Moscow", buildEventTitle("USA", "RUS", "01", "Moscow"))
	assert.Equal(t, "Unknown Make Public Statement", buildEventTitle("", "", "01", ""))
	assert.Equal(t, "USA Investigate", buildEventTitle("USA", "", "09", ""))
}

func gdeltRow(overrides map[int]string) string {
	fields := make([]string, gdeltEventColumns)
	for i := range fields {
		fields[i] = ""
	}
	fields[colQuadClass] = "1"
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, "\t")
}

func TestParseEventsSkipsRowsWithTooFewColumns(t *testing.T) {
	a := NewNewsEventsAgent()

	shortRow := strings.Join(make([]string, gdeltEventColumns-1), "\t")
	docs := a.parseEvents(shortRow)
	assert.Empty(t, docs)
}

func TestParseEventsSkipsRowsWithEmptyPrimaryKey(t *testing.T) {
	a := NewNewsEventsAgent()

	row := gdeltRow(map[int]string{colGlobalEventID: ""})
	docs := a.parseEvents(row)
	assert.Empty(t, docs)
}

func TestParseEventsParsesWellFormedRow(t *testing.T) {
	a := NewNewsEventsAgent()

	row := gdeltRow(map[int]string{
		colGlobalEventID:     "123456",
		colDay:               "20240101",
		colActor1Name:        "UNITED STATES",
		colActor1CountryCode: "USA",
		colActor2Name:        "RUSSIA",
		colActor2CountryCode: "RUS",
		colEventCode:         "010",
		colEventBaseCode:     "01",
		colEventRootCode:     "01",
		colQuadClass:         "1",
		colGoldsteinScale:    "1.9",
		colAvgTone:           "-2.5",
		colActionGeoFullName: "Moscow, Russia",
		colActionGeoCountry:  "RS",
		colSourceURL:         "https://example.com/article",
	})

	docs := a.parseEvents(row)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "gdelt", doc.Source)
	assert.Equal(t, "gdelt-event-123456", doc.SourceID)
	require.NotNil(t, doc.URL)
	assert.Equal(t, "https://example.com/article", *doc.URL)
	require.NotNil(t, doc.Title)
	assert.Contains(t, *doc.Title, "UNITED STATES")
	assert.Contains(t, doc.Content, "GDELT Event 123456")
	assert.Contains(t, doc.Content, "Moscow, Russia")
}

func TestParseEventsCapsAtMaxGdeltEvents(t *testing.T) {
	a := NewNewsEventsAgent()

	var rows []string
	for i := 0; i < maxGdeltEvents+50; i++ {
		rows = append(rows, gdeltRow(map[int]string{colGlobalEventID: strconv.Itoa(i)}))
	}
	csv := strings.Join(rows, "\n")

	docs := a.parseEvents(csv)
	assert.Len(t, docs, maxGdeltEvents)
}

func TestParseOptionalFloat(t *testing.T) {
	assert.Equal(t, 1.5, parseOptionalFloat(" 1.5 "))
	assert.Nil(t, parseOptionalFloat(""))
	assert.Nil(t, parseOptionalFloat("not-a-number"))
}

func TestBuildEventContentQuadClassLabels(t *testing.T) {
	content := buildEventContent("1", "20240101", "A", "AAA", "B", "BBB", "010", "01", "2", "1.9", "-2.5", "", "", "")
	assert.Contains(t, content, fmt.Sprintf("Quad Class: %s", "Material Cooperation"))
}
