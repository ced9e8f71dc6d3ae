package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Sportinger/argus/domain/intel"
)

const aisHubAPIURL = "https://data.aishub.net/ws.php"

// aisHubMeta is the first element of an AISHub response envelope.
type aisHubMeta struct {
	Error        bool   `json:"ERROR"`
	ErrorMessage string `json:"ERROR_MESSAGE"`
	Records      int    `json:"RECORDS"`
}

// aisVesselRecord is one vessel position record from the AISHub API.
type aisVesselRecord struct {
	MMSI              int64    `json:"MMSI"`
	Name              *string  `json:"NAME"`
	Latitude          *float64 `json:"LATITUDE"`
	Longitude         *float64 `json:"LONGITUDE"`
	SpeedOverGround   *float64 `json:"SOG"`
	CourseOverGround  *float64 `json:"COG"`
	Heading           *float64 `json:"HEADING"`
	Destination       *string  `json:"DESTINATION"`
	IMO               *int64   `json:"IMO"`
	Callsign          *string  `json:"CALLSIGN"`
	VesselType        *int64   `json:"TYPE"`
	NavStatus         *int64   `json:"NAVSTAT"`
	Timestamp         *string  `json:"TIME"`
}

// MaritimeAgent collects real-time vessel position reports from the
// AISHub API. AISHub requires a registered API key; without one the
// agent always fails with a configuration error so the scheduler can
// skip it entirely, per the agent's API-key-gated contract.
type MaritimeAgent struct {
	client *http.Client
	apiKey string

	mu                 sync.RWMutex
	enabled            bool
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewMaritimeAgent(apiKey string) *MaritimeAgent {
	return &MaritimeAgent{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		enabled: true,
	}
}

func (a *MaritimeAgent) Name() string       { return "ais" }
func (a *MaritimeAgent) SourceType() string { return "maritime_tracking" }

func (a *MaritimeAgent) buildURL(apiKey string) string {
	return fmt.Sprintf("%s?username=%s&format=1&output=json&compress=0", aisHubAPIURL, apiKey)
}

func (a *MaritimeAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	if a.apiKey == "" {
		msg := "AISHUB_API_KEY not configured"
		now := time.Now().UTC()
		a.mu.Lock()
		a.lastRun = &now
		a.lastError = &msg
		a.mu.Unlock()
		return nil, &intel.Error{Kind: intel.ErrKindConfiguration, Agent: "ais", Message: msg}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.buildURL(a.apiKey), nil)
	if err != nil {
		return nil, intel.NewAgentError("ais", fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, intel.NewAgentError("ais", fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("AISHub API returned HTTP %d", resp.StatusCode)
		now := time.Now().UTC()
		a.mu.Lock()
		a.lastRun = &now
		a.lastError = &msg
		a.mu.Unlock()
		return nil, intel.NewAgentError("ais", msg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, intel.NewAgentError("ais", fmt.Sprintf("failed to read response body: %v", err))
	}

	vessels, err := parseAISHubResponse(body)
	if err != nil {
		return nil, err
	}

	documents := make([]intel.RawDocument, 0, len(vessels))
	for _, v := range vessels {
		documents = append(documents, vesselToDocument(v))
	}

	now := time.Now().UTC()
	a.mu.Lock()
	a.lastRun = &now
	a.documentsCollected += uint64(len(documents))
	a.lastError = nil
	a.mu.Unlock()

	return documents, nil
}

// parseAISHubResponse parses the AISHub envelope: a two-element JSON
// array whose first element is a metadata object (carrying an ERROR
// flag) and whose second element is the array of vessel records.
func parseAISHubResponse(body []byte) ([]aisVesselRecord, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, intel.NewAgentError("ais", fmt.Sprintf("failed to parse AISHub response envelope: %v", err))
	}
	if len(envelope) < 2 {
		return nil, intel.NewAgentError("ais", "AISHub response missing data array")
	}

	var metaArray []aisHubMeta
	if err := json.Unmarshal(envelope[0], &metaArray); err == nil && len(metaArray) > 0 {
		if metaArray[0].Error {
			msg := metaArray[0].ErrorMessage
			if msg == "" {
				msg = "unknown API error"
			}
			return nil, intel.NewAgentError("ais", fmt.Sprintf("AISHub API error: %s", msg))
		}
	}

	var vessels []aisVesselRecord
	if err := json.Unmarshal(envelope[1], &vessels); err != nil {
		return nil, intel.NewAgentError("ais", fmt.Sprintf("failed to parse AISHub vessel data: %v", err))
	}
	return vessels, nil
}

func vesselToDocument(v aisVesselRecord) intel.RawDocument {
	mmsi := fmt.Sprintf("%d", v.MMSI)

	name := "UNKNOWN"
	if v.Name != nil && strings.TrimSpace(*v.Name) != "" {
		name = strings.TrimSpace(*v.Name)
	}

	destination := "N/A"
	if v.Destination != nil && strings.TrimSpace(*v.Destination) != "" {
		destination = strings.TrimSpace(*v.Destination)
	}

	content := fmt.Sprintf("Vessel %s (MMSI: %s) at (%s, %s), SOG: %s kn, COG: %s°, destination: %s",
		name, mmsi, floatOrZero(v.Latitude), floatOrZero(v.Longitude),
		floatOrZero(v.SpeedOverGround), floatOrZero(v.CourseOverGround), destination)

	metadata := map[string]any{
		"mmsi":               v.MMSI,
		"name":               name,
		"latitude":           v.Latitude,
		"longitude":          v.Longitude,
		"speed_over_ground":  v.SpeedOverGround,
		"course_over_ground": v.CourseOverGround,
		"heading":            v.Heading,
		"destination":        v.Destination,
		"imo":                v.IMO,
		"callsign":           v.Callsign,
		"vessel_type":        v.VesselType,
		"nav_status":         v.NavStatus,
		"timestamp":          v.Timestamp,
	}

	return intel.RawDocument{
		Source:      "ais",
		SourceID:    mmsi,
		Title:       strPtr(name),
		Content:     content,
		CollectedAt: time.Now().UTC(),
		Metadata:    mustJSON(metadata),
	}
}

func floatOrZero(f *float64) string {
	if f == nil {
		return "0"
	}
	return fmt.Sprintf("%g", *f)
}

func (a *MaritimeAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "ais",
		Enabled:            a.enabled,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}

// CanLookup reports whether this agent can answer a targeted lookup for
// the given entity type. AISHub's API only returns bulk snapshots, so
// even though it carries vessel data, it cannot perform a name-based
// lookup — can_lookup is honest about the type it covers, and Lookup
// always returns an empty result.
func (a *MaritimeAgent) CanLookup(entityType intel.EntityType) bool {
	return entityType == intel.EntityVessel
}

func (a *MaritimeAgent) Lookup(ctx context.Context, name string, entityType intel.EntityType) ([]intel.RawDocument, error) {
	return nil, nil
}
