package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Sportinger/argus/domain/intel"
)

const openSkyAPIURL = "https://opensky-network.org/api/states/all"

// openSkyResponse is the raw REST response from the OpenSky Network API.
type openSkyResponse struct {
	Time   int64             `json:"time"`
	States [][]json.RawMessage `json:"states"`
}

// AircraftAgent collects real-time aircraft state vectors from the
// OpenSky Network REST API.
type AircraftAgent struct {
	client *http.Client

	mu                 sync.RWMutex
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewAircraftAgent() *AircraftAgent {
	return &AircraftAgent{client: &http.Client{Timeout: 30 * time.Second}}
}

func (a *AircraftAgent) Name() string       { return "adsb" }
func (a *AircraftAgent) SourceType() string { return "aircraft_tracking" }

func (a *AircraftAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openSkyAPIURL, nil)
	if err != nil {
		return nil, intel.NewAgentError("adsb", fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, intel.NewAgentError("adsb", fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("OpenSky API returned status %d", resp.StatusCode)
		now := time.Now().UTC()
		a.mu.Lock()
		a.lastRun = &now
		a.lastError = &msg
		a.mu.Unlock()
		return nil, intel.NewAgentError("adsb", msg)
	}

	var sky openSkyResponse
	if err := json.NewDecoder(resp.Body).Decode(&sky); err != nil {
		return nil, intel.NewAgentError("adsb", fmt.Sprintf("failed to parse OpenSky response: %v", err))
	}

	var documents []intel.RawDocument
	for _, sv := range sky.States {
		if doc := parseStateVector(sv); doc != nil {
			documents = append(documents, *doc)
		}
	}

	now := time.Now().UTC()
	a.mu.Lock()
	a.lastRun = &now
	a.documentsCollected += uint64(len(documents))
	a.lastError = nil
	a.mu.Unlock()

	return documents, nil
}

// parseStateVector parses a single OpenSky state vector array into a
// RawDocument. Index layout (0-indexed): 0 icao24, 1 callsign,
// 2 origin_country, 5 longitude, 6 latitude, 7 baro_altitude, 8 on_ground,
// 9 velocity, 10 true_track, 11 vertical_rate, 13 geo_altitude, 14 squawk.
func parseStateVector(sv []json.RawMessage) *intel.RawDocument {
	if len(sv) == 0 {
		return nil
	}

	icao24 := rawString(sv, 0)
	if icao24 == "" {
		return nil
	}

	callsign := rawString(sv, 1)
	originCountry := rawString(sv, 2)
	if originCountry == "" {
		originCountry = "unknown"
	}

	longitude := rawFloat(sv, 5)
	latitude := rawFloat(sv, 6)
	baroAltitude := rawFloat(sv, 7)
	onGround := rawBool(sv, 8)
	velocity := rawFloat(sv, 9)
	trueTrack := rawFloat(sv, 10)
	verticalRate := rawFloat(sv, 11)
	geoAltitude := rawFloat(sv, 13)
	squawk := rawString(sv, 14)

	altStr := "unknown alt"
	if baroAltitude != nil {
		altStr = fmt.Sprintf("%.0fm", *baroAltitude)
	}
	velStr := "unknown vel"
	if velocity != nil {
		velStr = fmt.Sprintf("%.1fm/s", *velocity)
	}
	posStr := "unknown position"
	if latitude != nil && longitude != nil {
		posStr = fmt.Sprintf("(%.4f, %.4f)", *latitude, *longitude)
	}

	content := fmt.Sprintf("Aircraft %s (callsign: %s) from %s at %s, altitude %s, velocity %s, on_ground=%v",
		icao24, callsign, originCountry, posStr, altStr, velStr, onGround)

	metadata := map[string]any{
		"icao24":          icao24,
		"callsign":        callsign,
		"origin_country":  originCountry,
		"latitude":        orNilFloat(latitude),
		"longitude":       orNilFloat(longitude),
		"baro_altitude":   orNilFloat(baroAltitude),
		"geo_altitude":    orNilFloat(geoAltitude),
		"on_ground":       onGround,
		"velocity":        orNilFloat(velocity),
		"true_track":      orNilFloat(trueTrack),
		"vertical_rate":   orNilFloat(verticalRate),
		"squawk":          orNilString(squawk),
	}

	title := fmt.Sprintf("Aircraft %s", icao24)
	if callsign != "" {
		title = fmt.Sprintf("%s (%s)", callsign, icao24)
	}
	url := fmt.Sprintf("https://opensky-network.org/network/explorer?icao24=%s", icao24)

	return &intel.RawDocument{
		Source:      "adsb",
		SourceID:    icao24,
		Title:       strPtr(title),
		Content:     content,
		URL:         strPtr(url),
		CollectedAt: time.Now().UTC(),
		Metadata:    mustJSON(metadata),
	}
}

func rawString(sv []json.RawMessage, idx int) string {
	if idx >= len(sv) {
		return ""
	}
	var s string
	if err := json.Unmarshal(sv[idx], &s); err != nil {
		return ""
	}
	return s
}

func rawFloat(sv []json.RawMessage, idx int) *float64 {
	if idx >= len(sv) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(sv[idx], &f); err != nil {
		return nil
	}
	return &f
}

func rawBool(sv []json.RawMessage, idx int) bool {
	if idx >= len(sv) {
		return false
	}
	var b bool
	if err := json.Unmarshal(sv[idx], &b); err != nil {
		return false
	}
	return b
}

func orNilFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func orNilString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (a *AircraftAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "adsb",
		Enabled:            true,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}
