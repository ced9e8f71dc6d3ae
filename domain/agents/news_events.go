package agents

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sportinger/argus/domain/intel"
)

const (
	gdeltLastUpdateURL = "http://data.gdeltproject.org/gdeltv2/lastupdate.txt"

	// maxGdeltEvents caps how many rows a single export is parsed into.
	maxGdeltEvents = 5000

	// gdeltEventColumns is the GDELT 2.0 Events export column count.
	gdeltEventColumns = 58
)

// GDELT 2.0 Events export column indices (0-indexed, tab-delimited).
const (
	colGlobalEventID      = 0
	colDay                = 1
	colActor1Name         = 5
	colActor1CountryCode  = 7
	colActor2Name         = 15
	colActor2CountryCode  = 17
	colEventCode          = 26
	colEventBaseCode      = 27
	colEventRootCode      = 28
	colQuadClass          = 29
	colGoldsteinScale     = 30
	colNumMentions        = 31
	colNumSources         = 32
	colNumArticles        = 33
	colAvgTone            = 34
	colActor1GeoLat       = 39
	colActor1GeoLong      = 40
	colActor2GeoLat       = 44
	colActor2GeoLong      = 45
	colActionGeoFullName  = 50
	colActionGeoCountry   = 51
	colActionGeoLat       = 53
	colActionGeoLong      = 54
	colSourceURL          = 57
)

var cameoEventDescriptions = map[string]string{
	"01": "Make Public Statement",
	"02": "Appeal",
	"03": "Express Intent to Cooperate",
	"04": "Consult",
	"05": "Engage in Diplomatic Cooperation",
	"06": "Engage in Material Cooperation",
	"07": "Provide Aid",
	"08": "Yield",
	"09": "Investigate",
	"10": "Demand",
	"11": "Disapprove",
	"12": "Reject",
	"13": "Threaten",
	"14": "Protest",
	"15": "Exhibit Military Posture",
	"16": "Reduce Relations",
	"17": "Coerce",
	"18": "Assault",
	"19": "Fight",
	"20": "Engage in Unconventional Mass Violence",
}

func cameoEventDescription(code string) string {
	if desc, ok := cameoEventDescriptions[code]; ok {
		return desc
	}
	return "Interact With"
}

// NewsEventsAgent collects world event records from the GDELT 2.0 Events
// export, the most recent of which is always pointed to by a small
// manifest file.
type NewsEventsAgent struct {
	client *http.Client

	mu                 sync.RWMutex
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewNewsEventsAgent() *NewsEventsAgent {
	return &NewsEventsAgent{
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (a *NewsEventsAgent) Name() string       { return "gdelt" }
func (a *NewsEventsAgent) SourceType() string { return "news_events" }

func (a *NewsEventsAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	docs, err := a.collectInner(ctx)

	now := time.Now().UTC()
	a.mu.Lock()
	a.lastRun = &now
	if err != nil {
		msg := err.Error()
		a.lastError = &msg
	} else {
		a.documentsCollected += uint64(len(docs))
		a.lastError = nil
	}
	a.mu.Unlock()

	return docs, err
}

func (a *NewsEventsAgent) collectInner(ctx context.Context) ([]intel.RawDocument, error) {
	exportURL, err := a.fetchLatestExportURL(ctx)
	if err != nil {
		return nil, err
	}

	csvText, err := a.downloadAndDecompress(ctx, exportURL)
	if err != nil {
		return nil, err
	}

	return a.parseEvents(csvText), nil
}

// fetchLatestExportURL downloads the GDELT "lastupdate.txt" manifest and
// extracts the URL of the latest events export zip. The manifest has
// three lines (export, mentions, gkg), each `<byte_size> <md5> <url>`.
func (a *NewsEventsAgent) fetchLatestExportURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gdeltLastUpdateURL, nil)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to build manifest request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to fetch last-update manifest: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to read last-update body: %v", err))
	}

	var firstLine string
	var fallback string
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if fallback == "" {
			fallback = trimmed
		}
		if strings.HasSuffix(trimmed, ".export.CSV.zip") {
			firstLine = trimmed
			break
		}
	}
	if firstLine == "" {
		firstLine = fallback
	}
	if firstLine == "" {
		return "", intel.NewAgentError("gdelt", "last-update manifest was empty")
	}

	fields := strings.Fields(firstLine)
	if len(fields) < 3 {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("unexpected manifest line format: %s", firstLine))
	}

	return fields[2], nil
}

// downloadAndDecompress fetches a GDELT .CSV.zip archive and returns the
// inner CSV text. GDELT exports are standard single-entry zip archives.
func (a *NewsEventsAgent) downloadAndDecompress(ctx context.Context, zipURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to build export request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to download export: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to read export bytes: %v", err))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("invalid zip archive: %v", err))
	}
	if len(zr.File) == 0 {
		return "", intel.NewAgentError("gdelt", "zip archive contained no files")
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to open zip entry: %v", err))
	}
	defer f.Close()

	var sb strings.Builder
	if _, err := io.Copy(&sb, bufio.NewReader(f)); err != nil {
		return "", intel.NewAgentError("gdelt", fmt.Sprintf("failed to read zip entry: %v", err))
	}

	return sb.String(), nil
}

func (a *NewsEventsAgent) parseEvents(csv string) []intel.RawDocument {
	now := time.Now().UTC()
	var documents []intel.RawDocument

	lines := strings.Split(csv, "\n")
	for i, line := range lines {
		if i >= maxGdeltEvents {
			break
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < gdeltEventColumns {
			continue
		}

		globalEventID := strings.TrimSpace(fields[colGlobalEventID])
		if globalEventID == "" {
			continue
		}

		actor1 := strings.TrimSpace(fields[colActor1Name])
		actor2 := strings.TrimSpace(fields[colActor2Name])
		eventCode := strings.TrimSpace(fields[colEventCode])
		eventRootCode := strings.TrimSpace(fields[colEventRootCode])
		eventBaseCode := strings.TrimSpace(fields[colEventBaseCode])
		quadClass := strings.TrimSpace(fields[colQuadClass])
		goldstein := strings.TrimSpace(fields[colGoldsteinScale])
		avgTone := strings.TrimSpace(fields[colAvgTone])
		numMentions := strings.TrimSpace(fields[colNumMentions])
		numSources := strings.TrimSpace(fields[colNumSources])
		numArticles := strings.TrimSpace(fields[colNumArticles])
		day := strings.TrimSpace(fields[colDay])
		sourceURL := strings.TrimSpace(fields[colSourceURL])
		actionGeo := strings.TrimSpace(fields[colActionGeoFullName])
		actionCountry := strings.TrimSpace(fields[colActionGeoCountry])
		actor1CC := strings.TrimSpace(fields[colActor1CountryCode])
		actor2CC := strings.TrimSpace(fields[colActor2CountryCode])

		title := buildEventTitle(actor1, actor2, eventCode, actionGeo)
		content := buildEventContent(globalEventID, day, actor1, actor1CC, actor2, actor2CC,
			eventCode, eventRootCode, quadClass, goldstein, avgTone, actionGeo, actionCountry, sourceURL)

		metadata := map[string]any{
			"global_event_id":         globalEventID,
			"day":                     day,
			"actor1_name":             actor1,
			"actor1_country_code":     actor1CC,
			"actor2_name":             actor2,
			"actor2_country_code":     actor2CC,
			"event_code":              eventCode,
			"event_base_code":         eventBaseCode,
			"event_root_code":         eventRootCode,
			"quad_class":              quadClass,
			"goldstein_scale":         goldstein,
			"avg_tone":                avgTone,
			"num_mentions":            numMentions,
			"num_sources":             numSources,
			"num_articles":            numArticles,
			"action_geo_full_name":    actionGeo,
			"action_geo_country_code": actionCountry,
			"action_geo_lat":          parseOptionalFloat(fields[colActionGeoLat]),
			"action_geo_long":         parseOptionalFloat(fields[colActionGeoLong]),
			"actor1_geo_lat":          parseOptionalFloat(fields[colActor1GeoLat]),
			"actor1_geo_long":         parseOptionalFloat(fields[colActor1GeoLong]),
			"actor2_geo_lat":          parseOptionalFloat(fields[colActor2GeoLat]),
			"actor2_geo_long":         parseOptionalFloat(fields[colActor2GeoLong]),
		}

		var urlPtr *string
		if sourceURL != "" {
			urlPtr = &sourceURL
		}
		var titlePtr *string
		if title != "" {
			titlePtr = &title
		}

		documents = append(documents, intel.RawDocument{
			Source:      "gdelt",
			SourceID:    fmt.Sprintf("gdelt-event-%s", globalEventID),
			Title:       titlePtr,
			Content:     content,
			URL:         urlPtr,
			CollectedAt: now,
			Metadata:    mustJSON(metadata),
		})
	}

	return documents
}

func buildEventTitle(actor1, actor2, eventCode, geo string) string {
	var parts []string

	a1 := actor1
	if a1 == "" {
		a1 = "Unknown"
	}
	parts = append(parts, a1)
	parts = append(parts, cameoEventDescription(eventCode))

	if actor2 != "" {
		parts = append(parts, actor2)
	}
	if geo != "" {
		parts = append(parts, "in "+geo)
	}

	return strings.Join(parts, " ")
}

func buildEventContent(id, day, actor1, actor1CC, actor2, actor2CC, eventCode, eventRootCode,
	quadClass, goldstein, avgTone, geo, geoCC, sourceURL string) string {

	quadLabel := quadClass
	switch quadClass {
	case "1":
		quadLabel = "Verbal Cooperation"
	case "2":
		quadLabel = "Material Cooperation"
	case "3":
		quadLabel = "Verbal Conflict"
	case "4":
		quadLabel = "Material Conflict"
	}

	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	lines := []string{
		fmt.Sprintf("GDELT Event %s on %s", id, day),
		fmt.Sprintf("Actor 1: %s (%s)", orNA(actor1), orNA(actor1CC)),
		fmt.Sprintf("Actor 2: %s (%s)", orNA(actor2), orNA(actor2CC)),
		fmt.Sprintf("Event: %s (root: %s)", cameoEventDescription(eventCode), cameoEventDescription(eventRootCode)),
		fmt.Sprintf("Quad Class: %s", quadLabel),
		fmt.Sprintf("Goldstein Scale: %s", goldstein),
		fmt.Sprintf("Average Tone: %s", avgTone),
	}

	if geo != "" {
		lines = append(lines, fmt.Sprintf("Location: %s (%s)", geo, geoCC))
	}
	if sourceURL != "" {
		lines = append(lines, fmt.Sprintf("Source: %s", sourceURL))
	}

	return strings.Join(lines, "\n")
}

func parseOptionalFloat(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return f
}

func (a *NewsEventsAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "gdelt",
		Enabled:            true,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}
