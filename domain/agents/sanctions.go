package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Sportinger/argus/domain/intel"
)

const (
	openSanctionsAPIURL    = "https://api.opensanctions.org/entities"
	openSanctionsDataset   = "default"
	openSanctionsPageLimit = 100
	openSanctionsPageCap   = 10_000
)

type openSanctionsResponse struct {
	Results []openSanctionsEntity `json:"results"`
	Total   *uint64               `json:"total"`
	Limit   *uint32               `json:"limit"`
	Offset  *uint32               `json:"offset"`
}

type openSanctionsEntity struct {
	ID         string          `json:"id"`
	Caption    *string         `json:"caption"`
	SchemaAlt  *string         `json:"schema_"`
	SchemaName *string         `json:"schema"`
	Properties json.RawMessage `json:"properties"`
	Datasets   []string        `json:"datasets"`
	Referents  []string        `json:"referents"`
	FirstSeen  *string         `json:"first_seen"`
	LastSeen   *string         `json:"last_seen"`
	LastChange *string         `json:"last_change"`
	Target     *bool           `json:"target"`
}

// SanctionsAgent collects sanctioned-entity records from the OpenSanctions
// API. Unlike the other agents, it paginates the full result set on
// every collection run.
type SanctionsAgent struct {
	client *http.Client
	apiURL string

	mu                 sync.RWMutex
	enabled            bool
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewSanctionsAgent() *SanctionsAgent {
	return &SanctionsAgent{
		client:  &http.Client{Timeout: 60 * time.Second},
		apiURL:  openSanctionsAPIURL,
		enabled: true,
	}
}

func (a *SanctionsAgent) Name() string       { return "opensanctions" }
func (a *SanctionsAgent) SourceType() string { return "sanctions" }

func (a *SanctionsAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	a.mu.RLock()
	enabled := a.enabled
	a.mu.RUnlock()
	if !enabled {
		return nil, nil
	}

	var allDocuments []intel.RawDocument
	var offset uint32

	for {
		page, err := a.fetchPage(ctx, offset, openSanctionsPageLimit)
		if err != nil {
			now := time.Now().UTC()
			msg := err.Error()
			a.mu.Lock()
			a.lastError = &msg
			a.lastRun = &now
			a.mu.Unlock()
			return nil, err
		}

		resultCount := uint32(len(page.Results))
		for _, entity := range page.Results {
			allDocuments = append(allDocuments, entityToDocument(entity))
		}

		if resultCount < openSanctionsPageLimit {
			break
		}
		if page.Total != nil && uint64(offset)+uint64(resultCount) >= *page.Total {
			break
		}

		offset += openSanctionsPageLimit
		if offset > openSanctionsPageCap {
			break
		}
	}

	now := time.Now().UTC()
	a.mu.Lock()
	a.lastRun = &now
	a.documentsCollected += uint64(len(allDocuments))
	a.lastError = nil
	a.mu.Unlock()

	return allDocuments, nil
}

func (a *SanctionsAgent) fetchPage(ctx context.Context, offset, limit uint32) (*openSanctionsResponse, error) {
	reqURL := fmt.Sprintf("%s?dataset=%s&limit=%d&offset=%d", a.apiURL, openSanctionsDataset, limit, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, intel.NewAgentError("opensanctions", fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, intel.NewAgentError("opensanctions", fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, intel.NewAgentError("opensanctions", fmt.Sprintf("API returned HTTP %d: %s", resp.StatusCode, string(body)))
	}

	var data openSanctionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, intel.NewAgentError("opensanctions", fmt.Sprintf("failed to parse response JSON: %v", err))
	}

	return &data, nil
}

func entityToDocument(entity openSanctionsEntity) intel.RawDocument {
	name := entity.ID
	if entity.Caption != nil && *entity.Caption != "" {
		name = *entity.Caption
	} else if entity.Properties != nil {
		var props map[string]json.RawMessage
		if json.Unmarshal(entity.Properties, &props) == nil {
			if rawNames, ok := props["name"]; ok {
				var names []string
				if json.Unmarshal(rawNames, &names) == nil && len(names) > 0 {
					name = names[0]
				}
			}
		}
	}

	schema := "Unknown"
	if entity.SchemaName != nil && *entity.SchemaName != "" {
		schema = *entity.SchemaName
	} else if entity.SchemaAlt != nil && *entity.SchemaAlt != "" {
		schema = *entity.SchemaAlt
	}

	content := fmt.Sprintf("Sanctioned entity: %s (Schema: %s). ID: %s", name, schema, entity.ID)

	metadata := map[string]any{
		"schema":      schema,
		"properties":  json.RawMessage(orEmptyJSON(entity.Properties)),
		"datasets":    entity.Datasets,
		"referents":   entity.Referents,
		"first_seen":  entity.FirstSeen,
		"last_seen":   entity.LastSeen,
		"last_change": entity.LastChange,
		"target":      entity.Target,
		"caption":     entity.Caption,
	}

	url := fmt.Sprintf("https://api.opensanctions.org/entities/%s", entity.ID)

	return intel.RawDocument{
		Source:      "opensanctions",
		SourceID:    entity.ID,
		Title:       strPtr(name),
		Content:     content,
		URL:         strPtr(url),
		CollectedAt: time.Now().UTC(),
		Metadata:    mustJSON(metadata),
	}
}

func orEmptyJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

func (a *SanctionsAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "opensanctions",
		Enabled:            a.enabled,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}
