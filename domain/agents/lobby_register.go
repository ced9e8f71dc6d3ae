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

const euTransparencyAPIURL = "https://ec.europa.eu/transparencyregister/public/consultation/statistics.do?action=getLobbyistsJson"

// lobbyistEntry is one registered organization from the EU Transparency
// Register. The upstream API is inconsistent about field naming across
// its various JSON shapes, so every field carries the aliases observed
// in practice.
type lobbyistEntry struct {
	RegistrationID     *string         `json:"registrationId"`
	RegistrationIDAlt  *string         `json:"id"`
	Name               *string         `json:"name"`
	NameAlt            *string         `json:"organisationName"`
	Category           *string         `json:"category"`
	CategoryAlt        *string         `json:"section"`
	SubCategory        *string         `json:"subCategory"`
	Country            *string         `json:"countryOfHeadOffice"`
	CountryAlt         *string         `json:"country"`
	AccreditedPersons  json.RawMessage `json:"numberOfAccreditedPersons"`
	LobbyingCosts      *string         `json:"costs"`
	LobbyingCostsAlt   *string         `json:"lobbyingCosts"`
	Activities         *string         `json:"activities"`
	ActivitiesAlt      *string         `json:"goals"`
	RegistrationDate   *string         `json:"registrationDate"`
	Website            *string         `json:"webSiteUrl"`
}

// lobbyistAPIResponse accepts the three shapes the EU Transparency
// Register API is known to return: a bare array, or the array nested
// under "results" or "data".
type lobbyistAPIResponse struct {
	Results []lobbyistEntry `json:"results"`
	Data    []lobbyistEntry `json:"data"`
}

func parseLobbyistResponse(body []byte) ([]lobbyistEntry, error) {
	var entries []lobbyistEntry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}

	var wrapped lobbyistAPIResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Results) > 0 {
		return wrapped.Results, nil
	}
	return wrapped.Data, nil
}

// LobbyRegisterAgent collects registered lobbyist organizations from
// the EU Transparency Register public API.
type LobbyRegisterAgent struct {
	client *http.Client

	mu                 sync.RWMutex
	enabled            bool
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewLobbyRegisterAgent() *LobbyRegisterAgent {
	return &LobbyRegisterAgent{
		client:  &http.Client{Timeout: 60 * time.Second},
		enabled: true,
	}
}

func (a *LobbyRegisterAgent) Name() string       { return "eu_transparency" }
func (a *LobbyRegisterAgent) SourceType() string { return "lobby_register" }

func (a *LobbyRegisterAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, euTransparencyAPIURL, nil)
	if err != nil {
		return nil, intel.NewAgentError("eu_transparency", fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, intel.NewAgentError("eu_transparency", fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		msg := fmt.Sprintf("EU Transparency Register API returned status %d: %s", resp.StatusCode, string(body))
		now := time.Now().UTC()
		a.mu.Lock()
		a.lastRun = &now
		a.lastError = &msg
		a.mu.Unlock()
		return nil, intel.NewAgentError("eu_transparency", msg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, intel.NewAgentError("eu_transparency", fmt.Sprintf("failed to read response body: %v", err))
	}

	entries, err := parseLobbyistResponse(body)
	if err != nil {
		return nil, intel.NewAgentError("eu_transparency", fmt.Sprintf("failed to parse EU Transparency Register response: %v", err))
	}

	var documents []intel.RawDocument
	for _, entry := range entries {
		if doc := lobbyistEntryToDocument(entry); doc != nil {
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

func lobbyistEntryToDocument(e lobbyistEntry) *intel.RawDocument {
	registrationID := firstNonEmpty(e.RegistrationID, e.RegistrationIDAlt)
	if registrationID == "" {
		return nil
	}

	name := firstNonEmptyOr(e.Name, e.NameAlt, "Unknown Organisation")
	category := firstNonEmptyOr(e.Category, e.CategoryAlt, "Uncategorised")
	subCategory := firstNonEmpty(e.SubCategory)
	country := firstNonEmptyOr(e.Country, e.CountryAlt, "unknown")
	activities := firstNonEmpty(e.Activities, e.ActivitiesAlt)
	lobbyingCosts := firstNonEmpty(e.LobbyingCosts, e.LobbyingCostsAlt)
	registrationDate := firstNonEmpty(e.RegistrationDate)

	var content strings.Builder
	fmt.Fprintf(&content, "Lobbyist organisation: %s (ID: %s). Category: %s.", name, registrationID, category)
	if subCategory != "" {
		fmt.Fprintf(&content, " Sub-category: %s.", subCategory)
	}
	fmt.Fprintf(&content, " Country: %s.", country)
	if activities != "" {
		fmt.Fprintf(&content, " Activities: %s.", activities)
	}
	if lobbyingCosts != "" {
		fmt.Fprintf(&content, " Lobbying costs: %s.", lobbyingCosts)
	}
	if registrationDate != "" {
		fmt.Fprintf(&content, " Registered: %s.", registrationDate)
	}

	metadata := map[string]any{
		"registration_id":    registrationID,
		"name":               name,
		"category":           category,
		"sub_category":       subCategory,
		"country":            country,
		"activities":         activities,
		"lobbying_costs":     lobbyingCosts,
		"accredited_persons": json.RawMessage(orEmptyJSON(e.AccreditedPersons)),
		"registration_date":  registrationDate,
		"website":            e.Website,
	}

	url := fmt.Sprintf("https://ec.europa.eu/transparencyregister/public/consultation/displaylobbyist.do?id=%s", registrationID)

	return &intel.RawDocument{
		Source:      "eu_transparency",
		SourceID:    registrationID,
		Title:       strPtr(name),
		Content:     content.String(),
		URL:         strPtr(url),
		CollectedAt: time.Now().UTC(),
		Metadata:    mustJSON(metadata),
	}
}

func firstNonEmpty(ptrs ...*string) string {
	for _, p := range ptrs {
		if p != nil && strings.TrimSpace(*p) != "" {
			return strings.TrimSpace(*p)
		}
	}
	return ""
}

func firstNonEmptyOr(p1, p2 *string, fallback string) string {
	if v := firstNonEmpty(p1, p2); v != "" {
		return v
	}
	return fallback
}

func (a *LobbyRegisterAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "eu_transparency",
		Enabled:            a.enabled,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}
