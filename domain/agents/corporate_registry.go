package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Sportinger/argus/domain/intel"
)

const openCorporatesAPIBase = "https://api.opencorporates.com/v0.4"

type openCorporatesAPIResponse struct {
	Results openCorporatesResults `json:"results"`
}

type openCorporatesResults struct {
	Companies  []openCorporatesCompanyWrapper `json:"companies"`
	TotalCount *uint64                        `json:"total_count"`
	Page       *uint64                        `json:"page"`
	PerPage    *uint64                        `json:"per_page"`
}

type openCorporatesCompanyWrapper struct {
	Company openCorporatesCompany `json:"company"`
}

type openCorporatesCompany struct {
	Name                    *string                      `json:"name"`
	CompanyNumber           *string                      `json:"company_number"`
	JurisdictionCode        *string                      `json:"jurisdiction_code"`
	IncorporationDate       *string                      `json:"incorporation_date"`
	DissolutionDate         *string                      `json:"dissolution_date"`
	CompanyType             *string                      `json:"company_type"`
	RegistryURL             *string                      `json:"registry_url"`
	Branch                  *string                      `json:"branch"`
	BranchStatus            *string                      `json:"branch_status"`
	Inactive                *bool                        `json:"inactive"`
	CurrentStatus           *string                      `json:"current_status"`
	CreatedAt               *string                      `json:"created_at"`
	UpdatedAt               *string                      `json:"updated_at"`
	RetrievedAt             *string                      `json:"retrieved_at"`
	OpencorporatesURL       *string                      `json:"opencorporates_url"`
	RegisteredAddressInFull *string                      `json:"registered_address_in_full"`
	Source                  *openCorporatesCompanySource `json:"source"`
	PreviousNames           []json.RawMessage            `json:"previous_names"`
	AlternativeNames        []json.RawMessage            `json:"alternative_names"`
	AgentName               *string                      `json:"agent_name"`
	AgentAddress            *string                      `json:"agent_address"`
	Officers                []json.RawMessage            `json:"officers"`
	IndustryCodes           []json.RawMessage            `json:"industry_codes"`
}

type openCorporatesCompanySource struct {
	Publisher   *string `json:"publisher"`
	URL         *string `json:"url"`
	RetrievedAt *string `json:"retrieved_at"`
}

// CorporateRegistryAgent collects recently updated company records from
// the OpenCorporates API.
type CorporateRegistryAgent struct {
	client *http.Client

	mu                 sync.RWMutex
	lastRun            *time.Time
	documentsCollected uint64
	lastError          *string
}

func NewCorporateRegistryAgent() *CorporateRegistryAgent {
	return &CorporateRegistryAgent{client: &http.Client{Timeout: 30 * time.Second}}
}

func (a *CorporateRegistryAgent) Name() string       { return "opencorporates" }
func (a *CorporateRegistryAgent) SourceType() string { return "corporate_registry" }

func (a *CorporateRegistryAgent) buildSearchURL() string {
	return openCorporatesAPIBase + "/companies/search"
}

func (a *CorporateRegistryAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	collectedAt := time.Now().UTC()
	since := collectedAt.Add(-24 * time.Hour).Format("2006-01-02T15:04:05+00:00")

	q := url.Values{}
	q.Set("q", "*")
	q.Set("order", "updated_at")
	q.Set("updated_since", since)
	q.Set("per_page", "100")

	reqURL := a.buildSearchURL() + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, intel.NewAgentError("opencorporates", fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, intel.NewAgentError("opencorporates", fmt.Sprintf("HTTP request to OpenCorporates failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		msg := fmt.Sprintf("OpenCorporates API returned HTTP %d: %s", resp.StatusCode, string(body))
		now := time.Now().UTC()
		a.mu.Lock()
		a.lastRun = &now
		a.lastError = &msg
		a.mu.Unlock()
		return nil, intel.NewAgentError("opencorporates", msg)
	}

	var apiResp openCorporatesAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, intel.NewAgentError("opencorporates", fmt.Sprintf("failed to parse OpenCorporates response: %v", err))
	}

	var documents []intel.RawDocument
	for _, wrapper := range apiResp.Results.Companies {
		company := wrapper.Company
		if company.CompanyNumber == nil && company.Name == nil {
			continue
		}
		documents = append(documents, companyToRawDocument(company, collectedAt))
	}

	now := time.Now().UTC()
	a.mu.Lock()
	a.lastRun = &now
	a.documentsCollected += uint64(len(documents))
	a.lastError = nil
	a.mu.Unlock()

	return documents, nil
}

func companyToRawDocument(company openCorporatesCompany, collectedAt time.Time) intel.RawDocument {
	jurisdiction := "unknown"
	if company.JurisdictionCode != nil {
		jurisdiction = *company.JurisdictionCode
	}
	number := "unknown"
	if company.CompanyNumber != nil {
		number = *company.CompanyNumber
	}
	sourceID := fmt.Sprintf("opencorporates:%s:%s", jurisdiction, number)

	content := mustJSON(company)

	metadata := map[string]any{
		"jurisdiction_code":  company.JurisdictionCode,
		"company_number":     company.CompanyNumber,
		"company_type":       company.CompanyType,
		"incorporation_date": company.IncorporationDate,
		"dissolution_date":   company.DissolutionDate,
		"current_status":     company.CurrentStatus,
		"inactive":           company.Inactive,
		"registered_address": company.RegisteredAddressInFull,
		"branch":             company.Branch,
		"branch_status":      company.BranchStatus,
		"updated_at":         company.UpdatedAt,
		"retrieved_at":       company.RetrievedAt,
		"officers":           company.Officers,
	}

	return intel.RawDocument{
		Source:      "opencorporates",
		SourceID:    sourceID,
		Title:       company.Name,
		Content:     string(content),
		URL:         company.OpencorporatesURL,
		CollectedAt: collectedAt,
		Metadata:    mustJSON(metadata),
	}
}

func (a *CorporateRegistryAgent) Status(ctx context.Context) intel.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return intel.AgentStatus{
		Name:               "opencorporates",
		Enabled:            true,
		LastRun:            a.lastRun,
		DocumentsCollected: a.documentsCollected,
		Error:              a.lastError,
	}
}
