package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sportinger/argus/domain/intel"
)

type stubAgent struct {
	name string
}

func (a *stubAgent) Name() string       { return a.name }
func (a *stubAgent) SourceType() string { return a.name }
func (a *stubAgent) Collect(ctx context.Context) ([]intel.RawDocument, error) {
	return nil, nil
}
func (a *stubAgent) Status(ctx context.Context) intel.AgentStatus {
	return intel.AgentStatus{Name: a.name, Enabled: true}
}

func TestHandlerListReturnsAllAgentStatuses(t *testing.T) {
	registry := Registry{
		"gdelt": &stubAgent{name: "gdelt"},
		"adsb":  &stubAgent{name: "adsb"},
	}
	h := NewHandler(registry)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Agents, 2)
}
