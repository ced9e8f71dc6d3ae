// Package agents implements the collection agents that pull raw
// intelligence documents from external sources: news/events, corporate
// registries, sanctions lists, maritime and aircraft position feeds, and
// lobbying registers.
package agents

import (
	"context"

	"github.com/Sportinger/argus/domain/intel"
)

// Agent collects RawDocuments from one external data source and reports
// its own health.
type Agent interface {
	Name() string
	SourceType() string
	Collect(ctx context.Context) ([]intel.RawDocument, error)
	Status(ctx context.Context) intel.AgentStatus
}

// Lookup is implemented by agents whose data source can be queried by
// entity name, so the scheduler can cross-reference an entity discovered
// by one agent against another agent's source. Go's interface type
// assertion (agent.(Lookup)) stands in for the capability-downcast that
// a dynamically typed host language would need a runtime check for.
type Lookup interface {
	CanLookup(entityType intel.EntityType) bool
	Lookup(ctx context.Context, name string, entityType intel.EntityType) ([]intel.RawDocument, error)
}

// Registry is the fixed set of agents the service knows about, keyed by
// the same names the scheduler's schedule table refers to.
type Registry map[string]Agent

// NewRegistry builds the registry of all six collection agents.
func NewRegistry(cfg AgentsConfig) Registry {
	return Registry{
		"gdelt":           NewNewsEventsAgent(),
		"opencorporates":  NewCorporateRegistryAgent(),
		"opensanctions":   NewSanctionsAgent(),
		"ais":             NewMaritimeAgent(cfg.AISHubAPIKey),
		"adsb":            NewAircraftAgent(),
		"eu_transparency": NewLobbyRegisterAgent(),
	}
}

// AgentsConfig carries the small amount of per-agent configuration that
// can't simply be a compile-time constant (credentials).
type AgentsConfig struct {
	AISHubAPIKey string
}
