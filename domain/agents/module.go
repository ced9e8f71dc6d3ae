package agents

import (
	"go.uber.org/fx"

	"github.com/Sportinger/argus/internal/config"
)

// Module provides the agent Registry and registers the listing endpoint.
var Module = fx.Module("agents",
	fx.Provide(NewRegistryFromConfig, NewHandler),
	fx.Invoke(RegisterRoutes),
)

// NewRegistryFromConfig adapts the resolved Config into AgentsConfig and
// builds the registry.
func NewRegistryFromConfig(cfg *config.Config) Registry {
	return NewRegistry(AgentsConfig{AISHubAPIKey: cfg.Sources.AISHubAPIKey})
}
