package graph

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Sportinger/argus/internal/config"
)

// Module provides the graph store, wires its shutdown into fx, and
// registers the entity/graph/timeline HTTP endpoints.
var Module = fx.Module("graph",
	fx.Provide(NewStoreFromConfig, NewHandler),
	fx.Invoke(registerLifecycle, RegisterRoutes),
)

// NewStoreFromConfig builds the Neo4jStore from the resolved Config. The
// connection attempt itself happens here, synchronously, during fx's
// provide phase; a failed connection degrades gracefully rather than
// preventing the service from starting (see NewStore).
func NewStoreFromConfig(cfg *config.Config, log *slog.Logger) Store {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return NewStore(ctx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPassword, log)
}

// registerLifecycle closes the store's driver connection on shutdown.
func registerLifecycle(lc fx.Lifecycle, store Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close(ctx)
		},
	})
}
