package health

import "go.uber.org/fx"

// Module provides the health and metrics Handlers and registers their
// routes.
var Module = fx.Module("health",
	fx.Provide(NewHandler, NewMetricsHandler),
	fx.Invoke(RegisterRoutes),
)
