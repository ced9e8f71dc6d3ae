package reasoning

import "go.uber.org/fx"

// Module provides the reasoning Engine and registers its HTTP endpoint.
var Module = fx.Module("reasoning",
	fx.Provide(NewEngine, NewHandler),
	fx.Invoke(RegisterRoutes),
)
