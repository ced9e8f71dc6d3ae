package extraction

import "go.uber.org/fx"

// Module provides the extraction Pipeline.
var Module = fx.Module("extraction",
	fx.Provide(NewPipeline),
)
