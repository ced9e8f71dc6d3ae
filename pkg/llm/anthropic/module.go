package anthropic

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Sportinger/argus/internal/config"
	"github.com/Sportinger/argus/pkg/llm"
)

// Module provides an llm.Provider backed by the Anthropic Messages API,
// configured from the resolved Config.
var Module = fx.Module("llm",
	fx.Provide(NewProviderFromConfig),
)

// NewProviderFromConfig builds the Anthropic client from Config.LLM and
// returns it as the generic llm.Provider interface other packages depend on.
func NewProviderFromConfig(cfg *config.Config, log *slog.Logger) llm.Provider {
	return NewClient(Config{
		APIKey:  cfg.LLM.AnthropicAPIKey,
		Model:   cfg.LLM.AnthropicModel,
		Timeout: cfg.LLM.Timeout,
	}, WithMaxRetries(cfg.LLM.MaxRetries), WithLogger(log))
}
