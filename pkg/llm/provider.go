// Package llm provides interfaces for language model providers.
package llm

import (
	"context"
)

// Provider is an interface for LLM providers. Unlike a plain chat
// completion call, every caller in this service (extraction, reasoning)
// needs to separate its system instructions from the per-request
// message, so Complete takes both explicitly rather than requiring
// callers to concatenate them themselves.
type Provider interface {
	// Complete generates a completion for the given system prompt and
	// user message.
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)

	// IsConfigured returns true if the provider is properly configured.
	IsConfigured() bool
}
