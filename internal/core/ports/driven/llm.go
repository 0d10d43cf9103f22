// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides single-shot answer generation.
// Calls are network-bound and must be invoked under a context deadline;
// the orchestrator converts timeouts into fallback answers.
//
// Implementations may include:
//   - OpenAI-compatible APIs (GPT-4o, Azure, compatible gateways)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	// A nil error with an empty string is treated as an upstream failure
	// by callers.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
