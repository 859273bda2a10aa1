// Package llm defines the uniform provider capability used by the
// evaluation engine: a single Generate call over interchangeable backends.
// Providers perform exactly one outbound call per invocation; retry policy
// and rate limiting belong to the orchestrator.
package llm

import "context"

// Request is the normalized generation request handed to a provider.
type Request struct {
	// Prompt is the user-facing text sent to the model.
	Prompt string

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// Response is the normalized provider response.
type Response struct {
	// Content is the raw response text.
	Content string

	// LatencyMillis measures the provider round trip.
	LatencyMillis int64

	// PromptTokens and CompletionTokens carry usage metrics when the
	// backend reports them.
	PromptTokens     int
	CompletionTokens int
}

// Client is the uniform capability over generation backends. Implementations
// map backend-specific failures into the shared ProviderError taxonomy and
// must be safe for concurrent use.
type Client interface {
	// Generate performs one generation call. It honors ctx cancellation and
	// deadlines and returns a *errors.ProviderError on failure.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the canonical provider identifier ("dummy", "openai",
	// "anthropic").
	Name() string

	// Model returns the configured model name.
	Model() string
}
