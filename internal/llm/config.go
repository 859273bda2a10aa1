package llm

import (
	"errors"
	"fmt"
	"time"
)

// Supported provider identifiers. These constants must match the provider
// names used in suite and run configuration.
const (
	ProviderDummy     = "dummy"     // Deterministic in-process provider
	ProviderOpenAI    = "openai"    // OpenAI chat completion models
	ProviderAnthropic = "anthropic" // Anthropic Claude models
)

// Configuration validation errors.
var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrMissingModel      = errors.New("model name is required")
	ErrMissingCredential = errors.New("credential is required")
	ErrInvalidTimeout    = errors.New("request timeout must be positive")
	ErrInvalidRetries    = errors.New("max retries must not be negative")
)

// Default request parameters applied when the config leaves them zero.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultMaxTokens      = 512
	DefaultTemperature    = 0.7
)

// ProviderConfig holds resolved provider settings. Credentials arrive
// already resolved by the caller; this package never reads the environment.
// A ProviderConfig is immutable once constructed.
type ProviderConfig struct {
	// Provider selects the backend: dummy, openai, or anthropic.
	Provider string

	// Model is the backend model identifier.
	Model string

	// Credential is the API key for network providers. Unused by dummy.
	Credential string

	// Endpoint overrides the backend base URL, used by tests.
	Endpoint string

	// RequestTimeout bounds each individual provider call.
	RequestTimeout time.Duration

	// MaxRetries caps orchestrator retries for transient failures. It lives
	// on the provider config because sensible retry budgets are
	// backend-specific; the retry loop itself runs in the orchestrator.
	MaxRetries int

	// MaxTokens and Temperature are forwarded on each request.
	MaxTokens   int
	Temperature float64
}

// WithDefaults returns a copy with zero-valued tunables replaced by package
// defaults.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}

// Validate checks the configuration before any provider is constructed.
func (c ProviderConfig) Validate() error {
	switch c.Provider {
	case ProviderDummy:
		// Credential-free, always available for deterministic testing.
	case ProviderOpenAI, ProviderAnthropic:
		if c.Credential == "" {
			return fmt.Errorf("%w for provider %s", ErrMissingCredential, c.Provider)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.Model == "" {
		return ErrMissingModel
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidTimeout, c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidRetries, c.MaxRetries)
	}
	return nil
}
