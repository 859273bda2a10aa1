package providers

import (
	"fmt"

	"github.com/kindershield/kindershield/internal/llm"
)

// New constructs the provider selected by the configuration. The config is
// validated and defaulted here so every provider starts from a complete,
// immutable configuration.
func New(cfg llm.ProviderConfig) (llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	switch cfg.Provider {
	case llm.ProviderDummy:
		return NewDummyProvider(cfg.Model), nil
	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", llm.ErrUnknownProvider, cfg.Provider)
	}
}
