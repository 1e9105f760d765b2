// ABOUTME: Factory constructing generation providers from configuration.
// ABOUTME: Dispatches on provider type string to the concrete constructor.

package llm

import "fmt"

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI ProviderType = "openai"
	ProviderTypeStub   ProviderType = "stub"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	APIKey  string
	Model   string
}

// NewProvider creates a provider based on configuration.
//
// Supported types:
//   - "openai": any OpenAI-compatible chat-completions endpoint
//   - "stub": the deterministic offline responder (useful for development)
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Type {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeStub:
		return NewStub(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
