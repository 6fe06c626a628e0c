// Package ai implements the LLM provider clients (Anthropic, Ollama,
// LM Studio) and the Generator service that drives content generation
// through the retry executor.
package ai

import "context"

// Provider defines the interface for LLM providers. Implementations make a
// single call per invocation; retry policy lives in the Generator, not here.
type Provider interface {
	// GenerateText sends the prompts to the model and returns the raw
	// response text along with call statistics.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, *Stats, error)

	// GetModelInfo returns information about the configured model
	GetModelInfo() map[string]interface{}

	// GetProviderName returns the name of the provider (e.g., "Anthropic", "Ollama")
	GetProviderName() string
}

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
	ProviderLMStudio  ProviderType = "lmstudio"
)

// ValidProviderTypes returns a list of valid provider types
func ValidProviderTypes() []ProviderType {
	return []ProviderType{ProviderAnthropic, ProviderOllama, ProviderLMStudio}
}

// IsValidProviderType checks if the given provider type is valid
func IsValidProviderType(pt string) bool {
	for _, valid := range ValidProviderTypes() {
		if string(valid) == pt {
			return true
		}
	}
	return false
}

// Stats holds statistics about one provider call.
type Stats struct {
	Provider            string
	Model               string
	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int
	CostUSD             float64
	DurationSeconds     float64
}
