package llm

import (
	"fmt"
	"strings"

	"github.com/framescope/framescope/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (automated labeling disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:    mc.Provider,
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Timeout:     mc.Timeout,
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
	}
}
