package main

import (
	"fmt"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
	"github.com/zhe.chen/pose-action-reasoner/internal/llm/providers/claude"
	"github.com/zhe.chen/pose-action-reasoner/internal/llm/providers/gemini"
	"github.com/zhe.chen/pose-action-reasoner/internal/llm/providers/openai"
	"github.com/zhe.chen/pose-action-reasoner/internal/llm/providers/openrouter"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// createLLMProvider creates the appropriate LLM provider based on configuration
func createLLMProvider(config types.LLMConfig) (llm.Provider, error) {
	switch config.Provider {
	case "anthropic", "claude":
		return claude.NewProvider(config.Anthropic)

	case "google", "gemini":
		return gemini.NewProvider(config.Google)

	case "openai":
		return openai.NewProvider(config.OpenAI)

	case "openrouter":
		return openrouter.NewProvider(config.OpenRouter)

	case "":
		return nil, fmt.Errorf("llm.provider not specified in config")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, openrouter, anthropic, google)", config.Provider)
	}
}

// enabledProvider creates the provider and fails early when it has no credentials
func enabledProvider(config types.LLMConfig) (llm.Provider, error) {
	provider, err := createLLMProvider(config)
	if err != nil {
		return nil, err
	}
	if !provider.IsEnabled() {
		return nil, fmt.Errorf("%s: %w (set its api_key)", provider.Name(), llm.ErrProviderDisabled)
	}
	return provider, nil
}
