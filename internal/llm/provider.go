package llm

import (
	"context"
	"errors"
)

// SystemPrompt is sent with every reasoning request.
const SystemPrompt = "You are a careful embodied AI researcher. Output valid JSON only."

// ErrProviderDisabled is returned by Complete when the provider has no credentials.
var ErrProviderDisabled = errors.New("llm provider is not configured")

// Request is a single-turn completion request
type Request struct {
	System      string
	Prompt      string
	Model       string // Overrides the provider default when set
	Temperature float32
}

// Provider abstracts different LLM providers (OpenAI, OpenRouter, Claude, Gemini)
type Provider interface {
	// Name returns the provider name
	Name() string

	// IsEnabled returns whether the provider is configured with valid credentials
	IsEnabled() bool

	// Complete sends one request and returns the raw response text.
	// Transport and API failures are returned as errors; the text itself is
	// never validated here.
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider factory lives in cmd/actionreason to avoid import cycles.
// Each provider package exports a NewProvider function that main calls directly.
