package openrouter

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
	openaiprovider "github.com/zhe.chen/pose-action-reasoner/internal/llm/providers/openai"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

const (
	// OpenRouter API base URL
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultModel = "openai/gpt-4o-mini"

	// OpenRouter headers
	httpReferer = "https://github.com/zhe.chen/pose-action-reasoner"
	appTitle    = "pose-action-reasoner"
)

// Provider implements llm.Provider for OpenRouter
type Provider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// NewProvider creates a new OpenRouter provider
// OpenRouter uses OpenAI-compatible API with custom base URL
func NewProvider(config types.OpenRouterConfig) (*Provider, error) {
	if config.APIKey == "" {
		return &Provider{enabled: false}, nil
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = openRouterBaseURL
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	// Create custom HTTP client with OpenRouter-specific headers
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{
			Base: http.DefaultTransport,
			Headers: map[string]string{
				"HTTP-Referer": httpReferer,
				"X-Title":      appTitle,
			},
		},
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	return &Provider{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: config.Timeout,
		enabled: true,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openrouter"
}

// IsEnabled returns whether the provider is configured
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

// Complete runs one chat completion through OpenRouter
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !p.enabled {
		return "", llm.ErrProviderDisabled
	}
	return openaiprovider.Complete(ctx, p.client, p.model, p.timeout, req)
}

// headerTransport adds custom headers to HTTP requests
type headerTransport struct {
	Base    http.RoundTripper
	Headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	return t.Base.RoundTrip(req)
}
