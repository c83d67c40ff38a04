package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

const defaultModel = "gemini-2.0-flash"

// Provider implements llm.Provider for Google Gemini
type Provider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// NewProvider creates a new Gemini provider
func NewProvider(config types.GoogleConfig) (*Provider, error) {
	if config.APIKey == "" {
		return &Provider{enabled: false}, nil
	}

	ctx := context.Background()
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	return &Provider{
		client:  client,
		model:   model,
		timeout: config.Timeout,
		enabled: true,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

// IsEnabled returns whether the provider is configured
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

// Complete generates content for a single text prompt
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !p.enabled {
		return "", llm.ErrProviderDisabled
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
