package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

const defaultModel = "gpt-4o-mini"

// Provider implements llm.Provider for OpenAI
type Provider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// NewProvider creates a new OpenAI provider
func NewProvider(config types.OpenAIConfig) (*Provider, error) {
	if config.APIKey == "" {
		return &Provider{enabled: false}, nil
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Organization != "" {
		clientConfig.OrgID = config.Organization
	}
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
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
	return "openai"
}

// IsEnabled returns whether the provider is configured
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

// Complete runs one chat completion
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !p.enabled {
		return "", llm.ErrProviderDisabled
	}
	return Complete(ctx, p.client, p.model, p.timeout, req)
}

// Complete sends a system + user chat completion through any OpenAI-compatible
// client. A response without choices yields empty text.
func Complete(ctx context.Context, client *openai.Client, defaultModel string, timeout time.Duration, req llm.Request) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = defaultModel
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	// Temperature is omitempty in go-openai; a zero would fall back to the API default
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
