// Package reasoning builds prompts for recognized actions, sends them to an
// LLM provider and normalizes whatever comes back into a complete schema.
package reasoning

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
)

// Options controls the requests an Agent issues
type Options struct {
	Model       string
	Temperature float32
}

// Agent couples prompt building, the LLM call and response normalization.
type Agent struct {
	provider llm.Provider
	opts     Options
	logger   zerolog.Logger
}

// NewAgent creates an agent that reasons through provider
func NewAgent(provider llm.Provider, opts Options, logger zerolog.Logger) *Agent {
	return &Agent{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// ReasonAction asks for single-action reasoning about label. Only transport
// failures are returned; malformed output is normalized and logged.
func (a *Agent) ReasonAction(ctx context.Context, label string) (ActionReasoning, error) {
	raw, err := a.complete(ctx, BuildSingleActionPrompt(label))
	if err != nil {
		return DefaultActionReasoning(), fmt.Errorf("reason about %s: %w", label, err)
	}

	parsed, ok := ParseSingle(raw)
	if !ok {
		a.logger.Warn().
			Str("action", label).
			Str("response", truncate(raw, 200)).
			Msg("Model output is not a JSON object, keeping raw text as explanation")
	}
	return Backfill(parsed), nil
}

// ReasonSequence asks for temporal reasoning over labels in order. An empty
// sequence returns the default object without calling the provider.
func (a *Agent) ReasonSequence(ctx context.Context, labels []string) (TemporalReasoning, error) {
	prompt, err := BuildTemporalPrompt(labels)
	if err != nil {
		return DefaultTemporalReasoning(), nil
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return DefaultTemporalReasoning(), fmt.Errorf("reason about sequence: %w", err)
	}

	out, ok := ParseTemporal(raw)
	if !ok {
		a.logger.Warn().
			Strs("sequence", labels).
			Str("response", truncate(raw, 200)).
			Msg("Model output is not a JSON object, keeping raw text as uncertainty note")
	}
	return out, nil
}

func (a *Agent) complete(ctx context.Context, prompt string) (string, error) {
	a.logger.Debug().
		Str("provider", a.provider.Name()).
		Str("model", a.opts.Model).
		Int("prompt_len", len(prompt)).
		Msg("Sending reasoning request")

	return a.provider.Complete(ctx, llm.Request{
		System:      llm.SystemPrompt,
		Prompt:      prompt,
		Model:       a.opts.Model,
		Temperature: a.opts.Temperature,
	})
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
