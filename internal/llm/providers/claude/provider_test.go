package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhe.chen/pose-action-reasoner/internal/llm"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

type messagesRequest struct {
	Model       string   `json:"model"`
	MaxTokens   int64    `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	System      []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

const messageReply = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-5-haiku-latest",
	"content": [
		{"type": "text", "text": "{\"intent\": "},
		{"type": "text", "text": "\"leave\"}"}
	],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func newTestServer(t *testing.T, status int, body string, seen *messagesRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var seen messagesRequest
	srv := newTestServer(t, http.StatusOK, messageReply, &seen)

	p, err := NewProvider(types.AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Complete(context.Background(), llm.Request{
		System:      llm.SystemPrompt,
		Prompt:      "open_door",
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"intent": "leave"}` {
		t.Errorf("content = %q", got)
	}

	if seen.Model != defaultModel {
		t.Errorf("model = %q, want %q", seen.Model, defaultModel)
	}
	if seen.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d", seen.MaxTokens)
	}
	if seen.Temperature == nil || *seen.Temperature < 0.29 || *seen.Temperature > 0.31 {
		t.Errorf("temperature = %v", seen.Temperature)
	}
	if len(seen.System) != 1 || seen.System[0].Text != llm.SystemPrompt {
		t.Errorf("system = %+v", seen.System)
	}
	if len(seen.Messages) != 1 || seen.Messages[0].Role != "user" ||
		len(seen.Messages[0].Content) != 1 || seen.Messages[0].Content[0].Text != "open_door" {
		t.Errorf("messages = %+v", seen.Messages)
	}
}

func TestCompleteZeroTemperatureAndModelOverride(t *testing.T) {
	var seen messagesRequest
	srv := newTestServer(t, http.StatusOK, messageReply, &seen)

	p, _ := NewProvider(types.AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "claude-3-5-sonnet-latest"})
	if _, err := p.Complete(context.Background(), llm.Request{Prompt: "x", Model: "claude-3-opus-latest"}); err != nil {
		t.Fatal(err)
	}

	if seen.Model != "claude-3-opus-latest" {
		t.Errorf("model = %q", seen.Model)
	}
	if seen.Temperature == nil || *seen.Temperature != 0 {
		t.Errorf("temperature = %v, want explicit 0", seen.Temperature)
	}
	if len(seen.System) != 0 {
		t.Errorf("system should be omitted, got %+v", seen.System)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest,
		`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`, nil)

	p, _ := NewProvider(types.AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), llm.Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(types.AnthropicConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if p.IsEnabled() {
		t.Error("provider without key should be disabled")
	}
	if _, err := p.Complete(context.Background(), llm.Request{}); !errors.Is(err, llm.ErrProviderDisabled) {
		t.Errorf("err = %v", err)
	}
}
