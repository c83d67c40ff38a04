package openai

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

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
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
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"intent\":\"leave\"}"}}]}`,
		&seen)

	p, err := NewProvider(types.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
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
	if got != `{"intent":"leave"}` {
		t.Errorf("content = %q", got)
	}

	if seen.Model != defaultModel {
		t.Errorf("model = %q, want %q", seen.Model, defaultModel)
	}
	if seen.Temperature != 0.3 {
		t.Errorf("temperature = %v", seen.Temperature)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Content != "open_door" {
		t.Errorf("messages = %+v", seen.Messages)
	}
}

func TestCompleteModelOverride(t *testing.T) {
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK, `{"choices":[]}`, &seen)

	p, _ := NewProvider(types.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1", Model: "gpt-4o"})
	got, err := p.Complete(context.Background(), llm.Request{Prompt: "x", Model: "gpt-4.1-mini"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("no choices should yield empty text, got %q", got)
	}
	if seen.Model != "gpt-4.1-mini" {
		t.Errorf("model = %q", seen.Model)
	}
	if len(seen.Messages) != 1 {
		t.Errorf("expected only the user message, got %d", len(seen.Messages))
	}
}

func TestCompleteZeroTemperatureIsSent(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p, _ := NewProvider(types.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	if _, err := p.Complete(context.Background(), llm.Request{Prompt: "x", Temperature: 0}); err != nil {
		t.Fatal(err)
	}

	temp, ok := body["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from request body: %v", body)
	}
	if temp > 1e-6 {
		t.Errorf("temperature = %v, want effectively zero", temp)
	}
}

func TestCompleteTransportError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError,
		`{"error":{"message":"upstream down","type":"server_error"}}`, nil)

	p, _ := NewProvider(types.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	if _, err := p.Complete(context.Background(), llm.Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(types.OpenAIConfig{})
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
