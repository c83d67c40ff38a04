package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MockTransport is a mock implementation of Transport for testing
type MockTransport struct {
	StartErr         error
	RequestErr       error
	ResponseDelay    time.Duration
	RequestResponses map[string]interface{} // method -> response

	Started       bool
	Closed        bool
	SentRequests  []MockRequest
	Notifications []string
}

// MockRequest records a request sent through the transport
type MockRequest struct {
	Method string
	Params interface{}
}

// NewMockTransport creates a mock transport that answers initialize
func NewMockTransport() *MockTransport {
	m := &MockTransport{RequestResponses: make(map[string]interface{})}
	m.SetResponse("initialize", map[string]interface{}{
		"protocolVersion": "2025-03-26",
		"serverInfo": map[string]interface{}{
			"name":    "yolo-pose",
			"version": "1.0.0",
		},
	})
	return m
}

func (m *MockTransport) Start(ctx context.Context) error {
	if m.StartErr != nil {
		return m.StartErr
	}
	m.Started = true
	return nil
}

func (m *MockTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	m.SentRequests = append(m.SentRequests, MockRequest{Method: method, Params: params})

	if m.ResponseDelay > 0 {
		select {
		case <-time.After(m.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.RequestErr != nil {
		return nil, m.RequestErr
	}

	if resp, ok := m.RequestResponses[method]; ok {
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mock response: %w", err)
		}
		return data, nil
	}
	return json.RawMessage(`{}`), nil
}

func (m *MockTransport) SendNotification(ctx context.Context, method string, params interface{}) error {
	m.Notifications = append(m.Notifications, method)
	return nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// SetResponse configures a response for a specific method
func (m *MockTransport) SetResponse(method string, response interface{}) {
	m.RequestResponses[method] = response
}

// SetToolText configures a tools/call result with one text block
func (m *MockTransport) SetToolText(text string, isError bool) {
	m.SetResponse("tools/call", map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"isError": isError,
	})
}

// LastRequest returns the most recent request
func (m *MockTransport) LastRequest() *MockRequest {
	if len(m.SentRequests) == 0 {
		return nil
	}
	return &m.SentRequests[len(m.SentRequests)-1]
}
