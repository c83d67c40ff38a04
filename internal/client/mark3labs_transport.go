package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Mark3LabsTransport wraps a mark3labs/mcp-go client to implement Transport.
// It speaks stdio when command is set and Streamable HTTP otherwise.
type Mark3LabsTransport struct {
	command     []string
	url         string
	timeout     time.Duration
	headers     map[string]string
	mcpClient   *client.Client
	initialized bool
}

// NewStdioTransport launches command and talks MCP over its stdin/stdout
func NewStdioTransport(command []string, timeout time.Duration) *Mark3LabsTransport {
	t := NewMark3LabsTransport("", timeout, nil)
	t.command = command
	return t
}

// NewMark3LabsTransport creates a Streamable HTTP transport
func NewMark3LabsTransport(url string, timeout time.Duration, headers map[string]string) *Mark3LabsTransport {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Mark3LabsTransport{
		url:     url,
		timeout: timeout,
		headers: headers,
	}
}

// Start initializes the transport
func (t *Mark3LabsTransport) Start(ctx context.Context) error {
	if len(t.command) > 0 {
		// The stdio client starts its subprocess immediately
		c, err := client.NewStdioMCPClient(t.command[0], nil, t.command[1:]...)
		if err != nil {
			return fmt.Errorf("failed to start %s: %w", t.command[0], err)
		}
		t.mcpClient = c
		return nil
	}

	httpTransport, err := transport.NewStreamableHTTP(
		t.url,
		transport.WithHTTPHeaders(t.headers),
	)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	t.mcpClient = client.NewClient(httpTransport)
	if err := t.mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	return nil
}

// SendRequest maps a request onto the typed mcp-go call for method. Each call
// is bounded by the transport timeout.
func (t *Mark3LabsTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if t.mcpClient == nil {
		return nil, fmt.Errorf("transport not started")
	}
	if method != "initialize" && !t.initialized {
		return nil, fmt.Errorf("client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var (
		result interface{}
		err    error
	)
	switch method {
	case "initialize":
		req, ok := params.(InitializeRequest)
		if !ok {
			return nil, fmt.Errorf("initialize: unexpected params %T", params)
		}
		result, err = t.initialize(ctx, req)
	case "tools/list":
		result, err = t.listTools(ctx)
	case "tools/call":
		req, ok := params.(CallToolRequest)
		if !ok {
			return nil, fmt.Errorf("tools/call: unexpected params %T", params)
		}
		result, err = t.callTool(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (t *Mark3LabsTransport) initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	res, err := t.mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: req.ProtocolVersion,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    req.ClientInfo.Name,
				Version: req.ClientInfo.Version,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize failed: %w", err)
	}
	t.initialized = true

	return &InitializeResponse{
		ProtocolVersion: res.ProtocolVersion,
		ServerInfo:      ServerInfo{Name: res.ServerInfo.Name, Version: res.ServerInfo.Version},
	}, nil
}

func (t *Mark3LabsTransport) listTools(ctx context.Context) (*ToolsListResponse, error) {
	res, err := t.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools failed: %w", err)
	}

	out := &ToolsListResponse{Tools: make([]Tool, 0, len(res.Tools))}
	for _, tool := range res.Tools {
		// Round-trip the schema so callers see plain maps
		var schema map[string]interface{}
		if raw, err := json.Marshal(tool.InputSchema); err == nil {
			_ = json.Unmarshal(raw, &schema)
		}
		out.Tools = append(out.Tools, Tool{Name: tool.Name, Description: tool.Description, InputSchema: schema})
	}
	return out, nil
}

// callTool keeps only text content; pose tools answer with JSON text
func (t *Mark3LabsTransport) callTool(ctx context.Context, req CallToolRequest) (*ToolCallResult, error) {
	res, err := t.mcpClient.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: req.Name, Arguments: req.Arguments},
	})
	if err != nil {
		return nil, fmt.Errorf("call tool failed: %w", err)
	}

	out := &ToolCallResult{IsError: res.IsError}
	for _, content := range res.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			out.Content = append(out.Content, ContentBlock{Type: "text", Text: text.Text})
		}
	}
	return out, nil
}

// SendNotification is a no-op; mcp-go sends notifications/initialized itself
func (t *Mark3LabsTransport) SendNotification(ctx context.Context, method string, params interface{}) error {
	return nil
}

// Close shuts down the transport
func (t *Mark3LabsTransport) Close() error {
	if t.mcpClient != nil {
		return t.mcpClient.Close()
	}
	return nil
}
