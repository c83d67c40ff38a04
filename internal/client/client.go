package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Identification sent in the MCP initialize handshake
const (
	protocolVersion = "2025-03-26"
	clientName      = "pose-action-reasoner"
	clientVersion   = "1.0.0"
)

// MCPClient is the subset of an MCP session the pose extractor needs:
// handshake, tool discovery, and tool calls against one server.
type MCPClient interface {
	Connect(ctx context.Context) error
	Initialize(ctx context.Context) error
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*ToolCallResult, error)
	GetServerInfo() (name, version string)
	Close() error
}

// Transport carries MCP requests to a server. Params and results use the
// request/response types below so transports can map them onto their own
// wire types.
type Transport interface {
	Start(ctx context.Context) error
	SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
	SendNotification(ctx context.Context, method string, params interface{}) error
	Close() error
}

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolCallResult represents the result of a tool invocation
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

// ContentBlock represents a content item in tool result
type ContentBlock struct {
	Type string `json:"type"` // "text", "image", "resource"
	Text string `json:"text,omitempty"`
}

// Text joins the text blocks of the result
func (r *ToolCallResult) Text() string {
	var parts []string
	for _, c := range r.Content {
		if c.Type == "text" || c.Type == "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// InitializeRequest represents MCP initialize request parameters
type InitializeRequest struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ClientInfo      ClientInfo `json:"clientInfo"`
}

// ClientInfo represents client identification
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResponse represents MCP initialize response
type InitializeResponse struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ServerInfo      ServerInfo `json:"serverInfo"`
}

// ServerInfo represents server identification
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsListResponse represents response from tools/list
type ToolsListResponse struct {
	Tools []Tool `json:"tools"`
}

// CallToolRequest represents parameters for tools/call
type CallToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// Client implements MCPClient on top of a Transport
type Client struct {
	transport Transport
	server    ServerInfo
}

// NewClient creates a new MCP client with the given transport
func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// Connect starts the underlying transport
func (c *Client) Connect(ctx context.Context) error {
	return c.transport.Start(ctx)
}

// Initialize performs the MCP handshake and records the server identity
func (c *Client) Initialize(ctx context.Context) error {
	var resp InitializeResponse
	err := c.request(ctx, "initialize", InitializeRequest{
		ProtocolVersion: protocolVersion,
		ClientInfo:      ClientInfo{Name: clientName, Version: clientVersion},
	}, &resp)
	if err != nil {
		return err
	}
	c.server = resp.ServerInfo

	if err := c.transport.SendNotification(ctx, "notifications/initialized", nil); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	return nil
}

// ListTools returns the tools the server advertises
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var resp ToolsListResponse
	if err := c.request(ctx, "tools/list", map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CallTool invokes a tool with given arguments. A result flagged isError is
// returned together with an error.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*ToolCallResult, error) {
	var result ToolCallResult
	if err := c.request(ctx, "tools/call", CallToolRequest{Name: name, Arguments: arguments}, &result); err != nil {
		return nil, err
	}
	if result.IsError {
		return &result, fmt.Errorf("tool %s reported an error: %s", name, result.Text())
	}
	return &result, nil
}

func (c *Client) Close() error {
	return c.transport.Close()
}

// GetServerInfo returns what the server reported during Initialize
func (c *Client) GetServerInfo() (name, version string) {
	return c.server.Name, c.server.Version
}

// request sends method and decodes the result into out
func (c *Client) request(ctx context.Context, method string, params, out interface{}) error {
	raw, err := c.transport.SendRequest(ctx, method, params)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
