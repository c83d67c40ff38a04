package client

import (
	"context"
	"fmt"

	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// ValidateTools checks if required tools are available on the server
func ValidateTools(available []Tool, required []string) error {
	toolMap := make(map[string]bool)
	for _, tool := range available {
		toolMap[tool.Name] = true
	}

	var missing []string
	for _, req := range required {
		if !toolMap[req] {
			missing = append(missing, req)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %v", missing)
	}

	return nil
}

// CreateClient creates an MCP client from server configuration
func CreateClient(config types.ServerConfig) (MCPClient, error) {
	var transport Transport

	switch config.Transport {
	case "stdio":
		if len(config.Command) == 0 {
			return nil, fmt.Errorf("command required for stdio transport")
		}
		transport = NewStdioTransport(config.Command, config.Timeout)

	case "http":
		if config.URL == "" {
			return nil, fmt.Errorf("url required for http transport")
		}
		transport = NewMark3LabsTransport(config.URL, config.Timeout, config.Headers)

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", config.Transport)
	}

	return NewClient(transport), nil
}

// Connect creates, connects and initializes a client, then checks that the
// required tools are served.
func Connect(ctx context.Context, config types.ServerConfig, required ...string) (MCPClient, error) {
	c, err := CreateClient(config)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", config.Name, err)
	}
	if err := c.Initialize(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize %s: %w", config.Name, err)
	}

	if len(required) > 0 {
		tools, err := c.ListTools(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		if err := ValidateTools(tools, required); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}
