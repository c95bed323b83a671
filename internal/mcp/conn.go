// Package mcp maintains the streamable HTTP session to the remote MCP tool
// server and exposes tool discovery and invocation over it.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dotcommander/azchat/internal/errs"
)

// Conn is an established session to the MCP server. It is owned by exactly
// one caller and must be closed exactly once; Close is idempotent.
type Conn struct {
	cli  *client.Client
	addr string

	closeOnce sync.Once
	closeErr  error
}

// Connect opens a streamable HTTP session to addr, authenticated with the
// given bearer token. The session timeout is generous to tolerate slow
// remote tool enumeration. Failure to reach the server or to complete the
// handshake is fatal for the caller; no reconnect or backoff is attempted.
func Connect(ctx context.Context, addr, bearerToken string, timeout time.Duration) (*Conn, error) {
	log.Info("connecting to MCP server", "url", addr)

	cli, err := client.NewStreamableHttpClient(addr,
		transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + bearerToken,
		}),
		transport.WithHTTPTimeout(timeout),
	)
	if err != nil {
		return nil, connectFailed(addr, err)
	}

	if err := cli.Start(ctx); err != nil {
		_ = cli.Close()
		return nil, connectFailed(addr, err)
	}

	if _, err := cli.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		_ = cli.Close()
		return nil, connectFailed(addr, err)
	}

	log.Info("connected to MCP server", "url", addr)
	return &Conn{cli: cli, addr: addr}, nil
}

func connectFailed(addr string, err error) error {
	log.Error("failed to connect to MCP server", "url", addr, "err", err)
	return &errs.ConnectError{Addr: addr, Err: err}
}

// Addr returns the server address this connection was established against.
func (c *Conn) Addr() string {
	return c.addr
}

// Tools lists the tools the server exposes.
func (c *Conn) Tools(ctx context.Context) ([]mcp.Tool, error) {
	result, err := c.cli.ListTools(ctx, mcp.ListToolsRequest{})
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, errs.Wrap(
			fmt.Errorf("timeout while listing tools from %q - make sure the server is reachable and the token has the right scope", c.addr),
			"Could not list tools",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("mcp list tools: %w", err)
	}
	return result.Tools, nil
}

// CallTool executes a tool call against the server and flattens the textual
// content of the result. A result marked as an error becomes a Go error.
func (c *Conn) CallTool(ctx context.Context, name string, data []byte) (string, error) {
	var args map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &args); err != nil {
			return "", fmt.Errorf("mcp: %w: %s", err, string(data))
		}
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	result, err := c.cli.CallTool(ctx, request)
	if err != nil {
		return "", fmt.Errorf("mcp: %w", err)
	}

	var sb strings.Builder
	for _, content := range result.Content {
		switch content := content.(type) {
		case mcp.TextContent:
			sb.WriteString(content.Text)
		default:
			sb.WriteString("[Non-text content]")
		}
	}

	if result.IsError {
		return "", errors.New(sb.String())
	}
	return sb.String(), nil
}

// Close tears the session down. Only the first call does any work.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.cli.Close()
	})
	return c.closeErr
}
