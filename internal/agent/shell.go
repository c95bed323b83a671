// Package agent composes the model client, the MCP tool connection, and the
// agent instructions into a single conversational unit.
package agent

import (
	"context"
	"fmt"
	"time"

	"charm.land/fantasy"
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dotcommander/azchat/internal/bridge"
)

// CompletionClient runs one completion round and reports requested tool
// calls. *bridge.Client is the production implementation.
type CompletionClient interface {
	Complete(ctx context.Context, deployment string, messages []bridge.Message, tools []fantasy.Tool) (bridge.Step, error)
}

// ToolConn is the established MCP session the shell executes tool calls on.
type ToolConn interface {
	Tools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, data []byte) (string, error)
	Close() error
}

// Options tune the shell.
type Options struct {
	// Deployment is the Azure OpenAI deployment name requests are routed to.
	Deployment string

	// Instructions is the fixed natural-language instruction describing the
	// agent's purpose, sent as the leading system message of every turn.
	Instructions string

	// MaxToolTurns bounds the tool-call rounds within a single Chat call.
	MaxToolTurns int

	// ToolTimeout bounds each individual tool invocation.
	ToolTimeout time.Duration
}

// Shell is the conversational agent. It holds no conversation history: every
// Chat call sends a fresh message sequence, and multi-turn memory is the
// model runtime's concern.
type Shell struct {
	client CompletionClient
	conn   ToolConn
	opts   Options

	tools []fantasy.Tool
}

// New composes a shell from a completion client and exactly one tool
// connection.
func New(client CompletionClient, conn ToolConn, opts Options) *Shell {
	if opts.MaxToolTurns <= 0 {
		opts.MaxToolTurns = 1
	}
	return &Shell{client: client, conn: conn, opts: opts}
}

// Initialize discovers the server's tools. Calling it again refreshes the
// tool list.
func (s *Shell) Initialize(ctx context.Context) error {
	serverTools, err := s.conn.Tools(ctx)
	if err != nil {
		return fmt.Errorf("discover tools: %w", err)
	}
	s.tools = bridge.FromMCPTools(serverTools)
	log.Info("agent ready", "tools", len(s.tools))
	return nil
}

// Chat sends one user message, letting the model call tools as needed, and
// returns the final textual reply. Chat never fails upward: any error is
// rendered as a reply starting with "Error: " so a single bad turn cannot
// kill the session.
func (s *Shell) Chat(ctx context.Context, userText, systemText string) string {
	reply, err := s.run(ctx, userText, systemText)
	if err != nil {
		log.Error("chat turn failed", "err", err)
		return fmt.Sprintf("Error: %s", err)
	}
	return reply
}

func (s *Shell) run(ctx context.Context, userText, systemText string) (string, error) {
	messages := make([]bridge.Message, 0, 3)
	if s.opts.Instructions != "" {
		messages = append(messages, bridge.Message{Role: bridge.RoleSystem, Content: s.opts.Instructions})
	}
	if systemText != "" {
		messages = append(messages, bridge.Message{Role: bridge.RoleSystem, Content: systemText})
	}
	messages = append(messages, bridge.Message{Role: bridge.RoleUser, Content: userText})

	var lastText string
	for turn := 0; turn < s.opts.MaxToolTurns; turn++ {
		step, err := s.client.Complete(ctx, s.opts.Deployment, messages, s.tools)
		if err != nil {
			return "", err
		}
		if step.Text != "" {
			lastText = step.Text
		}

		if len(step.ToolCalls) == 0 {
			return lastText, nil
		}

		messages = append(messages, bridge.Message{
			Role:      bridge.RoleAssistant,
			Content:   step.Text,
			ToolCalls: step.ToolCalls,
		})
		for _, call := range step.ToolCalls {
			messages = append(messages, s.executeTool(ctx, call))
		}
	}

	if lastText == "" {
		return "", fmt.Errorf("no reply after %d tool turns", s.opts.MaxToolTurns)
	}
	return lastText, nil
}

func (s *Shell) executeTool(ctx context.Context, call bridge.ToolCall) bridge.Message {
	callCtx := ctx
	if s.opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.ToolTimeout)
		defer cancel()
	}

	out, err := s.conn.CallTool(callCtx, call.Name, []byte(call.Input))
	if err != nil {
		log.Warn("tool call failed", "tool", call.Name, "err", err)
		return bridge.Message{
			Role:       bridge.RoleTool,
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}
	}
	return bridge.Message{
		Role:       bridge.RoleTool,
		ToolCallID: call.ID,
		Content:    out,
	}
}

// Close releases the shell's tool connection.
func (s *Shell) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
