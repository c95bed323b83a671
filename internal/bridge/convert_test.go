package bridge

import (
	"testing"

	"charm.land/fantasy"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestToPrompt(t *testing.T) {
	t.Run("system then user ordering is preserved", func(t *testing.T) {
		prompt := toPrompt([]Message{
			{Role: RoleSystem, Content: "be helpful"},
			{Role: RoleUser, Content: "hello"},
		})
		require.Len(t, prompt, 2)
		require.Equal(t, fantasy.MessageRoleSystem, prompt[0].Role)
		require.Equal(t, fantasy.MessageRoleUser, prompt[1].Role)
		require.Equal(t, fantasy.TextPart{Text: "hello"}, prompt[1].Content[0])
	})

	t.Run("assistant tool calls become tool call parts", func(t *testing.T) {
		prompt := toPrompt([]Message{
			{
				Role: RoleAssistant,
				ToolCalls: []ToolCall{
					{ID: "call-1", Name: "lookup", Input: `{"q":"x"}`},
				},
			},
		})
		require.Len(t, prompt, 1)
		require.Equal(t, fantasy.MessageRoleAssistant, prompt[0].Role)
		part, ok := prompt[0].Content[0].(fantasy.ToolCallPart)
		require.True(t, ok)
		require.Equal(t, "call-1", part.ToolCallID)
		require.Equal(t, "lookup", part.ToolName)
	})

	t.Run("tool results carry text or error output", func(t *testing.T) {
		prompt := toPrompt([]Message{
			{Role: RoleTool, ToolCallID: "call-1", Content: "42"},
			{Role: RoleTool, ToolCallID: "call-2", Content: "boom", IsError: true},
		})
		require.Len(t, prompt, 2)

		okPart, ok := prompt[0].Content[0].(fantasy.ToolResultPart)
		require.True(t, ok)
		require.Equal(t, fantasy.ToolResultOutputContentText{Text: "42"}, okPart.Output)

		errPart, ok := prompt[1].Content[0].(fantasy.ToolResultPart)
		require.True(t, ok)
		_, isErr := errPart.Output.(fantasy.ToolResultOutputContentError)
		require.True(t, isErr)
	})

	t.Run("empty assistant message is dropped", func(t *testing.T) {
		prompt := toPrompt([]Message{{Role: RoleAssistant}})
		require.Empty(t, prompt)
	})
}

func TestFromMCPTools(t *testing.T) {
	tools := FromMCPTools([]mcp.Tool{
		{
			Name:        "search",
			Description: "Search the catalog",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{"type": "string"},
				},
				Required: []string{"query"},
			},
		},
	})
	require.Len(t, tools, 1)

	fn, ok := tools[0].(fantasy.FunctionTool)
	require.True(t, ok)
	require.Equal(t, "search", fn.Name)
	require.Equal(t, "Search the catalog", fn.Description)
	require.Equal(t, []string{"query"}, fn.InputSchema["required"])
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	client, err := New(Config{Endpoint: "https://example.openai.azure.com"})
	require.NoError(t, err)
	require.NotNil(t, client)
}
