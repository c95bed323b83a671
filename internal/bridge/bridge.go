// Package bridge runs chat completions against Azure OpenAI through the
// Fantasy runtime and reports the tool calls the model requests.
package bridge

import (
	"context"
	"fmt"
	"net/http"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/azure"
)

// Config holds what the Azure provider needs: the resource endpoint and an
// HTTP client that already carries bearer-token auth.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Step is the outcome of a single completion round: text produced so far and
// any tool calls the model wants executed before it can continue.
type Step struct {
	Text      string
	ToolCalls []ToolCall
}

// Client is a completion client backed by the Fantasy Azure provider.
type Client struct {
	provider fantasy.Provider
}

// New creates a bridge client for the given Azure endpoint.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("bridge: missing azure endpoint")
	}
	opts := []azure.Option{azure.WithBaseURL(cfg.Endpoint)}
	if cfg.HTTPClient != nil {
		opts = append(opts, azure.WithHTTPClient(cfg.HTTPClient))
	}
	provider, err := azure.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("new fantasy azure provider: %w", err)
	}
	return &Client{provider: provider}, nil
}

// Complete runs one completion round for deployment with the given messages
// and tools. It drains the model's stream and returns the collected step.
func (c *Client) Complete(ctx context.Context, deployment string, messages []Message, tools []fantasy.Tool) (Step, error) {
	model, err := c.provider.LanguageModel(ctx, deployment)
	if err != nil {
		return Step{}, fmt.Errorf("fantasy language model: %w", err)
	}

	call := fantasy.Call{
		Prompt: toPrompt(messages),
		Tools:  tools,
	}
	if len(tools) > 0 {
		choice := fantasy.ToolChoiceAuto
		call.ToolChoice = &choice
	}

	seq, err := model.Stream(ctx, call)
	if err != nil {
		return Step{}, fmt.Errorf("fantasy stream: %w", err)
	}

	var step Step
	seen := map[string]struct{}{}
	for part := range seq {
		switch part.Type {
		case fantasy.StreamPartTypeTextDelta:
			step.Text += part.Delta
		case fantasy.StreamPartTypeToolCall:
			if part.ProviderExecuted {
				continue
			}
			if _, exists := seen[part.ID]; exists {
				continue
			}
			seen[part.ID] = struct{}{}
			step.ToolCalls = append(step.ToolCalls, ToolCall{
				ID:    part.ID,
				Name:  part.ToolCallName,
				Input: part.ToolCallInput,
			})
		case fantasy.StreamPartTypeError:
			if part.Error != nil {
				return Step{}, part.Error
			}
		default:
			// reasoning, warnings, sources and bookkeeping parts are not
			// relevant to a line-oriented chat.
		}
	}

	return step, nil
}
