// Package anthropic provides a brain backend for the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
)

// BackendName is the registry key for this backend.
const BackendName = "anthropic"

const contextWindow = 200_000

func init() {
	brain.Register(BackendName, func(cfg brain.Config) (brain.Brain, error) {
		return New(func(o *Options) {
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	})
}

// Options configures the Anthropic brain (model id, temperature, max
// tokens, API key). The API key falls back to the SDK's environment lookup
// when empty.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend wraps the Anthropic Messages API behind the brain.Brain interface.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Backend{client: &client, opts: opts}
}

// NewFromClient creates a backend from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements brain.Brain with a single non-streaming Messages call.
func (b *Backend) Complete(ctx context.Context, req brain.Request) (*brain.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       b.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   b.opts.MaxTokens,
		Temperature: anthropic.Float(b.opts.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyErr(err)
	}
	return parseResponse(resp)
}

// Info returns metadata describing this backend.
func (b *Backend) Info() brain.Info {
	return brain.Info{
		Name:          string(b.opts.Model),
		Provider:      BackendName,
		ContextWindow: contextWindow,
	}
}

// buildMessages converts conversation messages to Anthropic message params.
// Tool-role messages become user messages carrying tool_result blocks, the
// shape the Messages API expects.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			// System content travels in params.System.
			continue
		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range m.Parts {
				switch part := p.(type) {
				case core.TextPart:
					if part.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(part.Text))
					}
				case core.ToolCallPart:
					var input any
					if part.ToolCall.Arguments != "" {
						if err := json.Unmarshal([]byte(part.ToolCall.Arguments), &input); err != nil {
							input = part.ToolCall.Arguments
						}
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(part.ToolCall.ID, input, part.ToolCall.Name))
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for _, tr := range m.ToolResults() {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.CallID, tr.Output, tr.IsError))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		default:
			if text := m.Text(); text != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			}
		}
	}
	return out
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []brain.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if t.Parameters != nil {
			if properties, ok := t.Parameters["properties"]; ok {
				schema.Properties = properties
			}
			schema.Required = requiredStrings(t.Parameters["required"])
		}
		out[i] = anthropic.ToolUnionParamOfTool(schema, t.Name)
	}
	return out
}

func requiredStrings(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		var out []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parseResponse(resp *anthropic.Message) (*brain.Response, error) {
	out := &brain.Response{StopReason: string(resp.StopReason)}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			args := "{}"
			if tu.Input != nil {
				if raw, err := json.Marshal(tu.Input); err == nil {
					args = string(raw)
				}
			}
			id := tu.ID
			if id == "" {
				id = core.NewID()
			}
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{ID: id, Name: tu.Name, Arguments: args})
		}
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, &brain.MalformedResponseError{Reason: "message contained no text or tool_use blocks"}
	}
	out.Usage = &brain.TokenUsage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}
	return out, nil
}

func classifyErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &brain.ProviderError{Status: apierr.StatusCode, Message: apierr.Error()}
	}
	return &brain.TransportError{Err: err}
}
