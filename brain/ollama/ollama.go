// Package ollama provides a brain backend for a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BackendName is the registry key for this backend.
const BackendName = "ollama"

func init() {
	brain.Register(BackendName, func(cfg brain.Config) (brain.Brain, error) {
		return New(func(o *Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		})
	})
}

// Options configure the Ollama brain. BaseURL empty means the client reads
// OLLAMA_HOST from the environment. ContextWindow is advertised for the
// compaction policy since local models vary widely.
type Options struct {
	Model         string
	BaseURL       string
	Temperature   float64
	ContextWindow int
}

// Backend wraps the Ollama chat API behind the brain.Brain interface.
type Backend struct {
	client *api.Client
	opts   Options
}

// New creates a new Ollama backend.
func New(optFns ...func(o *Options)) (*Backend, error) {
	opts := Options{
		Model:         "qwen2.5-coder",
		Temperature:   0.7,
		ContextWindow: 8192,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var client *api.Client
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base URL: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &Backend{client: client, opts: opts}, nil
}

// Complete implements brain.Brain with a single non-streaming chat call.
func (b *Backend) Complete(ctx context.Context, req brain.Request) (*brain.Response, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    b.opts.Model,
		Messages: buildMessages(req),
		Stream:   &stream,
		Options:  map[string]any{"temperature": b.opts.Temperature},
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return nil, err
		}
		chatReq.Tools = tools
	}

	var final *api.ChatResponse
	err := b.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		final = &resp
		return nil
	})
	if err != nil {
		return nil, classifyErr(err)
	}
	if final == nil {
		return nil, &brain.MalformedResponseError{Reason: "chat returned no response"}
	}
	return parseResponse(final)
}

// Info returns metadata describing this backend.
func (b *Backend) Info() brain.Info {
	return brain.Info{Name: b.opts.Model, Provider: BackendName, ContextWindow: b.opts.ContextWindow}
}

// buildMessages converts the normalized conversation to Ollama messages.
func buildMessages(req brain.Request) []api.Message {
	var out []api.Message
	if req.System != "" {
		out = append(out, api.Message{Role: core.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleAssistant:
			msg := api.Message{Role: core.RoleAssistant, Content: m.Text()}
			for _, tc := range m.ToolCalls() {
				var args api.ToolCallFunctionArguments
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = api.ToolCallFunctionArguments{}
				}
				msg.ToolCalls = append(msg.ToolCalls, api.ToolCall{
					ID:       tc.ID,
					Function: api.ToolCallFunction{Name: tc.Name, Arguments: args},
				})
			}
			out = append(out, msg)
		case core.RoleTool:
			for _, tr := range m.ToolResults() {
				out = append(out, api.Message{
					Role:       core.RoleTool,
					Content:    tr.Output,
					ToolCallID: tr.CallID,
				})
			}
		default:
			out = append(out, api.Message{Role: m.Role, Content: m.Text()})
		}
	}
	return out
}

// convertTools adapts definitions through a JSON round-trip, sidestepping
// the SDK's strongly typed schema structs.
func convertTools(defs []brain.ToolDefinition) ([]api.Tool, error) {
	shaped := make([]map[string]any, len(defs))
	for i, d := range defs {
		shaped[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        d.Name,
				"description": d.Description,
				"parameters":  d.Parameters,
			},
		}
	}
	raw, err := json.Marshal(shaped)
	if err != nil {
		return nil, fmt.Errorf("marshal tools: %w", err)
	}
	var tools []api.Tool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("convert tools: %w", err)
	}
	return tools, nil
}

func parseResponse(resp *api.ChatResponse) (*brain.Response, error) {
	out := &brain.Response{
		Text:       resp.Message.Content,
		StopReason: resp.DoneReason,
	}
	for _, tc := range resp.Message.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		id := tc.ID
		if id == "" {
			id = core.NewID()
		}
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: string(args),
		})
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, &brain.MalformedResponseError{Reason: "response contained neither content nor tool calls"}
	}
	out.Usage = &brain.TokenUsage{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	return out, nil
}

func classifyErr(err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		return &brain.ProviderError{Status: se.StatusCode, Message: se.ErrorMessage}
	}
	return &brain.TransportError{Err: err}
}
