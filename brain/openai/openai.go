// Package openai provides a brain backend for the OpenAI Chat Completions
// API (including function/tool calling). It adapts the normalized
// Request/Response structures into the SDK's message format and back.
package openai

import (
	"context"
	"errors"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// BackendName is the registry key for this backend.
const BackendName = "openai"

const contextWindow = 128_000

func init() {
	brain.Register(BackendName, func(cfg brain.Config) (brain.Brain, error) {
		return New(func(o *Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	})
}

// Options configure the OpenAI brain. BaseURL allows pointing the adapter
// at any chat-completions compatible endpoint.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Backend wraps the OpenAI Chat Completions API behind the brain.Brain
// interface.
type Backend struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &Backend{client: &client, opts: opts}
}

// NewFromClient creates a backend from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements brain.Brain with a single non-streaming completion.
func (b *Backend) Complete(ctx context.Context, req brain.Request) (*brain.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               b.opts.Model,
		Temperature:         openai.Float(b.opts.Temperature),
		MaxCompletionTokens: openai.Int(b.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  t.Parameters,
				},
			}
		}
		params.Tools = tools
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyErr(err)
	}
	return parseResponse(resp)
}

// Info returns metadata describing this backend.
func (b *Backend) Info() brain.Info {
	return brain.Info{Name: b.opts.Model, Provider: BackendName, ContextWindow: contextWindow}
}

// buildMessages converts the normalized conversation into OpenAI chat
// messages. Tool results map directly onto tool-role messages keyed by the
// originating call id.
func buildMessages(req brain.Request) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			if text := m.Text(); text != "" {
				out = append(out, openai.SystemMessage(text))
			}
		case core.RoleUser:
			if text := m.Text(); text != "" {
				out = append(out, openai.UserMessage(text))
			}
		case core.RoleAssistant:
			calls := m.ToolCalls()
			if len(calls) == 0 {
				out = append(out, openai.AssistantMessage(m.Text()))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
			for i, tc := range calls {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case core.RoleTool:
			for _, tr := range m.ToolResults() {
				out = append(out, openai.ToolMessage(tr.Output, tr.CallID))
			}
		}
	}
	return out
}

func parseResponse(resp *openai.ChatCompletion) (*brain.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &brain.MalformedResponseError{Reason: "no choices returned"}
	}
	choice := resp.Choices[0]
	out := &brain.Response{
		Text:       choice.Message.Content,
		StopReason: choice.FinishReason,
	}
	for _, tc := range choice.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = core.NewID()
		}
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, &brain.MalformedResponseError{Reason: "choice contained neither content nor tool calls"}
	}
	out.Usage = &brain.TokenUsage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	return out, nil
}

func classifyErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &brain.ProviderError{Status: apierr.StatusCode, Message: apierr.Error()}
	}
	return &brain.TransportError{Err: err}
}
