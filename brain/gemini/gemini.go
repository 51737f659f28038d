// Package gemini provides a brain backend for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BackendName is the registry key for this backend.
const BackendName = "gemini"

func init() {
	brain.Register(BackendName, func(cfg brain.Config) (brain.Brain, error) {
		return New(context.Background(), func(o *Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = int(cfg.MaxTokens)
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		})
	})
}

// Options configure the Gemini brain.
type Options struct {
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
}

// Backend wraps the Gemini generate-content API behind the brain.Brain interface.
type Backend struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini backend. An empty APIKey falls back to the
// GEMINI_API_KEY environment variable handled by the SDK.
func New(ctx context.Context, optFns ...func(o *Options)) (*Backend, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Backend{client: client, opts: opts}, nil
}

// NewFromClient creates a backend from an existing client, primarily for tests.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       "gemini-2.0-flash",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements brain.Brain with a single non-streaming call.
func (b *Backend) Complete(ctx context.Context, req brain.Request) (*brain.Response, error) {
	contents, err := buildContents(req.Messages)
	if err != nil {
		return nil, err
	}

	temp := float32(b.opts.Temperature)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(b.opts.MaxTokens),
		Temperature:     &temp,
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return nil, err
		}
		cfg.Tools = tools
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.opts.Model, contents, cfg)
	if err != nil {
		return nil, classifyErr(err)
	}
	return parseResponse(resp)
}

// Info returns metadata describing this backend.
func (b *Backend) Info() brain.Info {
	return brain.Info{Name: b.opts.Model, Provider: BackendName, ContextWindow: 1_000_000}
}

// buildContents converts the normalized conversation to Gemini contents.
// Assistant turns use the "model" role, and tool results travel back as
// function responses inside a user turn.
func buildContents(messages []core.Message) ([]*genai.Content, error) {
	var out []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case core.RoleAssistant:
			var parts []*genai.Part
			if text := m.Text(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
			for _, tc := range m.ToolCalls() {
				var args map[string]any
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = map[string]any{}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		case core.RoleTool:
			var parts []*genai.Part
			for _, tr := range m.ToolResults() {
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       tr.CallID,
						Name:     tr.Name,
						Response: map[string]any{"result": tr.Output, "is_error": tr.IsError},
					},
				})
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: genai.RoleUser, Parts: parts})
			}
		case core.RoleSystem:
			// handled via SystemInstruction
		default:
			if text := m.Text(); text != "" {
				out = append(out, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}})
			}
		}
	}
	return out, nil
}

// convertTools adapts parameter schemas through a JSON round-trip into the
// SDK's typed schema, matching how the definitions are produced.
func convertTools(defs []brain.ToolDefinition) ([]*genai.Tool, error) {
	fds := make([]*genai.FunctionDeclaration, len(defs))
	for i, d := range defs {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			raw, err := json.Marshal(d.Parameters)
			if err != nil {
				return nil, fmt.Errorf("marshal schema for %s: %w", d.Name, err)
			}
			var schema genai.Schema
			if err := json.Unmarshal(raw, &schema); err != nil {
				return nil, fmt.Errorf("convert schema for %s: %w", d.Name, err)
			}
			fd.Parameters = &schema
		}
		fds[i] = fd
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}, nil
}

func parseResponse(resp *genai.GenerateContentResponse) (*brain.Response, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &brain.MalformedResponseError{Reason: "response contained no candidates"}
	}
	cand := resp.Candidates[0]

	out := &brain.Response{StopReason: string(cand.FinishReason)}
	for _, part := range cand.Content.Parts {
		if part.Text != "" && !part.Thought {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				args = []byte("{}")
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = core.NewID()
			}
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, &brain.MalformedResponseError{Reason: "candidate contained neither text nor tool calls"}
	}
	if resp.UsageMetadata != nil {
		out.Usage = &brain.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &brain.ProviderError{Status: apiErr.Code, Message: apiErr.Message}
	}
	return &brain.TransportError{Err: err}
}
