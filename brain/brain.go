// Package brain defines the interface between the agent and a language
// model service: a single blocking request/response exchange translating a
// conversation plus tool definitions into text and/or structured tool
// calls. Provider adapters live in subpackages and register themselves with
// the backend registry so selection is a startup configuration choice.
package brain

import (
	"context"

	"github.com/hupe1980/nanoagent/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input for one completion call.
type Request struct {
	System   string           `json:"system,omitempty"`
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token accounting for a response. PromptTokens drives
// the agent's history compaction policy.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the normalized reply of a completion call. At least one of
// Text and ToolCalls is non-empty; ToolCalls preserves provider order.
type Response struct {
	Text       string          `json:"text,omitempty"`
	ToolCalls  []core.ToolCall `json:"tool_calls,omitempty"`
	StopReason string          `json:"stop_reason,omitempty"`
	Usage      *TokenUsage     `json:"usage,omitempty"`
}

// Message converts the response into the assistant message to append to the
// conversation: text first, then tool call parts in provider order.
func (r *Response) Message() core.Message {
	parts := make([]core.Part, 0, len(r.ToolCalls)+1)
	if r.Text != "" {
		parts = append(parts, core.TextPart{Text: r.Text})
	}
	for _, tc := range r.ToolCalls {
		parts = append(parts, core.ToolCallPart{ToolCall: tc})
	}
	return core.Message{Role: core.RoleAssistant, Parts: parts}
}

// Info contains metadata about a brain implementation. ContextWindow is the
// provider's advertised prompt capacity in tokens.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	ContextWindow int    `json:"context_window"`
}

// Brain is the minimal interface the agent needs to drive generation.
// Complete performs exactly one outbound request; it applies no retry
// policy of its own (that belongs to the caller) and reports failures via
// the typed errors in this package.
type Brain interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns metadata about the brain implementation.
	Info() Info
}
