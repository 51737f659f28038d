package core

import "github.com/google/uuid"

// Conversation roles. Ordering of messages within a conversation is
// significant and append-only for the duration of a session.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Part represents a polymorphic segment of role-based message content.
// Concrete part types implement the unexported isPart marker enabling a
// closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) isPart() {}

// ToolCall describes a tool invocation requested by the brain. Arguments is
// the serialized JSON object exactly as the provider produced it; the tool
// registry deserializes and validates it at dispatch time.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallPart wraps a ToolCall as a content part of an assistant message.
type ToolCallPart struct {
	ToolCall ToolCall `json:"tool_call"`
}

func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a previously issued ToolCall. CallID
// references the originating call; Output carries the result text either
// way, with IsError distinguishing failures so the model can react to them.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Output  string `json:"output"`
	IsError bool   `json:"is_error,omitempty"`
}

// ToolResultPart wraps a ToolResult as a content part of a tool message.
type ToolResultPart struct {
	ToolResult ToolResult `json:"tool_result"`
}

func (ToolResultPart) isPart() {}

// Message holds a role plus ordered heterogeneous parts. A conversation is
// an ordered slice of messages owned exclusively by one agent instance.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextMessage builds a single-part text message for the given role.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResultMessage wraps one or more tool results in a tool-role
// message, preserving their order.
func NewToolResultMessage(results ...ToolResult) Message {
	parts := make([]Part, len(results))
	for i, r := range results {
		parts[i] = ToolResultPart{ToolResult: r}
	}
	return Message{Role: RoleTool, Parts: parts}
}

// Text concatenates all text parts of the message in order.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// ToolCalls returns the tool call parts of the message preserving their
// original order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.ToolCall)
		}
	}
	return calls
}

// ToolResults returns the tool result parts of the message preserving their
// original order.
func (m Message) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.ToolResult)
		}
	}
	return results
}

// NewID generates a unique identifier used for tool calls and sessions.
func NewID() string { return uuid.NewString() }
