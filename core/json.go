package core

import (
	"encoding/json"
	"fmt"
)

// partEnvelope is the wire form of a Part. The type discriminator lets a
// persisted conversation round-trip losslessly through JSON.
type partEnvelope struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

const (
	partTypeText       = "text"
	partTypeToolCall   = "tool_call"
	partTypeToolResult = "tool_result"
)

// MarshalJSON encodes the message with typed part envelopes.
func (m Message) MarshalJSON() ([]byte, error) {
	envs := make([]partEnvelope, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch part := p.(type) {
		case TextPart:
			envs = append(envs, partEnvelope{Type: partTypeText, Text: part.Text})
		case ToolCallPart:
			tc := part.ToolCall
			envs = append(envs, partEnvelope{Type: partTypeToolCall, ToolCall: &tc})
		case ToolResultPart:
			tr := part.ToolResult
			envs = append(envs, partEnvelope{Type: partTypeToolResult, ToolResult: &tr})
		default:
			return nil, fmt.Errorf("unknown part type %T", p)
		}
	}
	return json.Marshal(struct {
		Role  string         `json:"role"`
		Parts []partEnvelope `json:"parts"`
	}{Role: m.Role, Parts: envs})
}

// UnmarshalJSON decodes a message produced by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role  string         `json:"role"`
		Parts []partEnvelope `json:"parts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Parts = make([]Part, 0, len(raw.Parts))
	for _, env := range raw.Parts {
		switch env.Type {
		case partTypeText:
			m.Parts = append(m.Parts, TextPart{Text: env.Text})
		case partTypeToolCall:
			if env.ToolCall == nil {
				return fmt.Errorf("tool_call part without payload")
			}
			m.Parts = append(m.Parts, ToolCallPart{ToolCall: *env.ToolCall})
		case partTypeToolResult:
			if env.ToolResult == nil {
				return fmt.Errorf("tool_result part without payload")
			}
			m.Parts = append(m.Parts, ToolResultPart{ToolResult: *env.ToolResult})
		default:
			return fmt.Errorf("unknown part type %q", env.Type)
		}
	}
	return nil
}
