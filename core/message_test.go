package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageText(t *testing.T) {
	m := Message{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "Hello "},
		ToolCallPart{ToolCall: ToolCall{ID: "c1", Name: "read_file"}},
		TextPart{Text: "world"},
	}}
	assert.Equal(t, "Hello world", m.Text())
}

func TestMessageToolCallsPreserveOrder(t *testing.T) {
	m := Message{Role: RoleAssistant, Parts: []Part{
		ToolCallPart{ToolCall: ToolCall{ID: "c1", Name: "first"}},
		TextPart{Text: "between"},
		ToolCallPart{ToolCall: ToolCall{ID: "c2", Name: "second"}},
	}}
	calls := m.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Name)
	assert.Equal(t, "second", calls[1].Name)
}

func TestMessageJSONRoundTrip(t *testing.T) {
	orig := Message{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "checking the file"},
		ToolCallPart{ToolCall: ToolCall{ID: "c1", Name: "read_file", Arguments: `{"path":"main.go"}`}},
	}}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, orig, decoded)
}

func TestToolResultMessageJSONRoundTrip(t *testing.T) {
	orig := NewToolResultMessage(ToolResult{CallID: "c1", Name: "run_command", Output: "boom", IsError: true})

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.ToolResults(), 1)
	assert.True(t, decoded.ToolResults()[0].IsError)
	assert.Equal(t, "c1", decoded.ToolResults()[0].CallID)
}

func TestUnmarshalRejectsUnknownPartType(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"bogus"}]}`), &m)
	assert.Error(t, err)
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
