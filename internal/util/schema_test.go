package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Path    string `json:"path" description:"Relative file path"`
	Limit   *int   `json:"limit" description:"Optional line limit"`
	Verbose bool   `json:"verbose,omitempty"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "path")
	assert.Contains(t, props, "limit")
	assert.Contains(t, props, "verbose")

	pathProp := props["path"].(map[string]any)
	assert.Equal(t, "string", pathProp["type"])
	assert.Equal(t, "Relative file path", pathProp["description"])

	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"path"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{"type": "string"},
			"max":  map[string]any{"type": "integer"},
		},
		"required": []any{"path"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"path": "a.txt"}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"path": "a.txt", "max": 3.0}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "path", vErr.Field)

	err = ValidateParameters(map[string]any{"path": 42}, schema)
	require.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type string")

	// Non-integral float is not an integer.
	err = ValidateParameters(map[string]any{"path": "a", "max": 3.5}, schema)
	assert.Error(t, err)

	// JSON null does not satisfy a typed field, even an optional one.
	err = ValidateParameters(map[string]any{"path": nil}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "path", vErr.Field)

	err = ValidateParameters(map[string]any{"path": "a", "max": nil}, schema)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))

	long := strings.Repeat("x", 200)
	got := Truncate(long, 50)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 50)))
	assert.Contains(t, got, "150 bytes omitted")

	assert.Equal(t, long, Truncate(long, 0))
}
