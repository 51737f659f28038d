package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Brain)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, 10, cfg.MaxIterations)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvBrain, "ollama")
	t.Setenv(EnvModel, "qwen2.5-coder")
	t.Setenv(EnvMaxIterations, "5")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Brain)
	assert.Equal(t, "qwen2.5-coder", cfg.Model)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv(EnvMaxIterations, "zero")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.MaxIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogFormat = "yaml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Brain = ""
	assert.Error(t, cfg.Validate())
}
