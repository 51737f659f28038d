// Package config loads runtime settings from the environment. Flags set on
// the command line override these values.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Env variable names. Provider API keys are read by the SDKs themselves
// (ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, OLLAMA_HOST).
const (
	EnvBrain         = "NANOAGENT_BRAIN"
	EnvModel         = "NANOAGENT_MODEL"
	EnvBaseURL       = "NANOAGENT_BASE_URL"
	EnvRoot          = "NANOAGENT_ROOT"
	EnvSessionDir    = "NANOAGENT_SESSION_DIR"
	EnvLogLevel      = "NANOAGENT_LOG_LEVEL"
	EnvLogFormat     = "NANOAGENT_LOG_FORMAT"
	EnvMaxIterations = "NANOAGENT_MAX_ITERATIONS"
)

// Config holds all runtime settings.
type Config struct {
	// Brain selects the backend (anthropic, openai, ollama, gemini).
	Brain string
	// Model overrides the backend's default model. Empty keeps the default.
	Model string
	// BaseURL overrides the backend endpoint where supported.
	BaseURL string
	// Root is the working directory tools operate in.
	Root string
	// SessionDir is where transcripts are stored.
	SessionDir string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
	// MaxIterations bounds brain calls per turn.
	MaxIterations int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Brain:         "anthropic",
		Root:          ".",
		SessionDir:    ".nanoagent/sessions",
		LogLevel:      "warn",
		LogFormat:     "text",
		MaxIterations: 10,
	}
}

// FromEnv layers environment variables over the defaults.
func FromEnv() (Config, error) {
	cfg := Default()
	if v := os.Getenv(EnvBrain); v != "" {
		cfg.Brain = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvRoot); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv(EnvSessionDir); v != "" {
		cfg.SessionDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvMaxIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvMaxIterations, err)
		}
		cfg.MaxIterations = n
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no component could act on.
func (c Config) Validate() error {
	if c.Brain == "" {
		return fmt.Errorf("brain must not be empty")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
