package summarize

import (
	"os"
	"strings"
	"time"
)

// Config holds provider-agnostic settings for a summarizer
// implementation. MaxTokens and Timeout bound one Summarize call; Model
// is the provider-specific model identifier.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	APIKey    string
}

// DefaultClaudeConfig mirrors the values the teacher's Claude summarizer
// used, minus the hardcoded target language (Prismis summaries are
// always in the source's own language).
func DefaultClaudeConfig() Config {
	return Config{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}
}

func DefaultOpenAIConfig() Config {
	return Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}
}

// ResolveAPIKey dereferences a config.toml value of the form "env:VAR"
// against the process environment. A bare (non "env:"-prefixed) value is
// returned unchanged, which lets tests inject a literal key directly.
// Missing environment variables fail fast with ConfigError rather than
// deferring the failure to the first API call.
func ResolveAPIKey(field, value string) (string, error) {
	if !strings.HasPrefix(value, "env:") {
		if value == "" {
			return "", &ConfigError{Field: field}
		}
		return value, nil
	}

	varName := strings.TrimPrefix(value, "env:")
	resolved, ok := os.LookupEnv(varName)
	if !ok || resolved == "" {
		return "", &ConfigError{Field: field, Cause: missingEnvError(varName)}
	}
	return resolved, nil
}

type missingEnvError string

func (e missingEnvError) Error() string {
	return "environment variable " + string(e) + " is not set"
}
