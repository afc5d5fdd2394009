package evaluate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse = errors.New("evaluator returned an empty response")
	ErrMalformedJSON = errors.New("evaluator response is not valid JSON")
)

// AnalysisError wraps a failure to produce or parse a structured
// evaluation. The pipeline catches it, logs, and skips the item.
type AnalysisError struct {
	Provider string
	Cause    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("evaluate (%s): %v", e.Provider, e.Cause)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// ConfigError mirrors summarize.ConfigError: raised at construction time
// when required provider configuration cannot be resolved.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluator config %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("evaluator config %s is required", e.Field)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func parseResponse(text string) (Output, error) {
	text = stripCodeFence(text)
	if strings.TrimSpace(text) == "" {
		return Output{}, ErrEmptyResponse
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return normalize(raw), nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
