package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseResponse_ValidJSON(t *testing.T) {
	text := `{"summary":"a short summary","reading_summary":"# heading\nbody","alpha_insights":["insight one"],"patterns":["pattern one"],"entities":["Go","Kubernetes"]}`

	out, err := parseResponse(text)
	if err != nil {
		t.Fatalf("parseResponse() returned unexpected error: %v", err)
	}
	if out.Summary != "a short summary" {
		t.Errorf("Summary = %q, want %q", out.Summary, "a short summary")
	}
	if len(out.Entities) != 2 {
		t.Errorf("len(Entities) = %d, want 2", len(out.Entities))
	}
}

func TestParseResponse_StripsCodeFence(t *testing.T) {
	text := "```json\n{\"summary\":\"fenced\",\"reading_summary\":\"\",\"alpha_insights\":[],\"patterns\":[],\"entities\":[]}\n```"

	out, err := parseResponse(text)
	if err != nil {
		t.Fatalf("parseResponse() returned unexpected error: %v", err)
	}
	if out.Summary != "fenced" {
		t.Errorf("Summary = %q, want %q", out.Summary, "fenced")
	}
}

func TestParseResponse_EmptyResponse(t *testing.T) {
	_, err := parseResponse("   ")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("parseResponse(\"   \") error = %v, want ErrEmptyResponse", err)
	}
}

func TestParseResponse_MalformedJSON(t *testing.T) {
	_, err := parseResponse("not json at all")
	if !errors.Is(err, ErrMalformedJSON) {
		t.Errorf("parseResponse() error = %v, want ErrMalformedJSON", err)
	}
}

func TestNormalize_CapsEntitiesAndInsights(t *testing.T) {
	raw := rawResponse{
		AlphaInsights: []string{"1", "2", "3", "4", "5"},
		Entities:      []string{"a", "b", "c", "d", "e", "f"},
	}
	out := normalize(raw)
	if len(out.AlphaInsights) != maxAlphaInsights {
		t.Errorf("len(AlphaInsights) = %d, want %d", len(out.AlphaInsights), maxAlphaInsights)
	}
	if len(out.Entities) != maxEntities {
		t.Errorf("len(Entities) = %d, want %d", len(out.Entities), maxEntities)
	}
}

func TestNormalize_TruncatesSummary(t *testing.T) {
	raw := rawResponse{Summary: strings.Repeat("a", maxSummaryChars+50)}
	out := normalize(raw)
	if len([]rune(out.Summary)) != maxSummaryChars {
		t.Errorf("len(Summary) = %d, want %d", len([]rune(out.Summary)), maxSummaryChars)
	}
}

func TestNormalize_NilSlicesBecomeEmpty(t *testing.T) {
	out := normalize(rawResponse{})
	if out.AlphaInsights == nil || out.Patterns == nil || out.Entities == nil {
		t.Error("normalize() left a nil slice, want empty non-nil slices")
	}
}

func TestResolveAPIKey_Literal(t *testing.T) {
	got, err := ResolveAPIKey("llm.api_key", "sk-literal-value")
	if err != nil {
		t.Fatalf("ResolveAPIKey() returned unexpected error: %v", err)
	}
	if got != "sk-literal-value" {
		t.Errorf("ResolveAPIKey() = %q, want %q", got, "sk-literal-value")
	}
}

func TestResolveAPIKey_EnvMissing(t *testing.T) {
	_, err := ResolveAPIKey("llm.api_key", "env:PRISMIS_TEST_UNSET_VAR")
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("ResolveAPIKey() error = %v, want *ConfigError", err)
	}
}

func TestResolveAPIKey_Empty(t *testing.T) {
	_, err := ResolveAPIKey("llm.api_key", "")
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("ResolveAPIKey() error = %v, want *ConfigError", err)
	}
}

func TestNoOp_Summarize(t *testing.T) {
	n := NewNoOp()
	out, err := n.Summarize(context.Background(), Input{Content: "some content"})
	if err != nil {
		t.Fatalf("NoOp.Summarize() returned unexpected error: %v", err)
	}
	if out.Summary != "some content" {
		t.Errorf("Summary = %q, want %q", out.Summary, "some content")
	}
}
