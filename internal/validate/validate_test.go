package validate

import (
	"context"
	"testing"

	"prismis/internal/domain/entity"
)

func TestValidate_UnknownType(t *testing.T) {
	v := New(nil)
	ok, reason, err := v.Validate(context.Background(), "https://example.com/feed", entity.SourceType("podcast"))
	if err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if ok {
		t.Error("Validate() ok = true for an unrecognized type, want false")
	}
	if reason == "" {
		t.Error("Validate() reason is empty for an unrecognized type")
	}
}

func TestIsTextLike(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"text/plain", true},
		{"text/plain; charset=utf-8", true},
		{"application/json", true},
		{"application/xml", true},
		{"", true},
		{"image/png", false},
		{"application/octet-stream", false},
	}
	for _, c := range cases {
		got := isTextLike(c.contentType)
		if got != c.want {
			t.Errorf("isTextLike(%q) = %v, want %v", c.contentType, got, c.want)
		}
	}
}
