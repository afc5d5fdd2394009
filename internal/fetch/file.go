package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sony/gobreaker"

	"prismis/internal/domain/entity"
	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

const maxFileBytes = 5 << 20 // 5 MiB cap on a tracked file's body.

// PreviousContentFunc looks up the last fetched content for a tracked
// file source, so FileFetcher can diff against it. A miss is reported as
// ("", false, nil), not an error.
type PreviousContentFunc func(ctx context.Context, sourceID string) (string, bool, error)

// FileFetcher polls a single tracked URL and reports it as changed only
// when its content hash differs from the last fetch.
type FileFetcher struct {
	client          *http.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	previousContent PreviousContentFunc
}

func NewFileFetcher(client *http.Client, cfg Config, previous PreviousContentFunc) *FileFetcher {
	return &FileFetcher{
		client:          client,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:     retry.WebScraperConfig(),
		config:          cfg.Clamped(),
		previousContent: previous,
	}
}

func (f *FileFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	if err := entity.ValidateURL(source.URL); err != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: err}
	}

	var content string
	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, source.URL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("file fetch circuit breaker open", slog.String("source_url", source.URL))
			}
			return err
		}
		content = result.(string)
		return nil
	})
	if retryErr != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: retryErr}
	}

	contentHash := ShortHash(content)
	externalID := ShortHash(source.URL + "|" + contentHash)

	var diff *entity.DiffStats
	if f.previousContent != nil {
		prev, found, err := f.previousContent(ctx, source.ID)
		if err != nil {
			return nil, &FetchError{SourceURL: source.URL, Cause: err}
		}
		if found && prev != content {
			diff = buildDiff(prev, content)
		} else if found && prev == content {
			return []entity.FetchRecord{}, nil
		}
	}

	now := time.Now().UTC()
	return []entity.FetchRecord{{
		ExternalID:  externalID,
		Title:       source.Name,
		URL:         source.URL,
		Content:     content,
		PublishedAt: &now,
		Diff:        diff,
	}}, nil
}

func (f *FileFetcher) doFetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Prismis/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxFileBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrUnreachable, maxFileBytes)
	}
	return string(body), nil
}

func buildDiff(prev, current string) *entity.DiffStats {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev),
		B:        difflib.SplitLines(current),
		FromFile: "previous",
		ToFile:   "current",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		text = ""
	}

	var added, removed int
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	changed := added
	if removed < changed {
		changed = removed
	}

	return &entity.DiffStats{
		UnifiedDiff:  text,
		AddedLines:   added,
		RemovedLines: removed,
		ChangedLines: changed,
	}
}
