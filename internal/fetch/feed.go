package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"prismis/internal/domain/entity"
	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

// FeedFetcher parses RSS/Atom feeds with gofeed. It is the default
// fetcher: the pipeline falls back to it for any source of an
// unrecognized type rather than failing the whole cycle.
type FeedFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

func NewFeedFetcher(client *http.Client, cfg Config) *FeedFetcher {
	return &FeedFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		config:         cfg.Clamped(),
	}
}

func (f *FeedFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	var records []entity.FetchRecord

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, source.URL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("source_url", source.URL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		records = result.([]entity.FetchRecord)
		return nil
	})
	if retryErr != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: retryErr}
	}
	return records, nil
}

func (f *FeedFetcher) doFetch(ctx context.Context, feedURL string) ([]entity.FetchRecord, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "Prismis/1.0"
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]entity.FetchRecord, 0, len(feed.Items))
	for _, it := range feed.Items {
		publishedAt := parsePublished(it)
		if !Fresh(publishedAt, f.config.MaxDaysLookback, now) {
			continue
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}

		records = append(records, entity.FetchRecord{
			ExternalID:  feedExternalID(it),
			Title:       it.Title,
			URL:         it.Link,
			Content:     content,
			PublishedAt: publishedAt,
		})

		if len(records) >= f.config.MaxItemsPerFeed {
			break
		}
	}

	return records, nil
}

// parsePublished prefers the entry's published time, falls back to
// updated, and returns nil on a malformed or absent time struct rather
// than guessing — a nil result is never admitted by the freshness gate.
func parsePublished(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		t := it.PublishedParsed.UTC()
		return &t
	}
	if it.UpdatedParsed != nil {
		t := it.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

// feedExternalID derives a stable per-entry identifier: the entry's own
// id when present, else a short hash of the link, else of the title, else
// of the current instant as a last resort that is guaranteed unique
// across calls but never stable across re-fetches of the same entry.
func feedExternalID(it *gofeed.Item) string {
	if it.GUID != "" {
		return it.GUID
	}
	if it.Link != "" {
		return ShortHash(it.Link)
	}
	if it.Title != "" {
		return ShortHash(it.Title)
	}
	return ShortHash(time.Now().UTC().Format(time.RFC3339Nano))
}
