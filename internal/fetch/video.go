package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"prismis/internal/domain/entity"
	"prismis/internal/normalize"
	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

const maxReadablePageBytes = 2 << 20 // 2 MiB, a generous cap for a single watch page.

// VideoFetcher polls a channel's public Atom feed. Transcript download is
// best-effort: its absence is not an error, and the description is used
// as content instead.
type VideoFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

func NewVideoFetcher(client *http.Client, cfg Config) *VideoFetcher {
	return &VideoFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.VideoFetchConfig()),
		retryConfig:    retry.VideoFetchConfig(),
		config:         cfg.Clamped(),
	}
}

func (f *VideoFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	handle, isChannelID, err := normalize.Channel(source.URL)
	if err != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: err}
	}

	feedURL, err := channelFeedURL(handle, isChannelID)
	if err != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: err}
	}

	var records []entity.FetchRecord
	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, cbErr := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if cbErr != nil {
			if errors.Is(cbErr, gobreaker.ErrOpenState) {
				slog.Warn("video fetch circuit breaker open", slog.String("source_url", source.URL))
			}
			return cbErr
		}
		records = result.([]entity.FetchRecord)
		return nil
	})
	if retryErr != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: retryErr}
	}
	return records, nil
}

// channelFeedURL builds YouTube's public channel-feed endpoint, which
// serves a plain Atom document gofeed already knows how to parse.
func channelFeedURL(handle string, isChannelID bool) (string, error) {
	if isChannelID {
		return "https://www.youtube.com/feeds/videos.xml?channel_id=" + handle, nil
	}
	if handle == "" {
		return "", fmt.Errorf("normalize: empty channel handle")
	}
	return "https://www.youtube.com/feeds/videos.xml?user=" + handle[1:], nil
}

func (f *VideoFetcher) doFetch(ctx context.Context, feedURL string) ([]entity.FetchRecord, error) {
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

		content := it.Description
		if transcript, ok := f.fetchTranscript(ctx, it.Link); ok {
			content = transcript
		} else if content == "" {
			if extracted, ok := f.fetchReadableDescription(ctx, it.Link); ok {
				content = extracted
			}
		}

		var metrics map[string]any
		if views, ok := extractViewCount(it); ok {
			metrics = map[string]any{"view_count": views}
		}

		records = append(records, entity.FetchRecord{
			ExternalID:  feedExternalID(it),
			Title:       it.Title,
			URL:         it.Link,
			Content:     content,
			PublishedAt: publishedAt,
			Metrics:     metrics,
		})

		if len(records) >= f.config.MaxItemsPerFeed {
			break
		}
	}

	return records, nil
}

// fetchTranscript is best-effort: any failure (no captions, network
// error, non-200) simply returns ok=false and the caller falls back to
// the video's description.
func (f *VideoFetcher) fetchTranscript(ctx context.Context, videoURL string) (string, bool) {
	videoID := extractVideoID(videoURL)
	if videoID == "" {
		return "", false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://video.google.com/timedtext?lang=en&v="+videoID, nil)
	if err != nil {
		return "", false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return "", false
	}
	return string(body), true
}

// fetchReadableDescription is the last-resort fallback when a video has
// neither a transcript nor a feed description: it extracts the watch
// page's readable article text, which for most channels still carries
// the uploader's written description in the page body.
func (f *VideoFetcher) fetchReadableDescription(ctx context.Context, videoURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", "Prismis/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	parsedURL, err := url.Parse(videoURL)
	if err != nil {
		parsedURL = nil
	}
	article, err := readability.FromReader(io.LimitReader(resp.Body, maxReadablePageBytes), parsedURL)
	if err != nil || article.TextContent == "" {
		return "", false
	}
	return article.TextContent, true
}

func extractVideoID(videoURL string) string {
	const marker = "watch?v="
	idx := indexOf(videoURL, marker)
	if idx < 0 {
		return ""
	}
	id := videoURL[idx+len(marker):]
	if amp := indexOf(id, "&"); amp >= 0 {
		id = id[:amp]
	}
	return id
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func extractViewCount(it *gofeed.Item) (int, bool) {
	if it.Extensions == nil {
		return 0, false
	}
	media, ok := it.Extensions["media"]
	if !ok {
		return 0, false
	}
	statistics, ok := media["statistics"]
	if !ok || len(statistics) == 0 {
		return 0, false
	}
	views, ok := statistics[0].Attrs["views"]
	if !ok {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(views, "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
