package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"prismis/internal/domain/entity"
	"prismis/internal/normalize"
	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

// imageVideoCDNs are domains whose submissions are skipped unless the
// post is a self-post: a plain link to a CDN carries no analyzable text.
var imageVideoCDNs = map[string]bool{
	"i.redd.it":   true,
	"i.imgur.com": true,
	"imgur.com":   true,
	"v.redd.it":   true,
	"youtube.com": true,
}

// ForumFetcher polls Reddit's read-only JSON listing endpoint for a
// subreddit's newest submissions.
type ForumFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

func NewForumFetcher(client *http.Client, cfg Config) *ForumFetcher {
	return &ForumFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.ForumFetchConfig()),
		retryConfig:    retry.ForumFetchConfig(),
		config:         cfg.Clamped(),
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditSubmission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditSubmission struct {
	Permalink     string  `json:"permalink"`
	Title         string  `json:"title"`
	IsSelf        bool    `json:"is_self"`
	URL           string  `json:"url"`
	CreatedUTC    float64 `json:"created_utc"`
	Selftext      string  `json:"selftext"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	NumComments   int     `json:"num_comments"`
	Subreddit     string  `json:"subreddit"`
	Author        string  `json:"author"`
	Domain        string  `json:"domain"`
}

func (f *ForumFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	subreddit, err := normalize.Subreddit(source.URL)
	if err != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: err}
	}

	listingURL := fmt.Sprintf("https://www.reddit.com/r/%s/new.json?limit=%d", subreddit, f.config.MaxItemsPerFeed)

	var listing redditListing
	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, cbErr := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, listingURL)
		})
		if cbErr != nil {
			return cbErr
		}
		listing = result.(redditListing)
		return nil
	})
	if retryErr != nil {
		return nil, &FetchError{SourceURL: source.URL, Cause: retryErr}
	}

	now := time.Now().UTC()
	records := make([]entity.FetchRecord, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		sub := child.Data
		if imageVideoCDNs[sub.Domain] && !sub.IsSelf {
			continue
		}

		publishedAt := unixToTime(sub.CreatedUTC)
		if !Fresh(publishedAt, f.config.MaxDaysLookback, now) {
			continue
		}

		content := sub.Selftext
		if !sub.IsSelf {
			content = "Link: " + sub.URL
		}

		author := sub.Author
		if author == "" {
			author = "[deleted]"
		}

		records = append(records, entity.FetchRecord{
			ExternalID:  sub.Permalink,
			Title:       sub.Title,
			URL:         "https://www.reddit.com" + sub.Permalink,
			Content:     content,
			PublishedAt: publishedAt,
			Metrics: map[string]any{
				"score":        sub.Score,
				"upvote_ratio": sub.UpvoteRatio,
				"num_comments": sub.NumComments,
				"author":       author,
				"subreddit":    sub.Subreddit,
			},
		})

		if len(records) >= f.config.MaxItemsPerFeed {
			break
		}
	}

	return records, nil
}

func (f *ForumFetcher) doFetch(ctx context.Context, listingURL string) (redditListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return redditListing{}, err
	}
	req.Header.Set("User-Agent", "Prismis/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return redditListing{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return redditListing{}, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return redditListing{}, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return redditListing{}, fmt.Errorf("%w: %v", ErrInvalidFeedFormat, err)
	}
	return listing, nil
}

func unixToTime(seconds float64) *time.Time {
	if seconds <= 0 {
		return nil
	}
	t := time.Unix(int64(seconds), 0).UTC()
	return &t
}
