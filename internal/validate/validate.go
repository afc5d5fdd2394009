// Package validate implements the source validator: given a candidate
// URL and a declared type, it probes just enough to decide whether the
// pipeline should ever try to fetch it. It performs no persistence and
// holds no state of its own.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"prismis/internal/domain/entity"
	"prismis/internal/normalize"
)

const (
	probeTimeout = 5 * time.Second
	userAgent    = "Prismis/1.0"
)

// Validator probes a candidate source before it is ever handed to a
// fetcher. A nil client is replaced with an http.Client scoped to
// probeTimeout.
type Validator struct {
	client *http.Client
}

func New(client *http.Client) *Validator {
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Validator{client: client}
}

// Validate returns (ok, reason) describing whether url/typ is a usable
// source. ok=false with a non-empty reason is the expected shape for a
// rejected candidate; err is reserved for transport failures the caller
// may want to distinguish from a deliberate rejection.
func (v *Validator) Validate(ctx context.Context, rawURL string, typ entity.SourceType) (ok bool, reason string, err error) {
	if !entity.ValidSourceType(typ) {
		return false, "Unknown source type: " + string(typ), nil
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	switch typ {
	case entity.SourceTypeFeed:
		return v.validateFeed(ctx, rawURL)
	case entity.SourceTypeForum:
		return v.validateForum(ctx, rawURL)
	case entity.SourceTypeVideo:
		return v.validateVideo(ctx, rawURL)
	case entity.SourceTypeFile:
		return v.validateFile(ctx, rawURL)
	default:
		// Unreachable: ValidSourceType already rejected anything else.
		return false, "Unknown source type: " + string(typ), nil
	}
}

func (v *Validator) validateFeed(ctx context.Context, rawURL string) (bool, string, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = v.client

	feed, err := fp.ParseURLWithContext(rawURL, ctx)
	if err != nil {
		return false, fmt.Sprintf("could not parse feed: %v", err), nil
	}
	if len(feed.Items) == 0 && feed.Title == "" {
		return false, "feed has no entries and no channel title", nil
	}
	return true, "", nil
}

func (v *Validator) validateForum(ctx context.Context, rawURL string) (bool, string, error) {
	subreddit, err := normalize.Subreddit(rawURL)
	if err != nil {
		return false, err.Error(), nil
	}

	aboutURL := "https://www.reddit.com/r/" + subreddit + "/about.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, aboutURL, nil)
	if err != nil {
		return false, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("could not reach subreddit: %v", err), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, "subreddit does not exist", nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("subreddit probe returned %s", resp.Status), nil
	}

	var about struct {
		Data struct {
			SubredditType string `json:"subreddit_type"`
		} `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "", err
	}
	if err := json.Unmarshal(body, &about); err != nil {
		return false, "could not parse subreddit metadata", nil
	}
	if about.Data.SubredditType == "private" {
		return false, "subreddit is private", nil
	}
	return true, "", nil
}

func (v *Validator) validateVideo(ctx context.Context, rawURL string) (bool, string, error) {
	handle, isChannelID, err := normalize.Channel(rawURL)
	if err != nil {
		return false, err.Error(), nil
	}

	var feedURL string
	if isChannelID {
		feedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=" + handle
	} else {
		feedURL = "https://www.youtube.com/feeds/videos.xml?user=" + strings.TrimPrefix(handle, "@")
	}

	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = v.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return false, fmt.Sprintf("channel does not resolve: %v", err), nil
	}
	if feed.Title == "" {
		return false, "channel does not resolve", nil
	}
	return true, "", nil
}

func (v *Validator) validateFile(ctx context.Context, rawURL string) (bool, string, error) {
	if err := entity.ValidateURL(rawURL); err != nil {
		return false, err.Error(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("could not reach file: %v", err), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("file probe returned %s", resp.Status), nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextLike(contentType) {
		return false, fmt.Sprintf("content type %q is not text-like", contentType), nil
	}
	return true, "", nil
}

func isTextLike(contentType string) bool {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "text/"),
		strings.Contains(ct, "json"),
		strings.Contains(ct, "xml"),
		strings.Contains(ct, "yaml"):
		return true
	case ct == "":
		// No content-type header at all: give the benefit of the
		// doubt rather than reject on missing metadata alone.
		return true
	default:
		return false
	}
}
