// Package normalize canonicalizes the several URL/handle spellings the
// source validator and the forum/video fetchers both need to agree on,
// so a source admitted by the validator is fetched against the exact
// same canonical handle.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var subredditPathRe = regexp.MustCompile(`(?i)^https?://[^/]+/r/([A-Za-z0-9_]+)/?$`)

// Subreddit canonicalizes any of "foo", "r/foo", "https://.../r/foo", or
// "forum://foo" down to the bare subreddit name "foo".
func Subreddit(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "forum://"):
		return strings.Trim(strings.TrimPrefix(raw, "forum://"), "/"), nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		m := subredditPathRe.FindStringSubmatch(raw)
		if m == nil {
			return "", fmt.Errorf("normalize: cannot extract subreddit from %q", raw)
		}
		return m[1], nil
	case strings.HasPrefix(raw, "r/"):
		return strings.TrimPrefix(raw, "r/"), nil
	default:
		return raw, nil
	}
}
