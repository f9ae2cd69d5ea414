// Package youtube extracts video identifiers from YouTube links.
package youtube

import (
	"net/url"
	"strings"
)

const (
	canonicalDomain = "youtube.com"
	shortDomain     = "youtu.be"

	// DefaultWatchBaseURL is the page transcripts are discovered from.
	DefaultWatchBaseURL = "https://www.youtube.com"
)

// ResolveID returns the video id carried by rawURL. Only absolute URLs are
// considered. Hosts are compared case-insensitively and matched by substring,
// so any hostname containing youtube.com or youtu.be is accepted. Short links
// take the still-escaped id from the path; every other accepted host reads the
// "v" query parameter.
func ResolveID(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	if !strings.Contains(host, canonicalDomain) && !strings.Contains(host, shortDomain) {
		return "", false
	}
	var id string
	if host == shortDomain {
		id = strings.TrimPrefix(parsed.EscapedPath(), "/")
	} else {
		id = parsed.Query().Get("v")
	}
	if id == "" {
		return "", false
	}
	return id, true
}

// WatchURL builds the watch page URL for id under baseURL.
func WatchURL(baseURL, id string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultWatchBaseURL
	}
	return base + "/watch?v=" + url.QueryEscape(id)
}
