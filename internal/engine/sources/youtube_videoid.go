package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// VideoIDLen is the length of a YouTube video identifier.
const VideoIDLen = 11

// videoIDShapes are tried in order, most specific first. The token must be followed
// by end of input or a delimiter so a longer token never yields a prefix.
var videoIDShapes = []*regexp.Regexp{
	// watch?v=ID, with v anywhere in the query
	regexp.MustCompile(`(?i)^(?:https?://)?(?:(?:www|m|music)\.)?youtube\.com/watch/?\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})(?:$|[&#])`),
	// youtu.be/ID
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})(?:$|[?&#/])`),
	// /embed/ID, /v/ID, /shorts/ID, /live/ID
	regexp.MustCompile(`(?i)^(?:https?://)?(?:(?:www|m)\.)?youtube(?:-nocookie)?\.com/(?:embed|v|shorts|live)/([A-Za-z0-9_-]{11})(?:$|[?&#/])`),
}

// bareVideoIDRE counts runes; callers also require len == VideoIDLen bytes.
var bareVideoIDRE = regexp.MustCompile(`^[^"&?/#\s]{11}$`)

// ResolveVideoID extracts the 11-character video ID from a YouTube URL or accepts a
// bare ID. It never touches the network.
func ResolveVideoID(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	for _, re := range videoIDShapes {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	if id, ok := videoIDFromURL(s); ok {
		return id, true
	}
	if len(s) == VideoIDLen && bareVideoIDRE.MatchString(s) {
		return s, true
	}
	return "", false
}

// videoIDFromURL handles shapes the patterns miss: attribution links that carry
// the watch path in the u parameter, and percent-encoded watch URLs.
func videoIDFromURL(s string) (string, bool) {
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return "", false
	}
	q := u.Query()
	switch strings.TrimSuffix(u.Path, "/") {
	case "/watch":
		if v := q.Get("v"); len(v) == VideoIDLen && bareVideoIDRE.MatchString(v) {
			return v, true
		}
	case "/attribution_link":
		if target := q.Get("u"); strings.HasPrefix(target, "/watch") {
			return videoIDFromURL("https://www.youtube.com" + target)
		}
	}
	return "", false
}

// WatchURL returns the canonical watch page URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
