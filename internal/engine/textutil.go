package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentChrome is the default identity header for watch-page requests.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// htmlTagRe matches element tags (<c>, </i>, <c.colorE5E5E5>, <v Roger>) and WebVTT
// inline timestamps. A bare "<" in running text is left alone.
var htmlTagRe = regexp.MustCompile(`</?[A-Za-z][^<>]*>|<(?:\d{1,2}:)?\d{2}:\d{2}\.\d{3}>`)

// CleanHTML strips HTML-like tags (including WebVTT inline timestamps) and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CollapseSpace replaces every whitespace run with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// Snippet collapses whitespace and caps the result at limit runes, for log and
// error diagnostics.
func Snippet(s string, limit int) string {
	if n := limit * 8; len(s) > n {
		s = s[:n]
	}
	return TruncateRunes(CollapseSpace(s), limit, "…")
}
