package sources

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_captions/internal/engine"
)

// PlayerConfig is the decoded ytInitialPlayerResponse. No schema is assumed;
// accessors in youtube_tracks.go probe it by key path.
type PlayerConfig = map[string]any

const extractionSampleLen = 200

var (
	// lazyBlobRE stops at the first "};" after the marker. Fast, but truncates when
	// a string value inside the blob contains "};".
	lazyBlobRE = regexp.MustCompile(`(?s)ytInitialPlayerResponse\s*=\s*(\{.+?\});`)

	// playerMarkerRE matches the assignment forms seen on watch pages:
	//   ytInitialPlayerResponse = {...}
	//   var ytInitialPlayerResponse = {...}
	//   window["ytInitialPlayerResponse"] = {...}
	playerMarkerRE = regexp.MustCompile(`ytInitialPlayerResponse["']?\]?\s*=\s*`)
)

// blobStrategy captures the raw JSON text of the player response. found reports
// whether the marker was present, even if nothing usable was captured.
type blobStrategy struct {
	name    string
	capture func(html string) (raw string, found bool)
}

// Ordered: first capture that decodes wins.
var blobStrategies = []blobStrategy{
	{name: "lazy-regexp", capture: captureLazy},
	{name: "brace-scan", capture: captureBalanced},
}

// ExtractPlayerResponse locates ytInitialPlayerResponse in watch page HTML and decodes it.
// Errors are *ExtractionError wrapping ErrMarkerNotFound or ErrMalformedBlob.
func ExtractPlayerResponse(html string) (PlayerConfig, error) {
	markerFound := false
	var lastErr error

	for _, s := range blobStrategies {
		raw, found := s.capture(html)
		if !found {
			continue
		}
		markerFound = true

		var cfg PlayerConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			slog.Debug("youtube: player blob capture did not decode",
				slog.String("strategy", s.name), slog.Any("error", err))
			lastErr = err
			continue
		}
		if cfg == nil {
			lastErr = ErrMalformedBlob
			continue
		}
		return cfg, nil
	}

	e := &ExtractionError{
		Err:    ErrMarkerNotFound,
		Title:  pageTitle(html),
		Sample: engine.Snippet(html, extractionSampleLen),
	}
	if markerFound {
		e.Err = ErrMalformedBlob
		if lastErr != ErrMalformedBlob {
			e.Cause = lastErr
		}
	}
	return nil, e
}

func captureLazy(html string) (string, bool) {
	m := lazyBlobRE.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func captureBalanced(html string) (string, bool) {
	loc := playerMarkerRE.FindStringIndex(html)
	if loc == nil {
		return "", false
	}
	obj, _ := balancedObject(html[loc[1]:])
	return obj, true
}

// balancedObject returns the JSON object starting at s[0] by tracking brace depth
// outside of string literals.
func balancedObject(s string) (string, bool) {
	if s == "" || s[0] != '{' {
		return "", false
	}
	depth := 0
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// pageTitle returns the document <title>, which names consent and error
// interstitials served in place of the watch page.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return engine.CollapseSpace(doc.Find("title").First().Text())
}
