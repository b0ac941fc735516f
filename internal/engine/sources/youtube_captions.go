package sources

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_captions/internal/engine"
	"github.com/anatolykoptev/go_captions/internal/engine/captions"
)

const (
	watchPageLimit = 6 << 20
	trackLimit     = 2 << 20

	defaultWatchBaseURL = "https://www.youtube.com/watch"
	acceptLanguage      = "en-US,en;q=0.9"
)

// FetcherConfig carries everything a Fetcher needs. Zero fields get defaults.
type FetcherConfig struct {
	Client       *http.Client        // nil = engine.NewHTTPClient(0)
	UserAgent    string              // empty = random Chrome UA per request
	Language     string              // preferred caption language; empty = first track
	Retry        *engine.RetryConfig // nil = engine.DefaultRetryConfig
	Limiter      *rate.Limiter       // nil = unlimited
	WatchBaseURL string              // default https://www.youtube.com/watch

	// Browser retries requests the plain client could not complete (blocked,
	// throttled, unreachable) with a Chrome TLS fingerprint. nil disables.
	Browser BrowserDoer
}

// BrowserDoer is the part of engine.BrowserClient the Fetcher uses.
type BrowserDoer interface {
	Do(method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error)
}

var _ BrowserDoer = (*engine.BrowserClient)(nil)

// FetcherConfigFromEngine builds a FetcherConfig from the process-wide engine config.
func FetcherConfigFromEngine() FetcherConfig {
	c := engine.Cfg
	fc := FetcherConfig{
		Client:    c.HTTPClient,
		UserAgent: c.UserAgent,
		Language:  c.Language,
		Limiter:   engine.NewLimiter(c.RequestsPerSecond, c.RequestBurst),
	}
	if c.BrowserClient != nil {
		fc.Browser = c.BrowserClient
	}
	return fc
}

// Fetcher runs the caption pipeline: resolve ID, load the watch page, extract the
// player response, pick a track, download it as WebVTT and parse it.
// Safe for concurrent use.
type Fetcher struct {
	cfg FetcherConfig
}

// NewFetcher returns a Fetcher for cfg.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Client == nil {
		cfg.Client = engine.NewHTTPClient(0)
	}
	if cfg.Retry == nil {
		rc := engine.DefaultRetryConfig
		cfg.Retry = &rc
	}
	if cfg.WatchBaseURL == "" {
		cfg.WatchBaseURL = defaultWatchBaseURL
	}
	return &Fetcher{cfg: cfg}
}

// Language returns the configured default caption language.
func (f *Fetcher) Language() string { return f.cfg.Language }

// Result is one successful caption fetch.
type Result struct {
	VideoID  string            `json:"video_id"`
	Track    CaptionTrack      `json:"track"`
	VTT      string            `json:"-"`
	Captions captions.Sequence `json:"captions"`
}

// Fetch resolves videoURL and fetches its captions in the default language.
func (f *Fetcher) Fetch(ctx context.Context, videoURL string) (*Result, error) {
	id, ok := ResolveVideoID(videoURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, engine.Snippet(videoURL, 80))
	}
	return f.FetchByID(ctx, id, f.cfg.Language)
}

// FetchByID fetches captions for a known video ID. lang overrides the default
// language preference; empty selects the first listed track.
func (f *Fetcher) FetchByID(ctx context.Context, videoID, lang string) (*Result, error) {
	engine.IncrCaptionRequests()

	var res *Result
	err := engine.TrackOperation(ctx, "youtube_captions", func(ctx context.Context) error {
		page, err := f.fetchWatchPage(ctx, videoID)
		if err != nil {
			return err
		}

		cfg, err := ExtractPlayerResponse(page)
		if err != nil {
			engine.IncrExtractionFailures()
			return err
		}

		track, err := SelectTrack(cfg, lang)
		if err != nil {
			engine.IncrNoCaptions()
			return err
		}

		vtt, err := f.fetchTrack(ctx, track)
		if err != nil {
			return err
		}

		res = &Result{
			VideoID:  videoID,
			Track:    track,
			VTT:      vtt,
			Captions: cleanCues(captions.Parse(vtt)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	engine.IncrCaptionsServed()
	return res, nil
}

// cleanCues strips inline markup (<c>, <i>, word timestamps) that auto-generated
// tracks carry, unescapes entities, and drops cues left empty.
func cleanCues(seq captions.Sequence) captions.Sequence {
	out := make(captions.Sequence, 0, len(seq))
	for _, c := range seq {
		c.Text = engine.CollapseSpace(html.UnescapeString(engine.CleanHTML(c.Text)))
		if c.Text != "" {
			out = append(out, c)
		}
	}
	return out
}

// FetchCaptions never fails: any failure is logged and yields an empty sequence.
func (f *Fetcher) FetchCaptions(ctx context.Context, videoURL string) captions.Sequence {
	res, err := f.Fetch(ctx, videoURL)
	if err != nil {
		LogFetchError(videoURL, err)
		return captions.Sequence{}
	}
	return res.Captions
}

// LogFetchError logs a pipeline failure at a level matching its class.
func LogFetchError(input string, err error) {
	attrs := []any{slog.String("input", engine.Snippet(input, 120)), slog.Any("error", err)}
	var ee *ExtractionError
	switch {
	case errors.Is(err, ErrNoCaptions):
		slog.Info("youtube: no captions", attrs...)
	case errors.As(err, &ee):
		attrs = append(attrs, slog.String("page_title", ee.Title), slog.String("sample", ee.Sample))
		slog.Warn("youtube: player response extraction failed", attrs...)
	case errors.Is(err, ErrInvalidInput):
		slog.Info("youtube: invalid input", attrs...)
	default:
		slog.Warn("youtube: caption fetch failed", attrs...)
	}
}

func (f *Fetcher) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	engine.IncrPageFetches()
	u := f.cfg.WatchBaseURL + "?v=" + url.QueryEscape(videoID)
	body, err := f.get(ctx, "watch page", u, watchPageLimit)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (f *Fetcher) fetchTrack(ctx context.Context, track CaptionTrack) (string, error) {
	engine.IncrTrackFetches()
	u, err := vttURL(track.BaseURL)
	if err != nil {
		return "", &UpstreamError{Stage: "caption track", Err: err}
	}
	body, err := f.get(ctx, "caption track", u, trackLimit)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// vttURL forces fmt=vtt on a track base URL, replacing any existing format.
func vttURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse track url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "vtt")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get issues a paced GET and returns the body of a 2xx text response, falling back
// to the browser client when the plain request is refused.
func (f *Fetcher) get(ctx context.Context, stage, target string, limit int64) ([]byte, error) {
	body, err := f.plainGet(ctx, stage, target, limit)
	if err == nil || f.cfg.Browser == nil || ctx.Err() != nil || !browserRetryable(err) {
		return body, err
	}
	slog.Debug("youtube: retrying with browser client",
		slog.String("stage", stage), slog.Any("error", err))
	engine.IncrBrowserFallbacks()
	return f.browserGet(ctx, stage, target, limit)
}

func (f *Fetcher) plainGet(ctx context.Context, stage, target string, limit int64) ([]byte, error) {
	start := time.Now()
	resp, err := engine.RetryHTTP(ctx, *f.cfg.Retry, func() (*http.Response, error) {
		if f.cfg.Limiter != nil {
			if err := f.cfg.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent())
		req.Header.Set("Accept-Language", acceptLanguage)
		return f.cfg.Client.Do(req)
	})
	if err != nil {
		engine.IncrFetchErrors()
		return nil, &UpstreamError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(stage, resp.StatusCode, resp.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	body, err := engine.ReadBody(resp, limit)
	if err != nil {
		engine.IncrFetchErrors()
		return nil, &UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Err: err}
	}
	slog.Debug("youtube: fetched",
		slog.String("stage", stage),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (f *Fetcher) browserGet(ctx context.Context, stage, target string, limit int64) ([]byte, error) {
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Stage: stage, Err: err}
		}
	}
	headers := engine.ChromeHeaders()
	headers["accept-language"] = acceptLanguage

	data, respHeaders, status, err := f.cfg.Browser.Do(http.MethodGet, target, headers, nil)
	if err != nil {
		engine.IncrFetchErrors()
		return nil, &UpstreamError{Stage: stage, Err: fmt.Errorf("browser fetch: %w", err)}
	}
	if err := checkResponse(stage, status, headerValue(respHeaders, "Content-Type")); err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		data = data[:limit]
	}
	return data, nil
}

// checkResponse rejects non-2xx statuses and non-text bodies.
func checkResponse(stage string, status int, contentType string) error {
	if status < 200 || status >= 300 {
		engine.IncrFetchErrors()
		return &UpstreamError{Stage: stage, StatusCode: status}
	}
	if !isTextContent(contentType) {
		engine.IncrFetchErrors()
		return &UpstreamError{
			Stage:      stage,
			StatusCode: status,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedContent, contentType),
		}
	}
	return nil
}

// headerValue looks up key case-insensitively; the browser client keeps
// header names as the server sent them.
func headerValue(h map[string]string, key string) string {
	if v, ok := h[key]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// browserRetryable reports whether err looks like a block rather than a real
// answer: no response, 403, or a status go-stealth treats as transient.
func browserRetryable(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.StatusCode == 0 {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return ue.StatusCode == http.StatusForbidden || engine.IsRetryableStatus(ue.StatusCode)
}

func (f *Fetcher) userAgent() string {
	if f.cfg.UserAgent != "" {
		return f.cfg.UserAgent
	}
	return engine.RandomUserAgent()
}

// isTextContent accepts text/* bodies and a missing Content-Type.
func isTextContent(ct string) bool {
	if strings.TrimSpace(ct) == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/")
}
