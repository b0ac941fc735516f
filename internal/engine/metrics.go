package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	CaptionRequests    atomic.Int64
	PageFetches        atomic.Int64
	TrackFetches       atomic.Int64
	FetchErrors        atomic.Int64
	BrowserFallbacks   atomic.Int64
	ExtractionFailures atomic.Int64
	NoCaptions         atomic.Int64
	CaptionsServed     atomic.Int64
}

var metricKeys = []string{
	"caption_requests",
	"page_fetches", "track_fetches", "fetch_errors", "browser_fallbacks",
	"extraction_failures", "no_captions", "captions_served",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"caption_requests":    metrics.CaptionRequests.Load(),
		"page_fetches":        metrics.PageFetches.Load(),
		"track_fetches":       metrics.TrackFetches.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"browser_fallbacks":   metrics.BrowserFallbacks.Load(),
		"extraction_failures": metrics.ExtractionFailures.Load(),
		"no_captions":         metrics.NoCaptions.Load(),
		"captions_served":     metrics.CaptionsServed.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and captionserver/.
func IncrCaptionRequests()    { metrics.CaptionRequests.Add(1) }
func IncrPageFetches()        { metrics.PageFetches.Add(1) }
func IncrTrackFetches()       { metrics.TrackFetches.Add(1) }
func IncrFetchErrors()        { metrics.FetchErrors.Add(1) }
func IncrBrowserFallbacks()   { metrics.BrowserFallbacks.Add(1) }
func IncrExtractionFailures() { metrics.ExtractionFailures.Add(1) }
func IncrNoCaptions()         { metrics.NoCaptions.Add(1) }
func IncrCaptionsServed()     { metrics.CaptionsServed.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
