package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	UserAgent            string   // identity header for outbound requests; empty = random Chrome UA
	Language             string   // preferred caption language; empty = first track
	FetchTimeout         time.Duration
	RequestsPerSecond    float64 // outbound pacing; 0 disables the limiter
	RequestBurst         int
	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	AllowedOrigins       []string
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // fallback for blocked requests; nil disables
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, captionserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// A nil HTTPClient is replaced with NewHTTPClient(FetchTimeout).
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient(c.FetchTimeout)
	}
	cfg = c
	Cfg = &cfg
}
