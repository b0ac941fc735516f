// go_captions: YouTube caption server.
//
// Serves the caption endpoint over HTTP (/captions, /youtube-captions) and exposes
// two MCP tools: youtube_captions, resolve_video_id.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_captions/internal/captionserver"
	"github.com/anatolykoptev/go_captions/internal/engine"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

var (
	version  = "dev"
	mcpPort  = env.Str("MCP_PORT", "8891")
	httpPort = env.Str("HTTP_PORT", "8890")
)

func main() {
	initEngine()

	fetcher := sources.NewFetcher(sources.FetcherConfigFromEngine())

	slog.Info("starting go_captions",
		slog.String("http_port", httpPort),
		slog.String("mcp_port", mcpPort),
	)

	go serveHTTP(fetcher)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_captions",
		Version: version,
	}, nil)

	captionserver.RegisterTools(server, fetcher)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_captions",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 60 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func serveHTTP(fetcher *sources.Fetcher) {
	srv := &http.Server{
		Addr: ":" + httpPort,
		Handler: captionserver.NewRouter(fetcher, captionserver.Options{
			AllowedOrigins: engine.Cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * engine.Cfg.FetchTimeout,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		UserAgent:            env.Str("USER_AGENT", engine.UserAgentChrome),
		Language:             env.Str("CAPTION_LANG", ""),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		RequestsPerSecond:    env.Float("REQUESTS_PER_SECOND", 2),
		RequestBurst:         env.Int("REQUEST_BURST", 4),
		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 30*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
		AllowedOrigins:       env.List("ALLOWED_ORIGINS", "*"),
	}

	bc, err := engine.NewBrowserClient(env.Str("WEBSHARE_API_KEY", ""))
	if err != nil {
		slog.Warn("browser client init failed, fallback disabled", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)
	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
