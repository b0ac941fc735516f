// Package toolutil provides helpers shared by the caption tool surfaces
// (HTTP endpoint, MCP tools, CLI).
package toolutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_captions/internal/engine"
)

// NormLang normalises a language field: trims, lowercases and maps "all"/"any"/"auto"
// to "" (first listed track).
func NormLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "all", "any", "auto", "default":
		return ""
	}
	return lang
}

// CaptionsCacheKey is the cache key for one video's captions in one language.
func CaptionsCacheKey(videoID, lang string) string {
	return engine.CacheKey("captions", videoID, NormLang(lang))
}

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	cached, ok := engine.CacheGet(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	var out T
	if err := json.Unmarshal(cached, &out); err != nil {
		slog.Debug("cache: decode failed", slog.String("key", key), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, data)
}
