// Package captionserver exposes the caption pipeline over HTTP and MCP.
package captionserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_captions/internal/engine/captions"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
	"github.com/anatolykoptev/go_captions/internal/toolutil"
)

// CaptionFetcher is the part of *sources.Fetcher the servers use.
type CaptionFetcher interface {
	FetchByID(ctx context.Context, videoID, lang string) (*sources.Result, error)
	Language() string
}

// cachedResult is the cache form of sources.Result; it keeps the raw VTT.
type cachedResult struct {
	VideoID  string               `json:"video_id"`
	Track    sources.CaptionTrack `json:"track"`
	VTT      string               `json:"vtt"`
	Captions captions.Sequence    `json:"captions"`
}

// fetchCaptions resolves input and fetches its captions through the engine cache.
// lang "" uses the fetcher's default language.
func fetchCaptions(ctx context.Context, f CaptionFetcher, input, lang string) (*sources.Result, error) {
	id, ok := sources.ResolveVideoID(input)
	if !ok {
		return nil, fmt.Errorf("%w: %q", sources.ErrInvalidInput, input)
	}
	if lang == "" {
		lang = f.Language()
	}
	lang = toolutil.NormLang(lang)

	key := toolutil.CaptionsCacheKey(id, lang)
	if c, ok := toolutil.CacheLoadJSON[cachedResult](ctx, key); ok {
		return &sources.Result{VideoID: c.VideoID, Track: c.Track, VTT: c.VTT, Captions: c.Captions}, nil
	}

	res, err := f.FetchByID(ctx, id, lang)
	if err != nil {
		return nil, err
	}
	toolutil.CacheStoreJSON(ctx, key, cachedResult{
		VideoID:  res.VideoID,
		Track:    res.Track,
		VTT:      res.VTT,
		Captions: res.Captions,
	})
	return res, nil
}
