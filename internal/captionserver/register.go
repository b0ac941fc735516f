package captionserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_captions/internal/engine/captions"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

type CaptionsInput struct {
	URL      string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, embed, shorts, live) or 11-character video ID"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language code, e.g. en or de-DE (default: first listed track)"`
}

type CaptionsOutput struct {
	VideoID  string                `json:"video_id"`
	Track    *sources.CaptionTrack `json:"track,omitempty"`
	Captions captions.Sequence     `json:"captions"`
	Count    int                   `json:"count"`
	Reason   string                `json:"reason,omitempty"`
}

type ResolveInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL or bare video ID"`
}

type ResolveOutput struct {
	VideoID string `json:"video_id"`
	Found   bool   `json:"found"`
}

// RegisterTools registers the caption tools on the given MCP server:
// youtube_captions, resolve_video_id.
func RegisterTools(server *mcp.Server, f CaptionFetcher) {
	registerCaptions(server, f)
	registerResolve(server)
}

func registerCaptions(server *mcp.Server, f CaptionFetcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_captions",
		Description: "Fetch timed captions for a YouTube video. Returns the selected caption track and a list of cues with start/end times in seconds. Videos without captions return an empty list with a reason instead of an error.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input CaptionsInput) (*mcp.CallToolResult, CaptionsOutput, error) {
		if input.URL == "" {
			return nil, CaptionsOutput{}, fmt.Errorf("url is required")
		}
		return captionsTool(ctx, f, input)
	})
}

func captionsTool(ctx context.Context, f CaptionFetcher, input CaptionsInput) (*mcp.CallToolResult, CaptionsOutput, error) {
	res, err := fetchCaptions(ctx, f, input.URL, input.Language)
	if err != nil {
		sources.LogFetchError(input.URL, err)
		var nt *sources.NoTracksError
		if errors.As(err, &nt) {
			id, _ := sources.ResolveVideoID(input.URL)
			reason := nt.Reason
			if reason == "" {
				reason = sources.ErrNoCaptions.Error()
			}
			return nil, CaptionsOutput{VideoID: id, Captions: captions.Sequence{}, Reason: reason}, nil
		}
		return nil, CaptionsOutput{}, fmt.Errorf("youtube_captions: %w", err)
	}

	slog.Debug("youtube_captions done",
		slog.String("video_id", res.VideoID),
		slog.String("lang", res.Track.LanguageCode),
		slog.Int("count", len(res.Captions)))
	return nil, CaptionsOutput{
		VideoID:  res.VideoID,
		Track:    &res.Track,
		Captions: nonNil(res.Captions),
		Count:    len(res.Captions),
	}, nil
}

func registerResolve(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_video_id",
		Description: "Extract the 11-character YouTube video ID from a URL. Offline, no network access.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
		id, ok := sources.ResolveVideoID(input.URL)
		return nil, ResolveOutput{VideoID: id, Found: ok}, nil
	})
}
