// Package sources fetches timed captions from YouTube watch pages.
//
// The pipeline is split across files by stage:
//
//	youtube_videoid.go  : URL → 11-character video ID (offline)
//	youtube_player.go   : watch page HTML → ytInitialPlayerResponse
//	youtube_tracks.go   : player response → caption track list and selection
//	youtube_captions.go : Fetcher: HTTP, retries, pacing, browser fallback, WebVTT parse
//	errors.go           : failure classes for errors.Is / errors.As
package sources
