package sources

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeConfig(t *testing.T, raw string) PlayerConfig {
	t.Helper()
	var cfg PlayerConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	return cfg
}

func TestFindTracksKeyPathOrder(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantURL  string
		wantPath string
	}{
		{
			name: "primary path",
			raw: `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
				{"baseUrl":"https://x/p1","languageCode":"en"}]}},
				"playerResponse":{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
				{"baseUrl":"https://x/p2","languageCode":"en"}]}}}}`,
			wantURL:  "https://x/p1",
			wantPath: "captions.playerCaptionsTracklistRenderer.captionTracks",
		},
		{
			name: "primary empty falls through to nested player response",
			raw: `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[]}},
				"playerResponse":{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
				{"baseUrl":"https://x/p2a","languageCode":"en"},
				{"baseUrl":"https://x/p2b","languageCode":"de"}]}}}}`,
			wantURL:  "https://x/p2a",
			wantPath: "playerResponse.captions.playerCaptionsTracklistRenderer.captionTracks",
		},
		{
			name:     "legacy args.player_response string",
			raw:      `{"args":{"player_response":"{\"captions\":{\"playerCaptionsTracklistRenderer\":{\"captionTracks\":[{\"baseUrl\":\"https://x/p3\",\"languageCode\":\"en\"}]}}}"}}`,
			wantURL:  "https://x/p3",
			wantPath: "args.player_response",
		},
		{
			name:     "bare renderer",
			raw:      `{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://x/p4","languageCode":"en"}]}}`,
			wantURL:  "https://x/p4",
			wantPath: "playerCaptionsTracklistRenderer.captionTracks",
		},
		{
			name: "entries without baseUrl are ignored",
			raw: `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"languageCode":"en"}]}},
				"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://x/p4","languageCode":"en"}]}}`,
			wantURL:  "https://x/p4",
			wantPath: "playerCaptionsTracklistRenderer.captionTracks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, path := FindTracks(decodeConfig(t, tt.raw))
			require.NotEmpty(t, tracks)
			assert.Equal(t, tt.wantURL, tracks[0].BaseURL)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestSelectTrackDefaultsToFirst(t *testing.T) {
	cfg := decodeConfig(t, `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[]}},
		"playerResponse":{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
		{"baseUrl":"https://x/a","languageCode":"en","name":{"simpleText":"English"},"vssId":".en"},
		{"baseUrl":"https://x/b","languageCode":"de","name":{"runs":[{"text":"German"},{"text":" (auto)"}]},"kind":"asr"}]}}}}`)

	track, err := SelectTrack(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, CaptionTrack{
		BaseURL:      "https://x/a",
		LanguageCode: "en",
		Name:         "English",
		VssID:        ".en",
	}, track)

	tracks, _ := FindTracks(cfg)
	require.Len(t, tracks, 2)
	assert.Equal(t, "German (auto)", tracks[1].Name)
	assert.Equal(t, "asr", tracks[1].Kind)
}

func TestSelectTrackLanguage(t *testing.T) {
	cfg := decodeConfig(t, `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
		{"baseUrl":"https://x/en","languageCode":"en"},
		{"baseUrl":"https://x/de","languageCode":"de-DE"},
		{"baseUrl":"https://x/fr","languageCode":"fr"},
		{"baseUrl":"https://x/pt","languageCode":"pt_BR"}]}}}`)

	tests := []struct {
		lang    string
		wantURL string
	}{
		{"", "https://x/en"},
		{"fr", "https://x/fr"},
		{"FR", "https://x/fr"},
		{"de-DE", "https://x/de"},
		{"de", "https://x/de"},
		{"en-US", "https://x/en"},
		{"pt-BR", "https://x/pt"},
		{"es", "https://x/en"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			track, err := SelectTrack(cfg, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, track.BaseURL)
		})
	}
}

func TestSelectTrackNoCaptions(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantReason string
	}{
		{"nothing at all", `{}`, ""},
		{"empty primary list", `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}}`, ""},
		{"playable without captions", `{"playabilityStatus":{"status":"OK"}}`, ""},
		{"reason string", `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`, "Video unavailable"},
		{
			"error screen runs",
			`{"playabilityStatus":{"status":"LOGIN_REQUIRED","errorScreen":{"playerErrorMessageRenderer":{"reason":{"runs":[{"text":"Sign in "},{"text":"to confirm your age"}]}}}}}`,
			"Sign in to confirm your age",
		},
		{
			"error screen simple text",
			`{"playabilityStatus":{"status":"UNPLAYABLE","errorScreen":{"playerErrorMessageRenderer":{"reason":{"simpleText":"Private video"}}}}}`,
			"Private video",
		},
		{"status only", `{"playabilityStatus":{"status":"LOGIN_REQUIRED"}}`, "LOGIN_REQUIRED"},
		{"legacy string not json", `{"args":{"player_response":"garbage"}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectTrack(decodeConfig(t, tt.raw), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoCaptions))

			var nt *NoTracksError
			require.True(t, errors.As(err, &nt))
			assert.Equal(t, tt.wantReason, nt.Reason)
		})
	}
}

func TestNoTracksErrorMessage(t *testing.T) {
	assert.Equal(t, "no captions available", (&NoTracksError{}).Error())
	assert.Equal(t, "no captions available: Private video", (&NoTracksError{Reason: "Private video"}).Error())
}
