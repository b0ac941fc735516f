package sources

import (
	"encoding/json"
	"strings"
)

// CaptionTrack is one selectable subtitle stream.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
	Kind         string `json:"kind,omitempty"` // "asr" = auto-generated
	VssID        string `json:"vssId,omitempty"`
}

// trackSource is one known location of the caption track list.
type trackSource struct {
	name   string
	lookup func(cfg PlayerConfig) ([]any, bool)
}

// trackSources are probed in order; the first non-empty list wins.
var trackSources = []trackSource{
	{
		name: "captions.playerCaptionsTracklistRenderer.captionTracks",
		lookup: func(cfg PlayerConfig) ([]any, bool) {
			return digList(cfg, "captions", "playerCaptionsTracklistRenderer", "captionTracks")
		},
	},
	{
		name: "playerResponse.captions.playerCaptionsTracklistRenderer.captionTracks",
		lookup: func(cfg PlayerConfig) ([]any, bool) {
			return digList(cfg, "playerResponse", "captions", "playerCaptionsTracklistRenderer", "captionTracks")
		},
	},
	{
		name:   "args.player_response",
		lookup: legacyPlayerResponseTracks,
	},
	{
		name: "playerCaptionsTracklistRenderer.captionTracks",
		lookup: func(cfg PlayerConfig) ([]any, bool) {
			return digList(cfg, "playerCaptionsTracklistRenderer", "captionTracks")
		},
	},
}

// legacyPlayerResponseTracks handles the old ytplayer.config shape, where the
// player response is a JSON string under args.player_response.
func legacyPlayerResponseTracks(cfg PlayerConfig) ([]any, bool) {
	raw, ok := dig(cfg, "args", "player_response").(string)
	if !ok || raw == "" {
		return nil, false
	}
	var inner PlayerConfig
	if err := json.Unmarshal([]byte(raw), &inner); err != nil {
		return nil, false
	}
	return digList(inner, "captions", "playerCaptionsTracklistRenderer", "captionTracks")
}

// FindTracks returns every usable track from the first key path that yields any,
// along with that path's name.
func FindTracks(cfg PlayerConfig) ([]CaptionTrack, string) {
	for _, src := range trackSources {
		list, ok := src.lookup(cfg)
		if !ok {
			continue
		}
		tracks := decodeTracks(list)
		if len(tracks) > 0 {
			return tracks, src.name
		}
	}
	return nil, ""
}

// SelectTrack picks the caption track to fetch. With lang empty it takes the first
// track. Otherwise it prefers an exact language match, then a base-language match
// ("en" for "en-GB"), and falls back to the first track.
// Returns *NoTracksError when the player response lists none.
func SelectTrack(cfg PlayerConfig, lang string) (CaptionTrack, error) {
	tracks, _ := FindTracks(cfg)
	if len(tracks) == 0 {
		return CaptionTrack{}, &NoTracksError{Reason: UnavailableReason(cfg)}
	}
	return pickTrack(tracks, lang), nil
}

func pickTrack(tracks []CaptionTrack, lang string) CaptionTrack {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return tracks[0]
	}
	for _, t := range tracks {
		if strings.ToLower(t.LanguageCode) == lang {
			return t
		}
	}
	base := baseLanguage(lang)
	for _, t := range tracks {
		if baseLanguage(strings.ToLower(t.LanguageCode)) == base {
			return t
		}
	}
	return tracks[0]
}

func baseLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}

// UnavailableReason returns YouTube's explanation for missing captions or playback,
// or "" when the player response carries none.
func UnavailableReason(cfg PlayerConfig) string {
	if s, ok := dig(cfg, "playabilityStatus", "reason").(string); ok && s != "" {
		return s
	}
	if s := textOf(dig(cfg, "playabilityStatus", "errorScreen", "playerErrorMessageRenderer", "reason")); s != "" {
		return s
	}
	status, _ := dig(cfg, "playabilityStatus", "status").(string)
	if status != "" && status != "OK" {
		return status
	}
	return ""
}

func decodeTracks(list []any) []CaptionTrack {
	out := make([]CaptionTrack, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		baseURL, _ := m["baseUrl"].(string)
		if baseURL == "" {
			continue
		}
		t := CaptionTrack{BaseURL: baseURL, Name: textOf(m["name"])}
		t.LanguageCode, _ = m["languageCode"].(string)
		t.Kind, _ = m["kind"].(string)
		t.VssID, _ = m["vssId"].(string)
		out = append(out, t)
	}
	return out
}

// textOf reads YouTube's text containers: {"simpleText": ...} or {"runs": [{"text": ...}]}.
func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		if s, ok := x["simpleText"].(string); ok {
			return s
		}
		runs, _ := x["runs"].([]any)
		var sb strings.Builder
		for _, r := range runs {
			if rm, ok := r.(map[string]any); ok {
				if s, ok := rm["text"].(string); ok {
					sb.WriteString(s)
				}
			}
		}
		return sb.String()
	}
	return ""
}

func dig(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func digList(cfg PlayerConfig, path ...string) ([]any, bool) {
	list, ok := dig(cfg, path...).([]any)
	return list, ok
}
