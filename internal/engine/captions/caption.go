// Package captions holds the caption model, the WebVTT subset parser and the
// playback synchronizer. It has no dependency on the fetch side of the engine.
package captions

// Caption is one timed cue. Start and End are seconds from the start of the video.
type Caption struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Sequence is an ordered list of captions as emitted by the source.
// It is treated as immutable once parsed; callers replace it, never edit it.
type Sequence []Caption

// NoCaption is the active index when no cue contains the playback time.
const NoCaption = -1

// Contains reports whether t falls inside the inclusive [Start, End] interval.
func (c Caption) Contains(t float64) bool {
	return t >= c.Start && t <= c.End
}

// Duration returns End - Start.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}
