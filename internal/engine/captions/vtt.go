package captions

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const timingArrow = "-->"

// cueTimingRE matches "MM:SS.mmm --> MM:SS.mmm" anywhere in a timing line.
// Cue settings after the second timestamp are ignored.
var cueTimingRE = regexp.MustCompile(`(\d+):(\d+)\.(\d+)\s+-->\s+(\d+):(\d+)\.(\d+)`)

// Parse converts WebVTT text into a caption sequence. It never fails: empty or
// malformed input yields an empty sequence.
//
// Only the minutes:seconds.millis shape is accepted. Known limitations:
//   - the fractional field is always divided by 1000, so a source emitting a
//     different number of fractional digits is mis-scaled;
//   - hour-prefixed timestamps (HH:MM:SS.mmm) do not match and their cues are skipped.
func Parse(text string) Sequence {
	if text == "" {
		return Sequence{}
	}
	lines := strings.Split(text, "\n")
	out := Sequence{}

	i := 0
	// Skip the header block.
	for i < len(lines) && !strings.Contains(lines[i], timingArrow) {
		i++
	}

	for i < len(lines) {
		line := lines[i]
		if !strings.Contains(line, timingArrow) {
			i++
			continue
		}
		start, end, ok := parseTiming(line)
		if !ok {
			i++
			continue
		}
		i++

		var parts []string
		for i < len(lines) {
			t := strings.TrimSpace(lines[i])
			if t == "" {
				break
			}
			parts = append(parts, t)
			i++
		}
		if len(parts) > 0 {
			out = append(out, Caption{Start: start, End: end, Text: strings.Join(parts, " ")})
		}
		i++
	}
	return out
}

func parseTiming(line string) (start, end float64, ok bool) {
	m := cueTimingRE.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	var n [6]int
	for k := range n {
		v, err := strconv.Atoi(m[k+1])
		if err != nil {
			return 0, 0, false
		}
		n[k] = v
	}
	start = float64(n[0]*60+n[1]) + float64(n[2])/1000
	end = float64(n[3]*60+n[4]) + float64(n[5])/1000
	return start, end, true
}

// Format renders seq back into the interchange shape Parse accepts.
func Format(seq Sequence) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, c := range seq {
		fmt.Fprintf(&sb, "%s --> %s\n%s\n\n", FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text)
	}
	return sb.String()
}

// FormatTimestamp renders seconds as MM:SS.mmm. Minutes are not wrapped into hours.
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// FormatClock renders seconds as M:SS for compact display.
func FormatClock(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	s := int64(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
