package captions

// Update returns the index of the first caption in seq whose inclusive interval
// contains currentTime, or NoCaption. changed reports whether that index differs
// from prev. Overlapping cues resolve to the earliest one in sequence order.
func Update(seq Sequence, currentTime float64, prev int) (idx int, changed bool) {
	idx = ActiveIndex(seq, currentTime)
	return idx, idx != prev
}

// ActiveIndex is Update without the change flag.
func ActiveIndex(seq Sequence, currentTime float64) int {
	for i, c := range seq {
		if c.Contains(currentTime) {
			return i
		}
	}
	return NoCaption
}
