package synth

// Chord is the set of frequencies sounded together for one measure.
type Chord []float64

// ProgressionLength returns how many measures a style's progression spans
// before it repeats.
func ProgressionLength(s Style) int {
	return len(s.spec().progression)
}

// ChordFor returns the chord for a measure, cycling through the style's
// progression table.
func ChordFor(s Style, baseFreq float64, measure int) Chord {
	table := s.spec().progression
	idx := measure % len(table)
	if idx < 0 {
		idx += len(table)
	}
	ratios := table[idx]

	chord := make(Chord, len(ratios))
	for i, r := range ratios {
		chord[i] = baseFreq * r
	}
	return chord
}
