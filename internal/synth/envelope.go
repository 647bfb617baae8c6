package synth

import "math"

const (
	envelopeDecay = 0.5
	// FadeDuration is the length of the global linear fade at each end.
	FadeDuration = 0.1
	// TargetPeak is the absolute peak of every non-silent track.
	TargetPeak = 0.8
)

// MeasureEnvelope is the decay-with-swell shape applied to each measure. It
// is zero at the start and end of every one-second measure so independently
// rendered measures join without clicks.
func MeasureEnvelope(t float64) float64 {
	return math.Exp(-t*envelopeDecay) * math.Sin(math.Pi*t)
}

// ramp returns the i-th point of an n-point linear ramp from 0 to 1,
// endpoints included.
func ramp(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// ApplyFades multiplies the first and last fadeLen samples by linear ramps
// 0→1 and 1→0. Buffers shorter than fadeLen are faded over their full length.
func ApplyFades(buf []float64, fadeLen int) {
	n := min(fadeLen, len(buf))
	for i := 0; i < n; i++ {
		buf[i] *= ramp(i, n)
	}
	tail := buf[len(buf)-n:]
	for i := range tail {
		tail[i] *= 1 - ramp(i, n)
	}
}

// Peak returns the largest absolute sample value.
func Peak(buf []float64) float64 {
	var peak float64
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales buf so its absolute peak equals target. A silent buffer is
// left untouched and reported with false.
func Normalize(buf []float64, target float64) bool {
	peak := Peak(buf)
	if peak == 0 {
		return false
	}
	for i := range buf {
		buf[i] = buf[i] / peak * target
	}
	return true
}
