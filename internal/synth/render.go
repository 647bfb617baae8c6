package synth

import (
	"math"
	"math/rand/v2"
)

const (
	noteGain       = 0.3
	saturationGain = 0.4
	noiseScale     = 0.1
)

// NoiseSigma returns the per-sample noise standard deviation for a
// temperature. Temperatures at or below 1.0 inject no noise.
func NoiseSigma(temperature float64) float64 {
	if temperature <= 1.0 {
		return 0
	}
	return (temperature - 1.0) * noiseScale
}

// RenderMeasure sums every note of a chord over the given time axis
// (seconds), adding the style's partials or saturation and, above
// temperature 1.0, gaussian noise drawn from rng.
func RenderMeasure(chord Chord, times []float64, s Style, amplitude, temperature float64, rng *rand.Rand) []float64 {
	spec := s.spec()
	sigma := NoiseSigma(temperature)
	out := make([]float64, len(times))

	for _, f := range chord {
		w := 2 * math.Pi * f
		for i, t := range times {
			v := math.Sin(w*t) * noteGain * amplitude
			for _, p := range spec.partials {
				v += math.Sin(w*p.harmonic*t) * p.gain
			}
			if spec.saturate {
				v = math.Tanh(v*2) * saturationGain
			}
			if sigma > 0 {
				v += rng.NormFloat64() * sigma
			}
			out[i] += v
		}
	}
	return out
}
