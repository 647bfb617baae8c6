package audio

// Smoothstep returns 3t^2 - 2t^3 clamped to [0,1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// CrossfadeFrames mixes an outgoing and an incoming frame along a smoothstep
// curve (progress 0 = all outgoing, 1 = all incoming). The result is as long
// as the shorter input.
func CrossfadeFrames(outgoing, incoming []int16, progress float64) []int16 {
	gain := Smoothstep(progress)
	n := min(len(outgoing), len(incoming))
	mixed := make([]int16, n)
	for i := range mixed {
		mixed[i] = clampInt16(float64(outgoing[i])*(1-gain) + float64(incoming[i])*gain)
	}
	return mixed
}
