package synth

import "strings"

// modifierRule scales frequency and amplitude when its keyword appears in a
// style modifier tag.
type modifierRule struct {
	keyword   string
	freqScale float64
	ampScale  float64
}

// First match wins.
var modifierRules = []modifierRule{
	{keyword: "jazz", freqScale: 1.1, ampScale: 1.2},
	{keyword: "electronic", freqScale: 0.9, ampScale: 0.8},
	{keyword: "classical", freqScale: 1.0, ampScale: 1.1},
}

// ApplyModifier adjusts the base frequency and amplitude factor for a style
// modifier tag. Only the tag's own content matters, not the resolved style.
// Unknown or empty tags leave both values unchanged.
func ApplyModifier(baseFreq, amplitude float64, tag string) (float64, float64) {
	lower := strings.ToLower(tag)
	if lower == "" {
		return baseFreq, amplitude
	}
	for _, r := range modifierRules {
		if strings.Contains(lower, r.keyword) {
			return baseFreq * r.freqScale, amplitude * r.ampScale
		}
	}
	return baseFreq, amplitude
}
