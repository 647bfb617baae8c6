package synth

import "strings"

// Style is a musical genre category that drives frequency and harmonic choices.
type Style int

const (
	General Style = iota
	Electronic
	Classical
	Rock
	Jazz
	Ambient
)

// partial is one overtone added on top of a note's fundamental.
type partial struct {
	harmonic float64
	gain     float64
}

// styleSpec bundles everything a style decides about a track.
type styleSpec struct {
	name        string
	keywords    []string
	baseFreq    float64
	partials    []partial
	saturate    bool
	progression [][]float64 // frequency ratios against the base frequency
}

// triads is the generic progression shared by rock, ambient and general.
var triads = [][]float64{
	{1, 5.0 / 4, 3.0 / 2},
	{9.0 / 8, 45.0 / 32, 27.0 / 16},
	{5.0 / 4, 25.0 / 16, 15.0 / 8},
	{4.0 / 3, 5.0 / 3, 2},
}

func harmonicSeries(scale float64, harmonics ...float64) []partial {
	out := make([]partial, len(harmonics))
	for i, h := range harmonics {
		out[i] = partial{harmonic: h, gain: scale / h}
	}
	return out
}

var styles = map[Style]styleSpec{
	Electronic: {
		name:     "electronic",
		keywords: []string{"electronic", "edm", "techno"},
		baseFreq: 130.81, // C3
		partials: harmonicSeries(0.1, 2, 3, 5),
		// bass + lead an octave apart
		progression: [][]float64{
			{1, 2},
			{9.0 / 8, 9.0 / 4},
			{5.0 / 4, 5.0 / 2},
			{4.0 / 3, 8.0 / 3},
		},
	},
	Classical: {
		name:     "classical",
		keywords: []string{"classical", "piano", "orchestra"},
		baseFreq: 261.63, // C4
		partials: harmonicSeries(0.15, 2, 3, 4, 5),
		// I-V-vi-IV
		progression: [][]float64{
			{1, 5.0 / 4, 3.0 / 2},
			{3.0 / 2, 15.0 / 8, 9.0 / 4},
			{6.0 / 5, 3.0 / 2, 9.0 / 5},
			{4.0 / 3, 5.0 / 3, 2},
		},
	},
	Rock: {
		name:        "rock",
		keywords:    []string{"rock", "guitar"},
		baseFreq:    82.41, // E2
		saturate:    true,
		progression: triads,
	},
	Jazz: {
		name:     "jazz",
		keywords: []string{"jazz"},
		baseFreq: 220.00, // A3
		// ii-V-I-vi
		progression: [][]float64{
			{9.0 / 8, 5.0 / 4, 3.0 / 2},
			{5.0 / 4, 3.0 / 2, 15.0 / 8},
			{1, 5.0 / 4, 3.0 / 2},
			{6.0 / 5, 3.0 / 2, 9.0 / 5},
		},
	},
	Ambient: {
		name:        "ambient",
		keywords:    []string{"ambient", "peaceful", "calm"},
		baseFreq:    174.61, // F3
		progression: triads,
	},
	General: {
		name:        "general",
		baseFreq:    261.63, // C4
		progression: triads,
	},
}

// classifyOrder is the keyword scan priority. A prompt mentioning both
// "rock" and "jazz" is rock.
var classifyOrder = []Style{Electronic, Classical, Rock, Jazz, Ambient}

// Styles lists every style, General last.
func Styles() []Style {
	return append(append([]Style{}, classifyOrder...), General)
}

func (s Style) spec() styleSpec {
	if spec, ok := styles[s]; ok {
		return spec
	}
	return styles[General]
}

// String returns the lower-case style name.
func (s Style) String() string {
	return s.spec().name
}

// BaseFrequency returns the style's root frequency in Hz.
func (s Style) BaseFrequency() float64 {
	return s.spec().baseFreq
}

// ParseStyle maps a style name back to its Style.
func ParseStyle(name string) (Style, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Styles() {
		if s.String() == name {
			return s, true
		}
	}
	return General, false
}

// Classify picks a style from a free-text prompt by first keyword match in
// priority order, falling back to General at middle C.
func Classify(prompt string) (Style, float64) {
	lower := strings.ToLower(prompt)
	for _, s := range classifyOrder {
		for _, kw := range styles[s].keywords {
			if strings.Contains(lower, kw) {
				return s, styles[s].baseFreq
			}
		}
	}
	return General, styles[General].baseFreq
}
