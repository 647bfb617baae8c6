package autodj

import (
	"github.com/satindergrewal/harmonix/internal/synth"
)

// prompts maps each style to a synthesis prompt that classifies back to it.
var prompts = map[synth.Style]string{
	synth.Ambient:    "Slow ambient soundscape, soft evolving pads, calm and meditative",
	synth.Classical:  "Delicate classical piano with flowing chords, contemplative adagio",
	synth.Jazz:       "Late night jazz trio, walking bass under warm chords",
	synth.Rock:       "Driving rock anthem with distorted guitar riffs",
	synth.Electronic: "Pulsing electronic groove with bright synth arpeggios",
	synth.General:    "Gentle melodic tune with warm sustained chords",
}

// GetPrompt returns the static synthesis prompt for a style.
func GetPrompt(s synth.Style) string {
	if p, ok := prompts[s]; ok {
		return p
	}
	return prompts[synth.General]
}

// styleAdjectives gives each style a pool of evocative descriptors for track names.
var styleAdjectives = map[synth.Style][]string{
	synth.Ambient:    {"floating", "weightless", "still", "glacial", "infinite"},
	synth.Classical:  {"delicate", "flowing", "stately", "luminous", "grand"},
	synth.Jazz:       {"smoky", "midnight", "velvet", "golden", "swinging"},
	synth.Rock:       {"thunderous", "blazing", "driven", "roaring", "massive"},
	synth.Electronic: {"radiant", "surging", "prismatic", "kinetic", "orbital"},
	synth.General:    {"open", "quiet", "simple", "warm", "wandering"},
}

// TrackName generates a human-readable name from style and track ID.
// The first 8 characters of the ID pick a deterministic adjective.
func TrackName(style, trackID string) string {
	if style == "" || trackID == "" {
		return ""
	}

	s, ok := synth.ParseStyle(style)
	if !ok {
		return style + " session"
	}
	adjs := styleAdjectives[s]

	var h int
	for i := 0; i < len(trackID) && i < 8; i++ {
		h = h*31 + int(trackID[i])
	}
	if h < 0 {
		h = -h
	}

	return adjs[h%len(adjs)] + " " + s.String()
}
