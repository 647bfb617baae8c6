package autodj

import (
	"slices"

	"github.com/satindergrewal/harmonix/internal/synth"
)

// Node is a style in the mood graph.
type Node struct {
	Style    synth.Style
	Adjacent []synth.Style
}

// MoodGraph links each style to the styles the auto-DJ may drift into.
// Edges are symmetric and the graph is connected; transitions only follow
// edges.
var MoodGraph = map[synth.Style]*Node{
	synth.Ambient: {
		Style:    synth.Ambient,
		Adjacent: []synth.Style{synth.Classical, synth.Electronic, synth.Jazz},
	},
	synth.Classical: {
		Style:    synth.Classical,
		Adjacent: []synth.Style{synth.Ambient, synth.Jazz, synth.General},
	},
	synth.Jazz: {
		Style:    synth.Jazz,
		Adjacent: []synth.Style{synth.Ambient, synth.Classical, synth.Rock},
	},
	synth.Rock: {
		Style:    synth.Rock,
		Adjacent: []synth.Style{synth.Jazz, synth.Electronic, synth.General},
	},
	synth.Electronic: {
		Style:    synth.Electronic,
		Adjacent: []synth.Style{synth.Ambient, synth.Rock},
	},
	synth.General: {
		Style:    synth.General,
		Adjacent: []synth.Style{synth.Classical, synth.Rock},
	},
}

// StyleNames returns every style in the mood graph, in a stable order.
func StyleNames() []string {
	names := make([]string, 0, len(MoodGraph))
	for _, s := range synth.Styles() {
		if _, ok := MoodGraph[s]; ok {
			names = append(names, s.String())
		}
	}
	return names
}

// ParseStyle resolves a style name that the auto-DJ can play.
func ParseStyle(name string) (synth.Style, bool) {
	s, ok := synth.ParseStyle(name)
	if !ok {
		return synth.General, false
	}
	_, ok = MoodGraph[s]
	return s, ok
}

// IsValidStyle checks if a style exists in the mood graph.
func IsValidStyle(name string) bool {
	_, ok := ParseStyle(name)
	return ok
}

// Neighbors returns the styles reachable from s in one step.
func Neighbors(s synth.Style) []synth.Style {
	n, ok := MoodGraph[s]
	if !ok {
		return nil
	}
	return slices.Clone(n.Adjacent)
}
