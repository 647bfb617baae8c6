package audio

import "time"

// Stream format: every listener receives 48 kHz stereo 16-bit frames, the
// rate Opus expects. Synthesized tracks are resampled up to it.
const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// TrackInfo is a synthesized track queued for playback.
type TrackInfo struct {
	ID     string
	Style  string
	Prompt string
	Name   string // display name (LLM-generated or deterministic)

	Samples    []float32 // mono source waveform
	SourceRate int
	WAV        []byte // encoded source, served by the save endpoint
}

// Duration is the length of the source waveform.
func (t TrackInfo) Duration() time.Duration {
	if t.SourceRate <= 0 {
		return 0
	}
	return time.Duration(len(t.Samples)) * time.Second / time.Duration(t.SourceRate)
}
