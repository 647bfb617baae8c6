package synth

import (
	"encoding/base64"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/satindergrewal/harmonix/internal/audio"
)

// SampleRate is the engine's fixed output rate. One measure is one second.
const SampleRate = 32000

// Params describes one synthesis call.
type Params struct {
	Prompt        string
	Duration      float64 // seconds
	Temperature   float64
	StyleModifier string

	// Seed feeds the noise generator when Rand is nil. Only temperatures
	// above 1.0 draw noise.
	Seed uint64
	Rand *rand.Rand
}

// Track is a rendered waveform plus the decisions that produced it.
type Track struct {
	Samples         []float32
	SampleRate      int
	Duration        float64
	Prompt          string
	Style           Style
	BaseFrequency   float64 // after the style modifier
	Amplitude       float64
	StyleModifier   string
	ModifierApplied bool
	Temperature     float64
	Seed            uint64
	Silent          bool // nothing to normalize; output is pure silence
}

// Encoded is a track framed as a WAV container.
type Encoded struct {
	*Track
	WAV []byte
}

// NewRand returns the seeded generator used for noise.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Validate rejects parameters the engine cannot render.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return invalidParam("prompt must not be empty")
	}
	if math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) || p.Duration <= 0 {
		return invalidParam("duration must be a positive number of seconds, got %v", p.Duration)
	}
	if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) {
		return invalidParam("temperature must be finite, got %v", p.Temperature)
	}
	if p.Temperature < 0 {
		return invalidParam("temperature must not be negative, got %v", p.Temperature)
	}
	return nil
}

// Synthesize renders a full track. Every whole second is one measure of the
// style's progression; a fractional tail renders as a partial measure.
func Synthesize(p Params) (*Track, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	style, baseFreq := Classify(p.Prompt)
	freq, amp := ApplyModifier(baseFreq, 1.0, p.StyleModifier)

	rng := p.Rand
	if rng == nil {
		rng = NewRand(p.Seed)
	}

	n := int(math.Round(p.Duration * SampleRate))
	buf := make([]float64, n)

	for m := 0; m*SampleRate < n; m++ {
		start := m * SampleRate
		end := min(start+SampleRate, n)

		times := make([]float64, end-start)
		for i := range times {
			times[i] = float64(start+i) / SampleRate
		}

		seg := RenderMeasure(ChordFor(style, freq, m), times, style, amp, p.Temperature, rng)
		for i, v := range seg {
			buf[start+i] = v * MeasureEnvelope(float64(i)/SampleRate)
		}
	}

	ApplyFades(buf, int(FadeDuration*SampleRate))
	silent := !Normalize(buf, TargetPeak)

	samples := make([]float32, n)
	for i, v := range buf {
		samples[i] = float32(v)
	}

	return &Track{
		Samples:         samples,
		SampleRate:      SampleRate,
		Duration:        p.Duration,
		Prompt:          p.Prompt,
		Style:           style,
		BaseFrequency:   freq,
		Amplitude:       amp,
		StyleModifier:   p.StyleModifier,
		ModifierApplied: p.StyleModifier != "",
		Temperature:     p.Temperature,
		Seed:            p.Seed,
		Silent:          silent,
	}, nil
}

// Encode frames a track as 16-bit mono WAV.
func Encode(t *Track) (*Encoded, error) {
	wav, err := audio.EncodeWAV(t.Samples, t.SampleRate)
	if err != nil {
		return nil, &Error{Kind: KindEncodingFailure, Message: "frame pcm container", Err: err}
	}
	return &Encoded{Track: t, WAV: wav}, nil
}

// Base64 is the text form of the WAV container used by JSON transports.
func (e *Encoded) Base64() string {
	return base64.StdEncoding.EncodeToString(e.WAV)
}

// Render validates, synthesizes and encodes in one step.
func Render(p Params) (*Encoded, error) {
	t, err := Synthesize(p)
	if err != nil {
		return nil, err
	}
	return Encode(t)
}
