package audio

import (
	"fmt"

	"github.com/faiface/beep"
)

// ResampleQuality is the beep interpolation quality used when converting
// synthesized tracks to the stream rate.
const ResampleQuality = 4

// monoStreamer plays a mono float waveform on both channels.
type monoStreamer struct {
	samples []float32
	pos     int
}

func (m *monoStreamer) Stream(buf [][2]float64) (int, bool) {
	if m.pos >= len(m.samples) {
		return 0, false
	}
	n := 0
	for n < len(buf) && m.pos < len(m.samples) {
		v := float64(m.samples[m.pos])
		buf[n][0], buf[n][1] = v, v
		n++
		m.pos++
	}
	return n, true
}

func (m *monoStreamer) Err() error { return nil }

// ToStreamFormat converts a mono waveform at sourceRate into interleaved
// 48 kHz stereo int16 samples ready to be cut into frames.
func ToStreamFormat(samples []float32, sourceRate int) ([]int16, error) {
	if sourceRate <= 0 {
		return nil, fmt.Errorf("invalid source rate %d", sourceRate)
	}

	var s beep.Streamer = &monoStreamer{samples: samples}
	if sourceRate != SampleRate {
		s = beep.Resample(ResampleQuality, beep.SampleRate(sourceRate), beep.SampleRate(SampleRate), s)
	}

	expected := len(samples) * SampleRate / sourceRate
	out := make([]int16, 0, expected*Channels+FrameSamples)
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, Quantize(frame[0]), Quantize(frame[1]))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("resample %d Hz -> %d Hz: %w", sourceRate, SampleRate, err)
	}
	return out, nil
}
