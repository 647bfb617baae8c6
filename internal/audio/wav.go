package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	wavHeaderSize = 44
	pcmFormat     = 1
	maxRIFFData   = math.MaxUint32 - (wavHeaderSize - 8)
)

var (
	ErrNonFiniteSample = errors.New("non-finite sample")
	ErrTooLarge        = errors.New("pcm payload exceeds wav size limit")
)

// Quantize converts a float sample in [-1, 1] to int16 by rounding
// s*32767. Out-of-range input saturates.
func Quantize(s float64) int16 {
	return clampInt16(math.Round(s * math.MaxInt16))
}

func clampInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// putHeader writes a canonical 44-byte PCM header. dataLen is the payload
// size in bytes, or 0xFFFFFFFF for streams of unknown length.
func putHeader(hdr []byte, sampleRate, channels int, dataLen uint32) {
	blockAlign := channels * BitDepth / 8
	riffLen := dataLen
	if dataLen != math.MaxUint32 {
		riffLen = dataLen + wavHeaderSize - 8
	}

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], riffLen)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*blockAlign)) // byte rate
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], BitDepth)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataLen)
}

// EncodeWAV frames mono float samples as a 16-bit PCM WAV file.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	dataLen := uint64(len(samples)) * 2
	if dataLen > maxRIFFData {
		return nil, fmt.Errorf("%d samples: %w", len(samples), ErrTooLarge)
	}

	buf := make([]byte, wavHeaderSize+int(dataLen))
	putHeader(buf, sampleRate, 1, uint32(dataLen))

	for i, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("sample %d: %w", i, ErrNonFiniteSample)
		}
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(Quantize(f)))
	}
	return buf, nil
}

// WriteStreamingHeader writes a WAV header for the stream format with both
// size fields set to the unknown-length marker.
func WriteStreamingHeader(w io.Writer) error {
	var hdr [wavHeaderSize]byte
	putHeader(hdr[:], SampleRate, Channels, math.MaxUint32)
	_, err := w.Write(hdr[:])
	return err
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// PCM returns the 16-bit payload of a WAV produced by EncodeWAV.
func PCM(wav []byte) ([]int16, error) {
	if len(wav) < wavHeaderSize || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a wav container")
	}
	dataLen := int(binary.LittleEndian.Uint32(wav[40:44]))
	if dataLen > len(wav)-wavHeaderSize {
		return nil, fmt.Errorf("data chunk claims %d bytes, have %d", dataLen, len(wav)-wavHeaderSize)
	}
	out := make([]int16, dataLen/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(wav[wavHeaderSize+i*2:]))
	}
	return out, nil
}
