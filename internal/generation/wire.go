package generation

import (
	"context"
	"errors"

	"github.com/satindergrewal/harmonix/internal/synth"
)

// GenerateRequest is the JSON body accepted by the HTTP API and the render
// worker. Absent duration and temperature take the service defaults.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	Duration    *float64 `json:"duration,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        *int     `json:"top_k,omitempty"` // accepted, unused by the renderer
	TopP        *float64 `json:"top_p,omitempty"` // accepted, unused by the renderer
	LoraModel   string   `json:"lora_model,omitempty"`
	Seed        *uint64  `json:"seed,omitempty"`
}

// Request converts the wire form, applying defaults.
func (g GenerateRequest) Request() Request {
	req := Request{
		Prompt:        g.Prompt,
		Duration:      DefaultDuration,
		Temperature:   DefaultTemperature,
		StyleModifier: g.LoraModel,
		Seed:          g.Seed,
	}
	if g.Duration != nil {
		req.Duration = *g.Duration
	}
	if g.Temperature != nil {
		req.Temperature = *g.Temperature
	}
	return req
}

// GenerateResponse is the JSON envelope for a rendered track.
type GenerateResponse struct {
	AudioData     string  `json:"audio_data"`
	SampleRate    int     `json:"sample_rate"`
	Duration      float64 `json:"duration"`
	Prompt        string  `json:"prompt"`
	Style         string  `json:"style"`
	BaseFrequency float64 `json:"base_frequency"`
	Seed          uint64  `json:"seed"`
	Note          string  `json:"note"`
	ModelType     string  `json:"model_type"`
	LoraApplied   bool    `json:"lora_applied"`
	Silent        bool    `json:"silent"`
	ElapsedMS     int64   `json:"elapsed_ms"`
}

// NewResponse builds the JSON envelope for a result.
func NewResponse(r *Result) GenerateResponse {
	return GenerateResponse{
		AudioData:     r.Base64(),
		SampleRate:    r.SampleRate,
		Duration:      r.Duration,
		Prompt:        r.Prompt,
		Style:         r.Style.String(),
		BaseFrequency: r.BaseFrequency,
		Seed:          r.Seed,
		Note:          r.Note,
		ModelType:     r.ModelType(),
		LoraApplied:   r.ModifierApplied,
		Silent:        r.Silent,
		ElapsedMS:     r.Elapsed.Milliseconds(),
	}
}

// Error kinds reported outside the engine's own.
const (
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// ErrorResponse is the JSON body for a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorKind classifies a Generate error for transports.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, synth.ErrInvalidParameter):
		return string(synth.KindInvalidParameter)
	case errors.Is(err, synth.ErrEncodingFailure):
		return string(synth.KindEncodingFailure)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindUnavailable
	}
	return KindInternal
}

// NewErrorResponse builds the JSON body for an error.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorKind(err), Message: err.Error()}
}
