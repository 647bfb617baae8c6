// Package generation runs synthesis requests for the HTTP API, the render
// worker and the radio, bounding how many render at once.
package generation

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/satindergrewal/harmonix/internal/catalog"
	"github.com/satindergrewal/harmonix/internal/synth"
)

const (
	DefaultDuration    = 10.0
	DefaultTemperature = 1.0
	ModelType          = "advanced_simulation"
)

// Request is one generation call as received from a transport.
type Request struct {
	Prompt        string
	Duration      float64
	Temperature   float64
	StyleModifier string
	Seed          *uint64 // nil draws a fresh seed
}

// Result is an encoded track plus the metadata reported back to callers.
type Result struct {
	*synth.Encoded
	Note    string
	Elapsed time.Duration
}

// ModelType names the renderer in responses.
func (r *Result) ModelType() string { return ModelType }

// Service renders tracks with a fixed concurrency budget.
type Service struct {
	sem         *semaphore.Weighted
	catalog     *catalog.Catalog
	maxDuration float64
	inFlight    atomic.Int64
}

// NewService creates a service allowing workers concurrent renders and
// rejecting durations above maxDuration seconds (0 disables the limit).
func NewService(cat *catalog.Catalog, workers int, maxDuration float64) *Service {
	if workers < 1 {
		workers = 1
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Service{
		sem:         semaphore.NewWeighted(int64(workers)),
		catalog:     cat,
		maxDuration: maxDuration,
	}
}

// Catalog returns the modifier catalog the service reports against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// MaxDuration returns the longest accepted duration in seconds.
func (s *Service) MaxDuration() float64 { return s.maxDuration }

// InFlight returns the number of renders currently running or waiting.
func (s *Service) InFlight() int64 { return s.inFlight.Load() }

// Generate waits for a render slot and synthesizes the request. The wait
// honors ctx; a render already started runs to completion.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if s.maxDuration > 0 && req.Duration > s.maxDuration {
		return nil, &synth.Error{
			Kind:    synth.KindInvalidParameter,
			Message: fmt.Sprintf("duration %v exceeds the %v second limit", req.Duration, s.maxDuration),
		}
	}

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for render slot: %w", err)
	}
	defer s.sem.Release(1)

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	enc, err := synth.Render(synth.Params{
		Prompt:        req.Prompt,
		Duration:      req.Duration,
		Temperature:   req.Temperature,
		StyleModifier: req.StyleModifier,
		Seed:          seed,
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if req.StyleModifier != "" {
		s.catalog.MarkLoaded(req.StyleModifier)
	}

	modifier := req.StyleModifier
	if modifier == "" {
		modifier = "None"
	}
	note := fmt.Sprintf("Generated %s track using advanced simulation (modifier: %s)", enc.Style, modifier)
	if enc.Silent {
		note += ", output is silent"
	}

	log.Printf("Rendered %.1fs %s track in %s (seed %d)", req.Duration, enc.Style, elapsed.Round(time.Millisecond), seed)
	return &Result{Encoded: enc, Note: note, Elapsed: elapsed}, nil
}
