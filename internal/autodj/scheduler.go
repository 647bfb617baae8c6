package autodj

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satindergrewal/harmonix/internal/audio"
	"github.com/satindergrewal/harmonix/internal/generation"
	"github.com/satindergrewal/harmonix/internal/synth"
)

// Generator renders one track.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Queue accepts rendered tracks for playback.
type Queue interface {
	Enqueue(ctx context.Context, t audio.TrackInfo) error
	QueueSize() int
	Skip()
}

// SchedulerConfig holds auto-DJ parameters.
type SchedulerConfig struct {
	StartingStyle string
	TrackDuration int // seconds
	BufferAhead   int // tracks to pre-render
	DwellMin      int // min seconds per style
	DwellMax      int // max seconds per style
	Temperature   float64
	StyleModifier string
}

// SchedulerStatus is the current state of the auto-DJ.
type SchedulerStatus struct {
	CurrentStyle   string  `json:"style"`
	AutoDJ         bool    `json:"auto_dj"`
	Idle           bool    `json:"idle"`
	DwellRemaining float64 `json:"dwell_remaining"` // seconds
	QueueSize      int     `json:"queue_size"`
}

// PromptFunc generates a synthesis prompt for a style. Returns empty string on failure.
type PromptFunc func(ctx context.Context, style string) string

// NameFunc generates a track name from style, trackID, and prompt.
// Returns empty string on failure.
type NameFunc func(ctx context.Context, style, trackID, prompt string) string

// Scheduler manages style transitions and track generation.
type Scheduler struct {
	gen   Generator
	queue Queue
	cfg   SchedulerConfig

	promptFn   PromptFunc // optional LLM prompt generator
	nameFn     NameFunc   // optional LLM track name generator
	listenerFn func() int // optional; zero listeners pauses generation

	retryDelay time.Duration
	pollDelay  time.Duration

	mu           sync.RWMutex
	currentStyle synth.Style
	autoDJ       bool
	idle         bool
	dwellEnd     time.Time
	lastPrompt   string

	styleOverrideCh chan synth.Style
}

// NewScheduler creates an auto-DJ scheduler. An unknown starting style
// falls back to ambient.
func NewScheduler(gen Generator, queue Queue, cfg SchedulerConfig) *Scheduler {
	start, ok := ParseStyle(cfg.StartingStyle)
	if !ok {
		start = synth.Ambient
	}
	if cfg.BufferAhead < 1 {
		cfg.BufferAhead = 1
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = generation.DefaultTemperature
	}
	return &Scheduler{
		gen:             gen,
		queue:           queue,
		cfg:             cfg,
		currentStyle:    start,
		autoDJ:          true,
		retryDelay:      5 * time.Second,
		pollDelay:       time.Second,
		styleOverrideCh: make(chan synth.Style, 1),
	}
}

// SetPromptFunc sets the LLM-powered prompt generator. Pass nil to use static prompts.
func (s *Scheduler) SetPromptFunc(fn PromptFunc) {
	s.mu.Lock()
	s.promptFn = fn
	s.mu.Unlock()
}

// SetNameFunc sets the LLM-powered name generator. Pass nil to use deterministic names.
func (s *Scheduler) SetNameFunc(fn NameFunc) {
	s.mu.Lock()
	s.nameFn = fn
	s.mu.Unlock()
}

// SetListenerCountFunc enables idle detection: while fn reports zero
// listeners no new tracks are rendered.
func (s *Scheduler) SetListenerCountFunc(fn func() int) {
	s.mu.Lock()
	s.listenerFn = fn
	s.mu.Unlock()
}

// LastPrompt returns the prompt used for the most recent track.
func (s *Scheduler) LastPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrompt
}

// Status returns the current DJ state.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	remaining := time.Until(s.dwellEnd).Seconds()
	if remaining < 0 {
		remaining = 0
	}
	return SchedulerStatus{
		CurrentStyle:   s.currentStyle.String(),
		AutoDJ:         s.autoDJ,
		Idle:           s.idle,
		DwellRemaining: remaining,
		QueueSize:      s.queue.QueueSize(),
	}
}

// SetStyle manually overrides the current style. Unknown names are ignored.
func (s *Scheduler) SetStyle(name string) bool {
	style, ok := ParseStyle(name)
	if !ok {
		return false
	}
	select {
	case s.styleOverrideCh <- style:
	default:
	}
	return true
}

// Skip skips the current track.
func (s *Scheduler) Skip() {
	s.queue.Skip()
}

// SetAutoDJ enables or disables automatic style transitions.
func (s *Scheduler) SetAutoDJ(enabled bool) {
	s.mu.Lock()
	s.autoDJ = enabled
	if enabled {
		s.resetDwell()
	}
	s.mu.Unlock()
}

// SetTrackDuration updates the duration for future tracks (seconds).
func (s *Scheduler) SetTrackDuration(seconds int) {
	s.mu.Lock()
	s.cfg.TrackDuration = seconds
	s.mu.Unlock()
	log.Printf("Track duration set to %ds", seconds)
}

// TrackDuration returns the current track duration setting.
func (s *Scheduler) TrackDuration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.TrackDuration
}

// Run starts the auto-DJ loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.resetDwell()
	start := s.currentStyle
	s.mu.Unlock()

	log.Printf("Auto-DJ started with style: %s", start)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.step(ctx)
	}
}

// step runs one iteration of the DJ loop.
func (s *Scheduler) step(ctx context.Context) {
	select {
	case style := <-s.styleOverrideCh:
		s.mu.Lock()
		s.currentStyle = style
		s.resetDwell()
		s.mu.Unlock()
		log.Printf("Style manually set to: %s", style)
	default:
	}

	s.mu.RLock()
	autoDJ := s.autoDJ
	expired := time.Now().After(s.dwellEnd)
	listenerFn := s.listenerFn
	s.mu.RUnlock()

	if autoDJ && expired {
		s.transitionStyle()
	}

	idle := listenerFn != nil && listenerFn() == 0
	s.mu.Lock()
	if idle != s.idle {
		if idle {
			log.Println("No listeners, pausing generation")
		} else {
			log.Println("Listener connected, resuming generation")
		}
	}
	s.idle = idle
	s.mu.Unlock()

	if !idle && s.queue.QueueSize() < s.cfg.BufferAhead {
		s.generateTrack(ctx)
		return
	}
	sleep(ctx, s.pollDelay)
}

func (s *Scheduler) generateTrack(ctx context.Context) {
	s.mu.RLock()
	style := s.currentStyle
	trackDur := s.cfg.TrackDuration
	promptFn := s.promptFn
	nameFn := s.nameFn
	s.mu.RUnlock()

	// Use a short timeout so a slow LLM never blocks track generation.
	var prompt string
	if promptFn != nil {
		llmCtx, llmCancel := context.WithTimeout(ctx, 15*time.Second)
		prompt = promptFn(llmCtx, style.String())
		llmCancel()
	}
	if prompt != "" {
		if got, _ := synth.Classify(prompt); got != style {
			log.Printf("Discarding LLM prompt for %s (classifies as %s): %q", style, got, prompt)
			prompt = ""
		}
	}
	if prompt == "" {
		prompt = GetPrompt(style)
	}

	s.mu.Lock()
	s.lastPrompt = prompt
	s.mu.Unlock()

	log.Printf("Generating %s track...", style)

	res, err := s.gen.Generate(ctx, generation.Request{
		Prompt:        prompt,
		Duration:      float64(trackDur),
		Temperature:   s.cfg.Temperature,
		StyleModifier: s.cfg.StyleModifier,
	})
	if err != nil {
		log.Printf("Generate error: %v", err)
		sleep(ctx, s.retryDelay)
		return
	}

	trackID := uuid.NewString()

	var trackName string
	if nameFn != nil {
		nameCtx, nameCancel := context.WithTimeout(ctx, 15*time.Second)
		trackName = nameFn(nameCtx, style.String(), trackID, prompt)
		nameCancel()
	}
	if trackName == "" {
		trackName = TrackName(style.String(), trackID)
	}

	log.Printf("Track ready: %s [%s] (style: %s, seed: %d)", trackName, trackID, style, res.Seed)

	if err := s.queue.Enqueue(ctx, audio.TrackInfo{
		ID:         trackID,
		Style:      style.String(),
		Prompt:     prompt,
		Name:       trackName,
		Samples:    res.Samples,
		SourceRate: res.SampleRate,
		WAV:        res.WAV,
	}); err != nil {
		log.Printf("Enqueue %s: %v", trackID, err)
	}
}

func (s *Scheduler) transitionStyle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Neighbors(s.currentStyle)
	if len(next) == 0 {
		s.resetDwell()
		return
	}

	to := next[rand.IntN(len(next))]
	log.Printf("Auto-DJ transition: %s -> %s", s.currentStyle, to)
	s.currentStyle = to
	s.resetDwell()
}

// resetDwell sets a new random dwell timer. Must be called with mu held.
func (s *Scheduler) resetDwell() {
	spread := s.cfg.DwellMax - s.cfg.DwellMin
	if spread <= 0 {
		spread = 1
	}
	dwell := s.cfg.DwellMin + rand.IntN(spread)
	s.dwellEnd = time.Now().Add(time.Duration(dwell) * time.Second)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
