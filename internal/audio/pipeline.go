package audio

import (
	"context"
	"log"
	"sync"
	"time"
)

type preparedTrack struct {
	info    TrackInfo
	samples []int16 // interleaved stream-format PCM
}

// Pipeline converts queued tracks to the stream format, crossfades between
// them, and emits PCM frames at real-time rate.
type Pipeline struct {
	trackCh chan TrackInfo
	frameCh chan []int16
	skipCh  chan struct{}
	tick    time.Duration // frame pacing, FrameDuration outside tests

	mu            sync.RWMutex
	crossfadeDur  time.Duration
	currentTrack  TrackInfo
	trackPosition time.Duration
	trackDuration time.Duration
}

// NewPipeline creates an audio pipeline with the given crossfade duration.
func NewPipeline(crossfadeDuration time.Duration) *Pipeline {
	return &Pipeline{
		trackCh:      make(chan TrackInfo, 8),
		frameCh:      make(chan []int16, 100),
		skipCh:       make(chan struct{}, 1),
		tick:         FrameDuration,
		crossfadeDur: crossfadeDuration,
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Pipeline) Frames() <-chan []int16 {
	return p.frameCh
}

// Enqueue adds a track to the playback queue, blocking while it is full.
func (p *Pipeline) Enqueue(ctx context.Context, t TrackInfo) error {
	select {
	case p.trackCh <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueSize returns the number of tracks waiting in the queue.
func (p *Pipeline) QueueSize() int {
	return len(p.trackCh)
}

// Skip interrupts the current track.
func (p *Pipeline) Skip() {
	select {
	case p.skipCh <- struct{}{}:
	default:
	}
}

// SetCrossfade changes the crossfade length for upcoming transitions.
func (p *Pipeline) SetCrossfade(d time.Duration) {
	p.mu.Lock()
	p.crossfadeDur = d
	p.mu.Unlock()
	log.Printf("Crossfade set to %s", d)
}

// CrossfadeDuration returns the current crossfade length.
func (p *Pipeline) CrossfadeDuration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.crossfadeDur
}

// Status returns current playback info.
func (p *Pipeline) Status() (track TrackInfo, position, duration time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentTrack, p.trackPosition, p.trackDuration
}

// Run starts the pipeline. Blocks until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.frameCh)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	// Background conversion so resampling never stalls playback.
	preparedCh := make(chan *preparedTrack, 4)
	go func() {
		defer close(preparedCh)
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-p.trackCh:
				samples, err := ToStreamFormat(t.Samples, t.SourceRate)
				if err != nil {
					log.Printf("Prepare failed %s: %v", t.ID, err)
					continue
				}
				select {
				case preparedCh <- &preparedTrack{info: t, samples: samples}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var pending *preparedTrack
	var startFrame int

	for {
		pt := pending
		pending = nil
		if pt == nil {
			select {
			case <-ctx.Done():
				return
			case next, ok := <-preparedCh:
				if !ok {
					return
				}
				pt = next
				startFrame = 0
			}
		}

		pending, startFrame = p.playTrack(ctx, ticker, preparedCh, pt, startFrame)
	}
}

// crossfadeWindow returns where the transition out of a track of totalFrames
// begins and how long it lasts. It never covers more than half the track nor
// any of the first startFrame frames, which were already mixed into the
// previous transition.
func (p *Pipeline) crossfadeWindow(totalFrames, startFrame int) (cfStart, cfFrames int) {
	cf := int(p.CrossfadeDuration() / FrameDuration)
	cfFrames = max(min(cf, totalFrames/2, totalFrames-startFrame), 0)
	return totalFrames - cfFrames, cfFrames
}

// playTrack plays a track, crossfading into the next one if it is ready.
// Returns the next track and the frame it should resume from.
func (p *Pipeline) playTrack(ctx context.Context, ticker *time.Ticker, preparedCh <-chan *preparedTrack, pt *preparedTrack, startFrame int) (*preparedTrack, int) {
	samples := pt.samples
	totalFrames := len(samples) / FrameSamples
	cfStart, cfFrames := p.crossfadeWindow(totalFrames, startFrame)

	p.setTrack(pt.info, totalFrames)
	log.Printf("Now playing: %s [%s] (style: %s, frames: %d)", pt.info.Name, pt.info.ID, pt.info.Style, totalFrames)

	frame := func(i int) []int16 { return samples[i*FrameSamples : (i+1)*FrameSamples] }

	for i := startFrame; i < cfStart; i++ {
		if !p.sendFrame(ctx, ticker, frame(i)) {
			return nil, 0
		}
		p.updatePosition(i)
	}

	var next *preparedTrack
	select {
	case next = <-preparedCh:
	default:
	}

	if next == nil {
		for i := cfStart; i < totalFrames; i++ {
			if !p.sendFrame(ctx, ticker, frame(i)) {
				return nil, 0
			}
			p.updatePosition(i)
		}
		return nil, 0
	}

	nextFrames := len(next.samples) / FrameSamples
	overlap := min(cfFrames, nextFrames)
	for i := 0; i < overlap; i++ {
		in := next.samples[i*FrameSamples : (i+1)*FrameSamples]
		mixed := CrossfadeFrames(frame(cfStart+i), in, float64(i)/float64(cfFrames))
		if !p.sendFrame(ctx, ticker, mixed) {
			return nil, 0
		}
		p.updatePosition(cfStart + i)
	}

	log.Printf("Crossfaded into: %s (style: %s)", next.info.Name, next.info.Style)
	return next, overlap
}

// sendFrame waits for the ticker then sends a frame. Returns false on skip or cancel.
func (p *Pipeline) sendFrame(ctx context.Context, ticker *time.Ticker, frame []int16) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.skipCh:
		log.Println("Track skipped")
		return false
	case <-ticker.C:
	}

	select {
	case p.frameCh <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) setTrack(info TrackInfo, totalFrames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTrack = info
	p.trackPosition = 0
	p.trackDuration = time.Duration(totalFrames) * FrameDuration
}

func (p *Pipeline) updatePosition(frameIdx int) {
	p.mu.Lock()
	p.trackPosition = time.Duration(frameIdx) * FrameDuration
	p.mu.Unlock()
}
