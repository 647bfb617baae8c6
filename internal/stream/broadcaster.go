package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Transport names the kind of connection a listener arrived on.
type Transport string

const (
	TransportHTTP   Transport = "http"
	TransportWebRTC Transport = "webrtc"
)

// listenerBuffer is ~3 seconds of 20ms frames.
const listenerBuffer = 150

// Broadcaster fans out PCM frames from one source to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	frames    atomic.Uint64
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	ID        string
	Transport Transport
	C         chan []int16 // buffered channel of 20ms PCM frames

	dropped  atomic.Uint64
	done     chan struct{}
	stopOnce sync.Once
}

// Done is closed once the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Dropped returns how many frames were skipped because the listener fell
// behind.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe(t Transport) *Listener {
	l := &Listener{
		ID:        uuid.NewString(),
		Transport: t,
		C:         make(chan []int16, listenerBuffer),
		done:      make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Safe to call more
// than once.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l)
	b.mu.Unlock()
	l.stopOnce.Do(func() { close(l.done) })
}

// ListenerCount returns the number of active listeners on every transport.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// CountByTransport returns the number of active listeners on one transport.
func (b *Broadcaster) CountByTransport(t Transport) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for l := range b.listeners {
		if l.Transport == t {
			n++
		}
	}
	return n
}

// FramesSent returns how many frames have been broadcast.
func (b *Broadcaster) FramesSent() uint64 {
	return b.frames.Load()
}

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.frames.Add(1)
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					l.dropped.Add(1)
				}
			}
			b.mu.RUnlock()
		}
	}
}
