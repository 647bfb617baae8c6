package stream

import (
	"log"
	"net/http"

	"github.com/satindergrewal/harmonix/internal/audio"
)

// HTTPHandler serves the live stream as an endless 16-bit PCM WAV over a
// chunked HTTP response.
type HTTPHandler struct {
	broadcaster *Broadcaster
	name        string
}

// NewHTTPHandler creates an HTTP stream handler. name is sent as ICY-Name.
func NewHTTPHandler(b *Broadcaster, name string) *HTTPHandler {
	return &HTTPHandler{broadcaster: b, name: name}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("ICY-Name", h.name)

	listener := h.broadcaster.Subscribe(TransportHTTP)
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("HTTP listener %s connected (total: %d)", listener.ID, h.broadcaster.ListenerCount())
	defer func() {
		log.Printf("HTTP listener %s disconnected (dropped %d frames)", listener.ID, listener.Dropped())
	}()

	if err := audio.WriteStreamingHeader(w); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.Done():
			return
		case frame := <-listener.C:
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
