package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satindergrewal/harmonix/internal/audio"
	"github.com/satindergrewal/harmonix/internal/autodj"
	"github.com/satindergrewal/harmonix/internal/generation"
	"github.com/satindergrewal/harmonix/internal/stream"
)

const (
	minTrackDuration = 5
	minCrossfade     = 0.0
	maxCrossfade     = 30.0
)

// Radio bundles the running radio components the API controls.
type Radio struct {
	Scheduler   *autodj.Scheduler
	Pipeline    *audio.Pipeline
	Broadcaster *stream.Broadcaster
	WebRTC      *stream.WebRTCHandler
	StationName string
	LLMModel    string // empty when prompts are static
	MaxDuration int    // upper bound for track_duration, seconds
}

// RadioHandler serves the radio control and stream endpoints.
type RadioHandler struct {
	r    *Radio
	http *stream.HTTPHandler
}

// NewRadioHandler creates the handler for the radio endpoints.
func NewRadioHandler(r *Radio) *RadioHandler {
	if r.MaxDuration <= 0 {
		r.MaxDuration = 300
	}
	return &RadioHandler{r: r, http: stream.NewHTTPHandler(r.Broadcaster, r.StationName)}
}

func (h *RadioHandler) currentTrackName(t audio.TrackInfo) string {
	if t.Name != "" {
		return t.Name
	}
	return autodj.TrackName(t.Style, t.ID)
}

// Status reports what is playing and how the DJ is configured.
func (h *RadioHandler) Status(c *gin.Context) {
	dj := h.r.Scheduler.Status()
	track, pos, dur := h.r.Pipeline.Status()

	c.JSON(http.StatusOK, gin.H{
		"style":            dj.CurrentStyle,
		"auto_dj":          dj.AutoDJ,
		"idle":             dj.Idle,
		"dwell_remaining":  dj.DwellRemaining,
		"queue_size":       dj.QueueSize,
		"track_id":         track.ID,
		"track_name":       h.currentTrackName(track),
		"track_style":      track.Style,
		"prompt":           track.Prompt,
		"next_prompt":      h.r.Scheduler.LastPrompt(),
		"position":         pos.Seconds(),
		"duration":         dur.Seconds(),
		"http_listeners":   h.r.Broadcaster.CountByTransport(stream.TransportHTTP),
		"webrtc_listeners": h.r.Broadcaster.CountByTransport(stream.TransportWebRTC),
		"styles":           autodj.StyleNames(),
		"config": gin.H{
			"model":          generation.ModelType,
			"track_duration": h.r.Scheduler.TrackDuration(),
			"crossfade":      h.r.Pipeline.CrossfadeDuration().Seconds(),
			"stream_rate":    audio.SampleRate,
			"llm_model":      h.r.LLMModel,
		},
	})
}

// SetStyle switches the radio to a style.
func (h *RadioHandler) SetStyle(c *gin.Context) {
	var req struct {
		Style string `json:"style" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid style"})
		return
	}
	if !h.r.Scheduler.SetStyle(req.Style) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown style", "styles": autodj.StyleNames()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "style": req.Style})
}

// Skip ends the current track.
func (h *RadioHandler) Skip(c *gin.Context) {
	h.r.Scheduler.Skip()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AutoDJ turns automatic style transitions on or off.
func (h *RadioHandler) AutoDJ(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.r.Scheduler.SetAutoDJ(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"ok": true, "auto_dj": *req.Enabled})
}

// Config changes track length and crossfade for upcoming tracks.
func (h *RadioHandler) Config(c *gin.Context) {
	var req struct {
		TrackDuration *int     `json:"track_duration"`
		Crossfade     *float64 `json:"crossfade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.TrackDuration != nil {
		if v := *req.TrackDuration; v < minTrackDuration || v > h.r.MaxDuration {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("track_duration must be %d-%d", minTrackDuration, h.r.MaxDuration)})
			return
		}
	}
	if req.Crossfade != nil {
		if v := *req.Crossfade; v < minCrossfade || v > maxCrossfade {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("crossfade must be %g-%g", minCrossfade, maxCrossfade)})
			return
		}
	}

	if req.TrackDuration != nil {
		h.r.Scheduler.SetTrackDuration(*req.TrackDuration)
	}
	if req.Crossfade != nil {
		h.r.Pipeline.SetCrossfade(time.Duration(*req.Crossfade * float64(time.Second)))
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"track_duration": h.r.Scheduler.TrackDuration(),
		"crossfade":      h.r.Pipeline.CrossfadeDuration().Seconds(),
	})
}

// Save downloads the track that is playing as a WAV file.
func (h *RadioHandler) Save(c *gin.Context) {
	track, _, _ := h.r.Pipeline.Status()
	if len(track.WAV) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no track playing"})
		return
	}
	c.Header("Content-Disposition", attachment(h.currentTrackName(track)+".wav"))
	c.Data(http.StatusOK, "audio/wav", track.WAV)
}

// Stream serves the live chunked WAV stream.
func (h *RadioHandler) Stream(c *gin.Context) {
	h.http.ServeHTTP(c.Writer, c.Request)
}
