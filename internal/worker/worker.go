// Package worker serves render requests over NATS request/reply so that
// several harmonix processes can share one queue group.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/satindergrewal/harmonix/internal/generation"
	"github.com/satindergrewal/harmonix/internal/synth"
)

const (
	// NatsConnectTimeout bounds the initial connection attempt.
	NatsConnectTimeout = 10 * time.Second
	// NatsMaxReconnectAttempts is passed to nats.MaxReconnects.
	NatsMaxReconnectAttempts = 5
	// RenderTimeout caps a single render, including the wait for a slot.
	RenderTimeout = 2 * time.Minute
)

// ErrReplyTooLarge is returned when an encoded reply exceeds the server's
// max payload.
var ErrReplyTooLarge = errors.New("reply exceeds NATS max payload")

// Generator renders a request.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Worker answers render requests published on a subject.
type Worker struct {
	nc      *nats.Conn
	gen     Generator
	subject string
	queue   string
}

// Connect dials NATS and returns a worker bound to subject and queue group.
func Connect(url, subject, queue string, gen Generator) (*Worker, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("harmonix-render"),
		nats.Timeout(NatsConnectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(NatsMaxReconnectAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS at %s", url)
	return New(nc, subject, queue, gen), nil
}

// New wraps an existing connection. The worker closes nc when Run returns.
func New(nc *nats.Conn, subject, queue string, gen Generator) *Worker {
	return &Worker{nc: nc, gen: gen, subject: subject, queue: queue}
}

// Run subscribes and serves until ctx is cancelled, then drains in-flight
// requests. Requests delivered during the drain are still rendered.
func (w *Worker) Run(ctx context.Context) error {
	sub, err := w.nc.QueueSubscribe(w.subject, w.queue, w.handleMsg)
	if err != nil {
		w.nc.Close()
		return fmt.Errorf("queue subscribe %s: %w", w.subject, err)
	}
	log.Printf("Render worker listening on %q (queue %q)", w.subject, w.queue)

	<-ctx.Done()
	log.Printf("Render worker shutting down")

	if err := sub.Drain(); err != nil {
		log.Printf("Drain subscription: %v", err)
	}
	if err := w.nc.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		w.nc.Close()
		return fmt.Errorf("drain connection: %w", err)
	}
	return nil
}

func (w *Worker) handleMsg(msg *nats.Msg) {
	start := time.Now()

	var body generation.GenerateRequest
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		w.replyError(msg, generation.ErrorResponse{
			Error:   string(synth.KindInvalidParameter),
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	// not tied to Run's ctx, so a drain finishes the work it accepted
	ctx, cancel := context.WithTimeout(context.Background(), RenderTimeout)
	defer cancel()

	res, err := w.gen.Generate(ctx, body.Request())
	if err != nil {
		log.Printf("Render failed for %q: %v", body.Prompt, err)
		w.replyError(msg, generation.NewErrorResponse(err))
		return
	}

	if err := w.reply(msg, generation.NewResponse(res)); err != nil {
		log.Printf("Reply for %q failed: %v", res.Prompt, err)
		if errors.Is(err, ErrReplyTooLarge) {
			w.replyError(msg, generation.ErrorResponse{
				Error:   string(synth.KindEncodingFailure),
				Message: err.Error(),
			})
		}
		return
	}
	log.Printf("Rendered %q (%s, seed %d) in %s", res.Prompt, res.Style, res.Seed, time.Since(start).Round(time.Millisecond))
}

func (w *Worker) reply(msg *nats.Msg, v any) error {
	if msg.Reply == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	if limit := w.nc.MaxPayload(); limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%d bytes, limit %d: %w", len(data), limit, ErrReplyTooLarge)
	}
	return msg.Respond(data)
}

func (w *Worker) replyError(msg *nats.Msg, resp generation.ErrorResponse) {
	if err := w.reply(msg, resp); err != nil {
		log.Printf("Reply error %q: %v", resp.Error, err)
	}
}
