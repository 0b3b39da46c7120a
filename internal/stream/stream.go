// Package stream delivers finished audio payloads as ordered chunk
// sequences over per-connection channels, and tracks which session each
// transport connection is bound to.
//
// A delivery emits chunks with strictly increasing 1-based indices, paced
// by a small delay, and finishes with a completion marker carrying the
// total chunk count and byte size. Cancellation is observed between chunk
// emissions; a cancelled delivery never emits its completion marker.
package stream

import (
	"context"
	"time"
)

const (
	// defaultChunkSize matches a comfortable websocket frame for audio.
	defaultChunkSize = 32 * 1024

	// defaultPace models network/playback pacing between chunks. The
	// exact value is a tunable, relative ordering is the contract.
	defaultPace = 50 * time.Millisecond
)

// Chunk is one slice of a payload in flight.
type Chunk struct {
	// Index is 1-based and strictly increasing within one delivery.
	Index int

	// Payload is this chunk's bytes.
	Payload []byte

	// Final marks the last chunk of a completed delivery.
	Final bool
}

// Sink receives a delivery's chunks and its completion marker.
type Sink interface {
	// SendChunk delivers one chunk. A returned error aborts the delivery.
	SendChunk(ctx context.Context, c Chunk) error

	// SendComplete delivers the completion marker after the final chunk
	// of an uncancelled delivery.
	SendComplete(ctx context.Context, totalChunks, totalBytes int) error
}

// Option is a functional option for configuring the Streamer.
type Option func(*Streamer)

// WithChunkSize sets the payload slice size in bytes.
func WithChunkSize(n int) Option {
	return func(s *Streamer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithPace sets the delay between chunk emissions. Zero disables pacing,
// which tests use to stay fast.
func WithPace(d time.Duration) Option {
	return func(s *Streamer) {
		s.pace = d
	}
}

// Streamer splits payloads into paced, ordered chunk deliveries. It is
// stateless and safe for concurrent use across connections.
type Streamer struct {
	chunkSize int
	pace      time.Duration
}

// NewStreamer creates a Streamer.
func NewStreamer(opts ...Option) *Streamer {
	s := &Streamer{chunkSize: defaultChunkSize, pace: defaultPace}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Deliver streams payload to sink. It returns ctx.Err() when cancelled
// between chunks, in which case no completion marker was sent.
func (s *Streamer) Deliver(ctx context.Context, payload []byte, sink Sink) error {
	total := (len(payload) + s.chunkSize - 1) / s.chunkSize
	if total == 0 {
		total = 1
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 && s.pace > 0 {
			timer := time.NewTimer(s.pace)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		start := i * s.chunkSize
		end := start + s.chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunk := Chunk{
			Index:   i + 1,
			Payload: payload[start:end],
			Final:   i == total-1,
		}
		if err := sink.SendChunk(ctx, chunk); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return sink.SendComplete(ctx, total, len(payload))
}
