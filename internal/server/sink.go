package server

import (
	"context"

	"github.com/voxaura-ai/voxaura/internal/observe"
	"github.com/voxaura-ai/voxaura/internal/stream"
)

// wsSink delivers stream chunks as websocket events.
type wsSink struct {
	conn    *wsConn
	metrics *observe.Metrics
}

var _ stream.Sink = (*wsSink)(nil)

func (s *wsSink) SendChunk(ctx context.Context, c stream.Chunk) error {
	if err := s.conn.writeJSON(ctx, chunkEvent{
		Type:    "chunk",
		Index:   c.Index,
		Payload: c.Payload,
		Final:   c.Final,
	}); err != nil {
		return err
	}
	s.metrics.StreamChunks.Add(ctx, 1)
	return nil
}

func (s *wsSink) SendComplete(ctx context.Context, totalChunks, totalBytes int) error {
	return s.conn.writeJSON(ctx, streamCompleteEvent{
		Type:        "stream_complete",
		TotalChunks: totalChunks,
		TotalBytes:  totalBytes,
	})
}
