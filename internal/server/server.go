// Package server exposes the conversational pipeline over a websocket
// protocol plus a small set of plain HTTP routes.
//
// A client connects to /ws, registers a session, and submits utterances as
// JSON events. Each turn produces a turn_result event; when synthesis
// succeeded the audio clip follows as paced chunk events closed by a
// stream_complete marker. History and document upload are also reachable
// over HTTP for non-websocket clients.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/voxaura-ai/voxaura/internal/health"
	"github.com/voxaura-ai/voxaura/internal/observe"
	"github.com/voxaura-ai/voxaura/internal/orchestrator"
	"github.com/voxaura-ai/voxaura/internal/stream"
)

const shutdownGrace = 10 * time.Second

// Server bundles the websocket and HTTP surfaces around one orchestrator.
type Server struct {
	orch     *orchestrator.Orchestrator
	registry *stream.Registry
	streamer *stream.Streamer
	metrics  *observe.Metrics
	health   *health.Handler

	addr string
}

// Option is a functional option for [New].
type Option func(*Server)

// WithStreamer replaces the default chunk streamer.
func WithStreamer(st *stream.Streamer) Option {
	return func(s *Server) {
		if st != nil {
			s.streamer = st
		}
	}
}

// WithMetrics replaces the default metrics instruments.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithHealth installs health endpoints built from the given checkers.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// New creates a Server listening on addr once [Server.Run] is called.
func New(addr string, orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:     orch,
		registry: stream.NewRegistry(),
		streamer: stream.NewStreamer(),
		metrics:  observe.DefaultMetrics(),
		health:   health.New(),
		addr:     addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full HTTP surface, instrumented with request metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("GET /v1/sessions/{session}/history", s.handleGetHistoryHTTP)
	mux.HandleFunc("DELETE /v1/sessions/{session}/history", s.handleClearHistoryHTTP)
	mux.HandleFunc("POST /v1/sessions/{session}/document", s.handleUploadDocument)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then drains with a bounded grace
// period. Returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
