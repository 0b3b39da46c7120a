package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/internal/orchestrator"
)

// maxEventBytes bounds a single websocket frame. Audio submissions are
// base64-encoded JSON, so this has to comfortably exceed the raw clip size.
const maxEventBytes = 4 << 20

// wsConn serializes writes to a single websocket connection. The read loop,
// and any in-flight stream delivery goroutine, both write to it.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(ctx context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wsjson.Write(ctx, c.conn, v)
}

// handleWS owns one websocket connection for its full lifetime: it reads
// client events in a loop and dispatches them until the peer disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	raw, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "err", err)
		return
	}
	raw.SetReadLimit(maxEventBytes)

	connID := uuid.NewString()
	conn := &wsConn{conn: raw}
	ctx := r.Context()

	s.metrics.ActiveConnections.Add(ctx, 1)
	slog.Info("client connected", "connection_id", connID)

	defer func() {
		s.registry.Unregister(connID)
		s.metrics.ActiveConnections.Add(context.WithoutCancel(ctx), -1)
		raw.Close(websocket.StatusNormalClosure, "")
		slog.Info("client disconnected", "connection_id", connID)
	}()

	for {
		var ev clientEvent
		if err := wsjson.Read(ctx, raw, &ev); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return
			}
			slog.Debug("websocket read ended", "connection_id", connID, "err", err)
			return
		}

		switch ev.Type {
		case eventRegister:
			s.handleRegister(ctx, conn, connID, ev)
		case eventSubmitUtterance:
			s.handleSubmit(ctx, conn, connID, ev)
		case eventStopStream:
			s.registry.StopStream(connID)
		case eventGetHistory:
			s.handleGetHistory(ctx, conn, connID, ev)
		case eventClearHistory:
			s.handleClearHistory(ctx, conn, connID, ev)
		default:
			s.writeError(ctx, conn, "unknown_event", "unknown event type "+ev.Type)
		}
	}
}

func (s *Server) handleRegister(ctx context.Context, conn *wsConn, connID string, ev clientEvent) {
	if ev.SessionID == "" {
		s.writeError(ctx, conn, "invalid_input", "register requires session_id")
		return
	}
	s.registry.Register(connID, ev.SessionID)
	_ = conn.writeJSON(ctx, statusEvent{
		Type:         "status",
		ConnectionID: connID,
		SessionID:    ev.SessionID,
	})
}

func (s *Server) handleSubmit(ctx context.Context, conn *wsConn, connID string, ev clientEvent) {
	sessionID := ev.SessionID
	if sessionID == "" {
		sessionID, _ = s.registry.SessionFor(connID)
	}
	if sessionID == "" {
		s.writeError(ctx, conn, "invalid_input", "submit_utterance requires a registered or explicit session_id")
		return
	}

	start := time.Now()
	res, err := s.orch.ProcessTurn(ctx, orchestrator.TurnInput{
		SessionID: sessionID,
		Audio:     ev.Audio,
		Encoding:  ev.Encoding,
		Text:      ev.Text,
		Persona:   ev.Persona,
	})
	if err != nil {
		s.metrics.RecordTurn(ctx, "", "error", time.Since(start))
		s.writeError(ctx, conn, errorCode(err), err.Error())
		return
	}
	s.metrics.RecordTurn(ctx, string(res.Skill), turnStatus(res), time.Since(start))

	streaming := len(res.Audio) > 0
	if err := conn.writeJSON(ctx, newTurnResultEvent(res, streaming)); err != nil {
		return
	}
	if !streaming {
		return
	}

	// Deliver the clip asynchronously so the read loop keeps serving
	// stop_stream. BeginStream cancels any delivery already in flight on
	// this connection.
	streamCtx, release := s.registry.BeginStream(ctx, connID)
	go func() {
		defer release()
		s.metrics.ActiveStreams.Add(streamCtx, 1)
		defer s.metrics.ActiveStreams.Add(context.WithoutCancel(streamCtx), -1)

		sink := &wsSink{conn: conn, metrics: s.metrics}
		if err := s.streamer.Deliver(streamCtx, res.Audio, sink); err != nil {
			code := "delivery_failed"
			if errors.Is(err, context.Canceled) {
				code = "cancelled"
			}
			_ = conn.writeJSON(context.WithoutCancel(streamCtx), streamErrorEvent{
				Type: "stream_error",
				Code: code,
			})
		}
	}()
}

func (s *Server) handleGetHistory(ctx context.Context, conn *wsConn, connID string, ev clientEvent) {
	sessionID := ev.SessionID
	if sessionID == "" {
		sessionID, _ = s.registry.SessionFor(connID)
	}
	msgs, err := s.orch.History(ctx, sessionID)
	if err != nil {
		s.writeError(ctx, conn, errorCode(err), err.Error())
		return
	}
	_ = conn.writeJSON(ctx, newHistoryEvent(sessionID, msgs))
}

func (s *Server) handleClearHistory(ctx context.Context, conn *wsConn, connID string, ev clientEvent) {
	sessionID := ev.SessionID
	if sessionID == "" {
		sessionID, _ = s.registry.SessionFor(connID)
	}
	if err := s.orch.ClearHistory(ctx, sessionID); err != nil {
		s.writeError(ctx, conn, errorCode(err), err.Error())
		return
	}
	_ = conn.writeJSON(ctx, clearedEvent{Type: "cleared", SessionID: sessionID})
}

func (s *Server) writeError(ctx context.Context, conn *wsConn, code, message string) {
	_ = conn.writeJSON(ctx, errorEvent{Type: "error", Code: code, Message: message})
}

// turnStatus labels a completed turn for the metrics counter.
func turnStatus(res *orchestrator.TurnResult) string {
	if res.TranscriptionError || res.GenerationError || res.TextOnly {
		return "degraded"
	}
	return "ok"
}

// errorCode maps pipeline faults onto wire-level error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, fault.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, fault.ErrNotFound):
		return "not_found"
	case fault.IsUpstream(err):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}
