package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/voxaura-ai/voxaura/internal/fault"
	doclocal "github.com/voxaura-ai/voxaura/pkg/provider/docextract/local"
)

// handleGetHistoryHTTP serves GET /v1/sessions/{session}/history.
func (s *Server) handleGetHistoryHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	msgs, err := s.orch.History(r.Context(), sessionID)
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newHistoryEvent(sessionID, msgs))
}

// handleClearHistoryHTTP serves DELETE /v1/sessions/{session}/history.
func (s *Server) handleClearHistoryHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	if err := s.orch.ClearHistory(r.Context(), sessionID); err != nil {
		writeHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clearedEvent{Type: "cleared", SessionID: sessionID})
}

// handleUploadDocument serves POST /v1/sessions/{session}/document. The body
// is a multipart form with a "file" part and an optional "analysis_type"
// field (summarize when absent).
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	r.Body = http.MaxBytesReader(w, r.Body, doclocal.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(doclocal.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent{Type: "error", Code: "invalid_input", Message: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent{Type: "error", Code: "invalid_input", Message: "missing file part"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent{Type: "error", Code: "invalid_input", Message: "failed to read file"})
		return
	}

	analysisType := r.FormValue("analysis_type")
	res, err := s.orch.AttachDocument(r.Context(), sessionID, header.Filename, data, analysisType)
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTurnResultEvent(res, false))
}

func writeHTTPError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fault.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, fault.ErrNotFound):
		status = http.StatusNotFound
	case fault.IsUpstream(err):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorEvent{Type: "error", Code: errorCode(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}
