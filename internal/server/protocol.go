package server

import (
	"time"

	"github.com/voxaura-ai/voxaura/internal/orchestrator"
	"github.com/voxaura-ai/voxaura/internal/session"
)

// Client → server event types.
const (
	eventRegister        = "register"
	eventSubmitUtterance = "submit_utterance"
	eventStopStream      = "stop_stream"
	eventGetHistory      = "get_history"
	eventClearHistory    = "clear_history"
)

// clientEvent is the envelope for every client → server message. Type selects
// the event; the remaining fields are event-specific and otherwise ignored.
type clientEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`

	// submit_utterance payload. Audio is base64 in transit.
	Audio    []byte `json:"audio,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Text     string `json:"text,omitempty"`
	Persona  string `json:"persona,omitempty"`
}

// statusEvent acknowledges a register event.
type statusEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
	SessionID    string `json:"session_id"`
}

// turnResultEvent reports the outcome of one conversational turn. When
// Streaming is true, the synthesized audio follows as chunk events on the
// same connection; otherwise the turn is text-only.
type turnResultEvent struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
	ReplyText  string `json:"reply_text"`
	SpokenText string `json:"spoken_text"`

	Skill        string `json:"skill,omitempty"`
	SkillMatched bool   `json:"skill_matched"`

	AudioURL    string `json:"audio_url,omitempty"`
	VoiceUsed   string `json:"voice_used,omitempty"`
	ServiceUsed string `json:"service_used,omitempty"`

	TranscriptionError bool `json:"transcription_error,omitempty"`
	GenerationError    bool `json:"generation_error,omitempty"`
	TextOnly           bool `json:"text_only,omitempty"`

	Streaming bool `json:"streaming"`
}

// chunkEvent carries one slice of synthesized audio. Index is 1-based;
// Final marks the last chunk of the clip.
type chunkEvent struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Payload []byte `json:"payload"`
	Final   bool   `json:"final"`
}

// streamCompleteEvent closes out a fully delivered clip.
type streamCompleteEvent struct {
	Type        string `json:"type"`
	TotalChunks int    `json:"total_chunks"`
	TotalBytes  int    `json:"total_bytes"`
}

// streamErrorEvent reports a delivery that ended before completion.
type streamErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type historyMessage struct {
	Role               string    `json:"role"`
	Content            string    `json:"content"`
	Timestamp          time.Time `json:"timestamp"`
	TranscriptionError bool      `json:"transcription_error,omitempty"`
	GenerationError    bool      `json:"generation_error,omitempty"`
}

type historyEvent struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	Messages  []historyMessage `json:"messages"`
}

type clearedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTurnResultEvent(res *orchestrator.TurnResult, streaming bool) turnResultEvent {
	return turnResultEvent{
		Type:               "turn_result",
		SessionID:          res.SessionID,
		Transcript:         res.Transcript,
		ReplyText:          res.ReplyText,
		SpokenText:         res.SpokenText,
		Skill:              string(res.Skill),
		SkillMatched:       res.SkillMatched,
		AudioURL:           res.AudioURL,
		VoiceUsed:          res.VoiceUsed,
		ServiceUsed:        res.ServiceUsed,
		TranscriptionError: res.TranscriptionError,
		GenerationError:    res.GenerationError,
		TextOnly:           res.TextOnly,
		Streaming:          streaming,
	}
}

func newHistoryEvent(sessionID string, msgs []session.Message) historyEvent {
	out := historyEvent{
		Type:      "history",
		SessionID: sessionID,
		Messages:  make([]historyMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, historyMessage{
			Role:               string(m.Role),
			Content:            m.Content,
			Timestamp:          m.Timestamp,
			TranscriptionError: m.TranscriptionError,
			GenerationError:    m.GenerationError,
		})
	}
	return out
}
