// Package session provides per-session conversation state for VoxAura.
//
// A [Session] is an ordered, append-only transcript keyed by an opaque
// identifier supplied by the caller. The [Store] interface abstracts the
// backing structure so the orchestrator never touches a raw map; the
// in-memory [MemStore] is the default, with [RedisStore] available when a
// shared backend is configured.
//
// All Store implementations must make every read-modify-write against a
// single session key atomic with respect to other operations on that key.
package session

import (
	"context"
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Messages are immutable once appended.
type Message struct {
	// Role is the author of the message.
	Role Role `json:"role"`

	// Content is the message text. For turns where a pipeline stage failed
	// this is the fallback text that was used in its place; the flags below
	// record that substitution.
	Content string `json:"content"`

	// Timestamp is when the message was appended.
	Timestamp time.Time `json:"timestamp"`

	// TranscriptionError marks a user message whose content is a fixed
	// apology substituted after speech recognition failed.
	TranscriptionError bool `json:"transcription_error,omitempty"`

	// GenerationError marks an assistant message whose content is a
	// fallback string substituted after text generation failed.
	GenerationError bool `json:"generation_error,omitempty"`
}

// Session is the conversational context for one session id. The Messages
// slice is ordered by insertion; callers receive copies and must not rely
// on mutating them.
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the session persistence abstraction consumed by the orchestrator.
//
// Implementations must be safe for concurrent use. Operations on different
// session ids need no mutual coordination.
type Store interface {
	// GetOrCreate returns the session for id, creating an empty one if the
	// id is unseen. Calling it again for an existing id returns that session
	// unchanged, including its CreatedAt.
	GetOrCreate(ctx context.Context, id string) (Session, error)

	// Append adds msg to the end of the session's transcript, creating the
	// session first if needed.
	Append(ctx context.Context, id string, msg Message) error

	// Get returns the session for id, or [fault.ErrNotFound] if the id has
	// never been seen (or was cleared).
	Get(ctx context.Context, id string) (Session, error)

	// Clear removes the session entirely. A subsequent GetOrCreate builds a
	// fresh session with a new CreatedAt. Clearing an unknown id is a no-op.
	Clear(ctx context.Context, id string) error
}
