// Package llm defines the Provider interface for text-generation backends.
//
// An LLM provider wraps a remote model API (Gemini, OpenAI) and exposes a
// uniform single-shot completion contract. The orchestrator builds the
// prompt — system preamble plus the most recent conversation window — and
// providers only translate it into their SDK's request shape.
//
// Implementations must be safe for concurrent use and must propagate
// context cancellation promptly.
package llm

import "context"

// Message is a single entry of conversation context passed to a provider.
// Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// CompletionRequest carries everything a provider needs to generate a reply.
type CompletionRequest struct {
	// SystemPrompt is the high-priority instruction injected before the
	// conversation history.
	SystemPrompt string

	// Messages is the ordered recent conversation window. The final entry
	// is the new user utterance.
	Messages []Message

	// MaxTokens caps completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is a finished generation.
type CompletionResponse struct {
	// Text is the full reply text.
	Text string

	// ModelID identifies the model that produced the reply.
	ModelID string

	// CharCount is len(Text), reported for caller-side accounting.
	CharCount int
}

// Provider is the abstraction over any text-generation backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// A successful call with no generated text returns an empty Text and a
	// nil error; the caller maps that to its empty-result handling.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
