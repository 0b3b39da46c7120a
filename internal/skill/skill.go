// Package skill classifies utterances into specialized conversation skills
// and produces the textual reply for each one.
//
// Classification is an ordered rule cascade: document, weather, search, and
// study triggers are checked in that fixed priority, and the first match
// wins. An utterance matching no rule is routed to generic chat by the
// orchestrator. Handlers never return errors; any collaborator failure is
// converted into a persona-styled apology so the caller always has a
// renderable reply.
package skill

import (
	"context"

	"github.com/voxaura-ai/voxaura/internal/persona"
	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
)

// Skill identifies a specialized conversation capability.
type Skill string

const (
	// SkillDocument answers questions about an uploaded document.
	SkillDocument Skill = "document"

	// SkillWeather reports current conditions for a city.
	SkillWeather Skill = "weather"

	// SkillSearch answers from web search results.
	SkillSearch Skill = "search"

	// SkillStudy produces study aids (summaries, explanations, quizzes).
	SkillStudy Skill = "study"

	// SkillNone means no specialized skill applies; the orchestrator falls
	// through to generic chat.
	SkillNone Skill = "none"
)

// Result is the outcome of one handler invocation. It is produced once and
// never mutated.
type Result struct {
	// Matched reports whether a specialized skill claimed the utterance.
	Matched bool

	// Skill names the capability that produced the reply, or SkillNone.
	Skill Skill

	// ResponseText is the reply, always renderable. Handlers that fail
	// internally fill it with a persona-styled apology.
	ResponseText string

	// Metadata carries skill-specific context for the caller (resolved
	// city, result count, analysis type).
	Metadata map[string]any
}

// Request is the input to a handler invocation.
type Request struct {
	// Utterance is the user's transcript for this turn.
	Utterance string

	// Persona styles apologies and replies.
	Persona persona.Config

	// Params are the classifier's extracted parameters (e.g. "city",
	// "query", "task").
	Params map[string]string

	// Document is the session's most recent upload, nil when none exists.
	Document *docextract.Document

	// History is the recent transcript, used when a document question is
	// routed through the chat collaborator.
	History []llm.Message
}

// Handler produces the reply for one skill. Implementations never return an
// error; failures surface as apology text in the Result.
type Handler interface {
	Handle(ctx context.Context, req Request) Result
}
