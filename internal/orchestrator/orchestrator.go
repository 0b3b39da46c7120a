// Package orchestrator composes transcription, skill classification, reply
// generation, persona styling, and speech synthesis into one conversational
// turn pipeline.
//
// A turn moves through the stages received → transcribed → classified →
// responded → synthesized; delivery is the transport's concern. Collaborator
// failures at any stage degrade to a best-effort textual reply instead of
// aborting, so every turn the caller submits comes back with something to
// say. Only invalid input and unknown-session lookups surface as errors.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/internal/observe"
	"github.com/voxaura-ai/voxaura/internal/persona"
	"github.com/voxaura-ai/voxaura/internal/session"
	"github.com/voxaura-ai/voxaura/internal/skill"
	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
	"github.com/voxaura-ai/voxaura/pkg/provider/stt"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
)

// Stage names the pipeline position a turn reached.
type Stage string

const (
	StageReceived    Stage = "received"
	StageTranscribed Stage = "transcribed"
	StageClassified  Stage = "classified"
	StageResponded   Stage = "responded"
	StageSynthesized Stage = "synthesized"
	StageDelivered   Stage = "delivered"
	StageErrored     Stage = "errored"
)

const (
	// spokenTextLimit is the hard ceiling the synthesis backends accept.
	spokenTextLimit = 3000

	// spokenTruncateAt is where over-limit replies are cut before the
	// ellipsis is appended.
	spokenTruncateAt = 2900

	// chatContextMessages bounds how much transcript feeds generation.
	chatContextMessages = 10

	// defaultStageTimeout bounds each external collaborator call.
	defaultStageTimeout = 30 * time.Second
)

// transcriptionApology stands in for the transcript when speech recognition
// fails; the pipeline still produces a spoken reply from it.
const transcriptionApology = "I'm having trouble with speech recognition right now."

// chatSystemPrompt frames the generic chat collaborator.
const chatSystemPrompt = "You are VoxAura, a helpful AI voice assistant. Provide concise, conversational responses under 3000 characters."

// TurnInput is one user turn: either audio to transcribe or already-final
// text, never both required.
type TurnInput struct {
	SessionID string
	Audio     []byte
	Encoding  string
	Text      string
	Persona   string
}

// TurnResult is the orchestrator's output for one turn. Audio may be empty
// when synthesis failed; TextOnly distinguishes that from full success.
type TurnResult struct {
	SessionID  string
	Transcript string

	// ReplyText is the full generated reply as stored in the transcript.
	ReplyText string

	// SpokenText is the possibly truncated text actually synthesized.
	SpokenText string

	Audio       []byte
	AudioURL    string
	VoiceUsed   string
	ServiceUsed string

	Skill        skill.Skill
	SkillMatched bool

	TranscriptionError bool
	GenerationError    bool
	TextOnly           bool

	Stage Stage
}

// Option is a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithStageTimeout bounds each external collaborator call.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stageTimeout = d
		}
	}
}

// WithClock replaces the time source. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator runs the turn pipeline. Construct with [New]; all
// collaborators are injected, nothing is resolved from ambient state at
// turn time.
type Orchestrator struct {
	store      session.Store
	transcribe stt.Provider
	chat       llm.Provider
	synth      tts.Provider
	extract    docextract.Provider
	classifier *skill.Classifier
	handlers   map[skill.Skill]skill.Handler

	stageTimeout time.Duration
	now          func() time.Time
	metrics      *observe.Metrics

	mu   sync.Mutex
	docs map[string]*docextract.Document
}

// New creates an Orchestrator. The handlers map routes matched skills; the
// chat provider serves unmatched utterances.
func New(
	store session.Store,
	transcribe stt.Provider,
	chat llm.Provider,
	synth tts.Provider,
	extract docextract.Provider,
	handlers map[skill.Skill]skill.Handler,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		transcribe:   transcribe,
		chat:         chat,
		synth:        synth,
		extract:      extract,
		classifier:   skill.NewClassifier(),
		handlers:     handlers,
		stageTimeout: defaultStageTimeout,
		now:          time.Now,
		metrics:      observe.DefaultMetrics(),
		docs:         make(map[string]*docextract.Document),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessTurn runs one full turn. Empty input (no audio and no text) is
// rejected with [fault.ErrInvalidInput] before any session mutation.
func (o *Orchestrator) ProcessTurn(ctx context.Context, in TurnInput) (res *TurnResult, err error) {
	if len(in.Audio) == 0 && strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("orchestrator: %w: turn carries neither audio nor text", fault.ErrInvalidInput)
	}

	p := persona.Lookup(in.Persona)

	// appended tracks how many of this turn's two messages reached the
	// store, so panic recovery knows what is left to repair.
	var (
		transcript string
		appended   int
	)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("turn pipeline panicked", "session", in.SessionID, "panic", r)
			res, err = o.panicTurn(ctx, in, p, transcript, appended), nil
		}
	}()

	if _, err := o.store.GetOrCreate(ctx, in.SessionID); err != nil {
		return nil, err
	}

	// received → transcribed
	stageStart := time.Now()
	var transcriptionFailed bool
	transcript, transcriptionFailed = o.resolveTranscript(ctx, in)
	o.metrics.RecordStage(ctx, "transcribe", time.Since(stageStart))

	userMsg := session.Message{
		Role:               session.RoleUser,
		Content:            transcript,
		Timestamp:          o.now(),
		TranscriptionError: transcriptionFailed,
	}
	if err := o.store.Append(ctx, in.SessionID, userMsg); err != nil {
		return nil, err
	}
	appended++

	// transcribed → classified. A skill with no installed handler is
	// served by plain chat and reported as unmatched.
	match := o.classifier.Classify(transcript)
	if _, ok := o.handlers[match.Skill]; !ok {
		match = skill.Match{Skill: skill.SkillNone}
	}

	// classified → responded
	stageStart = time.Now()
	reply, generationFailed := o.respond(ctx, in.SessionID, transcript, p, match)
	o.metrics.RecordStage(ctx, "respond", time.Since(stageStart))

	assistantMsg := session.Message{
		Role:            session.RoleAssistant,
		Content:         reply,
		Timestamp:       o.now(),
		GenerationError: generationFailed,
	}
	if err := o.store.Append(ctx, in.SessionID, assistantMsg); err != nil {
		return nil, err
	}
	appended++

	// responded → synthesized
	spoken := TruncateForSpeech(reply)
	result := &TurnResult{
		SessionID:          in.SessionID,
		Transcript:         transcript,
		ReplyText:          reply,
		SpokenText:         spoken,
		Skill:              match.Skill,
		SkillMatched:       match.Skill != skill.SkillNone,
		TranscriptionError: transcriptionFailed,
		GenerationError:    generationFailed,
		Stage:              StageResponded,
	}

	synthCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	stageStart = time.Now()
	clip, synthErr := o.synth.Synthesize(synthCtx, spoken, tts.Voice{
		ID:         p.VoiceID,
		PitchDelta: p.PitchDelta,
		RateDelta:  p.RateDelta,
		Style:      p.Style,
	})
	o.metrics.RecordStage(ctx, "synthesize", time.Since(stageStart))
	if synthErr != nil {
		slog.Warn("speech synthesis failed, completing turn as text only",
			"session", in.SessionID, "error", synthErr)
		result.TextOnly = true
		return result, nil
	}
	result.Audio = clip.Audio
	result.AudioURL = clip.AudioURL
	result.VoiceUsed = clip.VoiceUsed
	result.ServiceUsed = clip.ServiceUsed
	result.Stage = StageSynthesized
	return result, nil
}

// resolveTranscript produces the turn's transcript from audio or text. A
// transcription failure yields the fixed apology so the turn still speaks.
func (o *Orchestrator) resolveTranscript(ctx context.Context, in TurnInput) (string, bool) {
	if len(in.Audio) == 0 {
		return strings.TrimSpace(in.Text), false
	}

	sttCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	tr, err := o.transcribe.Transcribe(sttCtx, in.Audio, in.Encoding)
	if err != nil || strings.TrimSpace(tr.Text) == "" {
		if err != nil {
			slog.Warn("transcription failed", "session", in.SessionID, "error", err)
		}
		return transcriptionApology, true
	}
	return strings.TrimSpace(tr.Text), false
}

// respond produces the reply text for a classified transcript.
func (o *Orchestrator) respond(ctx context.Context, sessionID, transcript string, p persona.Config, match skill.Match) (string, bool) {
	handlerCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	if handler, ok := o.handlers[match.Skill]; ok && match.Skill != skill.SkillNone {
		res := handler.Handle(handlerCtx, skill.Request{
			Utterance: transcript,
			Persona:   p,
			Params:    match.Params,
			Document:  o.document(sessionID),
			History:   o.chatHistory(ctx, sessionID),
		})
		return res.ResponseText, false
	}

	resp, err := o.chat.Complete(handlerCtx, llm.CompletionRequest{
		SystemPrompt: chatSystemPrompt,
		Messages: append(o.chatHistory(ctx, sessionID),
			llm.Message{Role: string(session.RoleUser), Content: transcript}),
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			slog.Warn("chat generation failed", "session", sessionID, "error", err)
		}
		return p.StyleText(fallbackReply(transcript)), true
	}
	return p.StyleText(strings.TrimSpace(resp.Text)), false
}

// chatHistory returns the most recent stored messages, excluding the
// in-flight user message, mapped for the generation collaborator.
func (o *Orchestrator) chatHistory(ctx context.Context, sessionID string) []llm.Message {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil
	}
	msgs := sess.Messages
	if n := len(msgs); n > 0 && msgs[n-1].Role == session.RoleUser {
		msgs = msgs[:n-1]
	}
	if len(msgs) > chatContextMessages {
		msgs = msgs[len(msgs)-chatContextMessages:]
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// fallbackReply picks a deterministic reply by keyword when generation is
// unavailable.
func fallbackReply(utterance string) string {
	lower := strings.ToLower(utterance)
	switch {
	case containsAnyWord(lower, "hello", "hi", "hey"):
		return "Hello! I'm having some technical difficulties with my AI services right now, but I'm still here to chat with you."
	case containsAnyWord(lower, "trouble", "problem", "issue"):
		return "I understand you're having some trouble. I'm also experiencing some technical difficulties right now, but I'm here to help as best I can."
	case containsAnyWord(lower, "help", "assist"):
		return "I'd love to help you, but I'm experiencing some connectivity issues with my AI services. Please try again in a moment."
	default:
		return "I'm having trouble connecting to my AI services right now. Please try again in a moment, and I'll do my best to assist you."
	}
}

func containsAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// TruncateForSpeech enforces the synthesis length contract: text longer
// than the backend limit is cut and given a trailing ellipsis. Stored
// transcripts always keep the full reply; only the spoken form is cut.
// The limit counts characters, not bytes, so multibyte replies are never
// cut mid-rune.
func TruncateForSpeech(text string) string {
	if utf8.RuneCountInString(text) <= spokenTextLimit {
		return text
	}
	return string([]rune(text)[:spokenTruncateAt]) + "…"
}

// panicTurn builds the best-effort reply for an unexpected internal error.
// It also repairs the stored transcript: whatever stage the pipeline died
// in, the session still gains exactly one user and one assistant message
// for this turn. appended says how many of those the normal path already
// wrote before the panic.
func (o *Orchestrator) panicTurn(ctx context.Context, in TurnInput, p persona.Config, transcript string, appended int) *TurnResult {
	if transcript == "" {
		transcript = strings.TrimSpace(in.Text)
	}
	if transcript == "" {
		transcript = transcriptionApology
	}
	reply := p.StyleText("Something went wrong on my end, but I'm still here. Could you try that again?")

	if appended == 0 {
		_ = o.store.Append(ctx, in.SessionID, session.Message{
			Role:      session.RoleUser,
			Content:   transcript,
			Timestamp: o.now(),
		})
	}
	if appended < 2 {
		_ = o.store.Append(ctx, in.SessionID, session.Message{
			Role:            session.RoleAssistant,
			Content:         reply,
			Timestamp:       o.now(),
			GenerationError: true,
		})
	}

	result := &TurnResult{
		SessionID:       in.SessionID,
		Transcript:      transcript,
		ReplyText:       reply,
		SpokenText:      reply,
		Skill:           skill.SkillNone,
		GenerationError: true,
		TextOnly:        true,
		Stage:           StageErrored,
	}
	synthCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	if clip, err := o.synth.Synthesize(synthCtx, reply, tts.Voice{ID: p.VoiceID}); err == nil {
		result.Audio = clip.Audio
		result.AudioURL = clip.AudioURL
		result.VoiceUsed = clip.VoiceUsed
		result.ServiceUsed = clip.ServiceUsed
		result.TextOnly = false
	}
	return result
}

// History returns the ordered transcript for a session. Unknown ids are
// reported with [fault.ErrNotFound].
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]session.Message, error) {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

// ClearHistory removes a session's transcript and any attached document.
func (o *Orchestrator) ClearHistory(ctx context.Context, sessionID string) error {
	o.mu.Lock()
	delete(o.docs, sessionID)
	o.mu.Unlock()
	return o.store.Clear(ctx, sessionID)
}

// AttachDocument extracts an upload, remembers it for follow-up questions,
// and runs the requested analysis as a text-only turn. Size and format
// violations surface as [fault.ErrInvalidInput] before any session
// mutation.
func (o *Orchestrator) AttachDocument(ctx context.Context, sessionID, filename string, data []byte, analysisType string) (*TurnResult, error) {
	extractCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	doc, err := o.extract.Extract(extractCtx, filename, data)
	if err != nil {
		return nil, err
	}

	if _, err := o.store.GetOrCreate(ctx, sessionID); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.docs[sessionID] = doc
	o.mu.Unlock()

	p := persona.Lookup(persona.Default)
	if analysisType == "" {
		analysisType = "summarize"
	}
	utterance := fmt.Sprintf("Uploaded document %s for %s analysis", filename, analysisType)

	if err := o.store.Append(ctx, sessionID, session.Message{
		Role:      session.RoleUser,
		Content:   utterance,
		Timestamp: o.now(),
	}); err != nil {
		return nil, err
	}

	handler, ok := o.handlers[skill.SkillDocument]
	if !ok {
		return nil, fmt.Errorf("orchestrator: %w: no document handler configured", fault.ErrUpstreamUnavailable)
	}
	handlerCtx, cancelHandle := context.WithTimeout(ctx, o.stageTimeout)
	defer cancelHandle()
	res := handler.Handle(handlerCtx, skill.Request{
		Utterance: utterance,
		Persona:   p,
		Params:    map[string]string{"analysis_type": analysisType},
		Document:  doc,
	})

	if err := o.store.Append(ctx, sessionID, session.Message{
		Role:      session.RoleAssistant,
		Content:   res.ResponseText,
		Timestamp: o.now(),
	}); err != nil {
		return nil, err
	}

	return &TurnResult{
		SessionID:    sessionID,
		Transcript:   utterance,
		ReplyText:    res.ResponseText,
		SpokenText:   TruncateForSpeech(res.ResponseText),
		Skill:        skill.SkillDocument,
		SkillMatched: true,
		TextOnly:     true,
		Stage:        StageResponded,
	}, nil
}

// document returns the session's attached document, nil when none exists.
func (o *Orchestrator) document(sessionID string) *docextract.Document {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs[sessionID]
}
