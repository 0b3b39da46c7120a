package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/internal/session"
	"github.com/voxaura-ai/voxaura/internal/skill"
	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
	extractmock "github.com/voxaura-ai/voxaura/pkg/provider/docextract/mock"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
	llmmock "github.com/voxaura-ai/voxaura/pkg/provider/llm/mock"
	searchmock "github.com/voxaura-ai/voxaura/pkg/provider/search/mock"
	"github.com/voxaura-ai/voxaura/pkg/provider/stt"
	sttmock "github.com/voxaura-ai/voxaura/pkg/provider/stt/mock"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
	ttsmock "github.com/voxaura-ai/voxaura/pkg/provider/tts/mock"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
	weathermock "github.com/voxaura-ai/voxaura/pkg/provider/weather/mock"
)

// testEnv bundles an orchestrator with its injected mocks.
type testEnv struct {
	store   *session.MemStore
	stt     *sttmock.Provider
	chat    *llmmock.Provider
	tts     *ttsmock.Provider
	extract *extractmock.Provider
	weather *weathermock.Provider
	search  *searchmock.Provider
	orch    *Orchestrator
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:   session.NewMemStore(),
		stt:     &sttmock.Provider{Result: &stt.Transcription{Text: "hello"}},
		chat:    &llmmock.Provider{Response: &llm.CompletionResponse{Text: "Hi! How can I help?"}},
		tts:     &ttsmock.Provider{Result: &tts.Result{Audio: []byte("clip"), VoiceUsed: "en-US-natalie", ServiceUsed: "mock"}},
		extract: &extractmock.Provider{},
		weather: &weathermock.Provider{},
		search:  &searchmock.Provider{},
	}
	handlers := map[skill.Skill]skill.Handler{
		skill.SkillWeather:  skill.NewWeatherHandler(env.weather),
		skill.SkillSearch:   skill.NewSearchHandler(env.search),
		skill.SkillStudy:    skill.NewStudyHandler(env.chat),
		skill.SkillDocument: skill.NewDocumentHandler(env.chat),
	}
	env.orch = New(env.store, env.stt, env.chat, env.tts, env.extract, handlers)
	return env
}

func TestProcessTurn_EmptyInputRejectedWithoutMutation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "   "})
	if !errors.Is(err, fault.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if env.store.Len() != 0 {
		t.Fatal("empty input must not create a session")
	}
}

func TestProcessTurn_TwoMessagesPerTurnAlways(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	// Turn 1: everything healthy.
	if _, err := env.orch.ProcessTurn(ctx, TurnInput{SessionID: "s1", Text: "good morning"}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	// Turn 2: transcription fails.
	env.stt.Err = errors.New("stt down")
	if _, err := env.orch.ProcessTurn(ctx, TurnInput{SessionID: "s1", Audio: []byte("pcm")}); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	// Turn 3: generation and synthesis fail.
	env.chat.Err = errors.New("llm down")
	env.tts.Err = errors.New("tts down")
	if _, err := env.orch.ProcessTurn(ctx, TurnInput{SessionID: "s1", Text: "still there?"}); err != nil {
		t.Fatalf("turn 3: %v", err)
	}

	sess, err := env.store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got := len(sess.Messages); got != 6 {
		t.Fatalf("messages = %d, want 6 after 3 turns", got)
	}
	for i, m := range sess.Messages {
		wantRole := session.RoleUser
		if i%2 == 1 {
			wantRole = session.RoleAssistant
		}
		if m.Role != wantRole {
			t.Errorf("message %d role = %q, want %q", i, m.Role, wantRole)
		}
	}
}

func TestProcessTurn_TranscriptionFailureStillSpeaks(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.stt.Err = errors.New("recognizer unavailable")

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Audio: []byte("pcm")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TranscriptionError {
		t.Fatal("TranscriptionError flag not set")
	}
	if res.Transcript != transcriptionApology {
		t.Fatalf("transcript = %q, want apology", res.Transcript)
	}
	if res.TextOnly || len(res.Audio) == 0 {
		t.Fatal("turn must still produce a spoken reply")
	}

	sess, _ := env.store.Get(context.Background(), "s1")
	if !sess.Messages[0].TranscriptionError {
		t.Fatal("stored user message must carry the transcription_error flag")
	}
}

func TestProcessTurn_WeatherEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.weather.Report = &weather.Report{
		Location:     "Paris",
		Country:      "France",
		TemperatureC: 18,
		Description:  "clear",
	}

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{
		SessionID: "s1",
		Text:      "What's the weather in Paris?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SkillMatched || res.Skill != skill.SkillWeather {
		t.Fatalf("skill = %q matched=%v, want matched weather", res.Skill, res.SkillMatched)
	}
	if !strings.Contains(res.ReplyText, "Paris") || !strings.Contains(res.ReplyText, "18") {
		t.Fatalf("reply %q should mention Paris and 18", res.ReplyText)
	}
	if len(env.chat.CompleteCalls) != 0 {
		t.Fatal("generic chat must not run when a skill matched")
	}
}

func TestProcessTurn_SearchFailureYieldsFallback(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.search.Err = errors.New("search unreachable")

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{
		SessionID: "s1",
		Text:      "search for large language models",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SkillMatched || res.Skill != skill.SkillSearch {
		t.Fatalf("skill = %q matched=%v, want matched search", res.Skill, res.SkillMatched)
	}
	if res.ReplyText == "" {
		t.Fatal("fallback reply must be non-empty")
	}
}

func TestProcessTurn_ChatFallbackIsContextual(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.chat.Err = errors.New("llm down")

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "hello over there"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.GenerationError {
		t.Fatal("GenerationError flag not set")
	}
	if !strings.HasPrefix(res.ReplyText, "Hello!") {
		t.Fatalf("reply %q should use the greeting fallback", res.ReplyText)
	}
}

func TestProcessTurn_SynthesisFailureCompletesTextOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.tts.Err = errors.New("voice service down")

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "good morning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TextOnly {
		t.Fatal("TextOnly must be set when synthesis fails")
	}
	if res.ReplyText == "" || len(res.Audio) != 0 {
		t.Fatalf("result = %+v, want text reply without audio", res)
	}
	if res.Stage != StageResponded {
		t.Fatalf("stage = %q, want responded", res.Stage)
	}
}

func TestProcessTurn_LongReplyTruncatedForSpeechOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	long := strings.Repeat("a", 3500)
	env.chat.Response = &llm.CompletionResponse{Text: long}

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "good morning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ReplyText != long {
		t.Fatal("full reply must be preserved")
	}
	want := strings.Repeat("a", 2900) + "…"
	if res.SpokenText != want {
		t.Fatalf("spoken text = %d bytes, want 2900 + ellipsis", len(res.SpokenText))
	}
	if got := env.tts.Calls()[0].Text; got != want {
		t.Fatal("synthesis must receive the truncated text")
	}

	sess, _ := env.store.Get(context.Background(), "s1")
	if sess.Messages[1].Content != long {
		t.Fatal("stored assistant message must keep the full reply")
	}
}

func TestTruncateForSpeech_ShortTextUntouched(t *testing.T) {
	t.Parallel()
	if got := TruncateForSpeech("short"); got != "short" {
		t.Fatalf("got %q", got)
	}
	exact := strings.Repeat("b", 3000)
	if got := TruncateForSpeech(exact); got != exact {
		t.Fatal("text at the limit must not be truncated")
	}
	// 2500 characters but 5000 bytes: the limit counts characters.
	multibyte := strings.Repeat("é", 2500)
	if got := TruncateForSpeech(multibyte); got != multibyte {
		t.Fatal("multibyte text within the character limit must not be truncated")
	}
}

func TestProcessTurn_MultibyteReplyTruncatedByCharacter(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	long := strings.Repeat("a", 2899) + strings.Repeat("é", 601)
	env.chat.Response = &llm.CompletionResponse{Text: long}

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "good morning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Repeat("a", 2899) + "é…"
	if res.SpokenText != want {
		t.Fatalf("spoken text = %d runes, want 2900 chars + ellipsis", len([]rune(res.SpokenText)))
	}
	if !utf8.ValidString(res.SpokenText) {
		t.Fatal("truncation must never split a rune")
	}
	if got := env.tts.Calls()[0].Text; got != want {
		t.Fatal("synthesis must receive the character-truncated text")
	}
}

func TestHistoryAndClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.orch.History(ctx, "missing"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := env.orch.ProcessTurn(ctx, TurnInput{SessionID: "s1", Text: "good morning"}); err != nil {
		t.Fatalf("turn: %v", err)
	}
	msgs, err := env.orch.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("history length = %d, want 2", len(msgs))
	}

	if err := env.orch.ClearHistory(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := env.orch.History(ctx, "s1"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("err after clear = %v, want ErrNotFound", err)
	}
}

func TestAttachDocument_RunsAnalysisTurn(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.extract.Document = &docextract.Document{Filename: "notes.txt", Text: "Alpha beta gamma.", WordCount: 3}
	env.chat.Response = &llm.CompletionResponse{Text: "The document lists three Greek letters."}
	ctx := context.Background()

	res, err := env.orch.AttachDocument(ctx, "s1", "notes.txt", []byte("Alpha beta gamma."), "summarize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SkillMatched || res.Skill != skill.SkillDocument {
		t.Fatalf("result = %+v, want matched document", res)
	}

	sess, _ := env.store.Get(ctx, "s1")
	if len(sess.Messages) != 2 {
		t.Fatalf("messages = %d, want upload turn recorded as 2", len(sess.Messages))
	}

	// Follow-up questions now see the attached document.
	res, err = env.orch.ProcessTurn(ctx, TurnInput{
		SessionID: "s1",
		Text:      "according to the document, which letters are listed there?",
	})
	if err != nil {
		t.Fatalf("follow-up: %v", err)
	}
	if res.Skill != skill.SkillDocument {
		t.Fatalf("follow-up skill = %q, want document", res.Skill)
	}
}

func TestAttachDocument_InvalidUploadRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.extract.Err = fmt.Errorf("docextract: %w: unsupported file type", fault.ErrInvalidInput)

	_, err := env.orch.AttachDocument(context.Background(), "s1", "malware.exe", []byte{1}, "")
	if !errors.Is(err, fault.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if env.store.Len() != 0 {
		t.Fatal("rejected upload must not mutate the session store")
	}
}

// panicHandler stands in for a skill handler with an internal bug.
type panicHandler struct{}

func (panicHandler) Handle(context.Context, skill.Request) skill.Result {
	panic("handler exploded")
}

func TestProcessTurn_PanicStillRecordsFullTurn(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.orch.handlers[skill.SkillWeather] = panicHandler{}

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "what's the weather in paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stage != StageErrored || !res.GenerationError {
		t.Fatalf("result = %+v, want errored turn with generation flag", res)
	}
	if res.ReplyText == "" {
		t.Fatal("errored turn must still carry a reply")
	}

	sess, err := env.store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 even when the handler panics", len(sess.Messages))
	}
	if sess.Messages[0].Role != session.RoleUser || sess.Messages[1].Role != session.RoleAssistant {
		t.Fatalf("roles = %q, %q", sess.Messages[0].Role, sess.Messages[1].Role)
	}
	if !sess.Messages[1].GenerationError {
		t.Fatal("manufactured reply must be flagged as a generation failure")
	}
	if sess.Messages[1].Content != res.ReplyText {
		t.Fatal("manufactured reply must be stored in the transcript")
	}
}

func TestProcessTurn_SkillWithoutHandlerFallsToChat(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	delete(env.orch.handlers, skill.SkillWeather)

	res, err := env.orch.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", Text: "what's the weather in paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skill != skill.SkillNone || res.SkillMatched {
		t.Fatalf("skill = %q matched=%v, want none/unmatched without a handler", res.Skill, res.SkillMatched)
	}
	if res.ReplyText != "Hi! How can I help?" {
		t.Fatalf("reply = %q, want the chat reply", res.ReplyText)
	}
	if got := len(env.weather.CurrentCalls); got != 0 {
		t.Fatalf("weather calls = %d, want 0", got)
	}
}
