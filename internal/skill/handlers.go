package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
	"github.com/voxaura-ai/voxaura/pkg/provider/search"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
)

// ── weather ───────────────────────────────────────────────────────────

// WeatherHandler answers conditions questions through a weather provider,
// usually a resilience fallback group.
type WeatherHandler struct {
	provider weather.Provider
}

var _ Handler = (*WeatherHandler)(nil)

// NewWeatherHandler creates a WeatherHandler.
func NewWeatherHandler(provider weather.Provider) *WeatherHandler {
	return &WeatherHandler{provider: provider}
}

// Handle implements Handler.
func (h *WeatherHandler) Handle(ctx context.Context, req Request) Result {
	city := req.Params["city"]
	if city == "" {
		return Result{
			Matched:      true,
			Skill:        SkillWeather,
			ResponseText: req.Persona.StyleText("Which city would you like the weather for?"),
		}
	}

	report, err := h.provider.Current(ctx, city)
	if err != nil {
		slog.Warn("weather lookup failed", "city", city, "error", err)
		if errors.Is(err, fault.ErrNotFound) {
			return Result{
				Matched:      true,
				Skill:        SkillWeather,
				ResponseText: req.Persona.StyleText(fmt.Sprintf("I couldn't find a city called %q. Could you check the spelling?", city)),
				Metadata:     map[string]any{"city": city},
			}
		}
		return Result{
			Matched:      true,
			Skill:        SkillWeather,
			ResponseText: req.Persona.Apology("I couldn't reach the weather service just now.", "check the weather API credentials"),
			Metadata:     map[string]any{"city": city},
		}
	}

	location := report.Location
	if report.Country != "" {
		location += ", " + report.Country
	}
	text := fmt.Sprintf("The weather in %s is %s, %.0f degrees Celsius (feels like %.0f) with %d%% humidity.",
		location, strings.ToLower(report.Description), report.TemperatureC, report.FeelsLikeC, report.Humidity)
	return Result{
		Matched:      true,
		Skill:        SkillWeather,
		ResponseText: req.Persona.StyleText(text),
		Metadata: map[string]any{
			"city":        city,
			"resolved":    report.Location,
			"temperature": report.TemperatureC,
		},
	}
}

// ── search ────────────────────────────────────────────────────────────

// searchLimit caps how many results feed one spoken reply.
const searchLimit = 3

// SearchHandler answers questions through a search provider, usually a
// fallback group ending with the offline knowledge base.
type SearchHandler struct {
	provider search.Provider
}

var _ Handler = (*SearchHandler)(nil)

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(provider search.Provider) *SearchHandler {
	return &SearchHandler{provider: provider}
}

// Handle implements Handler.
func (h *SearchHandler) Handle(ctx context.Context, req Request) Result {
	query := req.Params["query"]
	if query == "" {
		query = req.Utterance
	}

	results, err := h.provider.Search(ctx, query, searchLimit)
	if err != nil || len(results) == 0 {
		if err != nil {
			slog.Warn("search failed", "query", query, "error", err)
		}
		return Result{
			Matched:      true,
			Skill:        SkillSearch,
			ResponseText: req.Persona.StyleText(fmt.Sprintf("I couldn't find anything about %q right now. Maybe try rephrasing the question?", query)),
			Metadata:     map[string]any{"query": query},
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's what I found about %s. ", query)
	for i, r := range results {
		snippet := r.Snippet
		if snippet == "" {
			snippet = r.Title
		}
		fmt.Fprintf(&sb, "%d: %s. ", i+1, strings.TrimRight(snippet, ". "))
	}
	return Result{
		Matched:      true,
		Skill:        SkillSearch,
		ResponseText: req.Persona.StyleText(strings.TrimSpace(sb.String())),
		Metadata:     map[string]any{"query": query, "result_count": len(results)},
	}
}

// ── study ─────────────────────────────────────────────────────────────

// studyPrompts selects the generation instruction per study task.
var studyPrompts = map[string]string{
	"summarize": "You are a study assistant. Summarize the topic clearly in a few short paragraphs suitable for being read aloud.",
	"explain":   "You are a study assistant. Explain the topic step by step in plain language, as if teaching a curious student.",
	"quiz":      "You are a study assistant. Write 3 short quiz questions about the topic, then give the answers.",
}

// StudyHandler produces study aids through the generation collaborator.
type StudyHandler struct {
	llm llm.Provider
}

var _ Handler = (*StudyHandler)(nil)

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(provider llm.Provider) *StudyHandler {
	return &StudyHandler{llm: provider}
}

// Handle implements Handler.
func (h *StudyHandler) Handle(ctx context.Context, req Request) Result {
	task := req.Params["task"]
	prompt, ok := studyPrompts[task]
	if !ok {
		task = "explain"
		prompt = studyPrompts[task]
	}
	topic := req.Params["topic"]
	if topic == "" {
		topic = req.Utterance
	}

	resp, err := h.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompt,
		Messages:     []llm.Message{{Role: "user", Content: topic}},
	})
	if err != nil || resp.Text == "" {
		if err != nil {
			slog.Warn("study generation failed", "task", task, "error", err)
		}
		return Result{
			Matched:      true,
			Skill:        SkillStudy,
			ResponseText: req.Persona.Apology("I couldn't put together that study material just now.", "try again in a moment"),
			Metadata:     map[string]any{"task": task},
		}
	}
	return Result{
		Matched:      true,
		Skill:        SkillStudy,
		ResponseText: req.Persona.StyleText(resp.Text),
		Metadata:     map[string]any{"task": task, "topic": topic},
	}
}

// ── document ──────────────────────────────────────────────────────────

// analysisPrompts are the fixed templates applied when a document is
// analyzed without a custom question.
var analysisPrompts = map[string]string{
	"summarize":  "Provide a comprehensive summary of this document.",
	"questions":  "Write the most important questions this document answers, each with a short answer.",
	"key_points": "List the key points of this document as short spoken sentences.",
	"concepts":   "Explain the main concepts introduced in this document in plain language.",
}

// documentContextLimit bounds how much extracted text is sent to the
// generation collaborator per question.
const documentContextLimit = 8000

// DocumentHandler answers questions about the session's uploaded document.
// Three sub-cases: no upload yet (ask for one), upload plus a free-text
// question (route through chat with the text as context), upload with a
// bare analysis request (apply a fixed template).
type DocumentHandler struct {
	llm llm.Provider
}

var _ Handler = (*DocumentHandler)(nil)

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(provider llm.Provider) *DocumentHandler {
	return &DocumentHandler{llm: provider}
}

// Handle implements Handler.
func (h *DocumentHandler) Handle(ctx context.Context, req Request) Result {
	if req.Document == nil {
		return Result{
			Matched:      true,
			Skill:        SkillDocument,
			ResponseText: req.Persona.StyleText("I don't have a document from you yet. Upload a PDF, Word, or text file and I'll take a look."),
		}
	}

	analysisType := req.Params["analysis_type"]
	instruction, fixed := analysisPrompts[analysisType]
	if h.hasCustomQuestion(req) {
		instruction = req.Utterance
	} else if !fixed {
		instruction = analysisPrompts["summarize"]
		analysisType = "summarize"
	}

	text := req.Document.Text
	if len(text) > documentContextLimit {
		text = text[:documentContextLimit]
	}

	messages := append([]llm.Message{}, req.History...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Document %q:\n%s\n\n%s", req.Document.Filename, text, instruction),
	})

	resp, err := h.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: "You are a document analysis assistant. Answer using only the supplied document.",
		Messages:     messages,
	})
	if err != nil || resp.Text == "" {
		if err != nil {
			slog.Warn("document analysis failed", "file", req.Document.Filename, "error", err)
		}
		return Result{
			Matched:      true,
			Skill:        SkillDocument,
			ResponseText: req.Persona.Apology("I couldn't analyze that document just now.", "try asking again in a moment"),
			Metadata:     map[string]any{"filename": req.Document.Filename},
		}
	}
	return Result{
		Matched:      true,
		Skill:        SkillDocument,
		ResponseText: req.Persona.StyleText(resp.Text),
		Metadata: map[string]any{
			"filename":      req.Document.Filename,
			"word_count":    req.Document.WordCount,
			"analysis_type": analysisType,
		},
	}
}

// analysisFiller are words that make up a bare analysis request
// ("summarize the pdf please") rather than a real question.
var analysisFiller = map[string]bool{
	"pdf": true, "document": true, "file": true, "upload": true,
	"uploaded": true, "attached": true, "the": true, "this": true,
	"that": true, "my": true, "a": true, "an": true, "of": true,
	"please": true, "can": true, "you": true, "summarize": true,
	"summary": true, "analyze": true, "analysis": true, "key": true,
	"points": true, "concepts": true, "questions": true, "give": true,
	"me": true, "i": true,
}

// hasCustomQuestion reports whether the utterance asks something beyond a
// bare analysis request ("summarize the pdf", "key points of my document").
func (h *DocumentHandler) hasCustomQuestion(req Request) bool {
	count := 0
	for _, tok := range strings.Fields(strings.ToLower(req.Utterance)) {
		tok = strings.Trim(tok, "?.!,;:")
		if tok == "" || analysisFiller[tok] {
			continue
		}
		count++
	}
	return count > 2
}
