package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/internal/persona"
	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
	llmmock "github.com/voxaura-ai/voxaura/pkg/provider/llm/mock"
	searchmock "github.com/voxaura-ai/voxaura/pkg/provider/search/mock"
	"github.com/voxaura-ai/voxaura/pkg/provider/search"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
	weathermock "github.com/voxaura-ai/voxaura/pkg/provider/weather/mock"
)

var defaultPersona = persona.Lookup(persona.Default)

func TestWeatherHandler_Success(t *testing.T) {
	t.Parallel()

	wm := &weathermock.Provider{Report: &weather.Report{
		Location:     "Paris",
		Country:      "France",
		TemperatureC: 18,
		FeelsLikeC:   17,
		Humidity:     65,
		Description:  "Clear",
	}}
	h := NewWeatherHandler(wm)

	res := h.Handle(context.Background(), Request{
		Utterance: "What's the weather in Paris?",
		Persona:   defaultPersona,
		Params:    map[string]string{"city": "Paris"},
	})
	if !res.Matched || res.Skill != SkillWeather {
		t.Fatalf("result = %+v, want matched weather", res)
	}
	if !strings.Contains(res.ResponseText, "Paris") || !strings.Contains(res.ResponseText, "18") {
		t.Fatalf("response %q should mention Paris and 18", res.ResponseText)
	}
}

func TestWeatherHandler_MissingCityAsks(t *testing.T) {
	t.Parallel()

	wm := &weathermock.Provider{}
	h := NewWeatherHandler(wm)

	res := h.Handle(context.Background(), Request{
		Utterance: "how's the weather",
		Persona:   defaultPersona,
		Params:    map[string]string{},
	})
	if !res.Matched || res.ResponseText == "" {
		t.Fatalf("result = %+v, want matched with a prompt for the city", res)
	}
	if len(wm.CurrentCalls) != 0 {
		t.Fatal("provider must not be called without a city")
	}
}

func TestWeatherHandler_UnknownCity(t *testing.T) {
	t.Parallel()

	wm := &weathermock.Provider{Err: fmt.Errorf("weatherapi: %w: city %q", fault.ErrNotFound, "Atlantis")}
	h := NewWeatherHandler(wm)

	res := h.Handle(context.Background(), Request{
		Persona: defaultPersona,
		Params:  map[string]string{"city": "Atlantis"},
	})
	if !res.Matched || !strings.Contains(res.ResponseText, "Atlantis") {
		t.Fatalf("response %q should name the unknown city", res.ResponseText)
	}
}

func TestWeatherHandler_UpstreamFailureApologizes(t *testing.T) {
	t.Parallel()

	wm := &weathermock.Provider{Err: errors.New("connection refused")}
	h := NewWeatherHandler(wm)

	res := h.Handle(context.Background(), Request{
		Persona: defaultPersona,
		Params:  map[string]string{"city": "Paris"},
	})
	if !res.Matched || res.ResponseText == "" {
		t.Fatalf("result = %+v, want matched apology", res)
	}
}

func TestSearchHandler_ComposesResults(t *testing.T) {
	t.Parallel()

	sm := &searchmock.Provider{Results: []search.Result{
		{Title: "LLMs", Snippet: "Large language models are neural networks trained on text"},
		{Title: "Transformers", Snippet: "The transformer architecture underpins modern LLMs"},
	}}
	h := NewSearchHandler(sm)

	res := h.Handle(context.Background(), Request{
		Utterance: "search for large language models",
		Persona:   defaultPersona,
		Params:    map[string]string{"query": "large language models"},
	})
	if !res.Matched || res.Skill != SkillSearch {
		t.Fatalf("result = %+v, want matched search", res)
	}
	if !strings.Contains(res.ResponseText, "large language models") {
		t.Fatalf("response %q should echo the query", res.ResponseText)
	}
	if !strings.Contains(res.ResponseText, "neural networks") {
		t.Fatalf("response %q should include the first snippet", res.ResponseText)
	}
}

func TestSearchHandler_FailureYieldsFallback(t *testing.T) {
	t.Parallel()

	sm := &searchmock.Provider{Err: errors.New("network unreachable")}
	h := NewSearchHandler(sm)

	res := h.Handle(context.Background(), Request{
		Utterance: "search for large language models",
		Persona:   defaultPersona,
		Params:    map[string]string{"query": "large language models"},
	})
	if !res.Matched || res.Skill != SkillSearch {
		t.Fatalf("result = %+v, want matched search even on failure", res)
	}
	if res.ResponseText == "" {
		t.Fatal("fallback reply must be non-empty")
	}
}

func TestStudyHandler_UsesTaskPrompt(t *testing.T) {
	t.Parallel()

	lm := &llmmock.Provider{Response: &llm.CompletionResponse{Text: "Photosynthesis converts light into glucose."}}
	h := NewStudyHandler(lm)

	res := h.Handle(context.Background(), Request{
		Utterance: "summarize photosynthesis",
		Persona:   defaultPersona,
		Params:    map[string]string{"task": "summarize", "topic": "photosynthesis"},
	})
	if !res.Matched || res.Skill != SkillStudy {
		t.Fatalf("result = %+v, want matched study", res)
	}
	req := lm.LastRequest()
	if !strings.Contains(req.SystemPrompt, "Summarize") {
		t.Fatalf("system prompt %q should select the summarize template", req.SystemPrompt)
	}
}

func TestDocumentHandler_NoUploadAsksForOne(t *testing.T) {
	t.Parallel()

	lm := &llmmock.Provider{}
	h := NewDocumentHandler(lm)

	res := h.Handle(context.Background(), Request{
		Utterance: "summarize my document",
		Persona:   defaultPersona,
		Params:    map[string]string{"analysis_type": "summarize"},
	})
	if !res.Matched || !strings.Contains(strings.ToLower(res.ResponseText), "upload") {
		t.Fatalf("response %q should ask for an upload", res.ResponseText)
	}
	if len(lm.CompleteCalls) != 0 {
		t.Fatal("generation must not run without a document")
	}
}

func TestDocumentHandler_AnalysisTemplate(t *testing.T) {
	t.Parallel()

	lm := &llmmock.Provider{Response: &llm.CompletionResponse{Text: "Key points: one, two."}}
	h := NewDocumentHandler(lm)

	res := h.Handle(context.Background(), Request{
		Utterance: "key points of the pdf",
		Persona:   defaultPersona,
		Params:    map[string]string{"analysis_type": "key_points"},
		Document:  &docextract.Document{Filename: "notes.pdf", Text: "Alpha. Beta.", WordCount: 2},
	})
	if !res.Matched || res.Skill != SkillDocument {
		t.Fatalf("result = %+v, want matched document", res)
	}
	req := lm.LastRequest()
	if len(req.Messages) == 0 || !strings.Contains(req.Messages[len(req.Messages)-1].Content, "key points") {
		t.Fatalf("prompt should carry the key_points template, got %+v", req.Messages)
	}
}

func TestDocumentHandler_CustomQuestionRoutesUtterance(t *testing.T) {
	t.Parallel()

	lm := &llmmock.Provider{Response: &llm.CompletionResponse{Text: "The budget section says 1.2 million."}}
	h := NewDocumentHandler(lm)

	question := "according to the document, how big was the budget shortfall last year?"
	res := h.Handle(context.Background(), Request{
		Utterance: question,
		Persona:   defaultPersona,
		Params:    map[string]string{"analysis_type": "summarize"},
		Document:  &docextract.Document{Filename: "report.pdf", Text: "Budget shortfall: 1.2M.", WordCount: 4},
	})
	if !res.Matched {
		t.Fatalf("result = %+v, want matched", res)
	}
	req := lm.LastRequest()
	if len(req.Messages) == 0 || !strings.Contains(req.Messages[len(req.Messages)-1].Content, "budget shortfall") {
		t.Fatalf("prompt should carry the custom question, got %+v", req.Messages)
	}
}
