// Package gemini provides a Google Gemini-backed LLM provider using the
// google.golang.org/genai SDK. It implements the llm.Provider interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
)

// defaultModel is the Gemini model used when none is configured.
const defaultModel = "gemini-2.5-flash"

// Provider implements llm.Provider backed by the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Gemini Provider.
type Option func(*Provider)

// WithModel overrides the Gemini model id.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// New creates a Gemini Provider. apiKey must be non-empty.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: apiKey must not be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	p := &Provider{client: client, model: defaultModel}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Complete implements llm.Provider. The conversation window is flattened
// into a single prompt because the assistant runs in a plain
// question/answer mode without tool calling.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var cfg *genai.GenerateContentConfig
	if req.SystemPrompt != "" || req.MaxTokens > 0 {
		cfg = &genai.GenerateContentConfig{}
		if req.SystemPrompt != "" {
			cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
		}
		if req.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(req.MaxTokens)
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(buildPrompt(req.Messages)), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	return &llm.CompletionResponse{
		Text:      text,
		ModelID:   p.model,
		CharCount: len(text),
	}, nil
}

// buildPrompt renders the conversation window as alternating labelled
// lines, ending with an open assistant turn.
func buildPrompt(messages []llm.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		label := "User"
		if m.Role == "assistant" {
			label = "Assistant"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}
