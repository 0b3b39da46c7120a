// Package openai provides an OpenAI-backed LLM provider using the official
// openai-go SDK. It implements the llm.Provider interface and serves as the
// generation fallback behind Gemini.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
)

// defaultModel is the chat model used when none is configured.
const defaultModel = openai.ChatModelGPT4oMini

// Provider implements llm.Provider backed by the OpenAI chat completions API.
type Provider struct {
	client openai.Client
	model  string
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Option is a functional option for configuring the OpenAI Provider.
type Option func(*Provider)

// WithModel overrides the chat model id.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// New creates an OpenAI Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}
	p := &Provider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		if m.Role == "assistant" {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return &llm.CompletionResponse{ModelID: p.model}, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	return &llm.CompletionResponse{
		Text:      text,
		ModelID:   p.model,
		CharCount: len(text),
	}, nil
}
