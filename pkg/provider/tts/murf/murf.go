// Package murf provides a Murf.ai-backed TTS provider using the Murf REST
// speech generation API. It implements the tts.Provider interface.
package murf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
)

const (
	generateEndpoint = "https://api.murf.ai/v1/speech/generate"
	defaultVoice     = "en-US-natalie"
	defaultFormat    = "MP3"

	// maxClipBytes caps the downloaded clip size. Murf clips for a single
	// conversational turn are well under this.
	maxClipBytes = 16 << 20
)

// Option is a functional option for configuring the Murf Provider.
type Option func(*Provider)

// WithHTTPClient replaces the HTTP client used for API calls and clip
// downloads. Useful for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithEndpoint overrides the speech generation endpoint. Useful for tests.
func WithEndpoint(url string) Option {
	return func(p *Provider) {
		p.endpoint = url
	}
}

// WithFormat sets the requested audio format (e.g. "MP3", "WAV").
func WithFormat(format string) Option {
	return func(p *Provider) {
		p.format = format
	}
}

// Provider implements tts.Provider backed by the Murf speech API.
type Provider struct {
	apiKey     string
	endpoint   string
	format     string
	httpClient *http.Client
}

var _ tts.Provider = (*Provider)(nil)

// New creates a new Murf Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("murf: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		endpoint:   generateEndpoint,
		format:     defaultFormat,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// generateRequest is the JSON payload sent to the Murf generate endpoint.
type generateRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
	Format  string `json:"format,omitempty"`
	Pitch   int    `json:"pitch,omitempty"`
	Rate    int    `json:"rate,omitempty"`
	Style   string `json:"style,omitempty"`
}

// generateResponse mirrors the subset of the Murf response we consume.
type generateResponse struct {
	AudioFile     string  `json:"audioFile"`
	AudioLengthIn float64 `json:"audioLengthInSeconds"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
}

// Synthesize implements tts.Provider. It requests a clip from Murf and
// downloads the hosted audio so callers receive inline bytes.
func (p *Provider) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("murf: %w: text must not be empty", fault.ErrInvalidInput)
	}
	voiceID := voice.ID
	if voiceID == "" {
		voiceID = defaultVoice
	}

	body, err := json.Marshal(generateRequest{
		Text:    text,
		VoiceID: voiceID,
		Format:  p.format,
		Pitch:   voice.PitchDelta,
		Rate:    voice.RateDelta,
		Style:   voice.Style,
	})
	if err != nil {
		return nil, fmt.Errorf("murf: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("murf: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fault.Upstream("murf", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fault.Upstream("murf", fmt.Errorf("generate returned %d: %s", resp.StatusCode, snippet))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fault.Upstream("murf", fmt.Errorf("decode response: %w", err))
	}
	if gen.ErrorMessage != "" {
		return nil, fault.Upstream("murf", errors.New(gen.ErrorMessage))
	}
	if gen.AudioFile == "" {
		return nil, fmt.Errorf("murf: %w: response carried no audio file", fault.ErrUpstreamEmpty)
	}

	audio, err := p.download(ctx, gen.AudioFile)
	if err != nil {
		return nil, err
	}

	return &tts.Result{
		Audio:       audio,
		AudioURL:    gen.AudioFile,
		VoiceUsed:   voiceID,
		ServiceUsed: "murf",
	}, nil
}

// download fetches the hosted clip referenced by the generate response.
func (p *Provider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("murf: build download request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fault.Upstream("murf", fmt.Errorf("download clip: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Upstream("murf", fmt.Errorf("clip download returned %d", resp.StatusCode))
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
	if err != nil {
		return nil, fault.Upstream("murf", fmt.Errorf("read clip: %w", err))
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("murf: %w: clip download was empty", fault.ErrUpstreamEmpty)
	}
	return audio, nil
}
