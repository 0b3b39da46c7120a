// Package assemblyai provides an AssemblyAI-backed STT provider using the
// official Go SDK. It implements the stt.Provider interface.
package assemblyai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/voxaura-ai/voxaura/pkg/provider/stt"
)

// Provider implements stt.Provider backed by the AssemblyAI transcription API.
type Provider struct {
	client *aai.Client
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// New creates an AssemblyAI Provider. apiKey must be non-empty.
func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("assemblyai: apiKey must not be empty")
	}
	return &Provider{client: aai.NewClient(apiKey)}, nil
}

// Transcribe uploads the clip and polls for the finished transcript. The
// SDK handles upload, submission, and polling; ctx bounds the whole
// round trip. The encoding hint is unused because AssemblyAI autodetects
// container formats.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, _ string) (*stt.Transcription, error) {
	if len(audio) == 0 {
		return nil, errors.New("assemblyai: empty audio clip")
	}

	transcript, err := p.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), nil)
	if err != nil {
		return nil, fmt.Errorf("assemblyai: transcribe: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai: transcription failed: %s", aai.ToString(transcript.Error))
	}

	text := strings.TrimSpace(aai.ToString(transcript.Text))
	result := &stt.Transcription{
		Text:       text,
		Confidence: aai.ToFloat64(transcript.Confidence),
		WordCount:  len(strings.Fields(text)),
	}
	if transcript.AudioDuration != nil {
		result.Duration = time.Duration(*transcript.AudioDuration) * time.Second
	}
	return result, nil
}
