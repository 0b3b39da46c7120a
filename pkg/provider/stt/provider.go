// Package stt defines the Provider interface for speech-to-text backends.
//
// An STT provider wraps a transcription service and exposes a single-shot
// request/response contract: one finished audio clip in, one transcript
// out. The orchestrator invokes it with a bounded timeout and treats any
// failure as an absorbable upstream error.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"time"
)

// Transcription is the result of transcribing one audio clip.
type Transcription struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0–1.0). Zero when the
	// provider does not report confidence.
	Confidence float64

	// Duration is the length of the source audio, when reported.
	Duration time.Duration

	// WordCount is the number of words in Text.
	WordCount int
}

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe converts the audio clip to text. encoding is a hint such
	// as "webm", "wav", or "mp3"; providers that autodetect may ignore it.
	//
	// Returns an error if the clip cannot be transcribed or ctx expires.
	// An empty-but-successful recognition result is returned as a
	// Transcription with empty Text, not an error; the caller decides how
	// to treat silence.
	Transcribe(ctx context.Context, audio []byte, encoding string) (*Transcription, error)
}
