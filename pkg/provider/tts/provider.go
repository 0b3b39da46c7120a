// Package tts defines the speech-synthesis provider contract.
//
// A Provider turns assistant text into a playable audio clip for a given
// voice profile. Implementations live in subpackages (e.g. [murf], [local])
// and are composed through the resilience layer so that a cloud outage
// degrades to a locally generated clip instead of a silent turn.
package tts

import "context"

// Voice describes how a clip should sound. The zero value selects the
// provider's default voice with neutral pitch and rate.
type Voice struct {
	// ID is the provider-specific voice identifier (e.g. "en-US-natalie").
	ID string

	// PitchDelta shifts the voice pitch in provider units. Negative is lower.
	PitchDelta int

	// RateDelta shifts the speaking rate in provider units. Negative is slower.
	RateDelta int

	// Style is an optional delivery style hint (e.g. "gruff"). Providers
	// that do not support styles ignore it.
	Style string
}

// Result is a finished synthesis.
type Result struct {
	// Audio is the encoded clip. May be empty when the provider returns a
	// hosted URL instead of inline bytes.
	Audio []byte

	// AudioURL is a fetchable location for the clip, when the provider
	// hosts output remotely.
	AudioURL string

	// VoiceUsed is the voice ID the provider actually applied.
	VoiceUsed string

	// ServiceUsed names the backend that produced the clip (e.g. "murf",
	// "local"). Set by the provider, surfaced to clients for debugging.
	ServiceUsed string
}

// Provider synthesizes speech from text.
type Provider interface {
	// Synthesize renders text as audio using the given voice. Text must be
	// non-empty; implementations return an error wrapping
	// fault.ErrInvalidInput otherwise.
	Synthesize(ctx context.Context, text string, voice Voice) (*Result, error)
}
