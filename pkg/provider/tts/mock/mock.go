// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	Text  string
	Voice tts.Voice
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Synthesize when Err is nil.
	Result *tts.Result

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// SynthesizeCalls records every invocation in order.
	SynthesizeCalls []SynthesizeCall
}

var _ tts.Provider = (*Provider)(nil)

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(_ context.Context, text string, voice tts.Voice) (*tts.Result, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Voice: voice})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Result == nil {
		return &tts.Result{Audio: []byte("audio"), VoiceUsed: voice.ID, ServiceUsed: "mock"}, nil
	}
	return p.Result, nil
}

// Calls returns a snapshot of recorded invocations.
func (p *Provider) Calls() []SynthesizeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SynthesizeCall, len(p.SynthesizeCalls))
	copy(out, p.SynthesizeCalls)
	return out
}
