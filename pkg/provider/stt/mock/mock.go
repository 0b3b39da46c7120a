// Package mock provides a test double for the stt.Provider interface.
//
// Zero values for response fields cause methods to return zero values and
// nil errors. Set Err to inject a failure.
package mock

import (
	"context"
	"sync"

	"github.com/voxaura-ai/voxaura/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Audio is the clip passed to Transcribe.
	Audio []byte
	// Encoding is the encoding hint passed to Transcribe.
	Encoding string
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Transcribe when Err is nil.
	Result *stt.Transcription

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeCalls records every invocation in order.
	TranscribeCalls []TranscribeCall
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(_ context.Context, audio []byte, encoding string) (*stt.Transcription, error) {
	p.mu.Lock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Audio: audio, Encoding: encoding})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Result == nil {
		return &stt.Transcription{}, nil
	}
	return p.Result, nil
}

// Calls returns the number of Transcribe invocations recorded so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.TranscribeCalls)
}
