// Package mock provides a test double for the docextract.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
)

// ExtractCall records a single invocation of Extract.
type ExtractCall struct {
	Filename string
	Size     int
}

// Provider is a mock implementation of docextract.Provider.
type Provider struct {
	mu sync.Mutex

	// Document is returned by Extract when Err is nil.
	Document *docextract.Document

	// Err, if non-nil, is returned as the error from Extract.
	Err error

	// ExtractCalls records every invocation in order.
	ExtractCalls []ExtractCall
}

var _ docextract.Provider = (*Provider)(nil)

// Extract implements docextract.Provider.
func (p *Provider) Extract(_ context.Context, filename string, data []byte) (*docextract.Document, error) {
	p.mu.Lock()
	p.ExtractCalls = append(p.ExtractCalls, ExtractCall{Filename: filename, Size: len(data)})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Document == nil {
		return &docextract.Document{Filename: filename, Text: "mock text", WordCount: 2}, nil
	}
	return p.Document, nil
}
