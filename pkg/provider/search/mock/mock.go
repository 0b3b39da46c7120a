// Package mock provides a test double for the search.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxaura-ai/voxaura/pkg/provider/search"
)

// SearchCall records a single invocation of Search.
type SearchCall struct {
	Query string
	Limit int
}

// Provider is a mock implementation of search.Provider.
type Provider struct {
	mu sync.Mutex

	// Results is returned by Search when Err is nil.
	Results []search.Result

	// Err, if non-nil, is returned as the error from Search.
	Err error

	// SearchCalls records every invocation in order.
	SearchCalls []SearchCall
}

var _ search.Provider = (*Provider)(nil)

// Search implements search.Provider.
func (p *Provider) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	p.mu.Lock()
	p.SearchCalls = append(p.SearchCalls, SearchCall{Query: query, Limit: limit})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Results, nil
}
