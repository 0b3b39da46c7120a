package resilience

import (
	"context"

	"github.com/voxaura-ai/voxaura/pkg/provider/search"
)

// SearchFallback implements [search.Provider] with automatic failover across
// multiple search backends. The last entry is typically the offline knowledge
// base, so common questions still get an answer when the web is unreachable.
type SearchFallback struct {
	group *FallbackGroup[search.Provider]
}

// Compile-time interface assertion.
var _ search.Provider = (*SearchFallback)(nil)

// NewSearchFallback creates a [SearchFallback] with primary as the preferred
// backend.
func NewSearchFallback(primary search.Provider, primaryName string, cfg FallbackConfig) *SearchFallback {
	return &SearchFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional search provider as a fallback.
func (f *SearchFallback) AddFallback(name string, provider search.Provider) {
	f.group.AddFallback(name, provider)
}

// Search queries the first healthy provider. An empty result set counts as a
// failure so the next backend gets a chance to answer.
func (f *SearchFallback) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	return ExecuteWithResult(f.group, func(p search.Provider) ([]search.Result, error) {
		return p.Search(ctx, query, limit)
	})
}
