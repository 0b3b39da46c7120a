// Package search defines the web-search provider contract used by the
// search skill. Implementations live in subpackages ([duckduckgo], [kb])
// and are composed through the resilience layer so a scraping failure
// degrades to curated knowledge-base answers.
package search

import "context"

// Result is a single search hit.
type Result struct {
	// Title is the result headline.
	Title string

	// Snippet is the short description shown under the headline.
	Snippet string

	// URL is the result link. Knowledge-base answers leave it empty.
	URL string
}

// Provider answers a free-text query with ranked results.
type Provider interface {
	// Search returns up to limit results for query, best first. An empty
	// result set from an otherwise healthy backend is reported as an
	// error wrapping fault.ErrUpstreamEmpty so fallbacks engage.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
