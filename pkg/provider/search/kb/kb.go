// Package kb provides an offline knowledge-base search.Provider. It answers
// from a small curated topic index and serves as the last rung of the search
// fallback chain, so common questions still get a useful reply when the web
// is unreachable.
package kb

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/search"
)

// entry is one curated answer. Keys are matched as substrings of the
// lowercased query.
type entry struct {
	keys    []string
	title   string
	snippet string
}

var entries = []entry{
	{
		keys:    []string{"artificial intelligence", " ai ", "machine learning"},
		title:   "Artificial intelligence",
		snippet: "Artificial intelligence is the simulation of human intelligence by machines. Modern AI systems learn patterns from data to recognize speech, understand language, and make predictions.",
	},
	{
		keys:    []string{"python"},
		title:   "Python (programming language)",
		snippet: "Python is a high-level programming language known for readable syntax and a large ecosystem. It is widely used for web services, data analysis, and machine learning.",
	},
	{
		keys:    []string{"golang", "go programming"},
		title:   "Go (programming language)",
		snippet: "Go is a statically typed language designed at Google for building simple, reliable, and efficient software, with first-class support for concurrency.",
	},
	{
		keys:    []string{"internet"},
		title:   "Internet",
		snippet: "The Internet is a global network of interconnected computers that communicate using standardized protocols, carrying services such as the web, email, and streaming media.",
	},
	{
		keys:    []string{"climate change", "global warming"},
		title:   "Climate change",
		snippet: "Climate change refers to long-term shifts in global temperatures and weather patterns, driven primarily by greenhouse gas emissions from burning fossil fuels.",
	},
	{
		keys:    []string{"solar system", "planets"},
		title:   "Solar System",
		snippet: "The Solar System consists of the Sun and the objects bound to it by gravity, including eight planets, their moons, and countless asteroids and comets.",
	},
	{
		keys:    []string{"photosynthesis"},
		title:   "Photosynthesis",
		snippet: "Photosynthesis is the process by which plants convert light energy, water, and carbon dioxide into glucose and oxygen.",
	},
	{
		keys:    []string{"world war"},
		title:   "World Wars",
		snippet: "The two World Wars (1914-1918 and 1939-1945) were global conflicts that reshaped international politics, borders, and institutions in the twentieth century.",
	},
}

// Provider implements search.Provider over the curated index.
type Provider struct{}

var _ search.Provider = (*Provider)(nil)

// New creates a knowledge-base Provider.
func New() *Provider {
	return &Provider{}
}

// Search implements search.Provider. It returns every matching topic up to
// limit, and an error wrapping fault.ErrUpstreamEmpty when nothing matches.
func (p *Provider) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("kb: %w: query must not be empty", fault.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 3
	}

	// Pad with spaces so word-bounded keys like " ai " match at the edges.
	q := " " + strings.ToLower(query) + " "

	var results []search.Result
	for _, e := range entries {
		for _, key := range e.keys {
			if strings.Contains(q, key) {
				results = append(results, search.Result{Title: e.title, Snippet: e.snippet})
				break
			}
		}
		if len(results) >= limit {
			break
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("kb: %w: no curated answer for %q", fault.ErrUpstreamEmpty, query)
	}
	return results, nil
}
