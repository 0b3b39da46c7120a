// Package duckduckgo provides a search.Provider backed by the DuckDuckGo
// HTML endpoint. It scrapes the lightweight no-JavaScript results page,
// which needs no API key.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/search"
)

const (
	htmlEndpoint = "https://html.duckduckgo.com/html/"

	// userAgent identifies us as a regular browser; the HTML endpoint
	// rejects requests with no User-Agent at all.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

	defaultTimeout = 10 * time.Second
)

// Option is a functional option for configuring the DuckDuckGo Provider.
type Option func(*Provider)

// WithHTTPClient replaces the HTTP client. Useful for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithEndpoint overrides the results endpoint. Useful for tests.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// Provider implements search.Provider by scraping DuckDuckGo HTML results.
type Provider struct {
	endpoint   string
	httpClient *http.Client
}

var _ search.Provider = (*Provider)(nil)

// New creates a DuckDuckGo Provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		endpoint:   htmlEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("duckduckgo: %w: query must not be empty", fault.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 3
	}

	reqURL := p.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fault.Upstream("duckduckgo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Upstream("duckduckgo", fmt.Errorf("results page returned %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fault.Upstream("duckduckgo", fmt.Errorf("parse results page: %w", err))
	}

	results := parseResults(doc, limit)
	if len(results) == 0 {
		return nil, fmt.Errorf("duckduckgo: %w: no results for %q", fault.ErrUpstreamEmpty, query)
	}
	return results, nil
}

// parseResults extracts up to limit organic results from the HTML page.
func parseResults(doc *goquery.Document, limit int) []search.Result {
	var results []search.Result
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		anchor := sel.Find(".result__a").First()
		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			return true
		}
		href, _ := anchor.Attr("href")
		results = append(results, search.Result{
			Title:   title,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			URL:     cleanHref(href),
		})
		return len(results) < limit
	})
	return results
}

// cleanHref unwraps DuckDuckGo's redirect links ("/l/?uddg=<encoded>") to
// the destination URL.
func cleanHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if u.Scheme == "" && u.Host == "" {
		return ""
	}
	return href
}
