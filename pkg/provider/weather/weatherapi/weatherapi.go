// Package weatherapi provides a weather.Provider backed by the
// WeatherAPI.com current conditions endpoint.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
)

const (
	currentEndpoint = "https://api.weatherapi.com/v1/current.json"
	defaultTimeout  = 10 * time.Second

	// errCodeNoMatch is WeatherAPI's "no matching location found" code.
	errCodeNoMatch = 1006
)

// Option is a functional option for configuring the WeatherAPI Provider.
type Option func(*Provider)

// WithHTTPClient replaces the HTTP client. Useful for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithEndpoint overrides the conditions endpoint. Useful for tests.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// Provider implements weather.Provider backed by WeatherAPI.com.
type Provider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

var _ weather.Provider = (*Provider)(nil)

// New creates a WeatherAPI Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("weatherapi: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		endpoint:   currentEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// currentResponse mirrors the subset of the WeatherAPI payload we consume.
type currentResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		FeelsLike float64 `json:"feelslike_c"`
		Humidity  int     `json:"humidity"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Current implements weather.Provider.
func (p *Provider) Current(ctx context.Context, city string) (*weather.Report, error) {
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("weatherapi: %w: city must not be empty", fault.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("q", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weatherapi: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fault.Upstream("weatherapi", err)
	}
	defer resp.Body.Close()

	var cur currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		return nil, fault.Upstream("weatherapi", fmt.Errorf("decode response: %w", err))
	}

	if cur.Error != nil {
		if cur.Error.Code == errCodeNoMatch {
			return nil, fmt.Errorf("weatherapi: %w: city %q", fault.ErrNotFound, city)
		}
		return nil, fault.Upstream("weatherapi", fmt.Errorf("api error %d: %s", cur.Error.Code, cur.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.Upstream("weatherapi", fmt.Errorf("conditions returned %d", resp.StatusCode))
	}

	return &weather.Report{
		Location:     cur.Location.Name,
		Region:       cur.Location.Region,
		Country:      cur.Location.Country,
		TemperatureC: cur.Current.TempC,
		FeelsLikeC:   cur.Current.FeelsLike,
		Humidity:     cur.Current.Humidity,
		Description:  cur.Current.Condition.Text,
	}, nil
}
