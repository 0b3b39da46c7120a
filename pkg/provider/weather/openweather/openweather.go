// Package openweather provides a weather.Provider backed by the
// OpenWeatherMap current weather endpoint. It is the fallback rung behind
// the primary WeatherAPI provider.
package openweather

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
	currentEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	defaultTimeout  = 10 * time.Second
)

// Option is a functional option for configuring the OpenWeather Provider.
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

// Provider implements weather.Provider backed by OpenWeatherMap.
type Provider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

var _ weather.Provider = (*Provider)(nil)

// New creates an OpenWeather Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openweather: apiKey must not be empty")
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

// currentResponse mirrors the subset of the OpenWeatherMap payload we consume.
type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current implements weather.Provider. Temperatures are requested in
// metric units so reports match the primary provider.
func (p *Provider) Current(ctx context.Context, city string) (*weather.Report, error) {
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("openweather: %w: city must not be empty", fault.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", p.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openweather: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fault.Upstream("openweather", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("openweather: %w: city %q", fault.ErrNotFound, city)
	default:
		return nil, fault.Upstream("openweather", fmt.Errorf("conditions returned %d", resp.StatusCode))
	}

	var cur currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		return nil, fault.Upstream("openweather", fmt.Errorf("decode response: %w", err))
	}

	description := ""
	if len(cur.Weather) > 0 {
		description = cur.Weather[0].Description
	}
	return &weather.Report{
		Location:     cur.Name,
		Country:      cur.Sys.Country,
		TemperatureC: cur.Main.Temp,
		FeelsLikeC:   cur.Main.FeelsLike,
		Humidity:     cur.Main.Humidity,
		Description:  description,
	}, nil
}
