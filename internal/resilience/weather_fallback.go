package resilience

import (
	"context"

	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
)

// WeatherFallback implements [weather.Provider] with automatic failover across
// multiple conditions backends. An unknown-city fault ends the chain
// immediately: a location the primary cannot resolve will not resolve anywhere.
type WeatherFallback struct {
	group *FallbackGroup[weather.Provider]
}

// Compile-time interface assertion.
var _ weather.Provider = (*WeatherFallback)(nil)

// NewWeatherFallback creates a [WeatherFallback] with primary as the preferred
// backend.
func NewWeatherFallback(primary weather.Provider, primaryName string, cfg FallbackConfig) *WeatherFallback {
	return &WeatherFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional weather provider as a fallback.
func (f *WeatherFallback) AddFallback(name string, provider weather.Provider) {
	f.group.AddFallback(name, provider)
}

// Current resolves conditions with the first healthy provider.
func (f *WeatherFallback) Current(ctx context.Context, city string) (*weather.Report, error) {
	return ExecuteWithResult(f.group, func(p weather.Provider) (*weather.Report, error) {
		return p.Current(ctx, city)
	})
}
