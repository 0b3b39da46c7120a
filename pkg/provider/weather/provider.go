// Package weather defines the current-conditions provider contract used by
// the weather skill. Implementations live in subpackages ([weatherapi],
// [openweather]) and are composed through the resilience layer.
package weather

import "context"

// Report is the current weather for one location.
type Report struct {
	// Location is the resolved place name (e.g. "London").
	Location string

	// Region is the administrative region, when the backend reports one.
	Region string

	// Country is the resolved country name or code.
	Country string

	// TemperatureC is the current temperature in degrees Celsius.
	TemperatureC float64

	// FeelsLikeC is the apparent temperature in degrees Celsius.
	FeelsLikeC float64

	// Humidity is the relative humidity percentage.
	Humidity int

	// Description is the condition text (e.g. "Partly cloudy").
	Description string
}

// Provider resolves current conditions for a named city.
type Provider interface {
	// Current returns the current conditions for city. Unknown cities are
	// reported with an error wrapping fault.ErrNotFound; backend outages
	// with fault upstream errors so fallbacks engage.
	Current(ctx context.Context, city string) (*Report, error)
}
