// Package mock provides a test double for the weather.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxaura-ai/voxaura/pkg/provider/weather"
)

// Provider is a mock implementation of weather.Provider.
type Provider struct {
	mu sync.Mutex

	// Report is returned by Current when Err is nil.
	Report *weather.Report

	// Err, if non-nil, is returned as the error from Current.
	Err error

	// CurrentCalls records the city argument of every invocation in order.
	CurrentCalls []string
}

var _ weather.Provider = (*Provider)(nil)

// Current implements weather.Provider.
func (p *Provider) Current(_ context.Context, city string) (*weather.Report, error) {
	p.mu.Lock()
	p.CurrentCalls = append(p.CurrentCalls, city)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Report == nil {
		return &weather.Report{Location: city, TemperatureC: 20, Description: "clear"}, nil
	}
	return p.Report, nil
}
