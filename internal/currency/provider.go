package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRateNotFound is returned when the source knows nothing about a currency pair
var ErrRateNotFound = errors.New("rate not found")

// Provider defines an exchange-rate source
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rate returns how many units of target one unit of base buys
	Rate(ctx context.Context, base, target string) (float64, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FallbackProvider tries multiple providers in order
type FallbackProvider struct {
	providers []Provider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

// Name returns the combined provider name
func (f *FallbackProvider) Name() string {
	return "fallback"
}

// Rate asks each provider in order until one succeeds. A non-retryable
// ProviderError (unknown pair, bad request) stops the chain.
func (f *FallbackProvider) Rate(ctx context.Context, base, target string) (float64, error) {
	if len(f.providers) == 0 {
		return 0, fmt.Errorf("no rate providers configured")
	}

	var lastErr error
	for _, p := range f.providers {
		rate, err := p.Rate(ctx, base, target)
		if err == nil {
			return rate, nil
		}
		lastErr = err

		var pe *ProviderError
		if errors.As(err, &pe) && !pe.Retryable {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}

// Normalize upper-cases and trims a currency code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
