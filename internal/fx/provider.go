package fx

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownCurrency is returned when a conversion target is not quoted.
var ErrUnknownCurrency = errors.New("fx: unknown currency code")

// Provider answers currency rate lookups for a base currency.
type Provider interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}

// FallbackRates is the fixed demo table used when no provider is
// configured or the provider fails.
func FallbackRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"INR": 83.0,
		"EUR": 0.92,
		"GBP": 0.78,
	}
}

// Service resolves rates with provider-then-fallback semantics.
type Service struct {
	provider Provider
}

// NewService constructs a Service. A nil provider means fallback only.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Rates returns the rate table for a base currency. Provider failure
// or an empty result degrades to the fallback table.
func (s *Service) Rates(ctx context.Context, base string) map[string]float64 {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}
	if s != nil && s.provider != nil {
		rates, err := s.provider.Rates(ctx, base)
		if err == nil && len(rates) > 0 {
			return rates
		}
	}
	return FallbackRates()
}

// Convert converts an amount between currencies using the from-based
// rate table.
func (s *Service) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	to = strings.ToUpper(strings.TrimSpace(to))
	rates := s.Rates(ctx, from)
	rate, ok := rates[to]
	if !ok {
		rate, ok = FallbackRates()[to]
	}
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return amount * rate, nil
}
