package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout = 5 * time.Second

	// Provider quota is per-minute; stay comfortably under it.
	providerRatePerSecond = 1
	providerBurst         = 5
)

// RemoteProvider fetches live currency rates over HTTP.
type RemoteProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewRemoteProvider constructs a provider for the given rates endpoint.
func NewRemoteProvider(baseURL, apiKey string) (*RemoteProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("fx: empty provider url")
	}
	return &RemoteProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		limiter: rate.NewLimiter(providerRatePerSecond, providerBurst),
	}, nil
}

type providerResponse struct {
	Data []struct {
		CurrencyBase  string `json:"currency_base"`
		CurrencyQuote string `json:"currency_quote"`
		Close         string `json:"close"`
	} `json:"data"`
}

// Rates fetches the quote table for a base currency.
func (p *RemoteProvider) Rates(ctx context.Context, base string) (map[string]float64, error) {
	if p == nil {
		return nil, errors.New("fx: nil provider")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := p.baseURL + "/currencies"
	if p.apiKey != "" {
		url += "?apikey=" + p.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fx: provider status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	base = strings.ToUpper(base)
	rates := make(map[string]float64)
	for _, item := range payload.Data {
		if !strings.EqualFold(item.CurrencyBase, base) {
			continue
		}
		value, err := strconv.ParseFloat(item.Close, 64)
		if err != nil {
			continue
		}
		rates[strings.ToUpper(item.CurrencyQuote)] = value
	}
	return rates, nil
}
