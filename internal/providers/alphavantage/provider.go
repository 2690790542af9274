// Package alphavantage implements the Alpha Vantage data provider.
// Alpha Vantage offers company fundamentals via a REST API with API key
// authentication. It covers the OVERVIEW, INCOME_STATEMENT, and EARNINGS
// endpoints, which together yield the fundamentals bundle used for
// projections.
//
// Free tier: 25 requests/day.
// Docs: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/frhd/quantum-kapital/internal/infra"
	"github.com/frhd/quantum-kapital/internal/provider"
)

const (
	providerName = "alphavantage"
	baseURL      = "https://www.alphavantage.co/query"
	credAPIKey   = "api_key"

	// paramAPIKey is the internal param the provider injects for fetchers.
	paramAPIKey = "_av_api_key"
)

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new Alpha Vantage provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - company fundamentals and earnings",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key from alphavantage.co",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newFundamentalsFetcher())
	p.RegisterFetcher(newCompanyOverviewFetcher())
	p.RegisterFetcher(newAnalystEstimatesFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity to Alpha Vantage.
func (p *Provider) Ping(ctx context.Context) error {
	url := avURL("OVERVIEW", "IBM", p.apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	body.Close()
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the Alpha Vantage API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	// Inject API key so fetchers don't need to know about credential management.
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramAPIKey] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// avURL builds a full Alpha Vantage query URL.
func avURL(function, symbol, apiKey string) string {
	return fmt.Sprintf("%s?function=%s&symbol=%s&apikey=%s", baseURL, function, symbol, apiKey)
}

// fetchAVJSON performs a GET request to Alpha Vantage and decodes the response.
// Alpha Vantage signals errors inside an HTTP 200 body, so the envelope is
// checked before decoding into dest.
func fetchAVJSON(ctx context.Context, function, symbol, apiKey string, dest any) error {
	url := avURL(function, symbol, apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkAPIError(data); err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse Alpha Vantage JSON: %w", err)
	}
	return nil
}

// checkAPIError inspects the response for the Alpha Vantage error envelope.
func checkAPIError(data []byte) error {
	var envelope avAPIError
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Not an object (shouldn't happen for these endpoints); let the
		// caller's decode report the real problem.
		return nil
	}
	switch {
	case envelope.ErrorMessage != "":
		return fmt.Errorf("alphavantage API error: %s", envelope.ErrorMessage)
	case envelope.Note != "":
		return fmt.Errorf("alphavantage rate limit reached: %s", envelope.Note)
	case envelope.Information != "":
		return fmt.Errorf("alphavantage API: %s", envelope.Information)
	}
	return nil
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
