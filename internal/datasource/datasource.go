// Package datasource provides the typed data-access facade used by the API
// server and CLI. It routes requests through the provider registry, which
// handles caching, rate limiting, and fallback across providers, and
// narrows the untyped fetch results back to concrete model types.
package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// batchConcurrency bounds parallel symbol fetches in FundamentalsBatch.
const batchConcurrency = 4

// ErrNoData is returned when no provider could supply data for a symbol.
type ErrNoData struct {
	Symbol string
	Model  provider.ModelType
}

func (e *ErrNoData) Error() string {
	return fmt.Sprintf("no %s data available for %q", e.Model, e.Symbol)
}

// ErrBadPayload is returned when a provider delivers an unexpected data type.
type ErrBadPayload struct {
	Provider string
	Model    provider.ModelType
	Got      any
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("provider %q returned %T for model %s", e.Provider, e.Got, e.Model)
}

// Service is the data-access facade over the provider registry.
type Service struct {
	registry *provider.Registry
}

// New creates a service over the given registry.
func New(registry *provider.Registry) *Service {
	return &Service{registry: registry}
}

// NewDefault creates a service over the global provider registry.
func NewDefault() *Service {
	return New(provider.Global())
}

// Registry exposes the underlying provider registry, mainly for status
// reporting.
func (s *Service) Registry() *provider.Registry {
	return s.registry
}

// Fundamentals returns the fundamentals bundle for a symbol, trying
// providers in priority order until one succeeds.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*models.FundamentalData, error) {
	result, err := s.registry.FetchWithFallback(ctx, provider.ModelFundamentals, provider.QueryParams{
		provider.ParamSymbol: strings.ToUpper(symbol),
	})
	if err != nil {
		return nil, &ErrNoData{Symbol: symbol, Model: provider.ModelFundamentals}
	}
	data, ok := result.Data.(*models.FundamentalData)
	if !ok {
		return nil, &ErrBadPayload{Provider: result.Provider, Model: result.Model, Got: result.Data}
	}
	return data, nil
}

// FundamentalsFrom fetches fundamentals from one named provider, without
// fallback. Used when the caller pins a provider explicitly.
func (s *Service) FundamentalsFrom(ctx context.Context, providerName, symbol string) (*models.FundamentalData, error) {
	result, err := s.registry.Fetch(ctx, provider.ModelFundamentals, provider.QueryParams{
		provider.ParamSymbol:   strings.ToUpper(symbol),
		provider.ParamProvider: providerName,
	})
	if err != nil {
		return nil, err
	}
	data, ok := result.Data.(*models.FundamentalData)
	if !ok {
		return nil, &ErrBadPayload{Provider: result.Provider, Model: result.Model, Got: result.Data}
	}
	return data, nil
}

// Overview returns the live market snapshot for a symbol.
func (s *Service) Overview(ctx context.Context, symbol string) (*models.CurrentMetrics, error) {
	result, err := s.registry.FetchWithFallback(ctx, provider.ModelCompanyOverview, provider.QueryParams{
		provider.ParamSymbol: strings.ToUpper(symbol),
	})
	if err != nil {
		return nil, &ErrNoData{Symbol: symbol, Model: provider.ModelCompanyOverview}
	}
	metrics, ok := result.Data.(*models.CurrentMetrics)
	if !ok {
		return nil, &ErrBadPayload{Provider: result.Provider, Model: result.Model, Got: result.Data}
	}
	return metrics, nil
}

// Estimates returns forward consensus estimates for a symbol.
func (s *Service) Estimates(ctx context.Context, symbol string) (*models.AnalystEstimates, error) {
	result, err := s.registry.FetchWithFallback(ctx, provider.ModelAnalystEstimates, provider.QueryParams{
		provider.ParamSymbol: strings.ToUpper(symbol),
	})
	if err != nil {
		return nil, &ErrNoData{Symbol: symbol, Model: provider.ModelAnalystEstimates}
	}
	estimates, ok := result.Data.(*models.AnalystEstimates)
	if !ok {
		return nil, &ErrBadPayload{Provider: result.Provider, Model: result.Model, Got: result.Data}
	}
	return estimates, nil
}

// News returns recent market news, optionally filtered by a free-text
// query such as a ticker or company name.
func (s *Service) News(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	params := provider.QueryParams{}
	if query != "" {
		params[provider.ParamQuery] = query
	}
	if limit > 0 {
		params[provider.ParamLimit] = strconv.Itoa(limit)
	}

	result, err := s.registry.FetchWithFallback(ctx, provider.ModelMarketNews, params)
	if err != nil {
		return nil, &ErrNoData{Symbol: query, Model: provider.ModelMarketNews}
	}
	items, ok := result.Data.([]models.NewsItem)
	if !ok {
		return nil, &ErrBadPayload{Provider: result.Provider, Model: result.Model, Got: result.Data}
	}
	return items, nil
}

// FundamentalsBatch fetches fundamentals for several symbols concurrently.
// Symbols that fail are reported in the errors map rather than aborting
// the whole batch.
func (s *Service) FundamentalsBatch(ctx context.Context, symbols []string) (map[string]*models.FundamentalData, map[string]error) {
	results := make(map[string]*models.FundamentalData, len(symbols))
	failures := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			data, err := s.Fundamentals(gctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[strings.ToUpper(symbol)] = err
				return nil
			}
			results[data.Symbol] = data
			return nil
		})
	}

	// Workers never return errors; Wait only surfaces context cancellation.
	_ = g.Wait()
	return results, failures
}
