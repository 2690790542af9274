// Package mockdata implements a deterministic offline data provider.
// It serves a fixed fundamentals dataset for any symbol, which keeps the
// projection pipeline usable without network access or API keys and gives
// tests a stable fixture. It registers last so the registry only falls
// back to it when every live provider has failed.
package mockdata

import (
	"context"
	"strings"
	"time"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

const providerName = "mockdata"

// Provider implements provider.Provider with synthetic data.
type Provider struct {
	provider.BaseProvider
}

// New creates a new mock data provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Deterministic offline fundamentals, no network required",
			"",
			nil,
		),
	}

	p.RegisterFetcher(newFundamentalsFetcher())
	p.RegisterFetcher(newCompanyOverviewFetcher())
	p.RegisterFetcher(newAnalystEstimatesFetcher())

	return p
}

// Ping always succeeds; there is nothing to reach.
func (p *Provider) Ping(_ context.Context) error { return nil }

func f(v float64) *float64 { return &v }

// Dataset returns the synthetic fundamentals bundle for a symbol. The
// figures mirror a large-cap growth chip maker's recent fiscal years so
// projections computed from them look plausible in the dashboard.
func Dataset(symbol string) *models.FundamentalData {
	name := "Mock Company (" + strings.ToUpper(symbol) + ")"
	exchange := "NASDAQ"
	marketCap := "4.9T"

	return &models.FundamentalData{
		Symbol: strings.ToUpper(symbol),
		Historical: []models.HistoricalFinancial{
			{Year: 2021, Revenue: f(26.91), NetIncome: f(9.75), EPS: f(3.85)},
			{Year: 2022, Revenue: f(26.97), NetIncome: f(4.37), EPS: f(0.17)},
			{Year: 2023, Revenue: f(60.92), NetIncome: f(29.76), EPS: f(1.19)},
			{Year: 2024, Revenue: f(130.50), NetIncome: f(72.88), EPS: f(2.94)},
		},
		AnalystEstimates: &models.AnalystEstimates{
			Revenue: []models.AnalystEstimate{
				{Year: 2025, Estimate: 170.8},
				{Year: 2026, Estimate: 195.0},
			},
			EPS: []models.AnalystEstimate{
				{Year: 2025, Estimate: 3.50},
				{Year: 2026, Estimate: 4.25},
			},
		},
		CurrentMetrics: models.CurrentMetrics{
			Price:             202.49,
			PERatio:           68.9,
			SharesOutstanding: 24804.0, // millions
			Name:              &name,
			Exchange:          &exchange,
			MarketCap:         &marketCap,
		},
	}
}

// --- Fundamentals fetcher ---

type fundamentalsFetcher struct {
	provider.BaseFetcher
}

func newFundamentalsFetcher() *fundamentalsFetcher {
	return &fundamentalsFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelFundamentals,
			"Synthetic fundamentals bundle",
			[]string{provider.ParamSymbol},
			nil,
		),
	}
}

func (f *fundamentalsFetcher) Fetch(_ context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return &provider.FetchResult{
		Data:      Dataset(params[provider.ParamSymbol]),
		FetchedAt: time.Now(),
	}, nil
}

// --- CompanyOverview fetcher ---

type companyOverviewFetcher struct {
	provider.BaseFetcher
}

func newCompanyOverviewFetcher() *companyOverviewFetcher {
	return &companyOverviewFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyOverview,
			"Synthetic market snapshot",
			[]string{provider.ParamSymbol},
			nil,
		),
	}
}

func (f *companyOverviewFetcher) Fetch(_ context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	metrics := Dataset(params[provider.ParamSymbol]).CurrentMetrics
	return &provider.FetchResult{
		Data:      &metrics,
		FetchedAt: time.Now(),
	}, nil
}

// --- AnalystEstimates fetcher ---

type analystEstimatesFetcher struct {
	provider.BaseFetcher
}

func newAnalystEstimatesFetcher() *analystEstimatesFetcher {
	return &analystEstimatesFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelAnalystEstimates,
			"Synthetic forward consensus estimates",
			[]string{provider.ParamSymbol},
			nil,
		),
	}
}

func (f *analystEstimatesFetcher) Fetch(_ context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return &provider.FetchResult{
		Data:      Dataset(params[provider.ParamSymbol]).AnalystEstimates,
		FetchedAt: time.Now(),
	}, nil
}
