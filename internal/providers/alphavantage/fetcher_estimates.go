package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// --- AnalystEstimates fetcher ---

type analystEstimatesFetcher struct {
	provider.BaseFetcher
}

func newAnalystEstimatesFetcher() *analystEstimatesFetcher {
	return &analystEstimatesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelAnalystEstimates,
			"Forward EPS consensus from Alpha Vantage quarterly earnings",
			[]string{provider.ParamSymbol},
			nil,
			24*time.Hour, 5, time.Minute,
		),
	}
}

func (f *analystEstimatesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	apiKey := params[paramAPIKey]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var earnings avEarnings
	if err := fetchAVJSON(ctx, "EARNINGS", symbol, apiKey, &earnings); err != nil {
		return nil, fmt.Errorf("alphavantage earnings %s: %w", symbol, err)
	}

	estimates := aggregateEstimates(earnings)
	if estimates == nil {
		return nil, fmt.Errorf("no analyst estimates available for %s", symbol)
	}

	f.CacheSetTTL(cacheKey, estimates, 24*time.Hour)
	return newResult(estimates), nil
}

// aggregateEstimates rolls quarterly EPS estimates up to annual figures by
// summing the quarters of each fiscal year. Alpha Vantage's EARNINGS endpoint
// carries no revenue estimates, so that slice stays empty. Returns nil when
// no usable quarterly estimates exist.
func aggregateEstimates(earnings avEarnings) *models.AnalystEstimates {
	byYear := make(map[int]float64)
	for _, q := range earnings.QuarterlyEarnings {
		year, ok := fiscalYear(q.FiscalDateEnding)
		if !ok {
			continue
		}
		estimate, ok := parseFloat(q.EstimatedEPS)
		if !ok {
			continue
		}
		byYear[year] += estimate
	}

	if len(byYear) == 0 {
		return nil
	}

	annual := make([]models.AnalystEstimate, 0, len(byYear))
	for year, sum := range byYear {
		annual = append(annual, models.AnalystEstimate{Year: year, Estimate: sum})
	}
	sort.Slice(annual, func(i, j int) bool { return annual[i].Year < annual[j].Year })

	return &models.AnalystEstimates{EPS: annual}
}
