package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// defaultHistoryYears bounds how far back the fundamentals bundle reaches.
const defaultHistoryYears = 5

// --- Fundamentals fetcher ---

type fundamentalsFetcher struct {
	provider.BaseFetcher
}

func newFundamentalsFetcher() *fundamentalsFetcher {
	return &fundamentalsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFundamentals,
			"Company fundamentals bundle from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamYears},
			24*time.Hour, 5, time.Minute,
		),
	}
}

func (f *fundamentalsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	apiKey := params[paramAPIKey]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	// The three endpoints are independent; fetch them concurrently.
	var (
		overview avOverview
		income   avIncomeStatement
		earnings avEarnings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchAVJSON(gctx, "OVERVIEW", symbol, apiKey, &overview) })
	g.Go(func() error { return fetchAVJSON(gctx, "INCOME_STATEMENT", symbol, apiKey, &income) })
	g.Go(func() error { return fetchAVJSON(gctx, "EARNINGS", symbol, apiKey, &earnings) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("alphavantage fundamentals %s: %w", symbol, err)
	}

	years := defaultHistoryYears
	if y := params[provider.ParamYears]; y != "" {
		if parsed, err := strconv.Atoi(y); err == nil && parsed > 0 {
			years = parsed
		}
	}

	historical := processHistorical(income, earnings, years)
	if len(historical) == 0 {
		return nil, fmt.Errorf("no historical financial data available for %s", symbol)
	}

	data := &models.FundamentalData{
		Symbol:           symbol,
		Historical:       historical,
		AnalystEstimates: aggregateEstimates(earnings),
		CurrentMetrics:   processMetrics(overview),
	}

	f.CacheSetTTL(cacheKey, data, 24*time.Hour)
	return newResult(data), nil
}

// --- CompanyOverview fetcher ---

type companyOverviewFetcher struct {
	provider.BaseFetcher
}

func newCompanyOverviewFetcher() *companyOverviewFetcher {
	return &companyOverviewFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyOverview,
			"Company profile and market snapshot from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Minute,
		),
	}
}

func (f *companyOverviewFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	apiKey := params[paramAPIKey]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var overview avOverview
	if err := fetchAVJSON(ctx, "OVERVIEW", symbol, apiKey, &overview); err != nil {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, err)
	}

	metrics := processMetrics(overview)
	f.CacheSetTTL(cacheKey, &metrics, 1*time.Hour)
	return newResult(&metrics), nil
}

// --- Conversion helpers ---

// fiscalYear extracts the year from a fiscal date ending ("YYYY-MM-DD").
func fiscalYear(fiscalDateEnding string) (int, bool) {
	head, _, _ := strings.Cut(fiscalDateEnding, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return year, true
}

// parseFloat converts an Alpha Vantage numeric string. "None" and empty
// strings are treated as absent.
func parseFloat(s string) (float64, bool) {
	if s == "" || s == "None" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// processHistorical merges annual income statements with reported EPS into
// historical entries, sorted ascending by year and bounded to the most
// recent maxYears. Revenue and net income are converted to billions; years
// missing either are dropped. EPS stays null when unreported so the
// baseline resolver skips the year instead of treating it as break-even.
func processHistorical(income avIncomeStatement, earnings avEarnings, maxYears int) []models.HistoricalFinancial {
	epsByDate := make(map[string]float64, len(earnings.AnnualEarnings))
	for _, e := range earnings.AnnualEarnings {
		if v, ok := parseFloat(e.ReportedEPS); ok {
			epsByDate[e.FiscalDateEnding] = v
		}
	}

	historical := make([]models.HistoricalFinancial, 0, len(income.AnnualReports))
	for _, report := range income.AnnualReports {
		year, ok := fiscalYear(report.FiscalDateEnding)
		if !ok {
			continue
		}
		revenue, ok := parseFloat(report.TotalRevenue)
		if !ok {
			continue
		}
		netIncome, ok := parseFloat(report.NetIncome)
		if !ok {
			continue
		}

		revenueB := revenue / 1e9
		netIncomeB := netIncome / 1e9

		entry := models.HistoricalFinancial{
			Year:      year,
			Revenue:   &revenueB,
			NetIncome: &netIncomeB,
		}
		if eps, ok := epsByDate[report.FiscalDateEnding]; ok {
			entry.EPS = &eps
		}
		historical = append(historical, entry)
	}

	sort.Slice(historical, func(i, j int) bool {
		return historical[i].Year < historical[j].Year
	})

	// Keep only the most recent window so stale reports don't skew growth.
	if maxYears > 0 && len(historical) > maxYears {
		historical = historical[len(historical)-maxYears:]
	}
	return historical
}

// processMetrics converts the OVERVIEW response into the market snapshot.
// OVERVIEW carries no real-time quote, so the 52-week high stands in for
// the current price. Shares outstanding are converted to millions.
func processMetrics(overview avOverview) models.CurrentMetrics {
	metrics := models.CurrentMetrics{}

	if v, ok := parseFloat(overview.PERatio); ok {
		metrics.PERatio = v
	}
	if v, ok := parseFloat(overview.SharesOutstanding); ok {
		metrics.SharesOutstanding = v / 1e6
	}
	if v, ok := parseFloat(overview.Week52High); ok {
		metrics.Price = v
	}
	if v, ok := parseFloat(overview.DividendYield); ok {
		metrics.DividendYield = &v
	}
	if overview.Name != "" {
		name := overview.Name
		metrics.Name = &name
	}
	if overview.Exchange != "" {
		exchange := overview.Exchange
		metrics.Exchange = &exchange
	}
	if overview.MarketCap != "" {
		formatted := overview.MarketCap
		if v, ok := parseFloat(overview.MarketCap); ok {
			formatted = formatMarketCap(v)
		}
		metrics.MarketCap = &formatted
	}

	return metrics
}

// formatMarketCap renders a raw dollar value as a short suffixed string,
// e.g. 2.8e12 → "2.8T".
func formatMarketCap(value float64) string {
	switch {
	case value >= 1e12:
		return fmt.Sprintf("%.1fT", value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("%.1fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("%.1fM", value/1e6)
	default:
		return fmt.Sprintf("%.0f", value)
	}
}
