package stockanalysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// --- Fundamentals fetcher ---

type fundamentalsFetcher struct {
	provider.BaseFetcher
}

func newFundamentalsFetcher() *fundamentalsFetcher {
	return &fundamentalsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFundamentals,
			"Scraped fundamentals from stockanalysis.com",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 1, time.Second,
		),
	}
}

func (f *fundamentalsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	finDoc, err := fetchDoc(ctx, fmt.Sprintf("%s/stocks/%s/financials/", baseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("stockanalysis financials %s: %w", symbol, err)
	}
	historical := parseFinancialsTable(finDoc)
	if len(historical) == 0 {
		return nil, fmt.Errorf("no historical financial data scraped for %s", symbol)
	}

	statsDoc, err := fetchDoc(ctx, fmt.Sprintf("%s/stocks/%s/", baseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("stockanalysis overview %s: %w", symbol, err)
	}
	metrics := parseOverview(statsDoc)

	data := &models.FundamentalData{
		Symbol:         symbol,
		Historical:     historical,
		CurrentMetrics: metrics,
	}

	f.CacheSetTTL(cacheKey, data, 1*time.Hour)
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
			"Scraped market snapshot from stockanalysis.com",
			[]string{provider.ParamSymbol},
			nil,
			15*time.Minute, 1, time.Second,
		),
	}
}

func (f *companyOverviewFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	doc, err := fetchDoc(ctx, fmt.Sprintf("%s/stocks/%s/", baseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("stockanalysis overview %s: %w", symbol, err)
	}

	metrics := parseOverview(doc)
	f.CacheSetTTL(cacheKey, &metrics, 15*time.Minute)
	return newResult(&metrics), nil
}

// --- Scraping helpers ---

// parseFinancialsTable extracts the annual income table. Columns are fiscal
// years ("FY 2024"), rows carry Revenue, Net Income, and EPS. Revenue and
// net income are displayed in millions and converted to billions. Entries
// are returned ascending by year.
func parseFinancialsTable(doc *goquery.Document) []models.HistoricalFinancial {
	table := doc.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return strings.Contains(t.Find("tbody").Text(), "Revenue")
	}).First()
	if table.Length() == 0 {
		return nil
	}

	var years []int
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return // row label column
		}
		if year, ok := parseFiscalYearHeader(th.Text()); ok {
			years = append(years, year)
		} else {
			years = append(years, 0) // placeholder for "Current"/TTM columns
		}
	})
	if len(years) == 0 {
		return nil
	}

	byYear := make(map[int]*models.HistoricalFinancial, len(years))
	for _, year := range years {
		if year != 0 {
			byYear[year] = &models.HistoricalFinancial{Year: year}
		}
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("td").First().Text())
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 || i-1 >= len(years) {
				return
			}
			year := years[i-1]
			entry, ok := byYear[year]
			if !ok {
				return
			}
			val, ok := parseNumber(cell.Text())
			if !ok {
				return
			}

			switch {
			case label == "Revenue":
				v := val / 1e3 // displayed in millions
				entry.Revenue = &v
			case strings.Contains(label, "Net Income"):
				v := val / 1e3
				entry.NetIncome = &v
			case strings.HasPrefix(label, "EPS"):
				v := val
				entry.EPS = &v
			}
		})
	})

	historical := make([]models.HistoricalFinancial, 0, len(byYear))
	for _, entry := range byYear {
		historical = append(historical, *entry)
	}
	sort.Slice(historical, func(i, j int) bool {
		return historical[i].Year < historical[j].Year
	})
	return historical
}

// parseOverview extracts the market snapshot from the stats sidebar table:
// rows of "Market Cap", "PE Ratio", "Shares Out", and the quote header.
func parseOverview(doc *goquery.Document) models.CurrentMetrics {
	metrics := models.CurrentMetrics{}

	// Quote price lives in the main header element.
	if priceText := doc.Find(`[data-test="quote-price"]`).First().Text(); priceText != "" {
		if v, ok := parseNumber(priceText); ok {
			metrics.Price = v
		}
	}

	doc.Find("table td").Each(func(_ int, td *goquery.Selection) {
		label := strings.TrimSpace(td.Text())
		value := strings.TrimSpace(td.Next().Text())
		if value == "" {
			return
		}

		switch label {
		case "Market Cap":
			mc := value
			metrics.MarketCap = &mc
		case "PE Ratio":
			if v, ok := parseNumber(value); ok {
				metrics.PERatio = v
			}
		case "Shares Out":
			if v, ok := parseNumber(value); ok {
				metrics.SharesOutstanding = v / 1e6 // to millions
			}
		case "Dividend Yield":
			if v, ok := parseNumber(value); ok {
				metrics.DividendYield = &v
			}
		case "Stock Price":
			if metrics.Price == 0 {
				if v, ok := parseNumber(value); ok {
					metrics.Price = v
				}
			}
		}
	})

	return metrics
}
