// Package stockanalysis implements a scraping data provider backed by
// stockanalysis.com. It needs no API key, which makes it the fallback when
// the primary fundamentals API is unavailable or rate limited. Scraped
// pages carry no analyst estimates, so the bundle it returns has none.
package stockanalysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/frhd/quantum-kapital/internal/infra"
	"github.com/frhd/quantum-kapital/internal/provider"
)

const (
	providerName = "stockanalysis"
	baseURL      = "https://stockanalysis.com"
)

// Provider implements provider.Provider for stockanalysis.com.
type Provider struct {
	provider.BaseProvider
}

// New creates a new stockanalysis.com provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"stockanalysis.com - scraped fundamentals, no API key required",
			"https://stockanalysis.com",
			nil,
		),
	}

	p.RegisterFetcher(newFundamentalsFetcher())
	p.RegisterFetcher(newCompanyOverviewFetcher())

	return p
}

// Ping checks connectivity to stockanalysis.com.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, baseURL, htmlHeaders())
	if err != nil {
		return fmt.Errorf("stockanalysis ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func htmlHeaders() map[string]string {
	return map[string]string{
		"Accept":     "text/html",
		"User-Agent": "Mozilla/5.0 (compatible; quantum-kapital/1.0)",
	}
}

// fetchDoc downloads and parses an HTML page.
func fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	body, _, err := infra.DoGet(ctx, url, htmlHeaders())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
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

// parseNumber parses a number in stockanalysis.com display format.
// Handles commas, percent signs, and B/M/T magnitude suffixes, e.g.
// "130,497" → 130497, "4.94T" → 4.94e12, "68.9%" → 68.9.
// Returns false for dashes, "n/a", and empty cells.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		s = strings.TrimSuffix(s, "T")
		multiplier = 1e12
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
		multiplier = 1e9
	case strings.HasSuffix(s, "M"):
		s = strings.TrimSuffix(s, "M")
		multiplier = 1e6
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return val * multiplier, true
}

// parseFiscalYearHeader extracts a year from a column header such as
// "FY 2024" or "2024".
func parseFiscalYearHeader(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "FY"))
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 2200 {
		return 0, false
	}
	return year, true
}
