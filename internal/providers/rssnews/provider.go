// Package rssnews implements a market news provider backed by public RSS
// feeds. It needs no API key. Articles are aggregated across feeds, sorted
// newest first, and optionally filtered by a free-text query such as a
// ticker or company name.
package rssnews

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

const providerName = "rssnews"

// Feed is one RSS news feed configuration.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds lists the configured market news RSS feeds.
var DefaultFeeds = []Feed{
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
	{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
	{Name: "CNBC Markets", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
	{Name: "Seeking Alpha", URL: "https://seekingalpha.com/market_currents.xml"},
}

// Provider implements provider.Provider for RSS market news.
type Provider struct {
	provider.BaseProvider
}

// New creates a news provider over the default feeds.
func New() *Provider {
	return NewWithFeeds(DefaultFeeds)
}

// NewWithFeeds creates a news provider over custom feeds.
func NewWithFeeds(feeds []Feed) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Market news aggregated from public RSS feeds",
			"",
			nil,
		),
	}
	p.RegisterFetcher(newMarketNewsFetcher(feeds))
	return p
}

// --- MarketNews fetcher ---

type marketNewsFetcher struct {
	provider.BaseFetcher
	feeds  []Feed
	parser *gofeed.Parser
}

func newMarketNewsFetcher(feeds []Feed) *marketNewsFetcher {
	return &marketNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelMarketNews,
			"Recent market news from RSS feeds",
			nil,
			[]string{provider.ParamQuery, provider.ParamLimit},
			10*time.Minute, 2, time.Second,
		),
		feeds:  feeds,
		parser: gofeed.NewParser(),
	}
}

func (f *marketNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}

	var items []models.NewsItem
	var lastErr error
	for _, feed := range f.feeds {
		if err := f.RateLimit(ctx); err != nil {
			return nil, err
		}
		fetched, err := f.fetchFeed(ctx, feed)
		if err != nil {
			// Non-critical: skip failed feeds.
			lastErr = err
			continue
		}
		items = append(items, fetched...)
	}
	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all news feeds failed: %w", lastErr)
	}

	sortNewestFirst(items)

	if query := params[provider.ParamQuery]; query != "" {
		items = filterByQuery(items, query)
	}
	if limitStr := params[provider.ParamLimit]; limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && len(items) > limit {
			items = items[:limit]
		}
	}

	f.CacheSet(cacheKey, items)
	return &provider.FetchResult{Data: items, FetchedAt: time.Now()}, nil
}

// fetchFeed parses one RSS feed into news items.
func (f *marketNewsFetcher) fetchFeed(ctx context.Context, feed Feed) ([]models.NewsItem, error) {
	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", feed.Name, err)
	}

	items := make([]models.NewsItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		n := models.NewsItem{
			Title:   item.Title,
			URL:     item.Link,
			Source:  feed.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			n.PublishedAt = *item.PublishedParsed
		}
		items = append(items, n)
	}
	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortNewestFirst orders items by published date, newest first.
func sortNewestFirst(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

// filterByQuery keeps items whose title or summary mention the query
// (case-insensitive).
func filterByQuery(items []models.NewsItem, query string) []models.NewsItem {
	q := strings.ToLower(query)
	var filtered []models.NewsItem
	for _, item := range items {
		content := strings.ToLower(item.Title + " " + item.Summary)
		if strings.Contains(content, q) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
