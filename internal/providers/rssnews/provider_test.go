package rssnews

import (
	"testing"
	"time"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()

	if info.Name != "rssnews" {
		t.Errorf("expected name rssnews, got %s", info.Name)
	}
	if len(info.Models) != 1 || info.Models[0] != provider.ModelMarketNews {
		t.Errorf("expected MarketNews only, got %v", info.Models)
	}
	if len(info.Credentials) != 0 {
		t.Error("RSS feeds should need no credentials")
	}
}

func TestCleanHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Fed holds <b>rates</b> steady</p>", "Fed holds rates steady"},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, c := range cases {
		if got := cleanHTML(c.in); got != c.want {
			t.Errorf("cleanHTML(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilterByQuery(t *testing.T) {
	items := []models.NewsItem{
		{Title: "NVIDIA smashes earnings estimates", Summary: "Data center revenue doubles"},
		{Title: "Fed minutes released", Summary: "Rates unchanged"},
		{Title: "Chip sector rally", Summary: "nvidia and AMD lead gains"},
	}

	filtered := filterByQuery(items, "NVIDIA")
	if len(filtered) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(filtered))
	}

	filtered = filterByQuery(items, "bonds")
	if len(filtered) != 0 {
		t.Errorf("expected no matches, got %d", len(filtered))
	}
}

func TestNewWithFeedsCustom(t *testing.T) {
	p := NewWithFeeds([]Feed{{Name: "Test", URL: "https://example.com/rss"}})
	fetcher := p.Fetcher(provider.ModelMarketNews)
	if fetcher == nil {
		t.Fatal("expected market news fetcher")
	}
	if len(fetcher.RequiredParams()) != 0 {
		t.Error("market news should require no params")
	}
}

func TestNewsItemOrdering(t *testing.T) {
	// Verifies the sort predicate used by the fetcher: newest first.
	now := time.Now()
	items := []models.NewsItem{
		{Title: "old", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "new", PublishedAt: now},
		{Title: "mid", PublishedAt: now.Add(-1 * time.Hour)},
	}
	sortNewestFirst(items)
	if items[0].Title != "new" || items[2].Title != "old" {
		t.Errorf("unexpected order: %s, %s, %s", items[0].Title, items[1].Title, items[2].Title)
	}
}
