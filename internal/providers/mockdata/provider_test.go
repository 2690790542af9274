package mockdata

import (
	"context"
	"reflect"
	"testing"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()

	if info.Name != "mockdata" {
		t.Errorf("expected name mockdata, got %s", info.Name)
	}
	if len(info.Models) != 3 {
		t.Errorf("expected 3 supported models, got %d", len(info.Models))
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("ping should never fail: %v", err)
	}
}

func TestDatasetDeterministic(t *testing.T) {
	first := Dataset("NVDA")
	second := Dataset("NVDA")
	if !reflect.DeepEqual(first, second) {
		t.Error("dataset must be deterministic")
	}
}

func TestDatasetShape(t *testing.T) {
	data := Dataset("nvda")

	if data.Symbol != "NVDA" {
		t.Errorf("symbol should be uppercased, got %s", data.Symbol)
	}
	if len(data.Historical) != 4 {
		t.Fatalf("expected 4 historical years, got %d", len(data.Historical))
	}
	for _, h := range data.Historical {
		if !h.Complete() {
			t.Errorf("year %d should be complete", h.Year)
		}
	}
	if data.AnalystEstimates == nil || len(data.AnalystEstimates.EPS) != 2 {
		t.Error("expected two years of EPS estimates")
	}
	if data.CurrentMetrics.SharesOutstanding <= 0 {
		t.Error("shares outstanding must be positive")
	}
}

func TestFundamentalsFetch(t *testing.T) {
	p := New()
	fetcher := p.Fetcher(provider.ModelFundamentals)
	if fetcher == nil {
		t.Fatal("expected fundamentals fetcher")
	}

	result, err := fetcher.Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	data, ok := result.Data.(*models.FundamentalData)
	if !ok {
		t.Fatalf("expected *models.FundamentalData, got %T", result.Data)
	}
	if data.Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", data.Symbol)
	}
}

func TestOverviewFetch(t *testing.T) {
	p := New()
	fetcher := p.Fetcher(provider.ModelCompanyOverview)

	result, err := fetcher.Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "NVDA",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	metrics, ok := result.Data.(*models.CurrentMetrics)
	if !ok {
		t.Fatalf("expected *models.CurrentMetrics, got %T", result.Data)
	}
	if metrics.Price != 202.49 {
		t.Errorf("price: got %f, want 202.49", metrics.Price)
	}
}
