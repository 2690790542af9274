package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/frhd/quantum-kapital/pkg/models"
)

func f(v float64) *float64 { return &v }

func metrics() models.CurrentMetrics {
	return models.CurrentMetrics{Price: 202.49, PERatio: 68.9, SharesOutstanding: 24804.0}
}

func TestResolveBaselineEmpty(t *testing.T) {
	_, err := ResolveBaseline(nil, metrics())
	if err == nil {
		t.Fatal("expected error for empty historical data")
	}
	var insufficient *ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Errorf("expected ErrInsufficientData, got %T", err)
	}
}

func TestResolveBaselineNoCompleteYear(t *testing.T) {
	historical := []models.HistoricalFinancial{
		{Year: 2023, Revenue: f(60.92), NetIncome: nil, EPS: f(1.19)},
		{Year: 2024, Revenue: f(130.50), NetIncome: f(72.88), EPS: nil},
	}
	_, err := ResolveBaseline(historical, metrics())
	var insufficient *ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestResolveBaselinePicksMostRecentComplete(t *testing.T) {
	// Unordered on purpose; 2025 is incomplete so 2024 must win.
	historical := []models.HistoricalFinancial{
		{Year: 2023, Revenue: f(60.92), NetIncome: f(29.76), EPS: f(1.19)},
		{Year: 2025, Revenue: f(170.8), NetIncome: nil, EPS: nil},
		{Year: 2021, Revenue: f(26.91), NetIncome: f(9.75), EPS: f(3.85)},
		{Year: 2024, Revenue: f(130.50), NetIncome: f(72.88), EPS: f(2.94)},
	}
	baseline, err := ResolveBaseline(historical, metrics())
	if err != nil {
		t.Fatalf("ResolveBaseline failed: %v", err)
	}
	if baseline.Year != 2024 {
		t.Errorf("expected baseline year 2024, got %d", baseline.Year)
	}
	wantMargin := 72.88 / 130.50 * 100
	if math.Abs(baseline.NetIncomeMargins-wantMargin) > 1e-9 {
		t.Errorf("margin: got %f, want %f", baseline.NetIncomeMargins, wantMargin)
	}
	// Growth against 2023, the second-most-recent complete year.
	wantRevGrowth := (130.50 - 60.92) / 60.92 * 100
	if math.Abs(baseline.RevenueGrowth-wantRevGrowth) > 1e-9 {
		t.Errorf("revenue growth: got %f, want %f", baseline.RevenueGrowth, wantRevGrowth)
	}
	if baseline.NetIncomeGrowth == nil {
		t.Fatal("expected net income growth against prior year")
	}
	wantNIGrowth := (72.88 - 29.76) / 29.76 * 100
	if math.Abs(*baseline.NetIncomeGrowth-wantNIGrowth) > 1e-9 {
		t.Errorf("net income growth: got %f, want %f", *baseline.NetIncomeGrowth, wantNIGrowth)
	}
}

func TestResolveBaselineSingleYearHasNoGrowth(t *testing.T) {
	historical := []models.HistoricalFinancial{
		{Year: 2024, Revenue: f(100.0), NetIncome: f(20.0), EPS: f(2.00)},
	}
	baseline, err := ResolveBaseline(historical, metrics())
	if err != nil {
		t.Fatalf("ResolveBaseline failed: %v", err)
	}
	if baseline.NetIncomeGrowth != nil {
		t.Errorf("expected nil net income growth, got %f", *baseline.NetIncomeGrowth)
	}
	if baseline.RevenueGrowth != 0 {
		t.Errorf("expected zero revenue growth, got %f", baseline.RevenueGrowth)
	}
}

func TestResolveBaselinePriceRangeIsMarketPrice(t *testing.T) {
	historical := []models.HistoricalFinancial{
		{Year: 2024, Revenue: f(100.0), NetIncome: f(20.0), EPS: f(2.00)},
	}
	cm := metrics()
	baseline, err := ResolveBaseline(historical, cm)
	if err != nil {
		t.Fatalf("ResolveBaseline failed: %v", err)
	}
	if baseline.SharePriceLow != cm.Price || baseline.SharePriceHigh != cm.Price {
		t.Errorf("baseline price range should be the market price %f, got [%f, %f]",
			cm.Price, baseline.SharePriceLow, baseline.SharePriceHigh)
	}
	if baseline.ValuationMethod != models.ValuationPE {
		t.Errorf("positive EPS baseline should report P/E, got %s", baseline.ValuationMethod)
	}
}

func TestResolveBaselineNegativeEPSReportsPS(t *testing.T) {
	historical := []models.HistoricalFinancial{
		{Year: 2024, Revenue: f(50.0), NetIncome: f(-5.0), EPS: f(-1.00)},
	}
	baseline, err := ResolveBaseline(historical, metrics())
	if err != nil {
		t.Fatalf("ResolveBaseline failed: %v", err)
	}
	if baseline.ValuationMethod != models.ValuationPS {
		t.Errorf("negative EPS baseline should report P/S, got %s", baseline.ValuationMethod)
	}
}

func TestResolveBaselineZeroRevenue(t *testing.T) {
	historical := []models.HistoricalFinancial{
		{Year: 2024, Revenue: f(0), NetIncome: f(-1.0), EPS: f(-0.50)},
	}
	_, err := ResolveBaseline(historical, metrics())
	var insufficient *ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientData for zero revenue, got %v", err)
	}
}
