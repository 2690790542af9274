package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

// ── ProjectionAssumptions ──

func TestDefaultAssumptions(t *testing.T) {
	a := DefaultAssumptions()

	if a.Years != 5 {
		t.Errorf("Years: got %d, want 5", a.Years)
	}
	if a.BearRevenueGrowth != 20.0 || a.BaseRevenueGrowth != 35.0 || a.BullRevenueGrowth != 50.0 {
		t.Errorf("revenue growth: got %.1f/%.1f/%.1f, want 20/35/50",
			a.BearRevenueGrowth, a.BaseRevenueGrowth, a.BullRevenueGrowth)
	}
	if a.BearMarginChange != -0.5 || a.BaseMarginChange != 0.5 || a.BullMarginChange != 1.0 {
		t.Errorf("margin change: got %.1f/%.1f/%.1f, want -0.5/0.5/1.0",
			a.BearMarginChange, a.BaseMarginChange, a.BullMarginChange)
	}
	if a.PELow != 50.0 || a.PEHigh != 60.0 {
		t.Errorf("P/E band: got %.0f-%.0f, want 50-60", a.PELow, a.PEHigh)
	}
	if a.PSLow != 3.0 || a.PSHigh != 8.0 {
		t.Errorf("P/S band: got %.0f-%.0f, want 3-8", a.PSLow, a.PSHigh)
	}
	if a.SharesGrowth != 0.0 {
		t.Errorf("SharesGrowth: got %.1f, want 0", a.SharesGrowth)
	}
}

// ── HistoricalFinancial ──

func TestHistoricalFinancialComplete(t *testing.T) {
	tests := []struct {
		name string
		h    HistoricalFinancial
		want bool
	}{
		{"all set", HistoricalFinancial{Year: 2024, Revenue: f(130.5), NetIncome: f(72.88), EPS: f(2.94)}, true},
		{"zero eps still complete", HistoricalFinancial{Year: 2024, Revenue: f(1), NetIncome: f(-2), EPS: f(0)}, true},
		{"missing revenue", HistoricalFinancial{Year: 2024, NetIncome: f(72.88), EPS: f(2.94)}, false},
		{"missing net income", HistoricalFinancial{Year: 2024, Revenue: f(130.5), EPS: f(2.94)}, false},
		{"missing eps", HistoricalFinancial{Year: 2024, Revenue: f(130.5), NetIncome: f(72.88)}, false},
		{"empty", HistoricalFinancial{Year: 2024}, false},
	}
	for _, tc := range tests {
		if got := tc.h.Complete(); got != tc.want {
			t.Errorf("%s: Complete() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// ── AnalystEstimates ──

func TestEPSForYear(t *testing.T) {
	est := &AnalystEstimates{
		EPS: []AnalystEstimate{
			{Year: 2025, Estimate: 3.50},
			{Year: 2026, Estimate: 4.25},
		},
	}

	if v := est.EPSForYear(2025); v == nil || *v != 3.50 {
		t.Errorf("2025: got %v, want 3.50", v)
	}
	if v := est.EPSForYear(2030); v != nil {
		t.Errorf("2030 should have no estimate, got %v", *v)
	}
}

func TestEPSForYearNilReceiver(t *testing.T) {
	var est *AnalystEstimates
	if v := est.EPSForYear(2025); v != nil {
		t.Error("nil estimates should report no match")
	}
}

// ── JSON wire format ──

func TestFundamentalDataJSONKeys(t *testing.T) {
	data := FundamentalData{
		Symbol: "NVDA",
		Historical: []HistoricalFinancial{
			{Year: 2024, Revenue: f(130.5), NetIncome: f(72.88), EPS: f(2.94)},
		},
		CurrentMetrics: CurrentMetrics{Price: 202.49, PERatio: 68.9, SharesOutstanding: 24804},
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	for _, key := range []string{`"symbol"`, `"historical"`, `"currentMetrics"`, `"netIncome"`, `"sharesOutstanding"`, `"peRatio"`} {
		if !strings.Contains(body, key) {
			t.Errorf("missing camelCase key %s in %s", key, body)
		}
	}
	// Optional metric fields should be omitted when nil.
	for _, key := range []string{`"name"`, `"marketCap"`, `"dividendYield"`} {
		if strings.Contains(body, key) {
			t.Errorf("nil field %s should be omitted", key)
		}
	}
}

func TestFinancialProjectionJSONNulls(t *testing.T) {
	p := FinancialProjection{
		Year:            2025,
		Revenue:         176.18,
		EPS:             3.97,
		ValuationMethod: ValuationPE,
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	// netIncomeGrowth is always present (null when undefined); the P/S
	// band only appears when the P/S path was used.
	if !strings.Contains(body, `"netIncomeGrowth":null`) {
		t.Errorf("netIncomeGrowth should serialize as null: %s", body)
	}
	if strings.Contains(body, "psLowEst") {
		t.Errorf("psLowEst should be omitted when nil: %s", body)
	}
	if !strings.Contains(body, `"valuationMethod":"P/E"`) {
		t.Errorf("valuation method missing: %s", body)
	}
}

func TestCagrMetricsJSONNullSentinels(t *testing.T) {
	raw, err := json.Marshal(CagrMetrics{Revenue: f(35.0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"revenue":35`) {
		t.Errorf("revenue CAGR missing: %s", body)
	}
	if !strings.Contains(body, `"sharePrice":null`) {
		t.Errorf("undefined CAGR should serialize as null: %s", body)
	}
}

func TestProjectionResultsRoundTrip(t *testing.T) {
	results := ProjectionResults{
		Baseline: FinancialProjection{Year: 2024, Revenue: 130.5, EPS: 2.94},
		Projections: []YearlyProjection{
			{Year: 2025, Base: FinancialProjection{Year: 2025, Revenue: 176.18}},
		},
	}

	raw, err := json.Marshal(results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ProjectionResults
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Baseline.Year != 2024 || len(decoded.Projections) != 1 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

// ── Consensus ratings ──

func TestConsensusRatingConstants(t *testing.T) {
	if ConsensusAligned != "Aligned" || ConsensusAbove != "Above consensus" || ConsensusBelow != "Below consensus" {
		t.Errorf("unexpected rating constants: %q %q %q", ConsensusAligned, ConsensusAbove, ConsensusBelow)
	}
}
