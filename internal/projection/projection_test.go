package projection

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/frhd/quantum-kapital/pkg/models"
)

func fixtureFundamentals() *models.FundamentalData {
	return &models.FundamentalData{
		Symbol: "NVDA",
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
			SharesOutstanding: 24804.0,
		},
	}
}

func TestGenerateResultsShape(t *testing.T) {
	results, err := GenerateResults(fixtureFundamentals(), models.DefaultAssumptions())
	if err != nil {
		t.Fatalf("GenerateResults failed: %v", err)
	}

	if results.Baseline.Year != 2024 {
		t.Errorf("baseline year: got %d, want 2024", results.Baseline.Year)
	}
	if len(results.Projections) != 5 {
		t.Fatalf("expected 5 projected years, got %d", len(results.Projections))
	}
	for i, yp := range results.Projections {
		want := 2024 + i + 1
		if yp.Year != want {
			t.Errorf("projection %d: year %d, want %d", i, yp.Year, want)
		}
		if yp.Bear.Year != want || yp.Base.Year != want || yp.Bull.Year != want {
			t.Errorf("projection %d: scenario years disagree with row year %d", i, want)
		}
	}

	// Scenarios are independent: bull compounds faster than bear everywhere.
	last := results.Projections[4]
	if last.Bull.Revenue <= last.Base.Revenue || last.Base.Revenue <= last.Bear.Revenue {
		t.Error("expected bull > base > bear revenue in the final year")
	}

	if results.Cagr.Base.Revenue == nil {
		t.Fatal("base revenue CAGR should be defined")
	}
	if *results.Cagr.Base.Revenue <= 0 {
		t.Errorf("base revenue CAGR should be positive, got %f", *results.Cagr.Base.Revenue)
	}
	// Constant 35% growth means the revenue CAGR is exactly 35%.
	if math.Abs(*results.Cagr.Base.Revenue-35.0) > 1e-9 {
		t.Errorf("base revenue CAGR = %f, want 35", *results.Cagr.Base.Revenue)
	}
}

func TestGenerateResultsIdempotent(t *testing.T) {
	fundamental := fixtureFundamentals()
	assumptions := models.DefaultAssumptions()

	first, err := GenerateResults(fundamental, assumptions)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := GenerateResults(fundamental, assumptions)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must yield identical results")
	}
}

func TestGenerateResultsZeroYears(t *testing.T) {
	assumptions := models.DefaultAssumptions()
	assumptions.Years = 0

	results, err := GenerateResults(fixtureFundamentals(), assumptions)
	if err != nil {
		t.Fatalf("zero years should not error: %v", err)
	}
	if len(results.Projections) != 0 {
		t.Errorf("expected empty projections, got %d", len(results.Projections))
	}
	if results.Cagr.Base.Revenue != nil {
		t.Error("CAGR over an empty horizon should be nil")
	}
}

func TestGenerateResultsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.FundamentalData, *models.ProjectionAssumptions)
	}{
		{"negative years", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			a.Years = -1
		}},
		{"peLow above peHigh", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			a.PELow, a.PEHigh = 60, 50
		}},
		{"psLow above psHigh", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			a.PSLow, a.PSHigh = 8, 3
		}},
		{"zero shares", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			fd.CurrentMetrics.SharesOutstanding = 0
		}},
		{"negative shares", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			fd.CurrentMetrics.SharesOutstanding = -100
		}},
		{"shares growth wipes out float", func(fd *models.FundamentalData, a *models.ProjectionAssumptions) {
			a.SharesGrowth = -100
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fd := fixtureFundamentals()
			a := models.DefaultAssumptions()
			c.mutate(fd, &a)

			_, err := GenerateResults(fd, a)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var invalid *ErrInvalidAssumption
			if !errors.As(err, &invalid) {
				t.Errorf("expected ErrInvalidAssumption, got %T: %v", err, err)
			}
		})
	}
}

func TestGenerateResultsNilFundamental(t *testing.T) {
	_, err := GenerateResults(nil, models.DefaultAssumptions())
	var insufficient *ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestGenerateResultsAnalystEstimatesFlowThrough(t *testing.T) {
	results, err := GenerateResults(fixtureFundamentals(), models.DefaultAssumptions())
	if err != nil {
		t.Fatalf("GenerateResults failed: %v", err)
	}
	y2025 := results.Projections[0]
	if y2025.Base.AnalystEPSEstimate == nil || *y2025.Base.AnalystEPSEstimate != 3.50 {
		t.Error("2025 base scenario should carry the 3.50 consensus estimate")
	}
	y2027 := results.Projections[2]
	if y2027.Base.AnalystEPSEstimate != nil {
		t.Error("2027 has no consensus estimate and should carry none")
	}
}

func TestConsensusForResults(t *testing.T) {
	results, err := GenerateResults(fixtureFundamentals(), models.DefaultAssumptions())
	if err != nil {
		t.Fatalf("GenerateResults failed: %v", err)
	}
	consensus := ConsensusForResults(results, DefaultConsensusThreshold)

	// Estimates exist for 2025 and 2026 only.
	if len(consensus.Base) != 2 {
		t.Fatalf("expected 2 base comparisons, got %d", len(consensus.Base))
	}
	if consensus.Base[0].Year != 2025 || consensus.Base[1].Year != 2026 {
		t.Errorf("comparison years: got %d, %d", consensus.Base[0].Year, consensus.Base[1].Year)
	}

	// The default base case projects EPS far above a 3.50 consensus.
	if consensus.Base[0].Rating != models.ConsensusAbove {
		t.Errorf("expected above consensus, got %q", consensus.Base[0].Rating)
	}

	// Annotation never mutates the projections themselves.
	fresh, _ := GenerateResults(fixtureFundamentals(), models.DefaultAssumptions())
	if !reflect.DeepEqual(results, fresh) {
		t.Error("consensus annotation must not mutate projection results")
	}
}
