// Package projection implements the forward projection engine: given a
// security's historical financial series and a set of growth and valuation
// assumptions, it produces multi-year Bear/Base/Bull scenario projections
// with compounded revenue, margin drift, profitability-dependent valuation,
// and CAGR summaries.
//
// The engine is pure and synchronous. It performs no I/O, holds no state,
// and is safe to invoke concurrently: identical inputs always produce
// identical results.
package projection

import (
	"github.com/frhd/quantum-kapital/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Validation
// ════════════════════════════════════════════════════════════════════

// ValidateAssumptions checks every assumption before any per-year
// computation begins, so a projection run never returns a partial result.
func ValidateAssumptions(a models.ProjectionAssumptions, sharesOutstanding float64) error {
	if a.Years < 0 {
		return &ErrInvalidAssumption{Field: "years", Reason: "must not be negative"}
	}
	if a.PELow > a.PEHigh {
		return &ErrInvalidAssumption{Field: "peLow", Reason: "must not exceed peHigh"}
	}
	if a.PSLow > a.PSHigh {
		return &ErrInvalidAssumption{Field: "psLow", Reason: "must not exceed psHigh"}
	}
	if sharesOutstanding <= 0 {
		return &ErrInvalidAssumption{Field: "sharesOutstanding", Reason: "must be positive"}
	}
	// With constant annual shares growth, shares stay positive over any
	// horizon exactly when the growth factor stays positive.
	if 1+a.SharesGrowth/100 <= 0 {
		return &ErrInvalidAssumption{Field: "sharesGrowth", Reason: "drives shares outstanding to zero or below"}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Engine — Baseline → Project ×3 → CAGR
// ════════════════════════════════════════════════════════════════════

// GenerateResults runs the full projection pipeline for one security:
// baseline resolution, three independent scenario projections, and the
// per-scenario CAGR reduction. The projections slice holds exactly
// assumptions.Years entries, years ascending from baseline year + 1.
func GenerateResults(fundamental *models.FundamentalData, assumptions models.ProjectionAssumptions) (*models.ProjectionResults, error) {
	if fundamental == nil {
		return nil, &ErrInsufficientData{Detail: "no fundamental data available"}
	}
	if err := ValidateAssumptions(assumptions, fundamental.CurrentMetrics.SharesOutstanding); err != nil {
		return nil, err
	}

	baseline, err := ResolveBaseline(fundamental.Historical, fundamental.CurrentMetrics)
	if err != nil {
		return nil, err
	}

	// Three separate invocations of the same pure fold, differing only in
	// the scenario's growth and margin drift.
	base := scenarioParams{
		startYear:    baseline.Year,
		revenue:      baseline.Revenue,
		margin:       baseline.NetIncomeMargins,
		netIncome:    baseline.NetIncome,
		shares:       fundamental.CurrentMetrics.SharesOutstanding,
		sharesGrowth: assumptions.SharesGrowth,
		peLow:        assumptions.PELow,
		peHigh:       assumptions.PEHigh,
		psLow:        assumptions.PSLow,
		psHigh:       assumptions.PSHigh,
		years:        assumptions.Years,
		estimates:    fundamental.AnalystEstimates,
	}

	bearParams := base
	bearParams.revenueGrowth = assumptions.BearRevenueGrowth
	bearParams.marginChange = assumptions.BearMarginChange

	baseParams := base
	baseParams.revenueGrowth = assumptions.BaseRevenueGrowth
	baseParams.marginChange = assumptions.BaseMarginChange

	bullParams := base
	bullParams.revenueGrowth = assumptions.BullRevenueGrowth
	bullParams.marginChange = assumptions.BullMarginChange

	bear := projectScenario(bearParams)
	basecase := projectScenario(baseParams)
	bull := projectScenario(bullParams)

	yearly := make([]models.YearlyProjection, len(basecase))
	for i := range basecase {
		yearly[i] = models.YearlyProjection{
			Year: basecase[i].Year,
			Bear: bear[i],
			Base: basecase[i],
			Bull: bull[i],
		}
	}

	price := fundamental.CurrentMetrics.Price
	return &models.ProjectionResults{
		Baseline:    baseline,
		Projections: yearly,
		Cagr: models.ScenarioCagr{
			Bear: scenarioCagr(baseline, price, bear),
			Base: scenarioCagr(baseline, price, basecase),
			Bull: scenarioCagr(baseline, price, bull),
		},
	}, nil
}

// ScenarioConsensus holds per-scenario consensus annotations for a
// projection run.
type ScenarioConsensus struct {
	Bear []models.ConsensusComparison `json:"bear"`
	Base []models.ConsensusComparison `json:"base"`
	Bull []models.ConsensusComparison `json:"bull"`
}

// ConsensusForResults annotates every scenario of a projection run against
// analyst consensus using the given alignment threshold (percent).
func ConsensusForResults(results *models.ProjectionResults, thresholdPct float64) ScenarioConsensus {
	if results == nil {
		return ScenarioConsensus{}
	}
	bear := make([]models.FinancialProjection, len(results.Projections))
	base := make([]models.FinancialProjection, len(results.Projections))
	bull := make([]models.FinancialProjection, len(results.Projections))
	for i, yp := range results.Projections {
		bear[i], base[i], bull[i] = yp.Bear, yp.Base, yp.Bull
	}
	return ScenarioConsensus{
		Bear: CompareToConsensus(bear, thresholdPct),
		Base: CompareToConsensus(base, thresholdPct),
		Bull: CompareToConsensus(bull, thresholdPct),
	}
}
