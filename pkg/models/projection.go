package models

// ValuationMethod identifies which multiple produced a share price range.
type ValuationMethod string

const (
	// ValuationPE applies price-to-earnings multiples to projected EPS.
	// Used whenever projected EPS is positive.
	ValuationPE ValuationMethod = "P/E"
	// ValuationPS applies price-to-sales multiples to per-share revenue.
	// Used whenever projected EPS is zero or negative.
	ValuationPS ValuationMethod = "P/S"
)

// ProjectionAssumptions drive the Bear/Base/Bull scenario projections.
// Growth rates are percentages (35.0 = 35%); margin changes are percentage
// points added per projected year and may be negative.
type ProjectionAssumptions struct {
	Years             int     `json:"years"`
	BearRevenueGrowth float64 `json:"bearRevenueGrowth"`
	BaseRevenueGrowth float64 `json:"baseRevenueGrowth"`
	BullRevenueGrowth float64 `json:"bullRevenueGrowth"`
	BearMarginChange  float64 `json:"bearMarginChange"`
	BaseMarginChange  float64 `json:"baseMarginChange"`
	BullMarginChange  float64 `json:"bullMarginChange"`
	PELow             float64 `json:"peLow"`  // applied when EPS > 0
	PEHigh            float64 `json:"peHigh"`
	PSLow             float64 `json:"psLow"`  // applied when EPS <= 0
	PSHigh            float64 `json:"psHigh"`
	SharesGrowth      float64 `json:"sharesGrowth"` // %/year, negative for buybacks
}

// DefaultAssumptions returns the dashboard's stock assumption set:
// five years out, 20/35/50% revenue growth, mild margin drift, and
// multiple bands suited to growth names.
func DefaultAssumptions() ProjectionAssumptions {
	return ProjectionAssumptions{
		Years:             5,
		BearRevenueGrowth: 20.0,
		BaseRevenueGrowth: 35.0,
		BullRevenueGrowth: 50.0,
		BearMarginChange:  -0.5,
		BaseMarginChange:  0.5,
		BullMarginChange:  1.0,
		PELow:             50.0,
		PEHigh:            60.0,
		PSLow:             3.0,
		PSHigh:            8.0,
		SharesGrowth:      0.0,
	}
}

// FinancialProjection is one projected (or actual baseline) year for a single
// scenario. Revenue and net income are in billions; prices in dollars.
// Nullable fields stay nil rather than carrying NaN or Infinity so the struct
// always serializes to clean JSON primitives for the UI and export layers.
type FinancialProjection struct {
	Year               int             `json:"year"`
	Revenue            float64         `json:"revenue"`
	RevenueGrowth      float64         `json:"revenueGrowth"`
	NetIncome          float64         `json:"netIncome"`
	NetIncomeGrowth    *float64        `json:"netIncomeGrowth"` // nil when prior net income is zero or unknown
	NetIncomeMargins   float64         `json:"netIncomeMargins"`
	EPS                float64         `json:"eps"`
	PELowEst           float64         `json:"peLowEst"`
	PEHighEst          float64         `json:"peHighEst"`
	PSLowEst           *float64        `json:"psLowEst,omitempty"`
	PSHighEst          *float64        `json:"psHighEst,omitempty"`
	SharePriceLow      float64         `json:"sharePriceLow"`
	SharePriceHigh     float64         `json:"sharePriceHigh"`
	ValuationMethod    ValuationMethod `json:"valuationMethod"`
	AnalystEPSEstimate *float64        `json:"analystEpsEstimate,omitempty"`
}

// YearlyProjection groups the three scenarios for one projected year so the
// UI can render bear/base/bull side by side.
type YearlyProjection struct {
	Year int                 `json:"year"`
	Bear FinancialProjection `json:"bear"`
	Base FinancialProjection `json:"base"`
	Bull FinancialProjection `json:"bull"`
}

// CagrMetrics holds compound annual growth rates for one scenario, in percent.
// Fields are nil when the CAGR is mathematically undefined (non-positive
// baseline or final value).
type CagrMetrics struct {
	Revenue    *float64 `json:"revenue"`
	SharePrice *float64 `json:"sharePrice"`
}

// ScenarioCagr holds CAGR metrics per scenario.
type ScenarioCagr struct {
	Bear CagrMetrics `json:"bear"`
	Base CagrMetrics `json:"base"`
	Bull CagrMetrics `json:"bull"`
}

// ProjectionResults is the full output of a projection run: the actual
// baseline year, the forward years grouped by year, and per-scenario CAGRs.
// It is immutable once returned and recomputed per request, never cached.
type ProjectionResults struct {
	Baseline    FinancialProjection `json:"baseline"`
	Projections []YearlyProjection  `json:"projections"`
	Cagr        ScenarioCagr        `json:"cagr"`
}

// Consensus ratings assigned when comparing projected EPS to analyst estimates.
const (
	ConsensusAligned = "Aligned"
	ConsensusAbove   = "Above consensus"
	ConsensusBelow   = "Below consensus"
)

// ConsensusComparison annotates one projected year's EPS against the analyst
// consensus for that year. It never alters the underlying projection.
type ConsensusComparison struct {
	Year        int     `json:"year"`
	EPS         float64 `json:"eps"`
	AnalystEPS  float64 `json:"analystEps"`
	Diff        float64 `json:"diff"`
	DiffPercent float64 `json:"diffPercent"`
	Rating      string  `json:"rating"`
}
