package models

// HistoricalFinancial is one fiscal year of reported financials for a security.
// Revenue and net income are in billions of dollars, EPS in dollars per share.
// Fields are pointers because upstream sources routinely report partial years;
// an entry is "complete" only when all three are non-nil.
type HistoricalFinancial struct {
	Year      int      `json:"year"`
	Revenue   *float64 `json:"revenue"`   // billions
	NetIncome *float64 `json:"netIncome"` // billions
	EPS       *float64 `json:"eps"`       // dollars per share
}

// Complete reports whether every field needed as a projection anchor is present.
func (h HistoricalFinancial) Complete() bool {
	return h.Revenue != nil && h.NetIncome != nil && h.EPS != nil
}

// AnalystEstimate is a single consensus estimate for a future fiscal year.
type AnalystEstimate struct {
	Year     int     `json:"year"`
	Estimate float64 `json:"estimate"`
}

// AnalystEstimates groups forward consensus estimates by metric.
type AnalystEstimates struct {
	Revenue []AnalystEstimate `json:"revenue"` // billions
	EPS     []AnalystEstimate `json:"eps"`     // dollars per share
}

// EPSForYear returns the consensus EPS estimate for the given year, if any.
func (a *AnalystEstimates) EPSForYear(year int) *float64 {
	if a == nil {
		return nil
	}
	for _, e := range a.EPS {
		if e.Year == year {
			v := e.Estimate
			return &v
		}
	}
	return nil
}

// CurrentMetrics holds the security's live market snapshot.
type CurrentMetrics struct {
	Price             float64  `json:"price"`
	PERatio           float64  `json:"peRatio"`
	SharesOutstanding float64  `json:"sharesOutstanding"` // millions
	Name              *string  `json:"name,omitempty"`
	Exchange          *string  `json:"exchange,omitempty"`
	MarketCap         *string  `json:"marketCap,omitempty"` // formatted, e.g. "4.94T"
	DividendYield     *float64 `json:"dividendYield,omitempty"`
}

// FundamentalData is the complete fundamentals bundle for one security,
// as delivered by a fundamentals provider (live, scraped, or synthetic).
type FundamentalData struct {
	Symbol           string                `json:"symbol"`
	Historical       []HistoricalFinancial `json:"historical"`
	AnalystEstimates *AnalystEstimates     `json:"analystEstimates,omitempty"`
	CurrentMetrics   CurrentMetrics        `json:"currentMetrics"`
}
