package projection

import (
	"github.com/frhd/quantum-kapital/pkg/models"
)

// ResolveBaseline selects the most recent complete historical year as the
// actual-data anchor for all projections. A year is complete when revenue,
// net income, and EPS are all reported. Growth figures are computed against
// the second-most-recent complete year when one exists.
//
// The baseline's price range is the current market price, not a computed
// valuation; its valuation method only reflects the sign of actual EPS.
func ResolveBaseline(historical []models.HistoricalFinancial, current models.CurrentMetrics) (models.FinancialProjection, error) {
	if len(historical) == 0 {
		return models.FinancialProjection{}, &ErrInsufficientData{Detail: "no historical data available"}
	}

	// The input is an unordered set; scan for the two most recent complete years.
	var latest, prior *models.HistoricalFinancial
	for i := range historical {
		h := &historical[i]
		if !h.Complete() {
			continue
		}
		switch {
		case latest == nil || h.Year > latest.Year:
			prior = latest
			latest = h
		case prior == nil || h.Year > prior.Year:
			prior = h
		}
	}
	if latest == nil {
		return models.FinancialProjection{}, &ErrInsufficientData{Detail: "no complete historical year (revenue, net income, and EPS all reported)"}
	}

	revenue := *latest.Revenue
	netIncome := *latest.NetIncome
	if revenue <= 0 {
		return models.FinancialProjection{}, &ErrInsufficientData{Detail: "baseline revenue must be positive"}
	}

	baseline := models.FinancialProjection{
		Year:             latest.Year,
		Revenue:          revenue,
		NetIncome:        netIncome,
		NetIncomeMargins: netIncome / revenue * 100,
		EPS:              *latest.EPS,
		PELowEst:         current.PERatio,
		PEHighEst:        current.PERatio,
		SharePriceLow:    current.Price,
		SharePriceHigh:   current.Price,
		ValuationMethod:  models.ValuationPE,
	}
	if baseline.EPS <= 0 {
		baseline.ValuationMethod = models.ValuationPS
	}

	if prior != nil {
		if pr := *prior.Revenue; pr != 0 {
			baseline.RevenueGrowth = (revenue - pr) / pr * 100
		}
		if pn := *prior.NetIncome; pn != 0 {
			g := (netIncome - pn) / pn * 100
			baseline.NetIncomeGrowth = &g
		}
	}

	return baseline, nil
}
