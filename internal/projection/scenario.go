package projection

import (
	"github.com/frhd/quantum-kapital/pkg/models"
)

// scenarioParams carries everything one scenario needs: the baseline anchor
// values plus that scenario's fixed annual growth and margin drift.
type scenarioParams struct {
	startYear     int     // baseline year; projections begin at startYear+1
	revenue       float64 // billions
	margin        float64 // percent
	netIncome     float64 // billions
	shares        float64 // millions
	revenueGrowth float64 // %/year, constant across the horizon
	marginChange  float64 // percentage points/year
	sharesGrowth  float64 // %/year
	peLow         float64
	peHigh        float64
	psLow         float64
	psHigh        float64
	years         int
	estimates     *models.AnalystEstimates
}

// projectScenario compounds revenue, margin, and share count year by year
// from the baseline and derives EPS and a valuation-based price range for
// each projected year. It is a pure fold over the year range: each year
// derives only from the previous year of the same scenario, and the output
// is a fresh immutable slice.
//
// years <= 0 yields an empty sequence. Assumption validity (positive shares,
// ordered multiple bands) is checked by the caller before any year is computed.
func projectScenario(p scenarioParams) []models.FinancialProjection {
	if p.years <= 0 {
		return []models.FinancialProjection{}
	}

	out := make([]models.FinancialProjection, 0, p.years)

	revenue := p.revenue
	margin := p.margin
	shares := p.shares
	prevNetIncome := p.netIncome

	for i := 1; i <= p.years; i++ {
		year := p.startYear + i

		revenue *= 1 + p.revenueGrowth/100
		margin += p.marginChange
		shares *= 1 + p.sharesGrowth/100
		netIncome := revenue * margin / 100

		var netIncomeGrowth *float64
		if prevNetIncome != 0 {
			g := (netIncome - prevNetIncome) / prevNetIncome * 100
			netIncomeGrowth = &g
		}

		// Net income is in billions, shares in millions: the billions/millions
		// ratio leaves a factor of 1000 per share.
		eps := netIncome / shares * 1000

		fp := models.FinancialProjection{
			Year:             year,
			Revenue:          revenue,
			RevenueGrowth:    p.revenueGrowth,
			NetIncome:        netIncome,
			NetIncomeGrowth:  netIncomeGrowth,
			NetIncomeMargins: margin,
			EPS:              eps,
			PELowEst:         p.peLow,
			PEHighEst:        p.peHigh,
		}

		// The valuation method is decided independently for every year: a
		// scenario that dips below profitability switches to price-to-sales
		// and switches back the year EPS recovers.
		if eps > 0 {
			fp.ValuationMethod = models.ValuationPE
			fp.SharePriceLow = eps * p.peLow
			fp.SharePriceHigh = eps * p.peHigh
		} else {
			perShareRevenue := revenue / shares * 1000
			psLow, psHigh := p.psLow, p.psHigh
			fp.ValuationMethod = models.ValuationPS
			fp.PSLowEst = &psLow
			fp.PSHighEst = &psHigh
			fp.SharePriceLow = perShareRevenue * psLow
			fp.SharePriceHigh = perShareRevenue * psHigh
		}

		fp.AnalystEPSEstimate = p.estimates.EPSForYear(year)

		out = append(out, fp)
		prevNetIncome = netIncome
	}

	return out
}
