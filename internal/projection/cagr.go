package projection

import (
	"math"

	"github.com/frhd/quantum-kapital/pkg/models"
)

// CAGR computes the compound annual growth rate, in percent, that takes
// baseline to final over the given number of compounding periods.
//
// The fractional-exponent formula is undefined for non-positive inputs, so
// a nil sentinel is returned when baseline <= 0, final <= 0, or years <= 0.
// NaN and Infinity never reach the output contract.
func CAGR(baseline, final float64, years int) *float64 {
	if years <= 0 || baseline <= 0 || final <= 0 {
		return nil
	}
	v := (math.Pow(final/baseline, 1/float64(years)) - 1) * 100
	return &v
}

// scenarioCagr reduces one scenario's full horizon to its two growth
// percentages: revenue (baseline revenue to final-year revenue) and share
// price (current market price to the midpoint of the final year's range).
func scenarioCagr(baseline models.FinancialProjection, marketPrice float64, proj []models.FinancialProjection) models.CagrMetrics {
	if len(proj) == 0 {
		return models.CagrMetrics{}
	}
	last := proj[len(proj)-1]
	midPrice := (last.SharePriceLow + last.SharePriceHigh) / 2

	return models.CagrMetrics{
		Revenue:    CAGR(baseline.Revenue, last.Revenue, len(proj)),
		SharePrice: CAGR(marketPrice, midPrice, len(proj)),
	}
}
