package projection

import (
	"math"

	"github.com/frhd/quantum-kapital/pkg/models"
)

// DefaultConsensusThreshold is the |diff%| band, in percent, inside which a
// projected EPS is considered aligned with the analyst consensus.
const DefaultConsensusThreshold = 5.0

// CompareToConsensus annotates a scenario's projected EPS against analyst
// consensus estimates for the years where both exist. The annotation is
// additive: it never changes the underlying projections.
//
// thresholdPct <= 0 falls back to DefaultConsensusThreshold.
func CompareToConsensus(proj []models.FinancialProjection, thresholdPct float64) []models.ConsensusComparison {
	if thresholdPct <= 0 {
		thresholdPct = DefaultConsensusThreshold
	}

	out := make([]models.ConsensusComparison, 0, len(proj))
	for _, fp := range proj {
		if fp.AnalystEPSEstimate == nil {
			continue
		}
		analyst := *fp.AnalystEPSEstimate
		diff := fp.EPS - analyst

		// A zero consensus makes the percentage undefined; classify on the
		// raw difference and keep the percent at zero rather than emit Inf.
		var diffPct float64
		if analyst != 0 {
			diffPct = diff / math.Abs(analyst) * 100
		}

		rating := models.ConsensusAligned
		switch {
		case analyst != 0 && math.Abs(diffPct) < thresholdPct:
			rating = models.ConsensusAligned
		case diff > 0:
			rating = models.ConsensusAbove
		case diff < 0:
			rating = models.ConsensusBelow
		}

		out = append(out, models.ConsensusComparison{
			Year:        fp.Year,
			EPS:         fp.EPS,
			AnalystEPS:  analyst,
			Diff:        diff,
			DiffPercent: diffPct,
			Rating:      rating,
		})
	}
	return out
}
