package app

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/bft-labs/evalsample/internal/domain"
)

// AuditStrata measures how far the selected counts stray from the pool's
// group proportions. Strata with no available records are ignored. An empty
// or zero-count report yields a zero Audit.
func AuditStrata(strata []domain.StratumRow) domain.Audit {
	total, selected := 0, 0
	for _, s := range strata {
		total += s.Available
		selected += s.Selected
	}
	if total == 0 || selected == 0 {
		return domain.Audit{}
	}

	var deviations, observed, expected stats.Float64Data
	for _, s := range strata {
		if s.Available == 0 {
			continue
		}
		poolShare := float64(s.Available) / float64(total)
		sampleShare := float64(s.Selected) / float64(selected)
		deviations = append(deviations, math.Abs(sampleShare-poolShare))
		observed = append(observed, float64(s.Selected))
		expected = append(expected, poolShare*float64(selected))
	}

	mean, err := stats.Mean(deviations)
	if err != nil {
		return domain.Audit{}
	}
	max, err := stats.Max(deviations)
	if err != nil {
		return domain.Audit{}
	}
	return domain.Audit{
		MeanShareDeviation: mean,
		MaxShareDeviation:  max,
		ChiSquare:          stat.ChiSquare(observed, expected),
	}
}
