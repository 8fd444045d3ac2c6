package projection

import (
	"fmt"
	"math"

	"github.com/yourusername/prop-edge/internal/models"
)

// ClampProbability pins p into [eps, 1-eps] so the inverse CDF stays finite
func ClampProbability(p, eps float64) (float64, error) {
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: probability is NaN", models.ErrNonFiniteResult)
	}
	if p < eps {
		return eps, nil
	}
	if p > 1-eps {
		return 1 - eps, nil
	}
	return p, nil
}

// InverseNormalCDF returns z such that Φ(z) = p, via √2·erfinv(2p−1)
func InverseNormalCDF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// ConsensusMean back-solves the mean of a normal model so that
// P(X > line) equals the de-margined market p_over:
//
//	Φ((line − mean) / stdev) = 1 − p_over
//	mean = line − z(1 − p_over) · stdev
func (p *Priors) ConsensusMean(line, pOver float64, statType string) (float64, error) {
	clamped, err := ClampProbability(pOver, p.epsilon)
	if err != nil {
		return 0, err
	}
	z := InverseNormalCDF(1 - clamped)
	mean := line - z*p.Stdev(statType)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, fmt.Errorf("%w: mean for line %v p_over %v", models.ErrNonFiniteResult, line, pOver)
	}
	return mean, nil
}

// Project returns the full projected distribution for a market
func (p *Priors) Project(line, pOver float64, statType string) (models.ProjectedDistribution, error) {
	mean, err := p.ConsensusMean(line, pOver, statType)
	if err != nil {
		return models.ProjectedDistribution{}, err
	}
	return models.ProjectedDistribution{Mean: mean, Stdev: p.Stdev(statType)}, nil
}
