// Package edge prices canonical markets against the projection model and
// publishes the resulting board of edges.
package edge

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/prop-edge/internal/models"
)

// DefaultFreshnessDecay is λ in exp(−λ·age_seconds); roughly a two hour half-life
const DefaultFreshnessDecay = 1e-4

// NormalCDF is the standard normal CDF Φ(x) = 0.5·(1 + erf(x/√2))
func NormalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// ModelProbability returns P(X > line) for over and P(X < line) for under
// when X ~ N(mean, stdev²).
func ModelProbability(mean, stdev, line float64, side models.Side) (float64, error) {
	if !side.Valid() {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidSide, side)
	}
	if !(stdev > 0) || math.IsInf(stdev, 0) {
		return 0, fmt.Errorf("%w: stdev %v must be positive", models.ErrNonFiniteResult, stdev)
	}
	if !isFinite(mean) || !isFinite(line) {
		return 0, fmt.Errorf("%w: mean %v line %v", models.ErrNonFiniteResult, mean, line)
	}

	cdf := NormalCDF((line - mean) / stdev)
	if side == models.SideOver {
		return 1 - cdf, nil
	}
	return cdf, nil
}

// FairOdds returns the decimal fair odds 1/p. ok is false when p is not
// positive, in which case the odds are undefined.
func FairOdds(p float64) (odds float64, ok bool) {
	if !(p > 0) || math.IsInf(p, 0) {
		return 0, false
	}
	return 1 / p, true
}

// EdgePct is the percentage-point gap between model and market probability.
// Positive means the model favors the side more than the price implies.
func EdgePct(pModel, pImplied float64) float64 {
	return (pModel - pImplied) * 100
}

// Freshness scores how stale a quote is: exp(−λ·age) clamped to [0,1].
// Quotes observed after now score 1.
func Freshness(observedAt, now time.Time, lambda float64) float64 {
	age := now.Sub(observedAt).Seconds()
	if age <= 0 {
		return 1
	}
	score := math.Exp(-lambda * age)
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
