package pricing

import (
	"fmt"
	"math"

	"github.com/yourusername/prop-edge/internal/models"
)

// Tolerance is the allowed drift of a de-margined pair away from summing to one
const Tolerance = 1e-9

// RemoveVig normalizes two complementary implied probabilities so they sum to
// one while keeping their ratio.
//
// 0.5238 / 0.5238 (4.76% vig) → 0.50 / 0.50
// 0.60 / 0.50                 → 0.5455 / 0.4545
func RemoveVig(pA, pB float64) (float64, float64, error) {
	total := pA + pB
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return 0, 0, fmt.Errorf("%w: %v + %v", models.ErrDegenerateMarket, pA, pB)
	}
	if pA < 0 || pB < 0 {
		return 0, 0, fmt.Errorf("%w: negative probability %v / %v", models.ErrDegenerateMarket, pA, pB)
	}
	return pA / total, pB / total, nil
}

// DeVig converts an over/under price pair into a de-margined probability pair
func DeVig(overPrice, underPrice int) (models.ProbabilityPair, error) {
	pOver, err := ImpliedProbability(overPrice)
	if err != nil {
		return models.ProbabilityPair{}, fmt.Errorf("over price: %w", err)
	}
	pUnder, err := ImpliedProbability(underPrice)
	if err != nil {
		return models.ProbabilityPair{}, fmt.Errorf("under price: %w", err)
	}
	over, under, err := RemoveVig(pOver, pUnder)
	if err != nil {
		return models.ProbabilityPair{}, err
	}
	return models.ProbabilityPair{Over: over, Under: under}, nil
}

// Overround returns the bookmaker margin of a two-way market in percent
// 0.5238 + 0.5238 → 4.76
func Overround(pA, pB float64) float64 {
	total := pA + pB
	if total <= 1.0 {
		return 0
	}
	return (total - 1.0) * 100.0
}
