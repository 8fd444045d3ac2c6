// Package pricing converts signed American prices to probabilities and
// removes bookmaker margin from two-way markets.
package pricing

import (
	"fmt"
	"math"

	"github.com/yourusername/prop-edge/internal/models"
)

// ImpliedProbability converts American odds to the vig-inclusive implied probability
// -110 → 0.5238
// +150 → 0.4000
func ImpliedProbability(price int) (float64, error) {
	if price == 0 {
		return 0, fmt.Errorf("%w: %d", models.ErrInvalidPrice, price)
	}
	if price > 0 {
		return 100.0 / (float64(price) + 100.0), nil
	}
	neg := float64(-price)
	return neg / (neg + 100.0), nil
}

// AmericanToDecimal converts American odds to decimal odds
// +150 → 2.50
// -150 → 1.67
func AmericanToDecimal(price int) (float64, error) {
	if price == 0 {
		return 0, fmt.Errorf("%w: %d", models.ErrInvalidPrice, price)
	}
	if price > 0 {
		return float64(price)/100.0 + 1.0, nil
	}
	return 100.0/float64(-price) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to the nearest American price
func DecimalToAmerican(decimal float64) (int, error) {
	if math.IsNaN(decimal) || decimal <= 1.0 || math.IsInf(decimal, 0) {
		return 0, fmt.Errorf("%w: decimal odds %v must be finite and > 1", models.ErrInvalidPrice, decimal)
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// ProbabilityToAmerican converts a probability in (0,1) to a fair American price
func ProbabilityToAmerican(p float64) (int, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: probability %v outside (0,1)", models.ErrNonFiniteResult, p)
	}
	return DecimalToAmerican(1.0 / p)
}
