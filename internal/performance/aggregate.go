// Package performance rolls grades up into accuracy, CLV and error metrics.
package performance

import (
	"math"
	"sort"
	"strings"

	"github.com/yourusername/prop-edge/internal/models"
)

// DefaultStopLossThreshold is the relative accuracy drop that trips the guardrail
const DefaultStopLossThreshold = 0.05

// Aggregate reduces a set of grades to summary metrics. An empty set yields
// all zeros. Sums run over sorted copies so any permutation of the same
// grades produces identical output.
func Aggregate(grades []models.Grade) models.AggregateMetrics {
	n := len(grades)
	if n == 0 {
		return models.AggregateMetrics{}
	}

	clv := make([]float64, 0, n)
	absErr := make([]float64, 0, n)
	sqErr := make([]float64, 0, n)
	profit := make([]float64, 0, n)
	var wins, positive, pushes int

	for i := range grades {
		g := &grades[i]
		if g.Won {
			wins++
		}
		if g.IsPush() {
			pushes++
		}
		if g.CLV > 0 {
			positive++
		}
		clv = append(clv, g.CLV)
		absErr = append(absErr, g.AbsError)
		sqErr = append(sqErr, g.AbsError*g.AbsError)
		profit = append(profit, g.Profit)
	}

	count := float64(n)
	return models.AggregateMetrics{
		CorrectPct:     float64(wins) / count,
		CLVMean:        sortedSum(clv) / count,
		CLVPctPositive: float64(positive) / count,
		MAE:            sortedSum(absErr) / count,
		RMSE:           math.Sqrt(sortedSum(sqErr) / count),
		Count:          n,
		PushCount:      pushes,
		TotalProfit:    sortedSum(profit),
	}
}

// AggregateByStat groups graded picks by stat type and aggregates each group.
// Open picks are ignored.
func AggregateByStat(states []models.PickState) map[string]models.AggregateMetrics {
	groups := make(map[string][]models.Grade)
	for _, s := range states {
		if s.Grade == nil {
			continue
		}
		stat := strings.ToUpper(s.Pick.Market.StatType)
		groups[stat] = append(groups[stat], *s.Grade)
	}

	out := make(map[string]models.AggregateMetrics, len(groups))
	for stat, grades := range groups {
		out[stat] = Aggregate(grades)
	}
	return out
}

// CheckStopLoss reports whether accuracy fell by more than threshold·previous
func CheckStopLoss(previous, current, threshold float64) bool {
	drop := previous - current
	return drop > threshold*previous
}

func sortedSum(values []float64) float64 {
	sort.Float64s(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
