package projection

import "strings"

// DefaultBookWeight applies to sources missing from the weight table
const DefaultBookWeight = 0.5

// DefaultBookWeights ranks sources by how sharp their prices are
func DefaultBookWeights() map[string]float64 {
	return map[string]float64{
		"Pinnacle":   1.0,
		"Circa":      0.9,
		"FanDuel":    0.85,
		"DraftKings": 0.8,
		"BetMGM":     0.5,
		"Caesars":    0.5,
		"PointsBet":  0.5,
		"Retail":     0.2,
	}
}

// BookWeights maps a source label to its consensus weight. Lookup ignores case.
type BookWeights struct {
	weights map[string]float64
}

// NewBookWeights copies the table; non-positive weights are dropped
func NewBookWeights(table map[string]float64) BookWeights {
	w := BookWeights{weights: make(map[string]float64, len(table))}
	for book, weight := range table {
		if weight > 0 {
			w.weights[strings.ToLower(book)] = weight
		}
	}
	return w
}

// Weight returns the weight of a source
func (w BookWeights) Weight(source string) float64 {
	if weight, ok := w.weights[strings.ToLower(source)]; ok {
		return weight
	}
	return DefaultBookWeight
}
