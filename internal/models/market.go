package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Side represents the side of a prop (over or under)
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// ParseSide normalizes a feed or user supplied side ("Over", "UNDER", ...)
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(raw))) {
	case SideOver:
		return SideOver, nil
	case SideUnder:
		return SideUnder, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, raw)
	}
}

// Valid reports whether the side is over or under
func (s Side) Valid() bool {
	return s == SideOver || s == SideUnder
}

// Opposite returns the complementary side
func (s Side) Opposite() Side {
	if s == SideOver {
		return SideUnder
	}
	return SideOver
}

// MarketKey identifies a canonical market. Line is optional: quotes group on
// the full key, picks and results match on the key without a line.
type MarketKey struct {
	GameID    string   `db:"game_id" json:"game_id" validate:"required"`
	SubjectID string   `db:"subject_id" json:"subject_id" validate:"required"`
	StatType  string   `db:"stat_type" json:"stat_type" validate:"required"`
	Line      *float64 `db:"line_value" json:"line,omitempty"`
}

// String returns a stable key of the form game|subject|STAT[|line]
func (k MarketKey) String() string {
	base := strings.Join([]string{k.GameID, k.SubjectID, strings.ToUpper(k.StatType)}, "|")
	if k.Line == nil {
		return base
	}
	return base + "|" + strconv.FormatFloat(*k.Line, 'f', -1, 64)
}

// Base returns the key without a line
func (k MarketKey) Base() MarketKey {
	return MarketKey{GameID: k.GameID, SubjectID: k.SubjectID, StatType: strings.ToUpper(k.StatType)}
}

// WithLine returns a copy of the key pinned to a line value
func (k MarketKey) WithLine(line float64) MarketKey {
	out := k.Base()
	out.Line = &line
	return out
}

// MarketQuote is one priced outcome observation from a single source
type MarketQuote struct {
	Market        MarketKey `json:"market"`
	Side          Side      `db:"side" json:"side" validate:"required,oneof=over under"`
	Line          float64   `db:"line_value" json:"line_value"`
	PriceAmerican int       `db:"price_american" json:"price_american"`
	Source        string    `db:"source" json:"source" validate:"required"`
	ObservedAt    time.Time `db:"observed_at" json:"timestamp" validate:"required"`
	LatencyMS     *int      `db:"latency_ms" json:"latency_ms,omitempty"`
}

// CanonicalMarket returns the grouping key for consensus computation
func (q *MarketQuote) CanonicalMarket() MarketKey {
	return q.Market.WithLine(q.Line)
}

// Validate checks the quote before it enters the pricing pipeline
func (q *MarketQuote) Validate() error {
	if q.PriceAmerican == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPrice, q.PriceAmerican)
	}
	if q.PriceAmerican > -100 && q.PriceAmerican < 100 {
		return fmt.Errorf("%w: magnitude of %d is below 100", ErrInvalidPrice, q.PriceAmerican)
	}
	if !q.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, q.Side)
	}
	if err := validateStruct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}
	if math.IsNaN(q.Line) || math.IsInf(q.Line, 0) {
		return fmt.Errorf("%w: line is not finite", ErrInvalidQuote)
	}
	return nil
}

// ProbabilityPair is a de-margined over/under pair summing to one
type ProbabilityPair struct {
	Over  float64 `json:"p_over"`
	Under float64 `json:"p_under"`
}

// For returns the probability for the given side
func (p ProbabilityPair) For(side Side) float64 {
	if side == SideUnder {
		return p.Under
	}
	return p.Over
}

// ProjectedDistribution is the assumed normal model of a statistic
type ProjectedDistribution struct {
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
}
