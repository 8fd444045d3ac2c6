package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Outcome is the settled result of a pick
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// PickStatus is the lifecycle state of a pick. Open is never left without a
// matching result; Graded is terminal.
type PickStatus string

const (
	PickStatusOpen   PickStatus = "open"
	PickStatusGraded PickStatus = "graded"
)

// Pick represents a recorded betting decision. Picks are append-only.
type Pick struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required"`
	UserTag       string    `db:"user_tag" json:"user_tag"`
	Market        MarketKey `json:"market"`
	Side          Side      `db:"side" json:"side" validate:"required,oneof=over under"`
	Stake         float64   `db:"stake" json:"stake" validate:"gt=0"`
	LineAtPick    float64   `db:"line_at_pick" json:"line_at_pick"`
	PriceAtPick   int       `db:"price_at_pick" json:"price_at_pick"`
	ProjectedMean float64   `db:"projected_mean" json:"projected_mean"`
	PHit          float64   `db:"p_hit" json:"p_hit" validate:"gte=0,lte=1"`
	ModelVersion  string    `db:"model_version" json:"model_version"`
	PickedAt      time.Time `db:"picked_at" json:"picked_at" validate:"required"`
}

// Validate checks the pick before it is stored or graded
func (p *Pick) Validate() error {
	if !p.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, p.Side)
	}
	if p.PriceAtPick > -100 && p.PriceAtPick < 100 {
		return fmt.Errorf("%w: magnitude of %d is below 100", ErrInvalidPrice, p.PriceAtPick)
	}
	for name, v := range map[string]float64{
		"stake":          p.Stake,
		"line_at_pick":   p.LineAtPick,
		"projected_mean": p.ProjectedMean,
		"p_hit":          p.PHit,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidPick, name)
		}
	}
	if err := validateStruct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPick, err)
	}
	return nil
}

// Result is the settled actual value of a market's statistic
type Result struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Market      MarketKey `json:"market"`
	ActualValue float64   `db:"actual_value" json:"actual_value"`
	ClosingLine *float64  `db:"closing_line" json:"closing_line,omitempty"`
	SettledAt   time.Time `db:"settled_at" json:"settled_at"`
	Source      string    `db:"source" json:"source"`
}

// Validate rejects results whose values cannot be graded
func (r *Result) Validate() error {
	if math.IsNaN(r.ActualValue) || math.IsInf(r.ActualValue, 0) {
		return fmt.Errorf("%w: actual value %v", ErrNonFiniteResult, r.ActualValue)
	}
	if r.ClosingLine != nil && (math.IsNaN(*r.ClosingLine) || math.IsInf(*r.ClosingLine, 0)) {
		return fmt.Errorf("%w: closing line %v", ErrNonFiniteResult, *r.ClosingLine)
	}
	return nil
}

// Grade is derived from exactly one pick and its matching result
type Grade struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PickID     uuid.UUID `db:"pick_id" json:"pick_id"`
	Outcome    Outcome   `db:"outcome" json:"outcome"`
	Won        bool      `db:"won" json:"won"`
	Profit     float64   `db:"profit" json:"profit"`
	CLV        float64   `db:"clv" json:"clv"`
	ClosingCLV *float64  `db:"closing_clv" json:"closing_clv,omitempty"`
	AbsError   float64   `db:"abs_error" json:"abs_error"`
	GradedAt   time.Time `db:"graded_at" json:"graded_at"`
}

// IsPush reports whether the grade refunded the stake
func (g *Grade) IsPush() bool {
	return g.Outcome == OutcomePush
}

// PickState is the explicit lifecycle variant of a pick: open, or graded with
// its grade attached.
type PickState struct {
	Status PickStatus `json:"status"`
	Pick   Pick       `json:"pick"`
	Grade  *Grade     `json:"grade,omitempty"`
}

// OpenPick wraps a pick that has no result yet
func OpenPick(p Pick) PickState {
	return PickState{Status: PickStatusOpen, Pick: p}
}

// GradedPick wraps a pick with its terminal grade
func GradedPick(p Pick, g Grade) PickState {
	return PickState{Status: PickStatusGraded, Pick: p, Grade: &g}
}

// IsOpen reports whether the pick is still waiting on a result
func (s PickState) IsOpen() bool {
	return s.Status == PickStatusOpen
}
