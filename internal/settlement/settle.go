// Package settlement grades recorded picks against settled results.
package settlement

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/prop-edge/internal/models"
)

// TiePolicy decides the outcome when the actual value lands exactly on the line
type TiePolicy string

const (
	// TieUnderWins settles ties as a loss for over and a win for under. This is
	// the historical behavior and stays the default until product confirms a
	// push rule.
	TieUnderWins TiePolicy = "under-wins-ties"
	// TiePush refunds the stake on both sides
	TiePush TiePolicy = "push"
	// TieOverWins settles ties as a win for over and a loss for under
	TieOverWins TiePolicy = "over-wins-ties"
)

// DefaultTiePolicy is used when none is configured
const DefaultTiePolicy = TieUnderWins

// ParseTiePolicy validates a configured tie policy; empty means the default
func ParseTiePolicy(raw string) (TiePolicy, error) {
	switch TiePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return DefaultTiePolicy, nil
	case TieUnderWins:
		return TieUnderWins, nil
	case TiePush:
		return TiePush, nil
	case TieOverWins:
		return TieOverWins, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidTiePolicy, raw)
	}
}

// DetermineOutcome settles one side of a prop against the actual value
func DetermineOutcome(side models.Side, line, actual float64, policy TiePolicy) (models.Outcome, error) {
	if !side.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidSide, side)
	}
	if math.IsNaN(line) || math.IsNaN(actual) || math.IsInf(line, 0) || math.IsInf(actual, 0) {
		return "", fmt.Errorf("%w: line %v actual %v", models.ErrNonFiniteResult, line, actual)
	}

	var overWins bool
	switch {
	case actual > line:
		overWins = true
	case actual < line:
		overWins = false
	default:
		switch policy {
		case TiePush:
			return models.OutcomePush, nil
		case TieOverWins:
			overWins = true
		case TieUnderWins:
			overWins = false
		default:
			return "", fmt.Errorf("%w: %q", models.ErrInvalidTiePolicy, policy)
		}
	}

	if overWins == (side == models.SideOver) {
		return models.OutcomeWin, nil
	}
	return models.OutcomeLoss, nil
}

// DetermineWin reports whether the pick won against the result
func DetermineWin(pick *models.Pick, result *models.Result, policy TiePolicy) (bool, error) {
	outcome, err := DetermineOutcome(pick.Side, pick.LineAtPick, result.ActualValue, policy)
	if err != nil {
		return false, err
	}
	return outcome == models.OutcomeWin, nil
}

// ComputeProfit returns the settled profit of a stake at an American price.
// A winning plus-money pick pays stake·price/100, a winning minus-money pick
// pays the stake, a loss forfeits the stake and a push returns it.
func ComputeProfit(stake float64, price int, outcome models.Outcome) (float64, error) {
	if price == 0 {
		return 0, fmt.Errorf("%w: %d", models.ErrInvalidPrice, price)
	}
	if math.IsNaN(stake) || math.IsInf(stake, 0) {
		return 0, fmt.Errorf("%w: stake %v", models.ErrNonFiniteResult, stake)
	}
	s := decimal.NewFromFloat(stake)

	var profit decimal.Decimal
	switch outcome {
	case models.OutcomeWin:
		if price > 0 {
			profit = s.Mul(decimal.NewFromInt(int64(price))).Div(decimal.NewFromInt(100))
		} else {
			profit = s
		}
	case models.OutcomeLoss:
		profit = s.Neg()
	case models.OutcomePush:
		profit = decimal.Zero
	default:
		return 0, fmt.Errorf("unknown outcome %q", outcome)
	}
	return profit.InexactFloat64(), nil
}

// ComputeCLV measures the actual value against the pick's line, signed so
// that positive is favorable for the side taken.
func ComputeCLV(side models.Side, lineAtPick, actual float64) float64 {
	clv := actual - lineAtPick
	if side == models.SideUnder {
		return -clv
	}
	return clv
}

// ComputeClosingCLV measures the closing line against the pick's line.
// Positive means the market moved toward the side taken after the pick.
func ComputeClosingCLV(side models.Side, lineAtPick, closingLine float64) float64 {
	return ComputeCLV(side, lineAtPick, closingLine)
}

// Grade settles one pick against its matching result
func Grade(pick *models.Pick, result *models.Result, policy TiePolicy, now time.Time) (models.Grade, error) {
	if err := pick.Validate(); err != nil {
		return models.Grade{}, err
	}
	if err := result.Validate(); err != nil {
		return models.Grade{}, err
	}
	outcome, err := DetermineOutcome(pick.Side, pick.LineAtPick, result.ActualValue, policy)
	if err != nil {
		return models.Grade{}, err
	}
	profit, err := ComputeProfit(pick.Stake, pick.PriceAtPick, outcome)
	if err != nil {
		return models.Grade{}, err
	}

	grade := models.Grade{
		ID:       uuid.New(),
		PickID:   pick.ID,
		Outcome:  outcome,
		Won:      outcome == models.OutcomeWin,
		Profit:   profit,
		CLV:      ComputeCLV(pick.Side, pick.LineAtPick, result.ActualValue),
		AbsError: math.Abs(result.ActualValue - pick.ProjectedMean),
		GradedAt: now,
	}
	if result.ClosingLine != nil {
		closing := ComputeClosingCLV(pick.Side, pick.LineAtPick, *result.ClosingLine)
		grade.ClosingCLV = &closing
	}
	return grade, nil
}
