package models

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuote() MarketQuote {
	return MarketQuote{
		Market:        MarketKey{GameID: "0022300512", SubjectID: "jayson-tatum", StatType: "pts"},
		Side:          SideOver,
		Line:          27.5,
		PriceAmerican: -115,
		Source:        "FanDuel",
		ObservedAt:    time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
	}
}

func TestParseSide(t *testing.T) {
	for _, raw := range []string{"over", "Over", " OVER "} {
		side, err := ParseSide(raw)
		require.NoError(t, err)
		assert.Equal(t, SideOver, side)
	}

	side, err := ParseSide("Under")
	require.NoError(t, err)
	assert.Equal(t, SideUnder, side)
	assert.Equal(t, SideOver, side.Opposite())

	_, err = ParseSide("yes")
	assert.True(t, errors.Is(err, ErrInvalidSide))
}

func TestMarketKey(t *testing.T) {
	key := MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "pts"}
	assert.Equal(t, "g1|tatum|PTS", key.String())

	lined := key.WithLine(27.5)
	assert.Equal(t, "g1|tatum|PTS|27.5", lined.String())
	assert.Equal(t, "g1|tatum|PTS", lined.Base().String())
	assert.Nil(t, key.Line)
}

func TestMarketQuoteValidate(t *testing.T) {
	q := validQuote()
	require.NoError(t, q.Validate())
	assert.Equal(t, "0022300512|jayson-tatum|PTS|27.5", q.CanonicalMarket().String())

	tests := []struct {
		name   string
		mutate func(q *MarketQuote)
		want   error
	}{
		{name: "zero price", mutate: func(q *MarketQuote) { q.PriceAmerican = 0 }, want: ErrInvalidPrice},
		{name: "sub-100 price", mutate: func(q *MarketQuote) { q.PriceAmerican = -99 }, want: ErrInvalidPrice},
		{name: "bad side", mutate: func(q *MarketQuote) { q.Side = "push" }, want: ErrInvalidSide},
		{name: "missing source", mutate: func(q *MarketQuote) { q.Source = "" }, want: ErrInvalidQuote},
		{name: "missing subject", mutate: func(q *MarketQuote) { q.Market.SubjectID = "" }, want: ErrInvalidQuote},
		{name: "missing timestamp", mutate: func(q *MarketQuote) { q.ObservedAt = time.Time{} }, want: ErrInvalidQuote},
		{name: "infinite line", mutate: func(q *MarketQuote) { q.Line = math.Inf(1) }, want: ErrInvalidQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuote()
			tt.mutate(&q)
			err := q.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPickValidate(t *testing.T) {
	pick := Pick{
		ID:          uuid.New(),
		Market:      MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "PTS"},
		Side:        SideUnder,
		Stake:       50,
		LineAtPick:  27.5,
		PriceAtPick: -110,
		PHit:        0.52,
		PickedAt:    time.Now(),
	}
	require.NoError(t, pick.Validate())

	bad := pick
	bad.Stake = -1
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPick))

	bad = pick
	bad.PHit = 1.2
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPick))

	bad = pick
	bad.PriceAtPick = 0
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPrice))

	bad = pick
	bad.PriceAtPick = 50
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidPrice))
}

func TestPickValidateNonFinite(t *testing.T) {
	base := Pick{
		ID:          uuid.New(),
		Market:      MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "PTS"},
		Side:        SideOver,
		Stake:       100,
		LineAtPick:  27.5,
		PriceAtPick: -110,
		PHit:        0.5,
		PickedAt:    time.Now(),
	}

	tests := []struct {
		name   string
		mutate func(p *Pick)
	}{
		{name: "infinite stake", mutate: func(p *Pick) { p.Stake = math.Inf(1) }},
		{name: "nan stake", mutate: func(p *Pick) { p.Stake = math.NaN() }},
		{name: "infinite line", mutate: func(p *Pick) { p.LineAtPick = math.Inf(-1) }},
		{name: "nan projected mean", mutate: func(p *Pick) { p.ProjectedMean = math.NaN() }},
		{name: "nan p_hit", mutate: func(p *Pick) { p.PHit = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			assert.True(t, errors.Is(p.Validate(), ErrInvalidPick))
		})
	}
}

func TestResultValidate(t *testing.T) {
	result := Result{ActualValue: 27}
	require.NoError(t, result.Validate())

	result.ActualValue = math.NaN()
	assert.True(t, errors.Is(result.Validate(), ErrNonFiniteResult))

	closing := math.Inf(1)
	result = Result{ActualValue: 27, ClosingLine: &closing}
	assert.True(t, errors.Is(result.Validate(), ErrNonFiniteResult))
}

func TestPickState(t *testing.T) {
	pick := Pick{ID: uuid.New()}
	open := OpenPick(pick)
	assert.True(t, open.IsOpen())
	assert.Nil(t, open.Grade)

	graded := GradedPick(pick, Grade{PickID: pick.ID, Outcome: OutcomePush})
	assert.False(t, graded.IsOpen())
	require.NotNil(t, graded.Grade)
	assert.True(t, graded.Grade.IsPush())
}

func TestRecordFailureReason(t *testing.T) {
	f := RecordFailure{Key: "k", Err: fmt.Errorf("wrapped: %w", ErrDegenerateMarket)}
	assert.Equal(t, "degenerate_market", f.Reason())

	f = RecordFailure{Key: "k", Err: errors.New("boom")}
	assert.Equal(t, "unknown", f.Reason())
}

func TestProbabilityPairFor(t *testing.T) {
	pair := ProbabilityPair{Over: 0.6, Under: 0.4}
	assert.Equal(t, 0.6, pair.For(SideOver))
	assert.Equal(t, 0.4, pair.For(SideUnder))
}
