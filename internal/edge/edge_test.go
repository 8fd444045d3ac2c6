package edge

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/projection"
)

var fixedNow = time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)

func newTestEvaluator(t *testing.T, mode ConsensusMode) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(EvaluatorConfig{
		Priors:         projection.DefaultPriors(),
		BookWeights:    projection.NewBookWeights(projection.DefaultBookWeights()),
		FreshnessDecay: DefaultFreshnessDecay,
		Mode:           mode,
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return e
}

func quote(subject, stat string, side models.Side, line float64, price int, source string, age time.Duration) models.MarketQuote {
	return models.MarketQuote{
		Market:        models.MarketKey{GameID: "g1", SubjectID: subject, StatType: stat},
		Side:          side,
		Line:          line,
		PriceAmerican: price,
		Source:        source,
		ObservedAt:    fixedNow.Add(-age),
	}
}

func TestNormalCDF(t *testing.T) {
	assert.Equal(t, 0.5, NormalCDF(0))
	assert.InDelta(t, 0.975, NormalCDF(1.959964), 1e-6)
	assert.InDelta(t, 0.158655, NormalCDF(-1), 1e-6)
}

func TestModelProbability(t *testing.T) {
	over, err := ModelProbability(24.5, 5.5, 24.5, models.SideOver)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, over, 1e-12)

	over, err = ModelProbability(27, 5.5, 24.5, models.SideOver)
	require.NoError(t, err)
	under, err := ModelProbability(27, 5.5, 24.5, models.SideUnder)
	require.NoError(t, err)
	assert.Greater(t, over, 0.5)
	assert.InDelta(t, 1.0, over+under, 1e-12)
}

func TestModelProbabilityErrors(t *testing.T) {
	_, err := ModelProbability(10, 2, 10.5, models.Side("push"))
	assert.True(t, errors.Is(err, models.ErrInvalidSide))

	_, err = ModelProbability(10, 0, 10.5, models.SideOver)
	assert.True(t, errors.Is(err, models.ErrNonFiniteResult))

	_, err = ModelProbability(math.NaN(), 2, 10.5, models.SideOver)
	assert.True(t, errors.Is(err, models.ErrNonFiniteResult))
}

func TestConsensusRoundTrip(t *testing.T) {
	priors := projection.DefaultPriors()
	stats := []string{"PTS", "REB", "AST", "PRA", "3PM"}
	lines := []float64{0.5, 6.5, 24.5, 41.5}
	probs := []float64{0.01, 0.2, 0.45, 0.5, 0.5349, 0.7, 0.99}

	for _, stat := range stats {
		for _, line := range lines {
			for _, p := range probs {
				mean, err := priors.ConsensusMean(line, p, stat)
				require.NoError(t, err)
				got, err := ModelProbability(mean, priors.Stdev(stat), line, models.SideOver)
				require.NoError(t, err)
				assert.InDelta(t, p, got, 1e-6, "stat=%s line=%v p=%v", stat, line, p)
			}
		}
	}
}

func TestFairOdds(t *testing.T) {
	odds, ok := FairOdds(0.5)
	assert.True(t, ok)
	assert.Equal(t, 2.0, odds)

	_, ok = FairOdds(0)
	assert.False(t, ok)

	_, ok = FairOdds(-0.1)
	assert.False(t, ok)
}

func TestEdgePct(t *testing.T) {
	assert.InDelta(t, 3.62, EdgePct(0.56, 0.5238), 1e-9)
	assert.InDelta(t, -3.49, EdgePct(0.5, 0.5349), 1e-9)
}

func TestFreshness(t *testing.T) {
	assert.Equal(t, 1.0, Freshness(fixedNow, fixedNow, DefaultFreshnessDecay))
	assert.Equal(t, 1.0, Freshness(fixedNow.Add(time.Minute), fixedNow, DefaultFreshnessDecay))
	assert.InDelta(t, 0.5, Freshness(fixedNow.Add(-6931*time.Second), fixedNow, DefaultFreshnessDecay), 1e-3)

	prev := 1.0
	for age := time.Duration(0); age <= 48*time.Hour; age += 17 * time.Minute {
		score := Freshness(fixedNow.Add(-age), fixedNow, DefaultFreshnessDecay)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		assert.LessOrEqual(t, score, prev, "age %s", age)
		prev = score
	}
}

func TestNewEvaluatorValidation(t *testing.T) {
	_, err := NewEvaluator(EvaluatorConfig{})
	assert.Error(t, err)

	_, err = NewEvaluator(EvaluatorConfig{Priors: projection.DefaultPriors(), FreshnessDecay: -1})
	assert.Error(t, err)

	_, err = NewEvaluator(EvaluatorConfig{Priors: projection.DefaultPriors(), Mode: "median"})
	assert.Error(t, err)
}

func TestEvaluateSingleSidedQuote(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	q := quote("lebron", "PTS", models.SideOver, 24.5, -115, "FanDuel", 0)

	eval, err := e.Evaluate(q.CanonicalMarket(), []models.MarketQuote{q})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, eval.POver, 1e-12)
	assert.InDelta(t, 24.5, eval.Distribution.Mean, 1e-9)
	assert.Equal(t, 5.5, eval.Distribution.Stdev)
	require.Len(t, eval.Edges, 1)

	rec := eval.Edges[0]
	assert.Equal(t, models.SideOver, rec.Side)
	assert.InDelta(t, 0.5349, rec.ImpliedProbability, 1e-4)
	assert.InDelta(t, 0.5, rec.ModelProbability, 1e-9)
	assert.InDelta(t, -3.49, rec.EdgePct, 0.01)
	require.NotNil(t, rec.FairOdds)
	assert.InDelta(t, 2.0, *rec.FairOdds, 1e-9)
	assert.Equal(t, 1.0, rec.FreshnessScore)
}

func TestEvaluateUnderOnlyQuote(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	q := quote("jokic", "REB", models.SideUnder, 12.5, 120, "DraftKings", time.Hour)

	eval, err := e.Evaluate(q.CanonicalMarket(), []models.MarketQuote{q})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, eval.POver, 1e-12)
	require.Len(t, eval.Edges, 1)
	assert.Equal(t, models.SideUnder, eval.Edges[0].Side)
	assert.Less(t, eval.Edges[0].FreshnessScore, 1.0)
}

func TestEvaluateTwoSidedMarket(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	over := quote("tatum", "PTS", models.SideOver, 27.5, -130, "Pinnacle", 0)
	under := quote("tatum", "PTS", models.SideUnder, 27.5, 110, "Pinnacle", 0)

	eval, err := e.Evaluate(over.CanonicalMarket(), []models.MarketQuote{over, under})
	require.NoError(t, err)

	// over is favored, so the implied mean sits above the line
	assert.Greater(t, eval.POver, 0.5)
	assert.Greater(t, eval.Distribution.Mean, 27.5)
	require.Len(t, eval.Edges, 2)

	pOver, err := ModelProbability(eval.Distribution.Mean, eval.Distribution.Stdev, 27.5, models.SideOver)
	require.NoError(t, err)
	assert.InDelta(t, eval.POver, pOver, 1e-6)

	// de-vigged model probability beats neither vig-inclusive price
	for _, rec := range eval.Edges {
		assert.Less(t, rec.EdgePct, 0.0, "side %s", rec.Side)
	}
}

func TestEvaluateKeepsLatestQuotePerSide(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	stale := quote("curry", "3PM", models.SideOver, 4.5, -200, "FanDuel", 2*time.Hour)
	fresh := quote("curry", "3PM", models.SideOver, 4.5, -105, "FanDuel", time.Minute)

	eval, err := e.Evaluate(fresh.CanonicalMarket(), []models.MarketQuote{fresh, stale})
	require.NoError(t, err)
	require.NotNil(t, eval.OverQuote)
	assert.Equal(t, -105, eval.OverQuote.PriceAmerican)
}

func TestRepresentativeSelection(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)

	tests := []struct {
		name   string
		quotes []models.MarketQuote
		want   string
	}{
		{
			name: "highest weight wins",
			quotes: []models.MarketQuote{
				quote("a", "PTS", models.SideOver, 20.5, -110, "DraftKings", 0),
				quote("a", "PTS", models.SideOver, 20.5, -120, "Pinnacle", time.Hour),
			},
			want: "Pinnacle",
		},
		{
			name: "latest breaks weight ties",
			quotes: []models.MarketQuote{
				quote("a", "PTS", models.SideOver, 20.5, -110, "BetMGM", time.Hour),
				quote("a", "PTS", models.SideOver, 20.5, -120, "Caesars", time.Minute),
			},
			want: "Caesars",
		},
		{
			name: "name breaks full ties",
			quotes: []models.MarketQuote{
				quote("a", "PTS", models.SideOver, 20.5, -110, "PointsBet", time.Minute),
				quote("a", "PTS", models.SideOver, 20.5, -120, "BetMGM", time.Minute),
			},
			want: "BetMGM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := e.Evaluate(tt.quotes[0].CanonicalMarket(), tt.quotes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eval.Source)
		})
	}
}

func TestWeightedConsensus(t *testing.T) {
	rep := newTestEvaluator(t, ConsensusRepresentative)
	weighted := newTestEvaluator(t, ConsensusWeighted)

	quotes := []models.MarketQuote{
		quote("doncic", "AST", models.SideOver, 8.5, -150, "Pinnacle", 0),
		quote("doncic", "AST", models.SideUnder, 8.5, 130, "Pinnacle", 0),
		quote("doncic", "AST", models.SideOver, 8.5, 110, "Retail", 0),
		quote("doncic", "AST", models.SideUnder, 8.5, -130, "Retail", 0),
	}
	market := quotes[0].CanonicalMarket()

	repEval, err := rep.Evaluate(market, quotes)
	require.NoError(t, err)
	wEval, err := weighted.Evaluate(market, quotes)
	require.NoError(t, err)

	assert.Equal(t, "Pinnacle", wEval.Source)
	// the retail book leans under, pulling the weighted mean down
	assert.Less(t, wEval.Distribution.Mean, repEval.Distribution.Mean)
	assert.Greater(t, wEval.Distribution.Mean, 8.5)
}

func TestEvaluateRequiresLine(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	_, err := e.Evaluate(models.MarketKey{GameID: "g", SubjectID: "s", StatType: "PTS"}, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidQuote))
}

func TestBoardEntries(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	over := quote("tatum", "PTS", models.SideOver, 27.5, -110, "Pinnacle", 0)
	under := quote("tatum", "PTS", models.SideUnder, 27.5, -110, "Pinnacle", 0)

	eval, err := e.Evaluate(over.CanonicalMarket(), []models.MarketQuote{over, under})
	require.NoError(t, err)

	entries := eval.BoardEntries(e.ModelVersion())
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, "g1|tatum|PTS|27.5", entry.MarketKey)
		require.NotNil(t, entry.OverPrice)
		require.NotNil(t, entry.UnderPrice)
		assert.Equal(t, -110, *entry.OverPrice)
		assert.Equal(t, -110, *entry.UnderPrice)
		assert.Equal(t, projection.DefaultModelVersion, entry.ModelVersion)
		assert.InDelta(t, 27.5, entry.ProjectionMean, 1e-9)
	}
}

func TestBoardBuild(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	board := NewBoard(e, 4)

	quotes := []models.MarketQuote{
		quote("tatum", "pts", models.SideOver, 27.5, -110, "Pinnacle", 0),
		quote("tatum", "PTS", models.SideUnder, 27.5, -110, "Pinnacle", 0),
		quote("brown", "REB", models.SideUnder, 6.5, 105, "FanDuel", time.Hour),
		quote("brown", "REB", models.SideOver, 6.5, 0, "FanDuel", 0),
		quote("white", "AST", models.Side("sideways"), 5.5, -110, "FanDuel", 0),
		quote("holiday", "PTS", models.SideOver, 12.5, 50, "FanDuel", 0),
	}

	result, err := board.Build(context.Background(), quotes)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Quotes)
	assert.Equal(t, 2, result.Markets)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Failures, 3)

	reasons := map[string]int{}
	for _, f := range result.Failures {
		reasons[f.Reason()]++
	}
	assert.Equal(t, 2, reasons["invalid_price"])
	assert.Equal(t, 1, reasons["invalid_side"])

	require.Len(t, result.Entries, 3)
	assert.Equal(t, "g1|brown|REB|6.5", result.Entries[0].MarketKey)
	assert.Equal(t, "g1|tatum|PTS|27.5", result.Entries[1].MarketKey)
	assert.Equal(t, models.SideOver, result.Entries[1].Side)
	assert.Equal(t, models.SideUnder, result.Entries[2].Side)
}

func TestBoardBuildIsDeterministic(t *testing.T) {
	e := newTestEvaluator(t, ConsensusRepresentative)
	board := NewBoard(e, 3)

	var quotes []models.MarketQuote
	for i, subject := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		quotes = append(quotes,
			quote(subject, "PTS", models.SideOver, 10.5+float64(i), -130+i*3, "FanDuel", time.Duration(i)*time.Minute),
			quote(subject, "PTS", models.SideUnder, 10.5+float64(i), 100+i*3, "FanDuel", time.Duration(i)*time.Minute),
		)
	}
	reversed := make([]models.MarketQuote, len(quotes))
	for i := range quotes {
		reversed[len(quotes)-1-i] = quotes[i]
	}

	first, err := board.Build(context.Background(), quotes)
	require.NoError(t, err)
	second, err := board.Build(context.Background(), reversed)
	require.NoError(t, err)
	assert.Equal(t, first.Entries, second.Entries)
}

func TestBoardBuildCancelled(t *testing.T) {
	board := NewBoard(newTestEvaluator(t, ConsensusRepresentative), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := board.Build(ctx, []models.MarketQuote{
		quote("a", "PTS", models.SideOver, 20.5, -110, "FanDuel", 0),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPositiveEntries(t *testing.T) {
	result := &BoardResult{Entries: []models.BoardEntry{{EdgePct: 2}, {EdgePct: -1}, {EdgePct: 0}}}
	assert.Len(t, result.PositiveEntries(), 1)
}
