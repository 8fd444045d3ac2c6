package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

func setupRepos(t *testing.T) (*Repositories, context.Context) {
	t.Helper()
	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.TeardownTestDB(t, db) })

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return repos, ctx
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestQuoteRepositoryInsertBatch(t *testing.T) {
	repos, ctx := setupRepos(t)

	observed := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)
	quotes := []models.MarketQuote{
		{Market: models.MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "PTS"}, Side: models.SideOver, Line: 27.5, PriceAmerican: -115, Source: "FanDuel", ObservedAt: observed},
		{Market: models.MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "PTS"}, Side: models.SideUnder, Line: 27.5, PriceAmerican: -105, Source: "FanDuel", ObservedAt: observed},
	}

	inserted, err := repos.Quote.InsertBatch(ctx, quotes)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	// re-ingesting the same observation is a no-op
	inserted, err = repos.Quote.InsertBatch(ctx, quotes)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	got, err := repos.Quote.GetSince(ctx, observed.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, -115, got[0].PriceAmerican)
}

func TestPickAndGradeRoundTrip(t *testing.T) {
	repos, ctx := setupRepos(t)

	pick := &models.Pick{
		ID:            uuid.New(),
		UserTag:       "default",
		Market:        models.MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "pts"},
		Side:          models.SideOver,
		Stake:         100,
		LineAtPick:    27.5,
		PriceAtPick:   -115,
		ProjectedMean: 28.1,
		PHit:          0.54,
		ModelVersion:  "v1",
		PickedAt:      time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Pick.Create(ctx, pick))
	assert.True(t, errors.Is(repos.Pick.Create(ctx, pick), models.ErrDuplicateKey))

	stored, err := repos.Pick.GetByID(ctx, pick.ID)
	require.NoError(t, err)
	assert.Equal(t, "PTS", stored.Market.StatType)

	_, err = repos.Pick.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, models.ErrNotFound))

	grade := models.Grade{ID: uuid.New(), PickID: pick.ID, Outcome: models.OutcomeWin, Won: true, Profit: 100, GradedAt: time.Now().UTC()}
	inserted, err := repos.Grade.InsertBatch(ctx, []models.Grade{grade})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	grades, err := repos.Grade.List(ctx)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, models.OutcomeWin, grades[0].Outcome)
}

func TestResultRepositoryKeepsEarliest(t *testing.T) {
	repos, ctx := setupRepos(t)

	market := models.MarketKey{GameID: "g1", SubjectID: "tatum", StatType: "PTS"}
	settled := time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)

	first := &models.Result{ID: uuid.New(), Market: market, ActualValue: 31, SettledAt: settled, Source: "box"}
	require.NoError(t, repos.Result.Upsert(ctx, first))

	later := &models.Result{ID: uuid.New(), Market: market, ActualValue: 33, SettledAt: settled.Add(time.Hour), Source: "box"}
	assert.True(t, errors.Is(repos.Result.Upsert(ctx, later), models.ErrDuplicateResult))

	results, err := repos.Result.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 31.0, results[0].ActualValue)
}

func TestEdgeAndMetricsSnapshots(t *testing.T) {
	repos, ctx := setupRepos(t)

	_, err := repos.Edge.LatestBoard(ctx)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	entries := []models.BoardEntry{{
		MarketKey: "g1|tatum|PTS|27.5", GameID: "g1", SubjectID: "tatum", StatType: "PTS",
		Side: models.SideOver, Line: 27.5, Source: "FanDuel", ProjectionMean: 27.9, Stdev: 5.5,
		PModel: 0.53, EdgePct: 0.01, FreshnessScore: 1, ModelVersion: "v1", ObservedAt: time.Now().UTC(),
	}}
	require.NoError(t, repos.Edge.SaveBoard(ctx, uuid.New(), entries))

	latest, err := repos.Edge.LatestBoard(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, models.SideOver, latest[0].Side)

	require.NoError(t, repos.Metrics.Insert(ctx, uuid.New(), "v1", models.AggregateMetrics{CorrectPct: 0.55, Count: 20}))
	snap, err := repos.Metrics.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.55, snap.CorrectPct)
}
