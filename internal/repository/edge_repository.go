package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

var edgeColumns = []string{
	"run_id", "market_key", "game_id", "subject_id", "stat_type", "side", "line_value", "source",
	"projection_mean", "stdev", "over_price", "under_price", "p_model", "edge_pct", "fair_odds",
	"freshness_score", "model_version", "observed_at",
}

// PostgresEdgeRepository implements EdgeRepository for PostgreSQL
type PostgresEdgeRepository struct {
	db *database.DB
}

// NewPostgresEdgeRepository creates a new edge repository
func NewPostgresEdgeRepository(db *database.DB) EdgeRepository {
	return &PostgresEdgeRepository{db: db}
}

// SaveBoard bulk inserts one board run using COPY
func (r *PostgresEdgeRepository) SaveBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(entries))
	for i := range entries {
		e := &entries[i]
		rows[i] = []interface{}{
			runID, e.MarketKey, e.GameID, e.SubjectID, e.StatType, string(e.Side), e.Line, e.Source,
			e.ProjectionMean, e.Stdev, e.OverPrice, e.UnderPrice, e.PModel, e.EdgePct, e.FairOdds,
			e.FreshnessScore, e.ModelVersion, e.ObservedAt,
		}
	}

	count, err := r.db.Conn(ctx).CopyFrom(ctx, pgx.Identifier{"edges"}, edgeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	if count != int64(len(entries)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(entries))
	}
	return nil
}

// LatestBoard retrieves the entries of the most recent board run
func (r *PostgresEdgeRepository) LatestBoard(ctx context.Context) ([]models.BoardEntry, error) {
	query := `
		SELECT market_key, game_id, subject_id, stat_type, side, line_value, source, projection_mean, stdev,
		       over_price, under_price, p_model, edge_pct, fair_odds, freshness_score, model_version, observed_at
		FROM edges
		WHERE run_id = (SELECT run_id FROM edges ORDER BY created_at DESC LIMIT 1)
		ORDER BY market_key ASC, side ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest board: %w", err)
	}
	defer rows.Close()

	var entries []models.BoardEntry
	for rows.Next() {
		var e models.BoardEntry
		var side string
		if err := rows.Scan(
			&e.MarketKey, &e.GameID, &e.SubjectID, &e.StatType, &side, &e.Line, &e.Source,
			&e.ProjectionMean, &e.Stdev, &e.OverPrice, &e.UnderPrice, &e.PModel, &e.EdgePct,
			&e.FairOdds, &e.FreshnessScore, &e.ModelVersion, &e.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan board entry: %w", err)
		}
		e.Side = models.Side(side)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, models.ErrNotFound
	}
	return entries, nil
}
