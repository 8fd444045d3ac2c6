package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

// PostgresMetricsSnapshotRepository implements MetricsSnapshotRepository for PostgreSQL
type PostgresMetricsSnapshotRepository struct {
	db *database.DB
}

// NewPostgresMetricsSnapshotRepository creates a new metrics snapshot repository
func NewPostgresMetricsSnapshotRepository(db *database.DB) MetricsSnapshotRepository {
	return &PostgresMetricsSnapshotRepository{db: db}
}

// Insert records the aggregate metrics of one grading run
func (r *PostgresMetricsSnapshotRepository) Insert(ctx context.Context, runID uuid.UUID, modelVersion string, m models.AggregateMetrics) error {
	query := `
		INSERT INTO metrics_snapshots (run_id, model_version, correct_pct, clv_mean, clv_pct_positive,
		                               mae, rmse, count, push_count, total_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		runID, modelVersion, m.CorrectPct, m.CLVMean, m.CLVPctPositive, m.MAE, m.RMSE, m.Count, m.PushCount, m.TotalProfit,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metrics snapshot: %w", err)
	}
	return nil
}

// Latest retrieves the most recent snapshot
func (r *PostgresMetricsSnapshotRepository) Latest(ctx context.Context) (*models.AggregateMetrics, error) {
	query := `
		SELECT correct_pct, clv_mean, clv_pct_positive, mae, rmse, count, push_count, total_profit
		FROM metrics_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	m := &models.AggregateMetrics{}
	err := r.db.Conn(ctx).QueryRow(ctx, query).Scan(
		&m.CorrectPct, &m.CLVMean, &m.CLVPctPositive, &m.MAE, &m.RMSE, &m.Count, &m.PushCount, &m.TotalProfit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metrics snapshot: %w", err)
	}
	return m, nil
}
