package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// Upsert stores a result unless an earlier settlement for the market exists
func (r *PostgresResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (id, game_id, subject_id, stat_type, actual_value, closing_line, settled_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id, subject_id, stat_type) DO UPDATE
		SET id = EXCLUDED.id,
		    actual_value = EXCLUDED.actual_value,
		    closing_line = EXCLUDED.closing_line,
		    settled_at = EXCLUDED.settled_at,
		    source = EXCLUDED.source
		WHERE EXCLUDED.settled_at < results.settled_at
	`

	base := result.Market.Base()
	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		result.ID, base.GameID, base.SubjectID, base.StatType, result.ActualValue,
		result.ClosingLine, result.SettledAt, result.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", base.String(), models.ErrDuplicateResult)
	}
	return nil
}

// List retrieves every settled result
func (r *PostgresResultRepository) List(ctx context.Context) ([]models.Result, error) {
	query := `
		SELECT id, game_id, subject_id, stat_type, actual_value, closing_line, settled_at, source
		FROM results
		ORDER BY settled_at ASC, id ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var res models.Result
		if err := rows.Scan(
			&res.ID, &res.Market.GameID, &res.Market.SubjectID, &res.Market.StatType,
			&res.ActualValue, &res.ClosingLine, &res.SettledAt, &res.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
