package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

// PostgresGradeRepository implements GradeRepository for PostgreSQL
type PostgresGradeRepository struct {
	db *database.DB
}

// NewPostgresGradeRepository creates a new grade repository
func NewPostgresGradeRepository(db *database.DB) GradeRepository {
	return &PostgresGradeRepository{db: db}
}

// InsertBatch stores grades. A pick that already has a grade keeps it.
func (r *PostgresGradeRepository) InsertBatch(ctx context.Context, grades []models.Grade) (int64, error) {
	if len(grades) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO grades (id, pick_id, outcome, won, profit, clv, closing_clv, abs_error, graded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (pick_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range grades {
		g := &grades[i]
		batch.Queue(query, g.ID, g.PickID, string(g.Outcome), g.Won, g.Profit, g.CLV, g.ClosingCLV, g.AbsError, g.GradedAt)
	}

	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range grades {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert grade: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// List retrieves every issued grade
func (r *PostgresGradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	query := `
		SELECT id, pick_id, outcome, won, profit, clv, closing_clv, abs_error, graded_at
		FROM grades
		ORDER BY graded_at ASC, id ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer rows.Close()

	var grades []models.Grade
	for rows.Next() {
		var g models.Grade
		var outcome string
		if err := rows.Scan(&g.ID, &g.PickID, &outcome, &g.Won, &g.Profit, &g.CLV, &g.ClosingCLV, &g.AbsError, &g.GradedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		g.Outcome = models.Outcome(outcome)
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
