package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

const pickColumns = `id, user_tag, game_id, subject_id, stat_type, side, stake, line_at_pick,
		       price_at_pick, projected_mean, p_hit, model_version, picked_at`

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// Create inserts a new pick
func (r *PostgresPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (` + pickColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		pick.ID, pick.UserTag, pick.Market.GameID, pick.Market.SubjectID, pick.Market.Base().StatType,
		string(pick.Side), pick.Stake, pick.LineAtPick, pick.PriceAtPick, pick.ProjectedMean,
		pick.PHit, pick.ModelVersion, pick.PickedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("pick %s: %w", pick.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create pick: %w", err)
	}
	return nil
}

// GetByID retrieves a pick by ID
func (r *PostgresPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE id = $1`

	pick, err := scanPick(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return pick, nil
}

// List retrieves every pick in recording order
func (r *PostgresPickRepository) List(ctx context.Context) ([]models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks ORDER BY picked_at ASC, id ASC`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var picks []models.Pick
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, *pick)
	}
	return picks, rows.Err()
}

func scanPick(row pgx.Row) (*models.Pick, error) {
	p := &models.Pick{}
	var side string
	err := row.Scan(
		&p.ID, &p.UserTag, &p.Market.GameID, &p.Market.SubjectID, &p.Market.StatType, &side,
		&p.Stake, &p.LineAtPick, &p.PriceAtPick, &p.ProjectedMean, &p.PHit, &p.ModelVersion, &p.PickedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Side = models.Side(side)
	return p, nil
}
