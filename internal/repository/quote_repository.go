package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/models"
)

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// InsertBatch stores quotes, ignoring exact duplicates of an earlier ingest.
// It returns the number of new rows.
func (r *PostgresQuoteRepository) InsertBatch(ctx context.Context, quotes []models.MarketQuote) (int64, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO quotes (game_id, subject_id, stat_type, side, line_value, price_american, source, observed_at, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id, subject_id, stat_type, line_value, side, source, observed_at) DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range quotes {
		q := &quotes[i]
		batch.Queue(query,
			q.Market.GameID, q.Market.SubjectID, q.CanonicalMarket().StatType, string(q.Side), q.Line,
			q.PriceAmerican, q.Source, q.ObservedAt, q.LatencyMS,
		)
	}

	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range quotes {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert quote: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// GetSince retrieves quotes observed at or after since, oldest first
func (r *PostgresQuoteRepository) GetSince(ctx context.Context, since time.Time) ([]models.MarketQuote, error) {
	query := `
		SELECT game_id, subject_id, stat_type, side, line_value, price_american, source, observed_at, latency_ms
		FROM quotes
		WHERE observed_at >= $1
		ORDER BY observed_at ASC, id ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.MarketQuote
	for rows.Next() {
		var q models.MarketQuote
		var side string
		if err := rows.Scan(
			&q.Market.GameID, &q.Market.SubjectID, &q.Market.StatType, &side, &q.Line,
			&q.PriceAmerican, &q.Source, &q.ObservedAt, &q.LatencyMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.Side = models.Side(side)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
