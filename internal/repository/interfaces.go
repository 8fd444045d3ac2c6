package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/prop-edge/internal/models"
)

// QuoteRepository defines the interface for market quote data access
type QuoteRepository interface {
	InsertBatch(ctx context.Context, quotes []models.MarketQuote) (int64, error)
	GetSince(ctx context.Context, since time.Time) ([]models.MarketQuote, error)
}

// PickRepository defines the interface for pick data access. Picks are append-only.
type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	List(ctx context.Context) ([]models.Pick, error)
}

// ResultRepository defines the interface for settled result data access
type ResultRepository interface {
	// Upsert stores a result, keeping the earliest settlement per market.
	// A later duplicate returns models.ErrDuplicateResult.
	Upsert(ctx context.Context, result *models.Result) error
	List(ctx context.Context) ([]models.Result, error)
}

// GradeRepository defines the interface for grade data access
type GradeRepository interface {
	InsertBatch(ctx context.Context, grades []models.Grade) (int64, error)
	List(ctx context.Context) ([]models.Grade, error)
}

// EdgeRepository persists published boards
type EdgeRepository interface {
	SaveBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) error
	LatestBoard(ctx context.Context) ([]models.BoardEntry, error)
}

// MetricsSnapshotRepository persists aggregate metrics per grading run
type MetricsSnapshotRepository interface {
	Insert(ctx context.Context, runID uuid.UUID, modelVersion string, m models.AggregateMetrics) error
	Latest(ctx context.Context) (*models.AggregateMetrics, error)
}
