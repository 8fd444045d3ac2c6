package repository

import (
	"fmt"

	"github.com/yourusername/prop-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Quote   QuoteRepository
	Pick    PickRepository
	Result  ResultRepository
	Grade   GradeRepository
	Edge    EdgeRepository
	Metrics MetricsSnapshotRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Quote:   NewPostgresQuoteRepository(db),
		Pick:    NewPostgresPickRepository(db),
		Result:  NewPostgresResultRepository(db),
		Grade:   NewPostgresGradeRepository(db),
		Edge:    NewPostgresEdgeRepository(db),
		Metrics: NewPostgresMetricsSnapshotRepository(db),
	}, nil
}
