package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/yourusername/prop-edge/internal/artifacts"
	"github.com/yourusername/prop-edge/internal/models"
)

const (
	boardSnapshotKey       = "board:latest"
	performanceSnapshotKey = "performance:latest"
)

// BoardSnapshot is the last published board
type BoardSnapshot struct {
	RunID        uuid.UUID           `json:"run_id"`
	ModelVersion string              `json:"model_version"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Markets      int                 `json:"markets"`
	Skipped      int                 `json:"skipped"`
	Entries      []models.BoardEntry `json:"entries"`
}

// PerformanceSnapshot is the last grading run's metrics
type PerformanceSnapshot struct {
	RunID        uuid.UUID               `json:"run_id"`
	ModelVersion string                  `json:"model_version"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Report       artifacts.MetricsReport `json:"report"`
}

// SnapshotStore keeps the latest board and performance snapshots in memory
type SnapshotStore struct {
	cache *cache.Cache
}

// NewSnapshotStore creates a store whose entries expire after ttl. A zero
// ttl keeps entries until replaced.
func NewSnapshotStore(ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		return &SnapshotStore{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &SnapshotStore{cache: cache.New(ttl, 2*ttl)}
}

// SetBoard replaces the latest board snapshot
func (s *SnapshotStore) SetBoard(snap *BoardSnapshot) {
	s.cache.SetDefault(boardSnapshotKey, snap)
}

// LatestBoard returns the latest board snapshot
func (s *SnapshotStore) LatestBoard() (*BoardSnapshot, bool) {
	v, ok := s.cache.Get(boardSnapshotKey)
	if !ok {
		return nil, false
	}
	snap, ok := v.(*BoardSnapshot)
	return snap, ok
}

// SetPerformance replaces the latest performance snapshot
func (s *SnapshotStore) SetPerformance(snap *PerformanceSnapshot) {
	s.cache.SetDefault(performanceSnapshotKey, snap)
}

// LatestPerformance returns the latest performance snapshot
func (s *SnapshotStore) LatestPerformance() (*PerformanceSnapshot, bool) {
	v, ok := s.cache.Get(performanceSnapshotKey)
	if !ok {
		return nil, false
	}
	snap, ok := v.(*PerformanceSnapshot)
	return snap, ok
}
