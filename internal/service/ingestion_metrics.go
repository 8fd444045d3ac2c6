package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one ingestion pass
type IngestionMetrics struct {
	mu              sync.RWMutex
	StartTime       time.Time
	Duration        time.Duration
	Events          int
	EventsFailed    int
	Outcomes        int
	DroppedOutcomes int
	UnknownMarkets  int
	Quotes          int
	Stored          int64
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{StartTime: time.Now()}
}

// RecordEventFailure increments the failed event count
func (m *IngestionMetrics) RecordEventFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsFailed++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionMetrics{Events=%d, Failed=%d, Outcomes=%d, Dropped=%d, UnknownMarkets=%d, Quotes=%d, Stored=%d, Duration=%v}",
		m.Events,
		m.EventsFailed,
		m.Outcomes,
		m.DroppedOutcomes,
		m.UnknownMarkets,
		m.Quotes,
		m.Stored,
		m.Duration,
	)
}
