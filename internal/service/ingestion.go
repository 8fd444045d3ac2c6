package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-edge/internal/datasource"
	"github.com/yourusername/prop-edge/internal/metrics"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/normalize"
	"github.com/yourusername/prop-edge/internal/repository"
)

// IngestionService pulls prop odds from a feed, normalizes them and stores quotes
type IngestionService struct {
	source datasource.OddsSource
	quotes repository.QuoteRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewIngestionService creates a new ingestion service. A nil quote
// repository makes Ingest return quotes without storing them.
func NewIngestionService(source datasource.OddsSource, quotes repository.QuoteRepository, logger *logrus.Logger) *IngestionService {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &IngestionService{
		source: source,
		quotes: quotes,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ingest fetches every listed event's props. A failed event is logged and
// skipped; a failed event listing fails the pass.
func (s *IngestionService) Ingest(ctx context.Context) ([]models.MarketQuote, *IngestionMetrics, error) {
	m := NewIngestionMetrics()
	log := s.logger.WithField("source", s.source.Name())

	events, err := s.source.FetchEvents(ctx)
	if err != nil {
		return nil, m, fmt.Errorf("failed to list events: %w", err)
	}
	log.WithField("events", len(events)).Info("Fetched events")

	withOdds := make([]datasource.Event, 0, len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, m, err
		}
		full, err := s.source.FetchEventOdds(ctx, ev.ID)
		if err != nil {
			m.RecordEventFailure()
			metrics.RecordSkipped("ingest", "event_fetch_failed")
			log.WithError(err).WithField("event_id", ev.ID).Warn("Failed to fetch event odds")
			continue
		}
		withOdds = append(withOdds, *full)
	}

	quotes, stats := normalize.NBAProps(withOdds, s.now())
	m.Events = len(events)
	m.Outcomes = stats.Outcomes
	m.DroppedOutcomes = stats.DroppedOutcomes
	m.UnknownMarkets = stats.UnknownMarkets
	m.Quotes = stats.Quotes
	metrics.RecordSkippedCount("ingest", "incomplete_outcome", stats.DroppedOutcomes)

	bySource := make(map[string]int)
	for i := range quotes {
		bySource[quotes[i].Source]++
	}
	for source, n := range bySource {
		metrics.RecordQuotesIngested(source, n)
	}

	if s.quotes != nil && len(quotes) > 0 {
		stored, err := s.quotes.InsertBatch(ctx, quotes)
		m.Stored = stored
		if err != nil {
			return quotes, m, fmt.Errorf("failed to store quotes: %w", err)
		}
	}

	m.Duration = time.Since(m.StartTime)
	log.WithField("metrics", m.String()).Info("Ingestion complete")
	return quotes, m, nil
}
