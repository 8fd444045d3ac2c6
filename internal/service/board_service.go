package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-edge/internal/artifacts"
	"github.com/yourusername/prop-edge/internal/edge"
	"github.com/yourusername/prop-edge/internal/logger"
	"github.com/yourusername/prop-edge/internal/metrics"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/repository"
)

// BoardPublisher publishes board entries downstream
type BoardPublisher interface {
	PublishBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) (int, error)
}

// ArtifactMirror copies written artifacts to remote storage
type ArtifactMirror interface {
	Upload(ctx context.Context, localPath string) error
}

// BoardServiceConfig wires the board pipeline. Only Board is required.
type BoardServiceConfig struct {
	Board        *edge.Board
	ModelVersion string
	Quotes       repository.QuoteRepository
	Edges        repository.EdgeRepository
	Publisher    BoardPublisher
	Writer       *artifacts.Writer
	Mirror       ArtifactMirror
	Snapshots    *SnapshotStore
	Lookback     time.Duration
	MinEdgePct   float64
	MinFreshness float64
	Logger       *logrus.Logger
	Now          func() time.Time
}

// BoardRun summarizes one board run
type BoardRun struct {
	RunID     uuid.UUID
	Result    *edge.BoardResult
	Published int
	Artifacts []string
	Duration  time.Duration
}

// BoardService turns stored or supplied quotes into a published edge board
type BoardService struct {
	cfg     BoardServiceConfig
	logger  *logrus.Logger
	pricing *logger.PricingLogger
}

// NewBoardService creates a new board service
func NewBoardService(cfg BoardServiceConfig) (*BoardService, error) {
	if cfg.Board == nil {
		return nil, fmt.Errorf("board engine is required")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &BoardService{cfg: cfg, logger: log, pricing: logger.NewPricingLogger(log)}, nil
}

// Run reads quotes from the lookback window and builds the board
func (s *BoardService) Run(ctx context.Context) (*BoardRun, error) {
	if s.cfg.Quotes == nil {
		return nil, fmt.Errorf("quote repository is not configured")
	}
	since := s.cfg.Now().Add(-s.cfg.Lookback)
	quotes, err := s.cfg.Quotes.GetSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	return s.RunQuotes(ctx, quotes)
}

// RunQuotes builds, stores, writes and publishes a board from quotes.
// Downstream failures after the build are logged and do not fail the run.
func (s *BoardService) RunQuotes(ctx context.Context, quotes []models.MarketQuote) (*BoardRun, error) {
	start := time.Now()
	runID := uuid.New()

	result, err := s.cfg.Board.Build(ctx, quotes)
	if err != nil {
		return nil, err
	}

	for _, f := range result.Failures {
		s.pricing.LogSkippedRecord(f.Key, f.Reason(), f.Err)
		metrics.RecordSkipped("board", f.Reason())
	}

	positive := result.PositiveEntries()
	for i := range result.Entries {
		metrics.ObserveEdge(result.Entries[i].EdgePct)
	}
	publishable := s.filterPublishable(positive)
	for i := range publishable {
		e := &publishable[i]
		s.pricing.LogEdgeFound(e.MarketKey, string(e.Side), e.Source, e.Line, e.PModel, e.EdgePct, e.FreshnessScore)
	}

	run := &BoardRun{RunID: runID, Result: result}

	if s.cfg.Edges != nil {
		if err := s.cfg.Edges.SaveBoard(ctx, runID, result.Entries); err != nil {
			s.logger.WithError(err).Error("Failed to persist board")
		}
	}

	run.Artifacts = s.writeArtifacts(ctx, runID, result.Entries, publishable)

	if s.cfg.Publisher != nil && len(publishable) > 0 {
		n, err := s.cfg.Publisher.PublishBoard(ctx, runID, publishable)
		run.Published = n
		if err != nil {
			s.logger.WithError(err).WithField("published", n).Error("Failed to publish board")
		}
		metrics.RecordPublished(n)
	}

	if s.cfg.Snapshots != nil {
		s.cfg.Snapshots.SetBoard(&BoardSnapshot{
			RunID:        runID,
			ModelVersion: s.cfg.ModelVersion,
			GeneratedAt:  s.cfg.Now(),
			Markets:      result.Markets,
			Skipped:      result.Skipped,
			Entries:      result.Entries,
		})
	}

	run.Duration = time.Since(start)
	metrics.RecordBoardRun(result.Quotes, len(result.Entries), len(positive), run.Duration.Seconds())
	s.pricing.LogBoardRun(runID.String(), s.cfg.ModelVersion, result.Quotes, result.Markets, len(result.Entries), result.Skipped, run.Duration)
	return run, nil
}

// filterPublishable keeps entries that clear the edge and freshness floors
func (s *BoardService) filterPublishable(entries []models.BoardEntry) []models.BoardEntry {
	out := make([]models.BoardEntry, 0, len(entries))
	for _, e := range entries {
		if e.EdgePct < s.cfg.MinEdgePct || e.FreshnessScore < s.cfg.MinFreshness {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *BoardService) writeArtifacts(ctx context.Context, runID uuid.UUID, board, edges []models.BoardEntry) []string {
	if s.cfg.Writer == nil {
		return nil
	}
	day := s.cfg.Now()
	var paths []string

	boardPath, err := s.cfg.Writer.WriteBoard(day, runID, s.cfg.ModelVersion, board)
	if err != nil {
		s.logger.WithError(err).Error("Failed to write board artifact")
	} else {
		paths = append(paths, boardPath)
	}

	edgesPath, err := s.cfg.Writer.WriteEdges(day, runID, s.cfg.ModelVersion, edges)
	if err != nil {
		s.logger.WithError(err).Error("Failed to write edges artifact")
	} else {
		paths = append(paths, edgesPath)
	}

	mirrorArtifacts(ctx, s.cfg.Mirror, paths, s.logger)
	return paths
}

func mirrorArtifacts(ctx context.Context, mirror ArtifactMirror, paths []string, log *logrus.Logger) {
	if mirror == nil {
		return
	}
	for _, p := range paths {
		if err := mirror.Upload(ctx, p); err != nil {
			log.WithError(err).WithField("path", p).Warn("Failed to mirror artifact")
		}
	}
}
