// Package scheduler runs the board and grading pipelines on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/service"
)

// Ingester pulls fresh quotes before a board run
type Ingester interface {
	Ingest(ctx context.Context) ([]models.MarketQuote, *service.IngestionMetrics, error)
}

// BoardRunner builds a board from stored quotes
type BoardRunner interface {
	Run(ctx context.Context) (*service.BoardRun, error)
}

// GradingRunner grades stored picks
type GradingRunner interface {
	Run(ctx context.Context) (*service.GradingRun, error)
}

// Scheduler manages scheduled board and grading jobs
type Scheduler struct {
	cron       *cron.Cron
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(logger *logrus.Logger, jobTimeout time.Duration) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}
	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: jobTimeout,
	}
}

// ScheduleBoard schedules ingestion followed by a board run. A nil ingester
// builds the board from whatever quotes are already stored.
func (s *Scheduler) ScheduleBoard(cronExpression string, ingester Ingester, board BoardRunner) error {
	if board == nil {
		return fmt.Errorf("board runner is required")
	}
	return s.schedule("board", cronExpression, func(ctx context.Context) {
		s.runBoard(ctx, ingester, board)
	})
}

// ScheduleGrading schedules a grading run
func (s *Scheduler) ScheduleGrading(cronExpression string, grading GradingRunner) error {
	if grading == nil {
		return fmt.Errorf("grading runner is required")
	}
	return s.schedule("grading", cronExpression, func(ctx context.Context) {
		s.runGrading(ctx, grading)
	})
}

func (s *Scheduler) schedule(name, cronExpression string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if cronExpression == "" {
		return fmt.Errorf("%s job has no cron expression", name)
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "cron": cronExpression}).Info("Scheduled job")
	return nil
}

func (s *Scheduler) runBoard(ctx context.Context, ingester Ingester, board BoardRunner) {
	if ingester != nil {
		if _, m, err := ingester.Ingest(ctx); err != nil {
			// the board still runs on stored quotes
			s.logger.WithError(err).Error("Scheduled ingestion failed")
		} else {
			s.logger.WithField("metrics", m.String()).Debug("Scheduled ingestion completed")
		}
	}

	run, err := board.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled board run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":    run.RunID.String(),
		"entries":   len(run.Result.Entries),
		"published": run.Published,
	}).Info("Scheduled board run completed")
}

func (s *Scheduler) runGrading(ctx context.Context, grading GradingRunner) {
	run, err := grading.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled grading run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":    run.RunID.String(),
		"graded":    run.Report.Graded,
		"stop_loss": run.Metrics.StopLoss,
	}).Info("Scheduled grading run completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next time.Time
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

// Entries returns the scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
