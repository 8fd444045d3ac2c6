package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-edge/internal/artifacts"
	"github.com/yourusername/prop-edge/internal/logger"
	"github.com/yourusername/prop-edge/internal/metrics"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/performance"
	"github.com/yourusername/prop-edge/internal/repository"
	"github.com/yourusername/prop-edge/internal/settlement"
)

// GradingServiceConfig wires the grading pipeline. Grader is required; the
// repositories are required by Run and the Record methods.
type GradingServiceConfig struct {
	Grader            *settlement.Grader
	ModelVersion      string
	Picks             repository.PickRepository
	Results           repository.ResultRepository
	Grades            repository.GradeRepository
	History           repository.MetricsSnapshotRepository
	Writer            *artifacts.Writer
	Mirror            ArtifactMirror
	Snapshots         *SnapshotStore
	StopLossThreshold float64
	Logger            *logrus.Logger
	Now               func() time.Time
}

// GradingRun summarizes one grading pass
type GradingRun struct {
	RunID     uuid.UUID
	Report    *settlement.Report
	Metrics   artifacts.MetricsReport
	Previous  *models.AggregateMetrics
	Stored    int64
	Artifacts []string
}

// GradingService records picks and results and grades them into metrics
type GradingService struct {
	cfg    GradingServiceConfig
	logger *logrus.Logger
	audit  *logger.AuditLogger
}

// NewGradingService creates a new grading service
func NewGradingService(cfg GradingServiceConfig) (*GradingService, error) {
	if cfg.Grader == nil {
		return nil, fmt.Errorf("grader is required")
	}
	if cfg.StopLossThreshold <= 0 {
		cfg.StopLossThreshold = performance.DefaultStopLossThreshold
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &GradingService{cfg: cfg, logger: log, audit: logger.NewAuditLogger(log)}, nil
}

// RecordPick validates and stores a new pick
func (s *GradingService) RecordPick(ctx context.Context, pick *models.Pick) error {
	if s.cfg.Picks == nil {
		return fmt.Errorf("pick repository is not configured")
	}
	if pick.ID == uuid.Nil {
		pick.ID = uuid.New()
	}
	if pick.PickedAt.IsZero() {
		pick.PickedAt = s.cfg.Now()
	}
	if pick.ModelVersion == "" {
		pick.ModelVersion = s.cfg.ModelVersion
	}
	pick.Market = pick.Market.Base()
	if err := pick.Validate(); err != nil {
		return err
	}
	if err := s.cfg.Picks.Create(ctx, pick); err != nil {
		return err
	}
	s.audit.LogPickRecorded(pick.ID.String(), pick.UserTag, pick.Market.String(), string(pick.Side),
		pick.LineAtPick, pick.PriceAtPick, pick.Stake, pick.PickedAt)
	return nil
}

// RecordResult stores a settled result. A later duplicate for the same
// market returns models.ErrDuplicateResult.
func (s *GradingService) RecordResult(ctx context.Context, result *models.Result) error {
	if s.cfg.Results == nil {
		return fmt.Errorf("result repository is not configured")
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.SettledAt.IsZero() {
		result.SettledAt = s.cfg.Now()
	}
	result.Market = result.Market.Base()
	if err := result.Validate(); err != nil {
		return err
	}
	if err := s.cfg.Results.Upsert(ctx, result); err != nil {
		return err
	}
	s.audit.LogResultRecorded(result.ID.String(), result.Market.String(), result.ActualValue, result.Source)
	return nil
}

// Run loads picks, results and prior grades and grades them
func (s *GradingService) Run(ctx context.Context) (*GradingRun, error) {
	if s.cfg.Picks == nil || s.cfg.Results == nil || s.cfg.Grades == nil {
		return nil, fmt.Errorf("pick, result and grade repositories are required")
	}
	picks, err := s.cfg.Picks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	results, err := s.cfg.Results.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	existing, err := s.cfg.Grades.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load grades: %w", err)
	}
	return s.Evaluate(ctx, picks, results, existing)
}

// Evaluate grades picks against results, stores new grades, aggregates all
// grades and checks the stop-loss guardrail
func (s *GradingService) Evaluate(ctx context.Context, picks []models.Pick, results []models.Result, existing []models.Grade) (*GradingRun, error) {
	report, err := s.cfg.Grader.GradeAll(ctx, picks, results, existing)
	if err != nil {
		return nil, err
	}
	run := &GradingRun{RunID: uuid.New(), Report: report}

	for _, f := range report.Failures {
		s.logger.WithFields(logrus.Fields{"pick_id": f.Key, "reason": f.Reason()}).WithError(f.Err).Warn("Skipped pick")
		metrics.RecordSkipped("grading", f.Reason())
	}

	if s.cfg.Grades != nil && len(report.Grades) > 0 {
		stored, err := s.cfg.Grades.InsertBatch(ctx, report.Grades)
		if err != nil {
			return nil, fmt.Errorf("failed to store grades: %w", err)
		}
		run.Stored = stored
	}
	policy := string(s.cfg.Grader.Policy())
	for i := range report.Grades {
		g := &report.Grades[i]
		s.audit.LogGradeIssued(g.PickID.String(), string(g.Outcome), g.Profit, g.CLV, policy)
		metrics.RecordGrade(string(g.Outcome))
	}

	overall := performance.Aggregate(report.AllGrades())
	run.Metrics = artifacts.MetricsReport{
		Overall:   overall,
		ByStat:    performance.AggregateByStat(report.GradedStates()),
		OpenPicks: report.Open,
		Skipped:   report.Skipped,
	}

	previous, err := s.previousMetrics(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load previous metrics")
	}
	run.Previous = previous
	if previous != nil && overall.Count > 0 &&
		performance.CheckStopLoss(previous.CorrectPct, overall.CorrectPct, s.cfg.StopLossThreshold) {
		run.Metrics.StopLoss = true
		s.audit.LogStopLoss(s.cfg.ModelVersion, previous.CorrectPct, overall.CorrectPct, s.cfg.StopLossThreshold)
		metrics.RecordStopLossTrip()
	}

	metrics.UpdatePerformance(report.Open, overall.CorrectPct, overall.CLVMean)

	if s.cfg.History != nil && overall.Count > 0 {
		if err := s.cfg.History.Insert(ctx, run.RunID, s.cfg.ModelVersion, overall); err != nil {
			s.logger.WithError(err).Error("Failed to store metrics snapshot")
		}
	}

	if s.cfg.Writer != nil {
		path, err := s.cfg.Writer.WriteMetrics(s.cfg.Now(), run.RunID, s.cfg.ModelVersion, run.Metrics)
		if err != nil {
			s.logger.WithError(err).Error("Failed to write metrics artifact")
		} else {
			run.Artifacts = append(run.Artifacts, path)
			mirrorArtifacts(ctx, s.cfg.Mirror, run.Artifacts, s.logger)
		}
	}

	if s.cfg.Snapshots != nil {
		s.cfg.Snapshots.SetPerformance(&PerformanceSnapshot{
			RunID:        run.RunID,
			ModelVersion: s.cfg.ModelVersion,
			GeneratedAt:  s.cfg.Now(),
			Report:       run.Metrics,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":      run.RunID.String(),
		"graded":      report.Graded,
		"new_grades":  len(report.Grades),
		"open":        report.Open,
		"skipped":     report.Skipped,
		"correct_pct": overall.CorrectPct,
		"clv_mean":    overall.CLVMean,
	}).Info("Grading run complete")

	return run, nil
}

func (s *GradingService) previousMetrics(ctx context.Context) (*models.AggregateMetrics, error) {
	if s.cfg.History == nil {
		return nil, nil
	}
	m, err := s.cfg.History.Latest(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return m, err
}
