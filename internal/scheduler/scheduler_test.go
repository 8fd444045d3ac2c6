package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-edge/internal/edge"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/service"
)

type stubIngester struct {
	calls int
	err   error
}

func (s *stubIngester) Ingest(ctx context.Context) ([]models.MarketQuote, *service.IngestionMetrics, error) {
	s.calls++
	return nil, service.NewIngestionMetrics(), s.err
}

type stubBoard struct {
	calls int
	err   error
}

func (s *stubBoard) Run(ctx context.Context) (*service.BoardRun, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &service.BoardRun{RunID: uuid.New(), Result: &edge.BoardResult{}}, nil
}

type stubGrading struct{ calls int }

func (s *stubGrading) Run(ctx context.Context) (*service.GradingRun, error) {
	s.calls++
	return nil, errors.New("no repositories")
}

func TestScheduleValidation(t *testing.T) {
	s := NewScheduler(nil, 0)

	assert.Error(t, s.ScheduleBoard("*/15 * * * *", nil, nil))
	assert.Error(t, s.ScheduleGrading("0 9 * * *", nil))
	assert.Error(t, s.ScheduleBoard("", nil, &stubBoard{}))
	assert.Error(t, s.ScheduleGrading("not a cron", &stubGrading{}))
	assert.Error(t, s.Start(), "start without jobs")
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(nil, time.Minute)
	require.NoError(t, s.ScheduleBoard("*/15 * * * *", nil, &stubBoard{}))
	require.NoError(t, s.ScheduleGrading("0 9 * * *", &stubGrading{}))
	assert.Len(t, s.Entries(), 2)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleGrading("0 10 * * *", &stubGrading{}))
	assert.False(t, s.NextRun().IsZero())

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestRunBoardIngestsFirst(t *testing.T) {
	s := NewScheduler(nil, 0)
	ingester := &stubIngester{err: errors.New("feed down")}
	board := &stubBoard{}

	s.runBoard(context.Background(), ingester, board)
	assert.Equal(t, 1, ingester.calls)
	assert.Equal(t, 1, board.calls, "board runs on stored quotes when ingestion fails")

	s.runBoard(context.Background(), nil, &stubBoard{err: errors.New("db down")})
}

func TestRunGradingLogsFailure(t *testing.T) {
	s := NewScheduler(nil, 0)
	grading := &stubGrading{}
	s.runGrading(context.Background(), grading)
	assert.Equal(t, 1, grading.calls)
}
