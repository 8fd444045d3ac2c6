package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/prop-edge/internal/datasource"
	"github.com/yourusername/prop-edge/internal/models"
)

type mockQuoteRepo struct{ mock.Mock }

func (m *mockQuoteRepo) InsertBatch(ctx context.Context, quotes []models.MarketQuote) (int64, error) {
	args := m.Called(ctx, quotes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuoteRepo) GetSince(ctx context.Context, since time.Time) ([]models.MarketQuote, error) {
	args := m.Called(ctx, since)
	quotes, _ := args.Get(0).([]models.MarketQuote)
	return quotes, args.Error(1)
}

type mockEdgeRepo struct{ mock.Mock }

func (m *mockEdgeRepo) SaveBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) error {
	return m.Called(ctx, runID, entries).Error(0)
}

func (m *mockEdgeRepo) LatestBoard(ctx context.Context) ([]models.BoardEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.BoardEntry)
	return entries, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) (int, error) {
	args := m.Called(ctx, runID, entries)
	return args.Int(0), args.Error(1)
}

type mockMirror struct{ mock.Mock }

func (m *mockMirror) Upload(ctx context.Context, localPath string) error {
	return m.Called(ctx, localPath).Error(0)
}

type mockPickRepo struct{ mock.Mock }

func (m *mockPickRepo) Create(ctx context.Context, pick *models.Pick) error {
	return m.Called(ctx, pick).Error(0)
}

func (m *mockPickRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	args := m.Called(ctx, id)
	pick, _ := args.Get(0).(*models.Pick)
	return pick, args.Error(1)
}

func (m *mockPickRepo) List(ctx context.Context) ([]models.Pick, error) {
	args := m.Called(ctx)
	picks, _ := args.Get(0).([]models.Pick)
	return picks, args.Error(1)
}

type mockResultRepo struct{ mock.Mock }

func (m *mockResultRepo) Upsert(ctx context.Context, result *models.Result) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockResultRepo) List(ctx context.Context) ([]models.Result, error) {
	args := m.Called(ctx)
	results, _ := args.Get(0).([]models.Result)
	return results, args.Error(1)
}

type mockGradeRepo struct{ mock.Mock }

func (m *mockGradeRepo) InsertBatch(ctx context.Context, grades []models.Grade) (int64, error) {
	args := m.Called(ctx, grades)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.Grade, error) {
	args := m.Called(ctx)
	grades, _ := args.Get(0).([]models.Grade)
	return grades, args.Error(1)
}

type mockHistoryRepo struct{ mock.Mock }

func (m *mockHistoryRepo) Insert(ctx context.Context, runID uuid.UUID, modelVersion string, metrics models.AggregateMetrics) error {
	return m.Called(ctx, runID, modelVersion, metrics).Error(0)
}

func (m *mockHistoryRepo) Latest(ctx context.Context) (*models.AggregateMetrics, error) {
	args := m.Called(ctx)
	metrics, _ := args.Get(0).(*models.AggregateMetrics)
	return metrics, args.Error(1)
}

type mockOddsSource struct{ mock.Mock }

func (m *mockOddsSource) FetchEvents(ctx context.Context) ([]datasource.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]datasource.Event)
	return events, args.Error(1)
}

func (m *mockOddsSource) FetchEventOdds(ctx context.Context, eventID string) (*datasource.Event, error) {
	args := m.Called(ctx, eventID)
	event, _ := args.Get(0).(*datasource.Event)
	return event, args.Error(1)
}

func (m *mockOddsSource) Name() string { return "theodds" }
