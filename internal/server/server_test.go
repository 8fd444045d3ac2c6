package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-edge/internal/metrics"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	srv := NewServer(Config{ServiceName: "prop-edge", Version: "test"})
	router := srv.Router()

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, router, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "prop-edge", body.Service)
	}
}

func TestReady(t *testing.T) {
	srv := NewServer(Config{ServiceName: "prop-edge", DB: fakePinger{}})
	router := srv.Router()

	rec := get(t, router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = get(t, router, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["database"])

	down := NewServer(Config{DB: fakePinger{err: errors.New("connection refused")}})
	down.SetReady(true)
	rec = get(t, down.Router(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestLatestBoard(t *testing.T) {
	snapshots := service.NewSnapshotStore(0)
	router := NewServer(Config{Snapshots: snapshots}).Router()

	rec := get(t, router, "/api/v1/board/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	runID := uuid.New()
	snapshots.SetBoard(&service.BoardSnapshot{
		RunID: runID,
		Entries: []models.BoardEntry{
			{MarketKey: "g1|tatum|PTS|27.5", StatType: "PTS", Side: models.SideOver},
			{MarketKey: "g1|tatum|REB|8.5", StatType: "REB", Side: models.SideUnder},
		},
	})

	rec = get(t, router, "/api/v1/board/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap service.BoardSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, runID, snap.RunID)
	assert.Len(t, snap.Entries, 2)

	rec = get(t, router, "/api/v1/board/latest/reb")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "REB", snap.Entries[0].StatType)
}

func TestLatestPerformance(t *testing.T) {
	snapshots := service.NewSnapshotStore(0)
	router := NewServer(Config{Snapshots: snapshots}).Router()

	rec := get(t, router, "/api/v1/performance/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errBody ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, http.StatusNotFound, errBody.Code)

	snapshots.SetPerformance(&service.PerformanceSnapshot{ModelVersion: "v1"})
	rec = get(t, router, "/api/v1/performance/latest")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"model_version":"v1"`)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitRegistry()
	metrics.RecordPublished(1)

	router := NewServer(Config{MetricsPath: "/metrics"}).Router()
	rec := get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prop_edge")
}

func TestCORSPreflight(t *testing.T) {
	router := NewServer(Config{CORSOrigins: []string{"https://dash.example.com"}}).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/board/latest", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
