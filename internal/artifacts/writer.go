// Package artifacts writes the daily board, edges and metrics files.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/prop-edge/internal/models"
)

// DateLayout names artifacts by calendar day
const DateLayout = "2006-01-02"

// EdgeColumns is the fixed header of the edges CSV
var EdgeColumns = []string{
	"run_id", "model_version", "market_key", "game_id", "subject_id", "stat_type", "side", "line",
	"source", "projection_mean", "stdev", "over_price", "under_price", "p_model", "edge_pct",
	"fair_odds", "freshness_score", "observed_at",
}

// Header is carried by every artifact
type Header struct {
	RunID        uuid.UUID `json:"run_id"`
	ModelVersion string    `json:"model_version"`
	Date         string    `json:"date"`
}

// BoardArtifact is the daily board JSON
type BoardArtifact struct {
	Header
	Markets []models.BoardEntry `json:"markets"`
}

// MetricsReport is the payload of the daily metrics JSON
type MetricsReport struct {
	Overall   models.AggregateMetrics            `json:"overall"`
	ByStat    map[string]models.AggregateMetrics `json:"by_stat"`
	OpenPicks int                                `json:"open_picks"`
	Skipped   int                                `json:"skipped"`
	StopLoss  bool                               `json:"stop_loss_triggered"`
}

// MetricsArtifact is the daily metrics JSON
type MetricsArtifact struct {
	Header
	Metrics MetricsReport `json:"metrics"`
}

// Writer writes artifacts into a directory
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// BoardPath returns the board file for a day
func (w *Writer) BoardPath(day time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("daily_board_%s.json", day.Format(DateLayout)))
}

// EdgesPath returns the edges file for a day
func (w *Writer) EdgesPath(day time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("daily_edges_%s.csv", day.Format(DateLayout)))
}

// MetricsPath returns the metrics file for a day
func (w *Writer) MetricsPath(day time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("daily_metrics_%s.json", day.Format(DateLayout)))
}

// WriteBoard writes the daily board JSON and returns its path
func (w *Writer) WriteBoard(day time.Time, runID uuid.UUID, modelVersion string, entries []models.BoardEntry) (string, error) {
	if entries == nil {
		entries = []models.BoardEntry{}
	}
	artifact := BoardArtifact{
		Header:  Header{RunID: runID, ModelVersion: modelVersion, Date: day.Format(DateLayout)},
		Markets: entries,
	}
	path := w.BoardPath(day)
	return path, writeJSON(path, artifact)
}

// WriteEdges writes the daily edges CSV. An empty board still gets a header.
func (w *Writer) WriteEdges(day time.Time, runID uuid.UUID, modelVersion string, entries []models.BoardEntry) (string, error) {
	path := w.EdgesPath(day)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(EdgeColumns); err != nil {
		return "", fmt.Errorf("failed to write edges header: %w", err)
	}
	for i := range entries {
		if err := cw.Write(edgeRow(runID, modelVersion, &entries[i])); err != nil {
			return "", fmt.Errorf("failed to write edge row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush edges: %w", err)
	}
	return path, nil
}

// WriteMetrics writes the daily metrics JSON and returns its path
func (w *Writer) WriteMetrics(day time.Time, runID uuid.UUID, modelVersion string, report MetricsReport) (string, error) {
	if report.ByStat == nil {
		report.ByStat = map[string]models.AggregateMetrics{}
	}
	artifact := MetricsArtifact{
		Header:  Header{RunID: runID, ModelVersion: modelVersion, Date: day.Format(DateLayout)},
		Metrics: report,
	}
	path := w.MetricsPath(day)
	return path, writeJSON(path, artifact)
}

// ReadBoard loads a board artifact
func ReadBoard(path string) (*BoardArtifact, error) {
	var artifact BoardArtifact
	if err := readJSON(path, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// ReadMetrics loads a metrics artifact
func ReadMetrics(path string) (*MetricsArtifact, error) {
	var artifact MetricsArtifact
	if err := readJSON(path, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func edgeRow(runID uuid.UUID, modelVersion string, e *models.BoardEntry) []string {
	return []string{
		runID.String(),
		modelVersion,
		e.MarketKey,
		e.GameID,
		e.SubjectID,
		e.StatType,
		string(e.Side),
		formatFloat(e.Line),
		e.Source,
		formatFloat(e.ProjectionMean),
		formatFloat(e.Stdev),
		formatIntPtr(e.OverPrice),
		formatIntPtr(e.UnderPrice),
		formatFloat(e.PModel),
		formatFloat(e.EdgePct),
		formatFloatPtr(e.FairOdds),
		formatFloat(e.FreshnessScore),
		e.ObservedAt.UTC().Format(time.RFC3339),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
