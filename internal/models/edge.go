package models

import "time"

// EdgeRecord is the evaluated edge for one canonical market and side.
// FairOdds is nil when the model probability is zero.
type EdgeRecord struct {
	Market             MarketKey `json:"market"`
	Side               Side      `json:"side"`
	ModelProbability   float64   `json:"p_model"`
	ImpliedProbability float64   `json:"p_implied"`
	FairOdds           *float64  `json:"fair_odds"`
	EdgePct            float64   `json:"edge_pct"`
	FreshnessScore     float64   `json:"freshness_score"`
}

// BoardEntry is one published row of the edge board
type BoardEntry struct {
	MarketKey      string    `db:"market_key" json:"market_key"`
	GameID         string    `db:"game_id" json:"game_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	StatType       string    `db:"stat_type" json:"stat_type"`
	Side           Side      `db:"side" json:"side"`
	Line           float64   `db:"line_value" json:"line"`
	Source         string    `db:"source" json:"source"`
	ProjectionMean float64   `db:"projection_mean" json:"projection_mean"`
	Stdev          float64   `db:"stdev" json:"stdev"`
	OverPrice      *int      `db:"over_price" json:"over_price"`
	UnderPrice     *int      `db:"under_price" json:"under_price"`
	PModel         float64   `db:"p_model" json:"p_model"`
	EdgePct        float64   `db:"edge_pct" json:"edge_pct"`
	FairOdds       *float64  `db:"fair_odds" json:"fair_odds"`
	FreshnessScore float64   `db:"freshness_score" json:"freshness_score"`
	ModelVersion   string    `db:"model_version" json:"model_version"`
	ObservedAt     time.Time `db:"observed_at" json:"observed_at"`
}

// IsPositive reports whether the model favors the side more than the price
func (b *BoardEntry) IsPositive() bool {
	return b.EdgePct > 0
}

// AggregateMetrics is a rollup over a set of grades
type AggregateMetrics struct {
	CorrectPct     float64 `json:"correct_pct"`
	CLVMean        float64 `json:"clv_mean"`
	CLVPctPositive float64 `json:"clv_pct_positive"`
	MAE            float64 `json:"mae"`
	RMSE           float64 `json:"rmse"`
	Count          int     `json:"count"`
	PushCount      int     `json:"push_count"`
	TotalProfit    float64 `json:"total_profit"`
}
