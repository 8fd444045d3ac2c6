package metrics

import "github.com/prometheus/client_golang/prometheus"

// Grading counter vectors
var (
	PicksGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picks_graded_total",
		Help:      "Total number of picks graded by outcome",
	}, []string{"outcome"})

	StopLossTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stop_loss_trips_total",
		Help:      "Total number of accuracy stop-loss trips",
	})
)

// Grading gauges
var (
	OpenPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_picks",
		Help:      "Number of picks still waiting on a result",
	})
	HitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hit_rate",
		Help:      "Hit rate of the latest grading pass",
	})
	CLVMean = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clv_mean",
		Help:      "Mean CLV of the latest grading pass",
	})
)

// RecordGrade records one issued grade.
func RecordGrade(outcome string) {
	PicksGradedTotal.WithLabelValues(outcome).Inc()
}

// UpdatePerformance updates the latest performance gauges.
func UpdatePerformance(open int, hitRate, clvMean float64) {
	OpenPicks.Set(float64(open))
	HitRate.Set(hitRate)
	CLVMean.Set(clvMean)
}

// RecordStopLossTrip records an accuracy stop-loss trip.
func RecordStopLossTrip() {
	StopLossTripsTotal.Inc()
}
