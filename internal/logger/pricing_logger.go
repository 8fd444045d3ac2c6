package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PricingLogger logs board runs and the records they skip.
type PricingLogger struct {
	*logrus.Entry
}

// NewPricingLogger creates a new pricing logger.
func NewPricingLogger(baseLogger *logrus.Logger) *PricingLogger {
	return &PricingLogger{
		Entry: baseLogger.WithField("component", "pricing"),
	}
}

// LogBoardRun logs the summary of a board build.
func (pl *PricingLogger) LogBoardRun(runID, modelVersion string, quotes, markets, entries, skipped int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":        runID,
		"model_version": modelVersion,
		"quotes":        quotes,
		"markets":       markets,
		"entries":       entries,
		"skipped":       skipped,
		"duration_ms":   duration.Milliseconds(),
	}).Info("Board run completed")
}

// LogSkippedRecord logs a record dropped from a batch.
func (pl *PricingLogger) LogSkippedRecord(key, reason string, err error) {
	pl.WithFields(logrus.Fields{
		"record_key": key,
		"reason":     reason,
	}).WithError(err).Warn("Record skipped")
}

// LogEdgeFound logs a board entry with a positive edge.
func (pl *PricingLogger) LogEdgeFound(marketKey, side, source string, line, pModel, edgePct, freshness float64) {
	pl.WithFields(logrus.Fields{
		"market_key":      marketKey,
		"side":            side,
		"source":          source,
		"line":            line,
		"p_model":         pModel,
		"edge_pct":        edgePct,
		"freshness_score": freshness,
	}).Debug("Positive edge found")
}
