package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPickRecorded logs a new pick.
func (al *AuditLogger) LogPickRecorded(pickID, userTag, marketKey, side string, line float64, price int, stake float64, pickedAt time.Time) {
	al.WithFields(logrus.Fields{
		"pick_id":    pickID,
		"user_tag":   userTag,
		"market_key": marketKey,
		"side":       side,
		"line":       line,
		"price":      price,
		"stake":      stake,
		"timestamp":  pickedAt.Unix(),
	}).Info("Pick recorded")
}

// LogResultRecorded logs a settled result.
func (al *AuditLogger) LogResultRecorded(resultID, marketKey string, actual float64, source string) {
	al.WithFields(logrus.Fields{
		"result_id":    resultID,
		"market_key":   marketKey,
		"actual_value": actual,
		"source":       source,
	}).Info("Result recorded")
}

// LogGradeIssued logs a grade transition from open to graded.
func (al *AuditLogger) LogGradeIssued(pickID, outcome string, profit, clv float64, tiePolicy string) {
	al.WithFields(logrus.Fields{
		"pick_id":    pickID,
		"old_state":  "open",
		"new_state":  "graded",
		"outcome":    outcome,
		"profit":     profit,
		"clv":        clv,
		"tie_policy": tiePolicy,
	}).Info("Grade issued")
}

// LogStopLoss logs an accuracy drop that tripped the guardrail.
func (al *AuditLogger) LogStopLoss(modelVersion string, previous, current, threshold float64) {
	al.WithFields(logrus.Fields{
		"model_version":     modelVersion,
		"previous_accuracy": previous,
		"current_accuracy":  current,
		"threshold":         threshold,
	}).Warn("Accuracy stop-loss triggered")
}
