// Package logger provides pick-cycle logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PickLogger provides dedicated logging for analysis cycles and picks.
type PickLogger struct {
	*logrus.Entry
}

// NewPickLogger creates a new pick logger.
func NewPickLogger(baseLogger *logrus.Logger) *PickLogger {
	return &PickLogger{
		Entry: baseLogger.WithField("component", "picks"),
	}
}

// LogCycleStarted logs the start of an analysis cycle.
func (pl *PickLogger) LogCycleStarted(cycleID, market string, threshold float64, windowSize int) {
	pl.WithFields(logrus.Fields{
		"cycle_id":    cycleID,
		"market":      market,
		"threshold":   threshold,
		"window_size": windowSize,
	}).Info("Analysis cycle started")
}

// LogFallback logs a switch to simulated data.
func (pl *PickLogger) LogFallback(cycleID, market, source, reason string) {
	pl.WithFields(logrus.Fields{
		"cycle_id":   cycleID,
		"market":     market,
		"source":     source,
		"event_type": "fallback",
		"reason":     reason,
	}).Warn("Falling back to simulated fixtures")
}

// LogTeamRate logs a computed team rate.
func (pl *PickLogger) LogTeamRate(cycleID, team string, rate float64, sampleSize int, cached bool) {
	pl.WithFields(logrus.Fields{
		"cycle_id":    cycleID,
		"team":        team,
		"rate":        rate,
		"sample_size": sampleSize,
		"cached":      cached,
	}).Debug("Team rate computed")
}

// LogPickSelected logs a pick that passed the threshold.
func (pl *PickLogger) LogPickSelected(cycleID, fixtureID, fixture string, rank int, probability float64, confidencePercent int) {
	pl.WithFields(logrus.Fields{
		"cycle_id":           cycleID,
		"fixture_id":         fixtureID,
		"fixture":            fixture,
		"rank":               rank,
		"probability":        probability,
		"confidence_percent": confidencePercent,
	}).Info("Pick selected")
}

// LogCycleCompleted logs the outcome of an analysis cycle.
func (pl *PickLogger) LogCycleCompleted(cycleID, market, source string, fixtures, picks, teamsWithoutData int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"cycle_id":           cycleID,
		"market":             market,
		"source":             source,
		"fixtures_analyzed":  fixtures,
		"picks_selected":     picks,
		"teams_without_data": teamsWithoutData,
		"duration_ms":        duration.Milliseconds(),
	}).Info("Analysis cycle completed")
}
