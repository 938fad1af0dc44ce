package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun describes one completed refresh cycle for a market.
type AnalysisRun struct {
	CycleID          uuid.UUID     `db:"cycle_id" json:"cycle_id"`
	Market           Market        `db:"market" json:"market"`
	Source           PickSource    `db:"source" json:"source"`
	Threshold        float64       `db:"threshold" json:"threshold"`
	WindowSize       int           `db:"window_size" json:"window_size"`
	FixturesAnalyzed int           `db:"fixtures_analyzed" json:"fixtures_analyzed"`
	TeamsWithoutData int           `db:"teams_without_data" json:"teams_without_data"`
	PicksSelected    int           `db:"picks_selected" json:"picks_selected"`
	StartedAt        time.Time     `db:"started_at" json:"started_at"`
	Duration         time.Duration `db:"duration" json:"duration"`
}
