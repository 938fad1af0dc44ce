package models

import "time"

// TeamStats is a snapshot of a team's computed rate for one market.
// It is a cache of derived data, never a source of truth.
type TeamStats struct {
	Team       string    `db:"team" json:"team" validate:"required"`
	League     string    `db:"league" json:"league"`
	Market     Market    `db:"market" json:"market" validate:"required"`
	WindowSize int       `db:"window_size" json:"window_size" validate:"gt=0"`
	Rate       float64   `db:"rate" json:"rate" validate:"gte=0,lte=1"`
	SampleSize int       `db:"sample_size" json:"sample_size" validate:"gte=0"`
	ComputedAt time.Time `db:"computed_at" json:"computed_at"`
}

// Validate checks field constraints.
func (s *TeamStats) Validate() error {
	return validate.Struct(s)
}
