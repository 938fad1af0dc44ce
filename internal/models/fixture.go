package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fixture is an upcoming match the engine can score.
type Fixture struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ExternalID      string    `db:"external_id" json:"external_id" validate:"required"`
	Sport           string    `db:"sport" json:"sport" validate:"required"`
	League          string    `db:"league" json:"league" validate:"required"`
	HomeTeam        string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam        string    `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	Market          Market    `db:"market" json:"market" validate:"required"`
	StartTime       time.Time `db:"start_time" json:"start_time" validate:"required"`
	DiscoveredOrder int       `db:"discovered_order" json:"discovered_order" validate:"gte=0"`
}

// Validate checks the fixture's required fields.
func (f *Fixture) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return nil
}

// Key returns the identity used by the engine for this fixture.
func (f *Fixture) Key() string {
	return f.ID.String()
}

// Label is a human readable "Home vs Away".
func (f *Fixture) Label() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}
