package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PickSource records where the fixture data for a pick came from.
type PickSource string

const (
	PickSourceLive      PickSource = "live"
	PickSourceSimulated PickSource = "simulated"
)

// PickRecord is a persisted pick produced by one analysis cycle.
type PickRecord struct {
	ID                uuid.UUID        `db:"id" json:"id" validate:"required"`
	CycleID           uuid.UUID        `db:"cycle_id" json:"cycle_id" validate:"required"`
	FixtureID         uuid.UUID        `db:"fixture_id" json:"fixture_id" validate:"required"`
	ExternalID        string           `db:"external_id" json:"external_id"`
	Market            Market           `db:"market" json:"market" validate:"required"`
	League            string           `db:"league" json:"league"`
	HomeTeam          string           `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam          string           `db:"away_team" json:"away_team" validate:"required"`
	StartTime         time.Time        `db:"start_time" json:"start_time"`
	Rank              int              `db:"rank" json:"rank" validate:"gte=1"`
	Probability       float64          `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	ConfidencePercent int              `db:"confidence_percent" json:"confidence_percent" validate:"gte=0,lte=100"`
	HomeRate          float64          `db:"home_rate" json:"home_rate" validate:"gte=0,lte=1"`
	AwayRate          float64          `db:"away_rate" json:"away_rate" validate:"gte=0,lte=1"`
	HomeSampleSize    int              `db:"home_sample_size" json:"home_sample_size" validate:"gte=0"`
	AwaySampleSize    int              `db:"away_sample_size" json:"away_sample_size" validate:"gte=0"`
	BestOdds          *decimal.Decimal `db:"best_odds" json:"best_odds,omitempty"`
	Bookmaker         string           `db:"bookmaker" json:"bookmaker,omitempty"`
	Source            PickSource       `db:"source" json:"source" validate:"required,oneof=live simulated"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// Validate checks field constraints.
func (p *PickRecord) Validate() error {
	return validate.Struct(p)
}

// ImpliedProbability returns 1/odds, or nil when no odds are attached.
func (p *PickRecord) ImpliedProbability() *decimal.Decimal {
	if p.BestOdds == nil || !p.BestOdds.IsPositive() {
		return nil
	}
	v := decimal.NewFromInt(1).Div(*p.BestOdds)
	return &v
}

// ExpectedValue returns probability*odds - 1 per unit staked, or nil without odds.
func (p *PickRecord) ExpectedValue() *decimal.Decimal {
	if p.BestOdds == nil {
		return nil
	}
	ev := decimal.NewFromFloat(p.Probability).Mul(*p.BestOdds).Sub(decimal.NewFromInt(1)).Round(4)
	return &ev
}

// HasValue reports whether the pick carries a positive expected value.
func (p *PickRecord) HasValue() bool {
	ev := p.ExpectedValue()
	return ev != nil && ev.IsPositive()
}
