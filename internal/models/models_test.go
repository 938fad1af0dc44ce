package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket(" BTTS ")
	require.NoError(t, err)
	assert.Equal(t, MarketBTTS, m)
	assert.Equal(t, SportSoccer, m.Sport())

	m, err = ParseMarket("runline")
	require.NoError(t, err)
	assert.Equal(t, SportBaseball, m.Sport())

	_, err = ParseMarket("moneyline")
	assert.ErrorIs(t, err, ErrUnknownMarket)
}

func TestMatchResultPredicates(t *testing.T) {
	r := MatchResult{HomeTeam: "Spurs", AwayTeam: "Chelsea", HomeScore: 1, AwayScore: 3}
	assert.True(t, r.BothTeamsScored())
	assert.Equal(t, 2, r.Margin())
	assert.True(t, r.MarginAtLeast(2))
	assert.False(t, r.MarginAtLeast(3))
	assert.True(t, r.Involves("spurs"))
	assert.False(t, r.Involves("Arsenal"))

	nil0 := MatchResult{HomeScore: 2, AwayScore: 0}
	assert.False(t, nil0.BothTeamsScored())
}

func TestFixtureValidate(t *testing.T) {
	f := &Fixture{
		ID:         uuid.New(),
		ExternalID: "401",
		Sport:      SportSoccer,
		League:     "eng.1",
		HomeTeam:   "Spurs",
		AwayTeam:   "Chelsea",
		Market:     MarketBTTS,
		StartTime:  time.Now(),
	}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Spurs vs Chelsea", f.Label())

	f.AwayTeam = "Spurs"
	assert.ErrorIs(t, f.Validate(), ErrInvalidFixture)
}

func TestPickRecordExpectedValue(t *testing.T) {
	odds := decimal.RequireFromString("1.80")
	p := &PickRecord{Probability: 0.7, BestOdds: &odds}

	require.NotNil(t, p.ExpectedValue())
	assert.True(t, p.ExpectedValue().Equal(decimal.RequireFromString("0.26")))
	assert.True(t, p.HasValue())
	assert.True(t, p.ImpliedProbability().GreaterThan(decimal.RequireFromString("0.55")))

	p.BestOdds = nil
	assert.Nil(t, p.ExpectedValue())
	assert.Nil(t, p.ImpliedProbability())
	assert.False(t, p.HasValue())
}

func TestPickRecordValidate(t *testing.T) {
	p := &PickRecord{
		ID:                uuid.New(),
		CycleID:           uuid.New(),
		FixtureID:         uuid.New(),
		Market:            MarketRunline,
		HomeTeam:          "Yankees",
		AwayTeam:          "Rays",
		Rank:              1,
		Probability:       0.82,
		ConfidencePercent: 82,
		HomeRate:          0.9,
		AwayRate:          0.74,
		Source:            PickSourceLive,
	}
	require.NoError(t, p.Validate())

	p.Probability = 1.2
	assert.Error(t, p.Validate())
}
