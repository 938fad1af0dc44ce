package picks

import "math"

// blendWeight is the share each side contributes to a fixture probability.
const blendWeight = 0.5

// FixtureScore is the blended probability for one upcoming fixture.
type FixtureScore struct {
	FixtureIdentity   string  `json:"fixture_id"`
	HomeRate          float64 `json:"home_rate"`
	AwayRate          float64 `json:"away_rate"`
	Probability       float64 `json:"probability"`
	ConfidencePercent int     `json:"confidence_percent"`
}

// ScoreFixture blends the home and away rates with equal weight.
// ConfidencePercent rounds half away from zero.
func ScoreFixture(homeRate, awayRate float64) FixtureScore {
	return ScoreFixtureFor("", homeRate, awayRate)
}

// ScoreFixtureFor is ScoreFixture with the fixture identity attached.
func ScoreFixtureFor(fixtureID string, homeRate, awayRate float64) FixtureScore {
	p := blendWeight*homeRate + blendWeight*awayRate
	return FixtureScore{
		FixtureIdentity:   fixtureID,
		HomeRate:          homeRate,
		AwayRate:          awayRate,
		Probability:       p,
		ConfidencePercent: ConfidencePercent(p),
	}
}

// ConfidencePercent converts a probability to an integer percentage.
func ConfidencePercent(probability float64) int {
	return int(math.Round(probability * 100))
}
