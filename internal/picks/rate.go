package picks

import (
	"fmt"
	"math"
)

// MatchOutcome is one historical match result as seen from a team's side.
type MatchOutcome struct {
	// OccurredOrder is 0 for the most recent match and grows with age.
	OccurredOrder int `json:"occurred_order"`
	// OutcomeFlag records whether the tracked event happened.
	OutcomeFlag bool `json:"outcome_flag"`
	// OutcomeValue optionally replaces the flag with a continuous signal in [0, 1].
	OutcomeValue *float64 `json:"outcome_value,omitempty"`
}

// Value maps the outcome onto [0, 1]. A NaN value counts as 0.
func (m MatchOutcome) Value() float64 {
	if m.OutcomeValue != nil {
		v := *m.OutcomeValue
		switch {
		case math.IsNaN(v), v < 0:
			return 0
		case v > 1:
			return 1
		}
		return v
	}
	if m.OutcomeFlag {
		return 1
	}
	return 0
}

// TeamRate is a team's recency-weighted outcome frequency.
// SampleSize distinguishes "no data" (0) from a genuine 0% rate.
type TeamRate struct {
	TeamIdentity string  `json:"team"`
	Rate         float64 `json:"rate"`
	SampleSize   int     `json:"sample_size"`
}

// HasData reports whether any matches contributed to the rate.
func (r TeamRate) HasData() bool {
	return r.SampleSize > 0
}

// ComputeTeamRate reduces matches (index 0 = most recent) into a single
// recency-weighted rate using a window of windowSize matches.
func ComputeTeamRate(matches []MatchOutcome, windowSize int) (float64, error) {
	r, err := ComputeTeamRateDetail("", matches, windowSize)
	if err != nil {
		return 0, err
	}
	return r.Rate, nil
}

// ComputeTeamRateDetail is ComputeTeamRate that also reports the sample size.
//
// When fewer than windowSize matches are available only the leading weights
// are used and the weighted sum is divided by their total.
func ComputeTeamRateDetail(team string, matches []MatchOutcome, windowSize int) (TeamRate, error) {
	weights, err := ComputeRecencyWeights(windowSize)
	if err != nil {
		return TeamRate{}, err
	}
	return weightedRate(team, matches, weights), nil
}

func weightedRate(team string, matches []MatchOutcome, weights []float64) TeamRate {
	used := len(matches)
	if used > len(weights) {
		used = len(weights)
	}
	if used == 0 {
		return TeamRate{TeamIdentity: team}
	}

	var sum, weightSum float64
	for i := 0; i < used; i++ {
		sum += weights[i] * matches[i].Value()
		weightSum += weights[i]
	}

	rate := sum / weightSum
	// guard against 1.0000000000000002 style drift
	if rate > 1 {
		rate = 1
	}
	return TeamRate{TeamIdentity: team, Rate: rate, SampleSize: used}
}

func validateRate(name string, v float64) error {
	if v != v || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidArgument, name, v)
	}
	return nil
}
