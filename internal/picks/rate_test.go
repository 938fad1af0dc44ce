package picks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(flags ...bool) []MatchOutcome {
	out := make([]MatchOutcome, len(flags))
	for i, f := range flags {
		out[i] = MatchOutcome{OccurredOrder: i, OutcomeFlag: f}
	}
	return out
}

func repeat(flag bool, n int) []MatchOutcome {
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = flag
	}
	return history(flags...)
}

func mustRate(t *testing.T, matches []MatchOutcome, n int) float64 {
	t.Helper()
	rate, err := ComputeTeamRate(matches, n)
	require.NoError(t, err)
	return rate
}

func TestComputeTeamRateEmpty(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		assert.Equal(t, 0.0, mustRate(t, nil, n))
		assert.Equal(t, 0.0, mustRate(t, []MatchOutcome{}, n))
	}

	detail, err := ComputeTeamRateDetail("Arsenal", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.SampleSize)
	assert.False(t, detail.HasData())
	assert.Equal(t, "Arsenal", detail.TeamIdentity)
}

func TestComputeTeamRateUniform(t *testing.T) {
	assert.Equal(t, 1.0, mustRate(t, repeat(true, 10), 10))
	assert.Equal(t, 0.0, mustRate(t, repeat(false, 10), 10))
}

func TestComputeTeamRateRecencySensitivity(t *testing.T) {
	a := history(true, false, false, false, false, false, false, false, false, false)
	b := history(false, false, false, false, false, false, false, false, false, true)

	rateA := mustRate(t, a, 10)
	rateB := mustRate(t, b, 10)
	assert.Greater(t, rateA, rateB)
	assert.InDelta(t, 10.0/55.0, rateA, weightTolerance)
	assert.InDelta(t, 1.0/55.0, rateB, weightTolerance)
}

func TestComputeTeamRatePartialHistory(t *testing.T) {
	recent := mustRate(t, history(true, true, false), 10)
	older := mustRate(t, history(false, true, true), 10)

	assert.Greater(t, recent, 0.0)
	assert.Less(t, recent, 1.0)
	assert.GreaterOrEqual(t, recent, older)
	// weighted above the plain 2/3 average when the trues are most recent
	assert.Greater(t, recent, 2.0/3.0)
	assert.InDelta(t, 19.0/27.0, recent, weightTolerance)

	detail, err := ComputeTeamRateDetail("Leeds", history(true, true, false), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.SampleSize)
}

func TestComputeTeamRateTruncatesToWindow(t *testing.T) {
	matches := append(repeat(true, 10), repeat(false, 15)...)
	assert.Equal(t, 1.0, mustRate(t, matches, 10))

	detail, err := ComputeTeamRateDetail("", matches, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, detail.SampleSize)
}

func TestComputeTeamRateContinuousOutcome(t *testing.T) {
	half := 0.5
	matches := []MatchOutcome{
		{OccurredOrder: 0, OutcomeValue: &half},
		{OccurredOrder: 1, OutcomeValue: &half},
	}
	assert.InDelta(t, 0.5, mustRate(t, matches, 10), weightTolerance)
}

func TestComputeTeamRateInvalidWindow(t *testing.T) {
	_, err := ComputeTeamRate(history(true), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMatchOutcomeValueClamped(t *testing.T) {
	high, low := 1.7, -0.2
	assert.Equal(t, 1.0, MatchOutcome{OutcomeValue: &high}.Value())
	assert.Equal(t, 0.0, MatchOutcome{OutcomeValue: &low}.Value())
	assert.Equal(t, 1.0, MatchOutcome{OutcomeFlag: true}.Value())

	nan := math.NaN()
	assert.Equal(t, 0.0, MatchOutcome{OutcomeValue: &nan, OutcomeFlag: true}.Value())
}

func TestComputeTeamRateNaNOutcomeStaysInRange(t *testing.T) {
	nan := math.NaN()
	rate, err := ComputeTeamRate([]MatchOutcome{
		{OccurredOrder: 0, OutcomeValue: &nan},
		{OccurredOrder: 1, OutcomeFlag: true},
	}, 10)
	require.NoError(t, err)
	// weights over two matches: 10/19 for the NaN (as 0) and 9/19 for the hit
	assert.InDelta(t, 9.0/19.0, rate, 1e-9)

	score := ScoreFixture(rate, rate)
	assert.Equal(t, 47, score.ConfidencePercent)
}
