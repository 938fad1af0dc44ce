package picks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(0, 0.65)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewEngine(10, 1.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	engine, err := NewEngine(10, 0.65)
	require.NoError(t, err)
	assert.Equal(t, 10, engine.WindowSize())
	assert.Equal(t, 0.65, engine.Threshold())
}

func TestEngineWeightsAreCopied(t *testing.T) {
	engine, err := NewEngine(3, 0.5)
	require.NoError(t, err)

	w := engine.Weights()
	w[0] = 42
	assert.InDelta(t, 3.0/6.0, engine.Weights()[0], weightTolerance)
}

func TestEngineEndToEndNoAwayData(t *testing.T) {
	engine, err := NewEngine(DefaultWindowSize, 0.65)
	require.NoError(t, err)

	fixtures := []FixtureInput{{ID: "fx-1", HomeTeam: "Home FC", AwayTeam: "Away FC"}}
	histories := map[string][]MatchOutcome{
		"Home FC": history(true, true, true, false, false, false, false, false, false, false),
		"Away FC": {},
	}

	analysis := engine.Analyze(fixtures, histories)

	home := analysis.Rates["Home FC"]
	away := analysis.Rates["Away FC"]
	assert.InDelta(t, 27.0/55.0, home.Rate, weightTolerance)
	assert.Equal(t, 10, home.SampleSize)
	assert.Equal(t, 0.0, away.Rate)
	assert.Equal(t, 0, away.SampleSize)

	require.Len(t, analysis.Scores, 1)
	assert.InDelta(t, 27.0/110.0, analysis.Scores[0].Probability, weightTolerance)
	assert.Equal(t, 25, analysis.Scores[0].ConfidencePercent)
	assert.Empty(t, analysis.Picks)
}

func TestEngineAnalyzeSelectsAndRanks(t *testing.T) {
	engine, err := NewEngine(DefaultWindowSize, 0.65)
	require.NoError(t, err)

	fixtures := []FixtureInput{
		{ID: "low", HomeTeam: "A", AwayTeam: "B"},
		{ID: "high", HomeTeam: "C", AwayTeam: "D"},
		{ID: "mid", HomeTeam: "A", AwayTeam: "C"},
	}
	histories := map[string][]MatchOutcome{
		"A": repeat(true, 10),
		"B": repeat(false, 10),
		"C": repeat(true, 10),
		"D": repeat(true, 10),
	}

	analysis := engine.Analyze(fixtures, histories)
	require.Len(t, analysis.Scores, 3)
	assert.Equal(t, "low", analysis.Scores[0].FixtureIdentity)

	require.Len(t, analysis.Picks, 2)
	assert.Equal(t, "high", analysis.Picks[0].FixtureIdentity)
	assert.Equal(t, "mid", analysis.Picks[1].FixtureIdentity)
	assert.Len(t, analysis.Rates, 4)
}

func TestEngineConcurrentUse(t *testing.T) {
	engine, err := NewEngine(DefaultWindowSize, 0.5)
	require.NoError(t, err)

	matches := history(true, false, true, true)
	want := engine.TeamRate("x", matches).Rate

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, engine.TeamRate("x", matches).Rate)
		}()
	}
	wg.Wait()
}
