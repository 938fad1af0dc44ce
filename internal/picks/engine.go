package picks

// Engine bundles a validated window size and threshold. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	windowSize int
	threshold  float64
	weights    []float64
}

// FixtureInput names the two sides of an upcoming fixture.
type FixtureInput struct {
	ID       string
	HomeTeam string
	AwayTeam string
}

// Analysis is the full output of one engine pass.
type Analysis struct {
	Rates  map[string]TeamRate
	Scores []FixtureScore
	Picks  []Pick
}

// NewEngine validates the configuration once so later calls cannot fail on it.
func NewEngine(windowSize int, threshold float64) (*Engine, error) {
	weights, err := ComputeRecencyWeights(windowSize)
	if err != nil {
		return nil, err
	}
	if err := validateRate("threshold", threshold); err != nil {
		return nil, err
	}
	return &Engine{windowSize: windowSize, threshold: threshold, weights: weights}, nil
}

// WindowSize returns the configured window.
func (e *Engine) WindowSize() int { return e.windowSize }

// Threshold returns the configured selection threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// Weights returns a copy of the recency weight vector.
func (e *Engine) Weights() []float64 {
	out := make([]float64, len(e.weights))
	copy(out, e.weights)
	return out
}

// TeamRate computes a team's rate from its ordered history.
func (e *Engine) TeamRate(team string, matches []MatchOutcome) TeamRate {
	return weightedRate(team, matches, e.weights)
}

// ScoreFixture blends two team rates for the given fixture.
func (e *Engine) ScoreFixture(fixtureID string, home, away TeamRate) FixtureScore {
	return ScoreFixtureFor(fixtureID, home.Rate, away.Rate)
}

// Select applies the engine threshold to scores.
func (e *Engine) Select(scores []FixtureScore) []Pick {
	return rank(scores, e.threshold)
}

// Analyze runs rates, scoring and selection for fixtures in discovery order.
// Teams missing from histories are treated as having no data.
func (e *Engine) Analyze(fixtures []FixtureInput, histories map[string][]MatchOutcome) Analysis {
	rates := make(map[string]TeamRate)
	rateOf := func(team string) TeamRate {
		if r, ok := rates[team]; ok {
			return r
		}
		r := e.TeamRate(team, histories[team])
		rates[team] = r
		return r
	}

	scores := make([]FixtureScore, 0, len(fixtures))
	for _, f := range fixtures {
		scores = append(scores, e.ScoreFixture(f.ID, rateOf(f.HomeTeam), rateOf(f.AwayTeam)))
	}

	return Analysis{
		Rates:  rates,
		Scores: scores,
		Picks:  e.Select(scores),
	}
}
