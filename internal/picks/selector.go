package picks

import "sort"

// Pick is a FixtureScore that met the selection threshold.
type Pick struct {
	FixtureScore
	// Rank is 1-based position in the ranked pick list.
	Rank int `json:"rank"`
}

// SelectPicks keeps the scores whose probability is at least threshold and
// returns them ordered by probability, highest first. Equal probabilities keep
// their input order. The input slice is not modified.
//
// A threshold outside [0, 1] is rejected with ErrInvalidArgument.
func SelectPicks(scores []FixtureScore, threshold float64) ([]Pick, error) {
	if err := validateRate("threshold", threshold); err != nil {
		return nil, err
	}
	return rank(scores, threshold), nil
}

func rank(scores []FixtureScore, threshold float64) []Pick {
	selected := make([]Pick, 0, len(scores))
	for _, s := range scores {
		if s.Probability >= threshold {
			selected = append(selected, Pick{FixtureScore: s})
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Probability > selected[j].Probability
	})
	for i := range selected {
		selected[i].Rank = i + 1
	}
	return selected
}
