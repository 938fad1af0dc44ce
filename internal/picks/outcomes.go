package picks

import (
	"sort"

	"github.com/yourusername/smart-picks/internal/models"
)

// RunlineMargin is the run margin a game must be decided by at least for the
// runline flag, matching the -1.5 line from either side.
const RunlineMargin = 2

// OutcomesFor converts raw match results into an ordered outcome history for
// team under market. Results that do not involve team are dropped and the
// rest are ordered most recent first.
func OutcomesFor(team string, market models.Market, results []models.MatchResult) []MatchOutcome {
	relevant := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Involves(team) {
			relevant = append(relevant, r)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].PlayedAt.After(relevant[j].PlayedAt)
	})

	outcomes := make([]MatchOutcome, len(relevant))
	for i, r := range relevant {
		outcomes[i] = MatchOutcome{
			OccurredOrder: i,
			OutcomeFlag:   outcomeFlag(market, r),
		}
	}
	return outcomes
}

func outcomeFlag(market models.Market, r models.MatchResult) bool {
	switch market {
	case models.MarketRunline:
		return r.MarginAtLeast(RunlineMargin)
	default:
		return r.BothTeamsScored()
	}
}
