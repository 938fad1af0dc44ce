package picks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smart-picks/internal/models"
)

func result(home, away string, hs, as int, daysAgo int) models.MatchResult {
	return models.MatchResult{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: hs,
		AwayScore: as,
		PlayedAt:  time.Date(2026, 5, 30, 15, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func TestOutcomesForOrdersMostRecentFirst(t *testing.T) {
	results := []models.MatchResult{
		result("Fulham", "Spurs", 0, 0, 14),
		result("Spurs", "Everton", 2, 1, 1),
		result("Chelsea", "Spurs", 1, 1, 7),
		result("Leeds", "Everton", 3, 3, 2),
	}

	outcomes := OutcomesFor("Spurs", models.MarketBTTS, results)
	require.Len(t, outcomes, 3)
	assert.Equal(t, []bool{true, true, false}, []bool{
		outcomes[0].OutcomeFlag, outcomes[1].OutcomeFlag, outcomes[2].OutcomeFlag,
	})
	for i, o := range outcomes {
		assert.Equal(t, i, o.OccurredOrder)
	}
}

func TestOutcomesForRunline(t *testing.T) {
	results := []models.MatchResult{
		result("Yankees", "Red Sox", 5, 4, 1),
		result("Orioles", "Yankees", 1, 6, 2),
		result("Yankees", "Rays", 2, 4, 3),
	}

	outcomes := OutcomesFor("Yankees", models.MarketRunline, results)
	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].OutcomeFlag)
	assert.True(t, outcomes[1].OutcomeFlag)
	assert.True(t, outcomes[2].OutcomeFlag)
}

func TestOutcomesForUnknownTeam(t *testing.T) {
	outcomes := OutcomesFor("Nobody", models.MarketBTTS, []models.MatchResult{result("A", "B", 1, 1, 1)})
	assert.Empty(t, outcomes)
}
