package picks_test

import (
	"fmt"

	"github.com/yourusername/smart-picks/internal/picks"
)

func ExampleComputeRecencyWeights() {
	weights, _ := picks.ComputeRecencyWeights(4)
	for _, w := range weights {
		fmt.Printf("%.1f\n", w)
	}
	// Output:
	// 0.4
	// 0.3
	// 0.2
	// 0.1
}

func ExampleComputeTeamRate() {
	history := []picks.MatchOutcome{
		{OccurredOrder: 0, OutcomeFlag: true},
		{OccurredOrder: 1, OutcomeFlag: false},
		{OccurredOrder: 2, OutcomeFlag: true},
	}
	rate, _ := picks.ComputeTeamRate(history, 3)
	fmt.Printf("%.4f\n", rate)
	// Output: 0.6667
}
