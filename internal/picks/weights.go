// Package picks implements the pick engine: recency-weighted team rates,
// fixture scoring and threshold-based pick selection.
//
// Every function in this package is pure. Nothing here performs I/O or keeps
// state between calls, so callers may invoke it concurrently without locking.
package picks

import "fmt"

// DefaultWindowSize is the number of most recent matches considered per team.
const DefaultWindowSize = 10

// ComputeRecencyWeights returns the triangular weight vector for a window of
// size n. Position 0 is the most recent match. Weights are strictly decreasing
// and sum to 1.
func ComputeRecencyWeights(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidArgument, n)
	}

	total := float64(n*(n+1)) / 2
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = float64(n-i) / total
	}
	return weights, nil
}
