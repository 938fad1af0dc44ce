package picks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weightTolerance = 1e-9

func TestComputeRecencyWeightsProperties(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 10, 25, 100} {
		weights, err := ComputeRecencyWeights(n)
		require.NoError(t, err)
		require.Len(t, weights, n)

		sum := 0.0
		for i, w := range weights {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
			if i+1 < n {
				assert.Greater(t, w, weights[i+1], "n=%d i=%d", n, i)
			}
		}
		assert.InDelta(t, 1.0, sum, weightTolerance, "n=%d", n)
		assert.InDelta(t, float64(n)/(float64(n*(n+1))/2), weights[0], weightTolerance)
	}
}

func TestComputeRecencyWeightsSingle(t *testing.T) {
	weights, err := ComputeRecencyWeights(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, weights)
}

func TestComputeRecencyWeightsWindowTen(t *testing.T) {
	weights, err := ComputeRecencyWeights(DefaultWindowSize)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/55.0, weights[0], weightTolerance)
	assert.InDelta(t, 1.0/55.0, weights[9], weightTolerance)
}

func TestComputeRecencyWeightsInvalid(t *testing.T) {
	for _, n := range []int{0, -1, -10} {
		weights, err := ComputeRecencyWeights(n)
		assert.Nil(t, weights)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "n=%d", n)
	}
}

func TestComputeRecencyWeightsDeterministic(t *testing.T) {
	a, err := ComputeRecencyWeights(7)
	require.NoError(t, err)
	b, err := ComputeRecencyWeights(7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
