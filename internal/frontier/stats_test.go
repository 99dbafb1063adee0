package frontier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateStats_HandComputed(t *testing.T) {
	prices := [][]float64{
		{100, 110, 99},
		{50, 55, 60.5},
	}
	stats, err := EstimateStats([]string{"A", "B"}, prices)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, stats.Symbols)
	assert.Equal(t, 2, stats.Observations)
	// A: +10%, -10%  B: +10%, +10%
	assert.InDelta(t, 0.0, stats.MeanReturns[0], 1e-12)
	assert.InDelta(t, 0.1, stats.MeanReturns[1], 1e-12)
	assert.InDelta(t, 0.02, stats.Covariance[0][0], 1e-12)
	assert.InDelta(t, 0.0, stats.Covariance[1][1], 1e-12)
	assert.InDelta(t, 0.0, stats.Covariance[0][1], 1e-12)
	assert.Equal(t, stats.Covariance[0][1], stats.Covariance[1][0])
}

func TestEstimateStats_DropsUndefinedRows(t *testing.T) {
	prices := [][]float64{
		{100, math.NaN(), 110, 121, 133.1},
		{10, 11, 12, 13, 14},
	}
	stats, err := EstimateStats([]string{"A", "B"}, prices)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Observations)
	assert.InDelta(t, 0.1, stats.MeanReturns[0], 1e-12)
	assert.InDelta(t, (13.0/12+14.0/13)/2-1, stats.MeanReturns[1], 1e-12)
}

func TestEstimateStats_FeedsSimulate(t *testing.T) {
	prices := [][]float64{
		{100, 101, 99, 102, 104, 103},
		{20, 20.5, 20.2, 20.9, 21.0, 21.4},
		{7, 6.8, 7.1, 7.3, 7.2, 7.6},
	}
	stats, err := EstimateStats([]string{"A", "B", "C"}, prices)
	require.NoError(t, err)

	res, err := Simulate(stats, 500, 0.0175, seeded(11))
	require.NoError(t, err)
	assert.Equal(t, 500, res.Len())
	assert.Zero(t, res.Degenerate())
}

func TestEstimateStats_Errors(t *testing.T) {
	_, err := EstimateStats(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = EstimateStats([]string{"A"}, [][]float64{{1, 2}, {1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = EstimateStats([]string{"A", "B"}, [][]float64{{1, 2, 3}, {1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = EstimateStats([]string{"A", "B"}, [][]float64{{1, 2}, {1, 2}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}
