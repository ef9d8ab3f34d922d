package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentVaRContributionsSumToTotal(t *testing.T) {
	returns := testReturns(42, 4, 500)
	weights := []float64{0.4, 0.3, 0.2, 0.1}

	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"CORN", "SOYBEAN", "WHEAT", "SUGAR"},
		Returns: returns,
		Weights: weights,
		Value:   100_000_000,
	}

	components, err := engine.ComponentVaRAnalysis(p)
	require.NoError(t, err)
	require.Len(t, components, 4)

	totalPct := 0.0
	for _, c := range components {
		totalPct += c.PctContribution
	}
	assert.InDelta(t, 100.0, totalPct, 1e-6)

	// 按贡献从大到小排序
	for i := 1; i < len(components); i++ {
		assert.True(t, components[i-1].ComponentVaR.GreaterThanOrEqual(components[i].ComponentVaR))
	}

	weightSum := 0.0
	for _, c := range components {
		weightSum += c.WeightPercent
	}
	assert.InDelta(t, 100.0, weightSum, 1e-9)
}

func TestIncrementalVaRConsistency(t *testing.T) {
	returns := testReturns(7, 3, 400)
	weights := equalWeights(3)

	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"A", "B", "C"},
		Returns: returns,
		Weights: weights,
		Value:   10_000_000,
	}

	result, err := engine.IncrementalVaRAnalysis(p, 2, 0.01)
	require.NoError(t, err)

	assert.Equal(t, "C", result.Asset)

	diff := result.NewVaR.Sub(result.CurrentVaR)
	assert.InDelta(t, diff.InexactFloat64(), result.IncrementalVaR.InexactFloat64(), 1e-6)

	expectedPct := diff.InexactFloat64() / result.CurrentVaR.InexactFloat64() * 100
	assert.InDelta(t, expectedPct, result.PctChange, 1e-6)

	// 原始权重不被修改
	assert.Equal(t, equalWeights(3), p.Weights)
}

func TestIncrementalVaRInvalidIndex(t *testing.T) {
	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"A"},
		Returns: testReturns(1, 1, 100),
		Weights: []float64{1.0},
		Value:   1000,
	}

	_, err = engine.IncrementalVaRAnalysis(p, 5, 0.01)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
