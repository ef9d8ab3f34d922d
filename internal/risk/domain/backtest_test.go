package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacktestWindowAccounting(t *testing.T) {
	returns := testReturns(21, 2, 400)
	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"A", "B"},
		Returns: returns,
		Weights: []float64{0.6, 0.4},
		Value:   1.0,
	}

	result, err := engine.Backtest(p, 252)
	require.NoError(t, err)

	assert.Equal(t, 252, result.Window)
	assert.Equal(t, 400-252, result.Observations)
	assert.Len(t, result.Points, result.Observations)
	assert.InDelta(t, float64(result.Observations)*0.01, result.ExpectedBreaches, 1e-9)
	assert.InDelta(t, float64(result.ActualBreaches)/float64(result.Observations), result.BreachRatio, 1e-12)

	breaches := 0
	for _, pt := range result.Points {
		assert.Greater(t, pt.VaRPercent, 0.0)
		if pt.Breach {
			breaches++
			assert.Less(t, pt.ActualReturn, -pt.VaRPercent)
		}
	}
	assert.Equal(t, result.ActualBreaches, breaches)
}

func TestBacktestBreachDetection(t *testing.T) {
	// 平稳收益序列中植入一次大幅下跌，必须被识别为击穿
	obs := 300
	series := make([]float64, obs)
	for i := range series {
		series[i] = 0.001 * float64(i%7-3)
	}
	series[280] = -0.25

	engine, err := NewEngine(0.95)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"X"},
		Returns: [][]float64{series},
		Weights: []float64{1.0},
		Value:   1.0,
	}

	result, err := engine.Backtest(p, 252)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ActualBreaches, 1)

	found := false
	for _, pt := range result.Points {
		if pt.Day == 280 {
			assert.True(t, pt.Breach)
			found = true
		}
	}
	assert.True(t, found)
}

func TestBacktestInsufficientData(t *testing.T) {
	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"X"},
		Returns: testReturns(2, 1, 100),
		Weights: []float64{1.0},
		Value:   1.0,
	}

	_, err = engine.Backtest(p, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
