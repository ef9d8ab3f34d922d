package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceSeriesReproducible(t *testing.T) {
	g1 := NewGenerator(42)
	g2 := NewGenerator(42)

	s1 := g1.PriceSeries(1350, 0.22, 252, 0)
	s2 := g2.PriceSeries(1350, 0.22, 252, 0)

	require.Len(t, s1, 252)
	assert.Equal(t, s1, s2)
	assert.Equal(t, 1350.0, s1[0])

	for _, p := range s1 {
		assert.Greater(t, p, 0.0)
	}
}

func TestLogReturns(t *testing.T) {
	prices := []float64{100, 110, 99}
	returns := LogReturns(prices)

	require.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), returns[1], 1e-12)

	assert.Nil(t, LogReturns([]float64{100}))
}

func TestGenerateHistory(t *testing.T) {
	g := NewGenerator(7)

	history, err := g.GenerateHistory([]string{"CORN", "USDCNY"}, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"CORN", "USDCNY"}, history.Symbols)
	assert.Len(t, history.Prices["CORN"], 100)
	assert.Equal(t, 450.0, history.Prices["CORN"][0])
	assert.Equal(t, 7.25, history.Prices["USDCNY"][0])

	matrix := history.ReturnsMatrix()
	require.Len(t, matrix, 2)
	assert.Len(t, matrix[0], 99)

	_, err = g.GenerateHistory([]string{"UNKNOWN"}, 100)
	assert.Error(t, err)

	_, err = g.GenerateHistory(nil, 1)
	assert.Error(t, err)
}

func TestGenerateHistoryDefaultsToUniverse(t *testing.T) {
	g := NewGenerator(1)
	history, err := g.GenerateHistory(nil, 50)
	require.NoError(t, err)
	assert.Len(t, history.Symbols, 14)
}

func TestCorrelationMatrix(t *testing.T) {
	g := NewGenerator(3)
	history, err := g.GenerateHistory([]string{"CORN", "SOYBEAN", "WHEAT"}, 252)
	require.NoError(t, err)

	corr, err := CorrelationMatrix(history.ReturnsMatrix())
	require.NoError(t, err)
	require.Len(t, corr, 3)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, corr[i][i], 1e-9)
		for j := 0; j < 3; j++ {
			assert.InDelta(t, corr[j][i], corr[i][j], 1e-12)
			assert.LessOrEqual(t, math.Abs(corr[i][j]), 1.0+1e-12)
		}
	}
}

func TestGeneratePositions(t *testing.T) {
	g := NewGenerator(42)
	positions := g.GeneratePositions(20)

	require.Len(t, positions, 20)
	assert.Equal(t, "POS_001", positions[0].PositionID)
	assert.Equal(t, "POS_020", positions[19].PositionID)

	for _, pos := range positions {
		if pos.Direction == "SHORT" {
			assert.Less(t, pos.Quantity, 0.0)
		} else {
			assert.Greater(t, pos.Quantity, 0.0)
		}
		assert.True(t, pos.NotionalUSD.IsPositive())

		if pos.Type == InstrumentCommodity {
			expected := math.Abs(pos.Quantity) * pos.CurrentPrice * ContractMultiplier
			assert.InDelta(t, expected, pos.NotionalUSD.InexactFloat64(), 1e-6)
		} else {
			expected := math.Abs(pos.Quantity) * 1_000_000
			assert.InDelta(t, expected, pos.NotionalUSD.InexactFloat64(), 1e-6)
		}
	}
}

func TestGenerateOptions(t *testing.T) {
	g := NewGenerator(42)
	options := g.GenerateOptions(15)

	require.Len(t, options, 15)
	assert.Equal(t, "OPT_001", options[0].OptionID)

	for _, opt := range options {
		assert.Contains(t, []string{"CALL", "PUT"}, opt.OptionType)
		assert.GreaterOrEqual(t, opt.Strike, opt.Spot*0.85-1)
		assert.LessOrEqual(t, opt.Strike, opt.Spot*1.15+1)
		assert.Greater(t, opt.TimeToExpiry, 0.0)
		assert.LessOrEqual(t, opt.TimeToExpiry, 1.0)
		assert.Equal(t, 0.05, opt.RiskFreeRate)
		assert.NotZero(t, opt.Contracts)
	}
}
