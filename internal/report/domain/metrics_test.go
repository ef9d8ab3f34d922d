package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioReturns(t *testing.T) {
	returns := [][]float64{
		{0.01, -0.02, 0.03},
		{0.02, 0.00, -0.01},
	}
	weights := []float64{0.5, 0.5}

	portfolio, err := PortfolioReturns(returns, weights)
	require.NoError(t, err)
	require.Len(t, portfolio, 3)
	assert.InDelta(t, 0.015, portfolio[0], 1e-12)
	assert.InDelta(t, -0.01, portfolio[1], 1e-12)
	assert.InDelta(t, 0.01, portfolio[2], 1e-12)
}

func TestPortfolioReturnsDimensionMismatch(t *testing.T) {
	_, err := PortfolioReturns([][]float64{{0.01}}, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = PortfolioReturns([][]float64{{0.01, 0.02}, {0.01}}, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCalculateRiskMetricsAnnualization(t *testing.T) {
	// 常数收益序列，波动率为零
	constant := make([]float64, 100)
	for i := range constant {
		constant[i] = 0.001
	}

	metrics, err := CalculateRiskMetrics(constant, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 0.001*252*100, metrics.AnnualizedReturnPct, 1e-9)
	assert.InDelta(t, 0, metrics.AnnualizedVolatilityPct, 1e-9)
	assert.Equal(t, 0.0, metrics.SharpeRatio)
	assert.Equal(t, 0.0, metrics.SortinoRatio)
	assert.InDelta(t, 0, metrics.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 100, metrics.Observations)
}

func TestCalculateRiskMetricsDrawdown(t *testing.T) {
	// 先涨 10% 再跌 20%，最大回撤 -20%
	returns := []float64{0.10, -0.20, 0.01, 0.01}

	metrics, err := CalculateRiskMetrics(returns, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, -20, metrics.MaxDrawdownPct, 1e-9)
}

func TestCalculateRiskMetricsMomentsOnSymmetricSample(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	returns := make([]float64, 5000)
	for i := range returns {
		returns[i] = rng.NormFloat64() * 0.01
	}

	metrics, err := CalculateRiskMetrics(returns, 0.05)
	require.NoError(t, err)

	// 正态样本的偏度与超额峰度接近零
	assert.InDelta(t, 0, metrics.Skewness, 0.15)
	assert.InDelta(t, 0, metrics.ExcessKurtosis, 0.3)
	assert.InDelta(t, 0.01*math.Sqrt(252)*100, metrics.AnnualizedVolatilityPct, 1.5)
}

func TestCalculateRiskMetricsSharpeSign(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	returns := make([]float64, 1000)
	for i := range returns {
		// 日均千分之一的正漂移
		returns[i] = 0.001 + rng.NormFloat64()*0.005
	}

	metrics, err := CalculateRiskMetrics(returns, 0.05)
	require.NoError(t, err)
	assert.Greater(t, metrics.SharpeRatio, 0.0)
	assert.Greater(t, metrics.SortinoRatio, 0.0)
	// 索提诺只惩罚下行波动，通常高于夏普
	assert.Greater(t, metrics.SortinoRatio, metrics.SharpeRatio)
}

func TestCalculateRiskMetricsInsufficientData(t *testing.T) {
	_, err := CalculateRiskMetrics([]float64{0.01, 0.02, 0.03}, 0.05)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSkewnessOfSkewedSample(t *testing.T) {
	// 右偏样本
	returns := make([]float64, 0, 400)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 400; i++ {
		returns = append(returns, math.Exp(rng.NormFloat64()*0.5)-1)
	}

	metrics, err := CalculateRiskMetrics(returns, 0.05)
	require.NoError(t, err)
	assert.Greater(t, metrics.Skewness, 0.5)
}
