package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

func testReturns(seed int64, nAssets, obs int) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	returns := make([][]float64, nAssets)
	for i := range returns {
		returns[i] = make([]float64, obs)
		vol := 0.01 * float64(i+1)
		for t := range returns[i] {
			returns[i][t] = rng.NormFloat64() * vol
		}
	}
	return returns
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

func TestNewEngineValidatesConfidence(t *testing.T) {
	_, err := NewEngine(0)
	assert.ErrorIs(t, err, ErrInvalidConfidence)

	_, err = NewEngine(1)
	assert.ErrorIs(t, err, ErrInvalidConfidence)

	e, err := NewEngine(0.99)
	require.NoError(t, err)
	assert.Equal(t, 0.99, e.Confidence())
}

func TestParametricVaRSingleAssetClosedForm(t *testing.T) {
	returns := [][]float64{
		{0.012, -0.021, 0.005, -0.008, 0.017, -0.013, 0.003, 0.009, -0.004, 0.011,
			-0.016, 0.007, 0.002, -0.009, 0.014, -0.006, 0.001, 0.008, -0.012, 0.004},
	}

	engine, err := NewEngine(0.95)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"CORN"},
		Returns: returns,
		Weights: []float64{1.0},
		Value:   1_000_000,
	}

	result, err := engine.ParametricVaR(p, 1)
	require.NoError(t, err)

	mean := mathx.Mean(returns[0])
	std := mathx.SampleStd(returns[0])
	z := mathx.NormInv(0.05)
	expectedPct := -(mean + z*std)

	assert.InDelta(t, expectedPct*100, result.VaRPercent, 1e-9)
	assert.InDelta(t, expectedPct*1_000_000, result.VaRDollar.InexactFloat64(), 1e-4)
	assert.InDelta(t, math.Abs(z), result.ZScore, 1e-9)
	assert.InDelta(t, std*math.Sqrt(252)*100, result.AnnualizedVolatility, 1e-9)

	// ES 对正态分布总是大于 VaR
	assert.Greater(t, result.ESPercent, result.VaRPercent)
}

func TestHistoricalVaRMatchesOrderStatistic(t *testing.T) {
	// 100 个已知收益，5% 分位可手工核对
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.05 + float64(i)*0.001
	}

	engine, err := NewEngine(0.95)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"X"},
		Returns: [][]float64{returns},
		Weights: []float64{1.0},
		Value:   100,
	}

	result, err := engine.HistoricalVaR(p, 1)
	require.NoError(t, err)

	expected, err := mathx.Percentile(returns, 5)
	require.NoError(t, err)
	assert.InDelta(t, math.Abs(expected)*100, result.VaRPercent, 1e-9)

	// 尾部平均不小于分位点损失
	assert.GreaterOrEqual(t, result.ESPercent, result.VaRPercent)
	assert.Equal(t, 100, result.Observations)
}

func TestHistoricalVaRHoldingPeriodScaling(t *testing.T) {
	returns := testReturns(11, 1, 300)
	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{Symbols: []string{"X"}, Returns: returns, Weights: []float64{1}, Value: 1000}

	oneDay, err := engine.HistoricalVaR(p, 1)
	require.NoError(t, err)
	tenDay, err := engine.HistoricalVaR(p, 10)
	require.NoError(t, err)

	assert.InDelta(t, oneDay.VaRPercent*math.Sqrt(10), tenDay.VaRPercent, 1e-9)
}

func TestMonteCarloVaRDeterministicWithSeed(t *testing.T) {
	returns := testReturns(5, 3, 252)
	weights := equalWeights(3)

	run := func() *VaRResult {
		engine, err := NewEngine(0.99)
		require.NoError(t, err)
		engine.SetRand(rand.New(rand.NewSource(42)))

		p := &Portfolio{
			Symbols: []string{"A", "B", "C"},
			Returns: returns,
			Weights: weights,
			Value:   10_000_000,
		}
		result, err := engine.MonteCarloVaR(p, 1, 2000)
		require.NoError(t, err)
		return result
	}

	r1 := run()
	r2 := run()

	assert.Equal(t, r1.VaRPercent, r2.VaRPercent)
	assert.Equal(t, r1.SimMean, r2.SimMean)
	assert.True(t, r1.VaRDollar.Equal(r2.VaRDollar))
	assert.Equal(t, 2000, r1.Simulations)
	assert.Greater(t, r1.VaRPercent, 0.0)
}

func TestMonteCarloVaRNotPositiveDefinite(t *testing.T) {
	// 两条完全相同的收益序列使协方差矩阵退化
	base := testReturns(9, 1, 100)[0]
	returns := [][]float64{base, base}

	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"A", "B"},
		Returns: returns,
		Weights: []float64{0.5, 0.5},
		Value:   1000,
	}

	_, err = engine.MonteCarloVaR(p, 1, 100)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestVaRDimensionMismatch(t *testing.T) {
	engine, err := NewEngine(0.99)
	require.NoError(t, err)

	p := &Portfolio{
		Symbols: []string{"A", "B"},
		Returns: testReturns(1, 2, 50),
		Weights: []float64{1.0},
		Value:   1000,
	}
	_, err = engine.HistoricalVaR(p, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	p2 := &Portfolio{
		Symbols: []string{"A"},
		Returns: [][]float64{{0.01}},
		Weights: []float64{1.0},
		Value:   1000,
	}
	_, err = engine.ParametricVaR(p2, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateAllReturnsThreeMethods(t *testing.T) {
	returns := testReturns(3, 4, 300)
	engine, err := NewEngine(0.99)
	require.NoError(t, err)
	engine.SetRand(rand.New(rand.NewSource(1)))

	p := &Portfolio{
		Symbols: []string{"A", "B", "C", "D"},
		Returns: returns,
		Weights: equalWeights(4),
		Value:   50_000_000,
	}

	results, err := engine.CalculateAll(p, 1, 1000)
	require.NoError(t, err)
	require.Len(t, results, 3)

	methods := []string{results[0].Method, results[1].Method, results[2].Method}
	assert.Equal(t, []string{MethodHistorical, MethodParametric, MethodMonteCarlo}, methods)

	for _, r := range results {
		assert.Greater(t, r.VaRPercent, 0.0)
		assert.True(t, r.VaRDollar.IsPositive())
		assert.True(t, r.ESDollar.GreaterThanOrEqual(r.VaRDollar))
	}
}

func TestEvaluateLimit(t *testing.T) {
	limit, utilization, status := EvaluateLimit(1_000_000, 100_000_000, 0.05)
	assert.Equal(t, 5_000_000.0, limit)
	assert.InDelta(t, 20.0, utilization, 1e-9)
	assert.Equal(t, StatusGreen, status)

	_, utilization, status = EvaluateLimit(4_500_000, 100_000_000, 0.05)
	assert.InDelta(t, 90.0, utilization, 1e-9)
	assert.Equal(t, StatusAmber, status)

	_, utilization, status = EvaluateLimit(6_000_000, 100_000_000, 0.05)
	assert.InDelta(t, 120.0, utilization, 1e-9)
	assert.Equal(t, StatusRed, status)
}
