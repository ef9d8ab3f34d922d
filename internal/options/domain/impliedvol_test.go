package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	for _, trueVol := range []float64{0.15, 0.22, 0.35, 0.60} {
		price, err := Price(refSpot, refStrike, refTTE, refRate, trueVol, Call)
		require.NoError(t, err)

		iv, err := ImpliedVolatility(price, refSpot, refStrike, refTTE, refRate, Call)
		require.NoError(t, err)
		assert.InDelta(t, trueVol, iv, 1e-4)
	}
}

func TestImpliedVolatilityPut(t *testing.T) {
	price, err := Price(refSpot, refStrike, refTTE, refRate, 0.28, Put)
	require.NoError(t, err)

	iv, err := ImpliedVolatility(price, refSpot, refStrike, refTTE, refRate, Put)
	require.NoError(t, err)
	assert.InDelta(t, 0.28, iv, 1e-4)
}

func TestImpliedVolatilityNotConverged(t *testing.T) {
	// 深度虚值且临近到期，vega 退化，无法匹配给定价格
	_, err := ImpliedVolatility(0.5, 100, 300, 0.01, 0.05, Call)
	assert.ErrorIs(t, err, ErrNotConverged)
}

func TestImpliedVolatilityInvalidInput(t *testing.T) {
	_, err := ImpliedVolatility(0, refSpot, refStrike, refTTE, refRate, Call)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ImpliedVolatility(45, refSpot, refStrike, 0, refRate, Call)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildVolSurface(t *testing.T) {
	strikes := []float64{1200, 1350, 1500}
	expiries := []float64{0.25, 0.5}
	vols := [][]float64{
		{0.26, 0.24},
		{0.22, 0.21},
		{0.25, 0.23},
	}

	prices := make([][]float64, len(strikes))
	for i, k := range strikes {
		prices[i] = make([]float64, len(expiries))
		for j, tte := range expiries {
			p, err := Price(refSpot, k, tte, refRate, vols[i][j], Call)
			require.NoError(t, err)
			prices[i][j] = p
		}
	}

	points, err := BuildVolSurface(refSpot, refRate, strikes, expiries, prices, Call)
	require.NoError(t, err)
	require.Len(t, points, 6)

	for idx, pt := range points {
		i, j := idx/len(expiries), idx%len(expiries)
		assert.True(t, pt.Converged)
		assert.InDelta(t, vols[i][j]*100, pt.ImpliedVolPct, 0.05)
		assert.InDelta(t, refSpot/strikes[i], pt.Moneyness, 1e-12)
	}
}

func TestBuildVolSurfaceDimensionCheck(t *testing.T) {
	_, err := BuildVolSurface(refSpot, refRate, []float64{1200}, []float64{0.25}, [][]float64{}, Call)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeltaHedge(t *testing.T) {
	hedge, err := DeltaHedge(refSpot, refStrike, refTTE, refRate, refVol, Call, 100, DefaultMultiplier)
	require.NoError(t, err)

	delta := Delta(refSpot, refStrike, refTTE, refRate, refVol, Call)
	assert.InDelta(t, delta, hedge.OptionDelta, 1e-12)
	assert.InDelta(t, delta*100*DefaultMultiplier, hedge.PositionDelta, 1e-9)
	assert.InDelta(t, -hedge.PositionDelta, hedge.HedgeUnits, 1e-9)
	assert.Equal(t, "SELL", hedge.HedgeDirection)
	assert.InDelta(t, hedge.HedgeUnits*refSpot, hedge.HedgeValue.InexactFloat64(), 1e-4)

	// 空头看涨的对冲方向相反
	shortHedge, err := DeltaHedge(refSpot, refStrike, refTTE, refRate, refVol, Call, -100, DefaultMultiplier)
	require.NoError(t, err)
	assert.Equal(t, "BUY", shortHedge.HedgeDirection)
}

func TestPortfolioGreeksAggregation(t *testing.T) {
	positions := []Position{
		{OptionID: "OPT_001", Underlying: "SOYBEAN", OptionType: Call, Strike: 1400, Spot: 1350, TimeToExpiry: 0.25, Volatility: 0.22, RiskFreeRate: 0.05, Contracts: 100},
		{OptionID: "OPT_002", Underlying: "CORN", OptionType: Put, Strike: 430, Spot: 450, TimeToExpiry: 0.5, Volatility: 0.25, RiskFreeRate: 0.05, Contracts: -50},
	}

	results, summary, err := PortfolioGreeks(positions)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, summary.NumPositions)

	var totalDelta float64
	totalValue := results[0].PositionValue.Add(results[1].PositionValue)
	for _, r := range results {
		totalDelta += r.Delta
	}
	assert.InDelta(t, totalDelta, summary.TotalDelta, 1e-9)
	assert.True(t, totalValue.Equal(summary.TotalValue))
}

func TestPortfolioGreeksPropagatesError(t *testing.T) {
	positions := []Position{
		{OptionID: "OPT_001", OptionType: Call, Strike: 1400, Spot: 0, TimeToExpiry: 0.25, Volatility: 0.22, RiskFreeRate: 0.05, Contracts: 1},
	}
	_, _, err := PortfolioGreeks(positions)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
