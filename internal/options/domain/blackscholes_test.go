package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 豆粕看涨期权基准参数
const (
	refSpot   = 1350.0
	refStrike = 1400.0
	refTTE    = 0.25
	refRate   = 0.05
	refVol    = 0.22
)

func TestBlackScholesReferencePrice(t *testing.T) {
	price, err := Price(refSpot, refStrike, refTTE, refRate, refVol, Call)
	require.NoError(t, err)
	assert.InDelta(t, 45.04, price, 0.05)

	delta := Delta(refSpot, refStrike, refTTE, refRate, refVol, Call)
	assert.InDelta(t, 0.4357, delta, 0.001)

	gamma := Gamma(refSpot, refStrike, refTTE, refRate, refVol)
	assert.InDelta(t, 0.002651, gamma, 1e-5)

	vega := Vega(refSpot, refStrike, refTTE, refRate, refVol)
	assert.InDelta(t, 2.658, vega, 0.005)

	// 看涨期权在到期前通常有时间价值衰减
	theta := Theta(refSpot, refStrike, refTTE, refRate, refVol, Call)
	assert.Less(t, theta, 0.0)
}

func TestPutCallParity(t *testing.T) {
	call, err := Price(refSpot, refStrike, refTTE, refRate, refVol, Call)
	require.NoError(t, err)
	put, err := Price(refSpot, refStrike, refTTE, refRate, refVol, Put)
	require.NoError(t, err)

	// C - P = S - K * e^(-rT)
	expected := refSpot - refStrike*math.Exp(-refRate*refTTE)
	assert.InDelta(t, expected, call-put, 1e-9)
}

func TestGreekBounds(t *testing.T) {
	spots := []float64{800, 1100, 1350, 1600, 2000}
	ttes := []float64{0.05, 0.25, 1.0}

	for _, s := range spots {
		for _, tte := range ttes {
			callDelta := Delta(s, refStrike, tte, refRate, refVol, Call)
			assert.GreaterOrEqual(t, callDelta, 0.0)
			assert.LessOrEqual(t, callDelta, 1.0)

			putDelta := Delta(s, refStrike, tte, refRate, refVol, Put)
			assert.GreaterOrEqual(t, putDelta, -1.0)
			assert.LessOrEqual(t, putDelta, 0.0)

			// 看涨看跌 Delta 相差 1
			assert.InDelta(t, 1.0, callDelta-putDelta, 1e-12)

			assert.GreaterOrEqual(t, Gamma(s, refStrike, tte, refRate, refVol), 0.0)
			assert.GreaterOrEqual(t, Vega(s, refStrike, tte, refRate, refVol), 0.0)
		}
	}
}

func TestPriceValidation(t *testing.T) {
	_, err := Price(0, refStrike, refTTE, refRate, refVol, Call)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Price(refSpot, refStrike, 0, refRate, refVol, Call)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Price(refSpot, refStrike, refTTE, refRate, -0.1, Put)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseOptionType(t *testing.T) {
	typ, err := ParseOptionType("call")
	require.NoError(t, err)
	assert.Equal(t, Call, typ)

	typ, err = ParseOptionType("PUT")
	require.NoError(t, err)
	assert.Equal(t, Put, typ)

	_, err = ParseOptionType("STRADDLE")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateGreeksPositionScaling(t *testing.T) {
	unit, err := CalculateGreeks(refSpot, refStrike, refTTE, refRate, refVol, Call, 1, 1)
	require.NoError(t, err)

	scaled, err := CalculateGreeks(refSpot, refStrike, refTTE, refRate, refVol, Call, 100, DefaultMultiplier)
	require.NoError(t, err)

	positionSize := 100.0 * DefaultMultiplier
	assert.InDelta(t, unit.Delta*positionSize, scaled.Delta, 1e-6)
	assert.InDelta(t, unit.Vega*positionSize, scaled.Vega, 1e-6)
	assert.InDelta(t, unit.Price*positionSize, scaled.PositionValue.InexactFloat64(), 1e-4)
	assert.Equal(t, unit.Price, scaled.Price)
	assert.Equal(t, 100, scaled.Contracts)
	assert.InDelta(t, refVol*100, scaled.VolatilityPct, 1e-12)
}

func TestCalculateGreeksShortPosition(t *testing.T) {
	long, err := CalculateGreeks(refSpot, refStrike, refTTE, refRate, refVol, Put, 10, DefaultMultiplier)
	require.NoError(t, err)
	short, err := CalculateGreeks(refSpot, refStrike, refTTE, refRate, refVol, Put, -10, DefaultMultiplier)
	require.NoError(t, err)

	assert.InDelta(t, -long.Delta, short.Delta, 1e-9)
	assert.InDelta(t, -long.Gamma, short.Gamma, 1e-9)
	assert.True(t, short.PositionValue.Equal(long.PositionValue.Neg()))
}
