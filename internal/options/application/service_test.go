package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolNotConvergedWithoutMetrics(t *testing.T) {
	svc := NewOptionsService(nil, nil)

	// 深度虚值且临近到期，迭代无法匹配给定价格
	resp, err := svc.ImpliedVol(context.Background(), &ImpliedVolRequest{
		MarketPrice:  0.5,
		Spot:         100,
		Strike:       300,
		TimeToExpiry: 0.01,
		RiskFreeRate: 0.05,
		OptionType:   "call",
	})
	require.NoError(t, err)
	assert.False(t, resp.Converged)
	assert.Greater(t, resp.ImpliedVol, 0.0)
}

func TestVolSurfaceNotConvergedWithoutMetrics(t *testing.T) {
	svc := NewOptionsService(nil, nil)

	points, err := svc.VolSurface(context.Background(), &VolSurfaceRequest{
		Spot:         100,
		RiskFreeRate: 0.05,
		Strikes:      []float64{300},
		Expiries:     []float64{0.01},
		MarketPrices: [][]float64{{0.5}},
		OptionType:   "call",
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.False(t, points[0].Converged)
}
