package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormCDF(0), 1e-12)
	assert.InDelta(t, 0.8413447460685429, NormCDF(1), 1e-9)
	assert.InDelta(t, 0.9772498680518208, NormCDF(2), 1e-9)
	assert.InDelta(t, 0.022750131948179195, NormCDF(-2), 1e-9)
}

func TestNormInv(t *testing.T) {
	// 常用分位点
	assert.InDelta(t, -2.3263478740408408, NormInv(0.01), 1e-6)
	assert.InDelta(t, -1.6448536269514722, NormInv(0.05), 1e-6)
	assert.InDelta(t, 0, NormInv(0.5), 1e-9)
	assert.InDelta(t, 1.6448536269514722, NormInv(0.95), 1e-6)

	// 往返一致性
	for _, p := range []float64{0.001, 0.01, 0.1, 0.5, 0.9, 0.99, 0.999} {
		assert.InDelta(t, p, NormCDF(NormInv(p)), 1e-8)
	}

	assert.True(t, math.IsNaN(NormInv(0)))
	assert.True(t, math.IsNaN(NormInv(1)))
}

func TestCovarianceAndCorrelation(t *testing.T) {
	returns := [][]float64{
		{0.01, 0.02, -0.01, 0.03},
		{0.02, 0.04, -0.02, 0.06},
	}
	cov, err := Covariance(returns)
	require.NoError(t, err)

	// 第二个序列为第一个的两倍，相关系数应为 1
	corr := Correlation(cov)
	assert.InDelta(t, 1.0, corr[0][1], 1e-12)
	assert.InDelta(t, 4*cov[0][0], cov[1][1], 1e-12)

	_, err = Covariance([][]float64{{0.01, 0.02}, {0.01}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCholesky(t *testing.T) {
	a := [][]float64{
		{4, 2},
		{2, 3},
	}
	l, err := Cholesky(a)
	require.NoError(t, err)

	// 验证 L * L^T = A
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			sum := 0.0
			for k := 0; k < 2; k++ {
				sum += l[i][k] * l[j][k]
			}
			assert.InDelta(t, a[i][j], sum, 1e-12)
		}
	}
}

func TestCholeskyNotPositiveDefinite(t *testing.T) {
	a := [][]float64{
		{1, 2},
		{2, 1},
	}
	_, err := Cholesky(a)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestCovFromCorrelation(t *testing.T) {
	corr := [][]float64{
		{1, 0.5},
		{0.5, 1},
	}
	vols := []float64{0.2, 0.3}
	cov, err := CovFromCorrelation(corr, vols)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, cov[0][0], 1e-12)
	assert.InDelta(t, 0.09, cov[1][1], 1e-12)
	assert.InDelta(t, 0.5*0.2*0.3, cov[0][1], 1e-12)
}

func TestMatVecDot(t *testing.T) {
	m := [][]float64{{1, 2}, {3, 4}}
	v := []float64{1, 1}
	out, err := MatVec(m, v)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, out)

	d, err := Dot([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 32, d, 1e-12)

	_, err = Dot([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
