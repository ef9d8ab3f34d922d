package mathx

import (
	"errors"
	"math"
)

// ErrDimensionMismatch 维度不匹配
var ErrDimensionMismatch = errors.New("mathx: dimension mismatch")

// ErrNotPositiveDefinite 矩阵非正定，Cholesky 分解失败
var ErrNotPositiveDefinite = errors.New("mathx: matrix is not positive definite")

// Mean 计算均值
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStd 计算样本标准差（n-1）
func SampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// Covariance 计算样本协方差矩阵
// returns 为按资产组织的收益序列，returns[i] 为第 i 个资产的收益
func Covariance(returns [][]float64) ([][]float64, error) {
	n := len(returns)
	if n == 0 {
		return nil, ErrDimensionMismatch
	}
	obs := len(returns[0])
	if obs < 2 {
		return nil, ErrDimensionMismatch
	}
	for _, r := range returns {
		if len(r) != obs {
			return nil, ErrDimensionMismatch
		}
	}

	means := make([]float64, n)
	for i, r := range returns {
		means[i] = Mean(r)
	}

	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := 0; k < obs; k++ {
				sum += (returns[i][k] - means[i]) * (returns[j][k] - means[j])
			}
			v := sum / float64(obs-1)
			cov[i][j] = v
			cov[j][i] = v
		}
	}
	return cov, nil
}

// Correlation 由协方差矩阵计算相关系数矩阵
func Correlation(cov [][]float64) [][]float64 {
	n := len(cov)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			denom := math.Sqrt(cov[i][i] * cov[j][j])
			if denom == 0 {
				corr[i][j] = 0
				continue
			}
			corr[i][j] = cov[i][j] / denom
		}
	}
	return corr
}

// CovFromCorrelation 由相关系数矩阵与波动率向量重建协方差矩阵
func CovFromCorrelation(corr [][]float64, vols []float64) ([][]float64, error) {
	n := len(corr)
	if len(vols) != n {
		return nil, ErrDimensionMismatch
	}
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
		if len(corr[i]) != n {
			return nil, ErrDimensionMismatch
		}
		for j := 0; j < n; j++ {
			cov[i][j] = corr[i][j] * vols[i] * vols[j]
		}
	}
	return cov, nil
}

// Cholesky 计算对称正定矩阵的下三角分解 L，满足 L * L^T = A
func Cholesky(a [][]float64) ([][]float64, error) {
	n := len(a)
	for _, row := range a {
		if len(row) != n {
			return nil, ErrDimensionMismatch
		}
	}

	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := 0.0
			for k := 0; k < j; k++ {
				sum += l[i][k] * l[j][k]
			}
			if i == j {
				d := a[i][i] - sum
				if d <= 0 {
					return nil, ErrNotPositiveDefinite
				}
				l[i][j] = math.Sqrt(d)
			} else {
				l[i][j] = (a[i][j] - sum) / l[j][j]
			}
		}
	}
	return l, nil
}

// MatVec 计算矩阵与向量乘积
func MatVec(m [][]float64, v []float64) ([]float64, error) {
	out := make([]float64, len(m))
	for i, row := range m {
		if len(row) != len(v) {
			return nil, ErrDimensionMismatch
		}
		sum := 0.0
		for j, x := range row {
			sum += x * v[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Dot 计算向量内积
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
