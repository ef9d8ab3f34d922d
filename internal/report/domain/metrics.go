// Package domain 风险报告的领域模型
package domain

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
)

// TradingDaysPerYear 年化交易日数
const TradingDaysPerYear = 252

var (
	// ErrInsufficientData 样本不足以计算统计指标
	ErrInsufficientData = errors.New("report: insufficient data")
	// ErrDimensionMismatch 收益矩阵与权重维度不一致
	ErrDimensionMismatch = errors.New("report: dimension mismatch")
)

// RiskMetrics 组合收益的统计指标汇总
type RiskMetrics struct {
	AnnualizedReturnPct     float64 `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64 `json:"annualized_volatility_pct"`
	SharpeRatio             float64 `json:"sharpe_ratio"`
	SortinoRatio            float64 `json:"sortino_ratio"`
	MaxDrawdownPct          float64 `json:"max_drawdown_pct"`
	Skewness                float64 `json:"skewness"`
	ExcessKurtosis          float64 `json:"excess_kurtosis"`
	Observations            int     `json:"observations"`
}

// PortfolioReturns 按权重聚合各资产收益序列
func PortfolioReturns(returns [][]float64, weights []float64) ([]float64, error) {
	if len(returns) == 0 || len(returns) != len(weights) {
		return nil, ErrDimensionMismatch
	}
	obs := len(returns[0])
	for _, series := range returns {
		if len(series) != obs {
			return nil, ErrDimensionMismatch
		}
	}

	portfolio := make([]float64, obs)
	for i := 0; i < obs; i++ {
		for a := range returns {
			portfolio[i] += weights[a] * returns[a][i]
		}
	}
	return portfolio, nil
}

// CalculateRiskMetrics 计算组合收益的年化指标与高阶矩
// 偏度和峰度使用样本偏差修正
func CalculateRiskMetrics(portfolioReturns []float64, riskFreeRate float64) (*RiskMetrics, error) {
	n := len(portfolioReturns)
	if n < 4 {
		return nil, ErrInsufficientData
	}

	mean, _ := stats.Mean(portfolioReturns)
	std, _ := stats.StandardDeviationSample(portfolioReturns)

	annualizedReturn := mean * TradingDaysPerYear
	annualizedVol := std * math.Sqrt(TradingDaysPerYear)

	sharpe := 0.0
	if annualizedVol > 0 {
		sharpe = (annualizedReturn - riskFreeRate) / annualizedVol
	}

	// 最大回撤基于净值曲线相对历史高点的跌幅
	maxDrawdown := 0.0
	cumulative := 1.0
	peak := 1.0
	for _, r := range portfolioReturns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		drawdown := cumulative/peak - 1
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	skewness, kurtosis := sampleMoments(portfolioReturns, mean)

	sortino := 0.0
	downside := downsideDeviation(portfolioReturns)
	if downside > 0 {
		sortino = (annualizedReturn - riskFreeRate) / (downside * math.Sqrt(TradingDaysPerYear))
	}

	return &RiskMetrics{
		AnnualizedReturnPct:     annualizedReturn * 100,
		AnnualizedVolatilityPct: annualizedVol * 100,
		SharpeRatio:             sharpe,
		SortinoRatio:            sortino,
		MaxDrawdownPct:          maxDrawdown * 100,
		Skewness:                skewness,
		ExcessKurtosis:          kurtosis,
		Observations:            n,
	}, nil
}

// sampleMoments 偏差修正的样本偏度与超额峰度
func sampleMoments(xs []float64, mean float64) (skewness, kurtosis float64) {
	n := float64(len(xs))

	var m2, m3, m4 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n

	if m2 <= 0 {
		return 0, 0
	}

	g1 := m3 / math.Pow(m2, 1.5)
	skewness = g1 * math.Sqrt(n*(n-1)) / (n - 2)

	g2 := m4/(m2*m2) - 3
	kurtosis = (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6)
	return skewness, kurtosis
}

// downsideDeviation 负收益子样本的标准差
func downsideDeviation(xs []float64) float64 {
	negatives := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x < 0 {
			negatives = append(negatives, x)
		}
	}
	if len(negatives) < 2 {
		return 0
	}
	std, _ := stats.StandardDeviationSample(negatives)
	return std
}
