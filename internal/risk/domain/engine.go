package domain

import (
	"errors"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

// TradingDaysPerYear 年交易日数
const TradingDaysPerYear = 252

// 方法名称常量
const (
	MethodHistorical = "Historical"
	MethodParametric = "Parametric"
	MethodMonteCarlo = "Monte Carlo"
)

// Portfolio VaR 计算输入
// Returns 按资产组织，Returns[i] 是第 i 个资产的日收益序列
type Portfolio struct {
	Symbols []string    `json:"symbols"`
	Returns [][]float64 `json:"returns"`
	Weights []float64   `json:"weights"`
	Value   float64     `json:"value"`
}

// VaRResult 单一方法的 VaR 计算结果
type VaRResult struct {
	Method        string          `json:"method"`
	VaRPercent    float64         `json:"var_percent"` // 损失百分比（正数）
	VaRDollar     decimal.Decimal `json:"var_dollar"`
	ESPercent     float64         `json:"es_percent"`
	ESDollar      decimal.Decimal `json:"es_dollar"`
	Confidence    float64         `json:"confidence"`
	HoldingPeriod int             `json:"holding_period"`
	Observations  int             `json:"observations,omitempty"`

	// 参数法补充字段
	AnnualizedVolatility float64 `json:"annualized_volatility,omitempty"` // 百分比
	ZScore               float64 `json:"z_score,omitempty"`

	// 蒙特卡洛补充字段
	Simulations int     `json:"simulations,omitempty"`
	SimMean     float64 `json:"sim_mean,omitempty"` // 模拟收益均值（百分比）
	SimStd      float64 `json:"sim_std,omitempty"`  // 模拟收益标准差（百分比）
}

// Engine VaR 计算引擎
// 支持历史模拟法、参数法与蒙特卡洛法
type Engine struct {
	confidence float64
	alpha      float64
	rng        *rand.Rand
}

// NewEngine 创建 VaR 引擎
func NewEngine(confidenceLevel float64) (*Engine, error) {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return nil, ErrInvalidConfidence
	}
	return &Engine{
		confidence: confidenceLevel,
		alpha:      1 - confidenceLevel,
	}, nil
}

// SetRand 注入随机源，用于可复现的蒙特卡洛模拟
func (e *Engine) SetRand(r *rand.Rand) {
	e.rng = r
}

// Confidence 返回置信水平
func (e *Engine) Confidence() float64 {
	return e.confidence
}

func (e *Engine) validate(p *Portfolio) error {
	n := len(p.Returns)
	if n == 0 || len(p.Weights) != n {
		return ErrDimensionMismatch
	}
	obs := len(p.Returns[0])
	if obs < 2 {
		return ErrInsufficientData
	}
	for _, r := range p.Returns {
		if len(r) != obs {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// portfolioReturns 计算组合日收益序列 r_p(t) = sum_i w_i * r_i(t)
func portfolioReturns(p *Portfolio) []float64 {
	obs := len(p.Returns[0])
	out := make([]float64, obs)
	for t := 0; t < obs; t++ {
		sum := 0.0
		for i, r := range p.Returns {
			sum += p.Weights[i] * r[t]
		}
		out[t] = sum
	}
	return out
}

func meanVector(returns [][]float64) []float64 {
	means := make([]float64, len(returns))
	for i, r := range returns {
		means[i] = mathx.Mean(r)
	}
	return means
}

// HistoricalVaR 历史模拟法，用经验分位数全重估
func (e *Engine) HistoricalVaR(p *Portfolio, holdingPeriod int) (*VaRResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	if holdingPeriod < 1 {
		holdingPeriod = 1
	}

	scale := math.Sqrt(float64(holdingPeriod))
	scaled := portfolioReturns(p)
	for i := range scaled {
		scaled[i] *= scale
	}

	varPct, err := mathx.Percentile(scaled, e.alpha*100)
	if err != nil {
		return nil, err
	}

	// 尾部平均为 ES，尾部为空时退化为 VaR
	var tailSum float64
	tailCount := 0
	for _, r := range scaled {
		if r <= varPct {
			tailSum += r
			tailCount++
		}
	}
	esPct := varPct
	if tailCount > 0 {
		esPct = tailSum / float64(tailCount)
	}

	return &VaRResult{
		Method:        MethodHistorical,
		VaRPercent:    math.Abs(varPct) * 100,
		VaRDollar:     decimal.NewFromFloat(math.Abs(varPct * p.Value)),
		ESPercent:     math.Abs(esPct) * 100,
		ESDollar:      decimal.NewFromFloat(math.Abs(esPct * p.Value)),
		Confidence:    e.confidence,
		HoldingPeriod: holdingPeriod,
		Observations:  len(scaled),
	}, nil
}

// portfolioMoments 返回组合均值与标准差（日频）
func (e *Engine) portfolioMoments(p *Portfolio) (mean, std float64, err error) {
	cov, err := mathx.Covariance(p.Returns)
	if err != nil {
		return 0, 0, mapMatrixErr(err)
	}
	covW, err := mathx.MatVec(cov, p.Weights)
	if err != nil {
		return 0, 0, mapMatrixErr(err)
	}
	variance, err := mathx.Dot(p.Weights, covW)
	if err != nil {
		return 0, 0, mapMatrixErr(err)
	}

	mean, err = mathx.Dot(p.Weights, meanVector(p.Returns))
	if err != nil {
		return 0, 0, mapMatrixErr(err)
	}
	return mean, math.Sqrt(variance), nil
}

// ParametricVaR 参数法（方差协方差法），假设收益服从正态分布
func (e *Engine) ParametricVaR(p *Portfolio, holdingPeriod int) (*VaRResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	if holdingPeriod < 1 {
		holdingPeriod = 1
	}

	mean, std, err := e.portfolioMoments(p)
	if err != nil {
		return nil, err
	}

	scaledStd := std * math.Sqrt(float64(holdingPeriod))
	scaledMean := mean * float64(holdingPeriod)

	z := mathx.NormInv(e.alpha)

	varPct := -(scaledMean + z*scaledStd)
	esMultiplier := mathx.NormPDF(z) / e.alpha
	esPct := -(scaledMean - esMultiplier*scaledStd)

	return &VaRResult{
		Method:               MethodParametric,
		VaRPercent:           varPct * 100,
		VaRDollar:            decimal.NewFromFloat(varPct * p.Value),
		ESPercent:            esPct * 100,
		ESDollar:             decimal.NewFromFloat(esPct * p.Value),
		Confidence:           e.confidence,
		HoldingPeriod:        holdingPeriod,
		Observations:         len(p.Returns[0]),
		AnnualizedVolatility: std * math.Sqrt(TradingDaysPerYear) * 100,
		ZScore:               math.Abs(z),
	}, nil
}

// MonteCarloVaR 蒙特卡洛法，用 Cholesky 分解生成相关收益
func (e *Engine) MonteCarloVaR(p *Portfolio, holdingPeriod, numSimulations int) (*VaRResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	if holdingPeriod < 1 {
		holdingPeriod = 1
	}
	if numSimulations <= 0 {
		numSimulations = 10000
	}

	means := meanVector(p.Returns)
	cov, err := mathx.Covariance(p.Returns)
	if err != nil {
		return nil, mapMatrixErr(err)
	}
	chol, err := mathx.Cholesky(cov)
	if err != nil {
		return nil, mapMatrixErr(err)
	}

	rng := e.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	nAssets := len(means)
	simulated := make([]float64, numSimulations)
	z := make([]float64, nAssets)

	for s := 0; s < numSimulations; s++ {
		periodReturn := 0.0
		for d := 0; d < holdingPeriod; d++ {
			for i := range z {
				z[i] = rng.NormFloat64()
			}
			correlated, _ := mathx.MatVec(chol, z)
			dailyReturn := 0.0
			for i := range correlated {
				dailyReturn += p.Weights[i] * (means[i] + correlated[i])
			}
			periodReturn += dailyReturn
		}
		simulated[s] = periodReturn
	}

	varPct, err := mathx.Percentile(simulated, e.alpha*100)
	if err != nil {
		return nil, err
	}

	var tailSum float64
	tailCount := 0
	for _, r := range simulated {
		if r <= varPct {
			tailSum += r
			tailCount++
		}
	}
	esPct := varPct
	if tailCount > 0 {
		esPct = tailSum / float64(tailCount)
	}

	simMean, _ := stats.Mean(simulated)
	simStd, _ := stats.StandardDeviation(simulated)

	return &VaRResult{
		Method:        MethodMonteCarlo,
		VaRPercent:    math.Abs(varPct) * 100,
		VaRDollar:     decimal.NewFromFloat(math.Abs(varPct * p.Value)),
		ESPercent:     math.Abs(esPct) * 100,
		ESDollar:      decimal.NewFromFloat(math.Abs(esPct * p.Value)),
		Confidence:    e.confidence,
		HoldingPeriod: holdingPeriod,
		Simulations:   numSimulations,
		SimMean:       simMean * 100,
		SimStd:        simStd * 100,
	}, nil
}

// CalculateAll 用三种方法分别计算 VaR
func (e *Engine) CalculateAll(p *Portfolio, holdingPeriod, numSimulations int) ([]*VaRResult, error) {
	historical, err := e.HistoricalVaR(p, holdingPeriod)
	if err != nil {
		return nil, err
	}
	parametric, err := e.ParametricVaR(p, holdingPeriod)
	if err != nil {
		return nil, err
	}
	monteCarlo, err := e.MonteCarloVaR(p, holdingPeriod, numSimulations)
	if err != nil {
		return nil, err
	}
	return []*VaRResult{historical, parametric, monteCarlo}, nil
}

func mapMatrixErr(err error) error {
	switch {
	case errors.Is(err, mathx.ErrNotPositiveDefinite):
		return ErrNotPositiveDefinite
	case errors.Is(err, mathx.ErrDimensionMismatch):
		return ErrDimensionMismatch
	default:
		return err
	}
}
