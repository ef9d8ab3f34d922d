package domain

import (
	"errors"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

var (
	// ErrNotConverged 迭代求解在限定次数内未收敛
	ErrNotConverged = errors.New("scenario: search did not converge")
	// ErrInsufficientData 样本不足以估计相关性
	ErrInsufficientData = errors.New("scenario: insufficient data")
	// ErrInvalidInput 输入参数非法
	ErrInvalidInput = errors.New("scenario: invalid input")
)

const tradingDaysPerYear = 252

// CorrelationStressResult 相关性压力测试结果
type CorrelationStressResult struct {
	CorrelationShockPct   float64         `json:"correlation_shock_pct"`
	OriginalVolatilityPct float64         `json:"original_volatility_pct"` // 年化组合波动率
	StressedVolatilityPct float64         `json:"stressed_volatility_pct"`
	OriginalVaR           decimal.Decimal `json:"original_var"`
	StressedVaR           decimal.Decimal `json:"stressed_var"`
	VaRIncrease           decimal.Decimal `json:"var_increase"`
	VaRIncreasePct        float64         `json:"var_increase_pct"`
}

// CorrelationStress 把相关系数整体放大后重新计算 99% VaR
// shock 为非对角相关系数的相对变化，放大后截断在 [-1, 1]
func CorrelationStress(returns [][]float64, weights []float64, portfolioValue, shock float64) (*CorrelationStressResult, error) {
	n := len(returns)
	if n == 0 || len(weights) != n {
		return nil, ErrInvalidInput
	}
	for _, series := range returns {
		if len(series) < 2 {
			return nil, ErrInsufficientData
		}
	}

	cov, err := mathx.Covariance(returns)
	if err != nil {
		return nil, ErrInsufficientData
	}
	corr := mathx.Correlation(cov)

	stressedCorr := make([][]float64, n)
	for i := 0; i < n; i++ {
		stressedCorr[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				stressedCorr[i][j] = 1
				continue
			}
			c := corr[i][j] * (1 + shock)
			stressedCorr[i][j] = math.Max(-1, math.Min(1, c))
		}
	}

	vols := make([]float64, n)
	for i := 0; i < n; i++ {
		vols[i] = math.Sqrt(cov[i][i])
	}
	stressedCov, err := mathx.CovFromCorrelation(stressedCorr, vols)
	if err != nil {
		return nil, ErrInvalidInput
	}

	originalVol := portfolioVol(cov, weights)
	stressedVol := portfolioVol(stressedCov, weights)

	// 99% 单尾分位数
	z := math.Abs(mathx.NormInv(0.01))
	originalVaR := z * originalVol * portfolioValue
	stressedVaR := z * stressedVol * portfolioValue

	increasePct := 0.0
	if originalVaR != 0 {
		increasePct = (stressedVaR - originalVaR) / originalVaR * 100
	}

	return &CorrelationStressResult{
		CorrelationShockPct:   shock * 100,
		OriginalVolatilityPct: originalVol * math.Sqrt(tradingDaysPerYear) * 100,
		StressedVolatilityPct: stressedVol * math.Sqrt(tradingDaysPerYear) * 100,
		OriginalVaR:           decimal.NewFromFloat(originalVaR),
		StressedVaR:           decimal.NewFromFloat(stressedVaR),
		VaRIncrease:           decimal.NewFromFloat(stressedVaR - originalVaR),
		VaRIncreasePct:        increasePct,
	}, nil
}

func portfolioVol(cov [][]float64, weights []float64) float64 {
	cw, _ := mathx.MatVec(cov, weights)
	variance, _ := mathx.Dot(weights, cw)
	return math.Sqrt(variance)
}

// LiquidityImpact 单一持仓的流动性压力结果
type LiquidityImpact struct {
	Instrument       string          `json:"instrument"`
	NotionalUSD      float64         `json:"notional_usd"`
	DaysToLiquidate  float64         `json:"days_to_liquidate"`
	ParticipationPct float64         `json:"participation_pct"`
	LiquidationCost  decimal.Decimal `json:"liquidation_cost"`
	Illiquid         bool            `json:"illiquid"`
}

const (
	maxLiquidationDays    = 999
	dailyCapacityFraction = 0.10 // 可吃掉日均成交量的比例
	impactCoefficient     = 0.1
)

// LiquidityStress 估算清仓天数与冲击成本
// adv 为各标的的日均成交额；缺失视为完全不可变现
func LiquidityStress(positions []Position, adv map[string]float64, targetDays float64) []LiquidityImpact {
	if targetDays <= 0 {
		targetDays = 5
	}

	impacts := make([]LiquidityImpact, 0, len(positions))
	for _, pos := range positions {
		notional := math.Abs(pos.NotionalUSD)
		volume, ok := adv[pos.Instrument]

		if !ok || volume <= 0 {
			impacts = append(impacts, LiquidityImpact{
				Instrument:      pos.Instrument,
				NotionalUSD:     notional,
				DaysToLiquidate: maxLiquidationDays,
				LiquidationCost: decimal.Zero,
				Illiquid:        true,
			})
			continue
		}

		dailyCapacity := volume * dailyCapacityFraction
		days := notional / dailyCapacity
		if days > maxLiquidationDays {
			days = maxLiquidationDays
		}

		participation := notional / (volume * targetDays)
		impact := participation * impactCoefficient
		cost := notional * impact

		impacts = append(impacts, LiquidityImpact{
			Instrument:       pos.Instrument,
			NotionalUSD:      notional,
			DaysToLiquidate:  days,
			ParticipationPct: participation * 100,
			LiquidationCost:  decimal.NewFromFloat(cost),
			Illiquid:         days > targetDays,
		})
	}

	sort.Slice(impacts, func(i, j int) bool {
		return impacts[i].DaysToLiquidate > impacts[j].DaysToLiquidate
	})
	return impacts
}

// ReverseStressResult 反向压力测试结果
type ReverseStressResult struct {
	UniformShockPct float64         `json:"uniform_shock_pct"`
	AchievedPnL     decimal.Decimal `json:"achieved_pnl"`
	TargetPnL       decimal.Decimal `json:"target_pnl"`
	Difference      decimal.Decimal `json:"difference"`
	Iterations      int             `json:"iterations"`
}

const (
	reverseStressInitialShock = 0.10
	reverseStressMaxIter      = 100
)

// ReverseStress 反推达到目标亏损所需的统一向下冲击
// targetLoss 为负数；未收敛时返回 ErrNotConverged
func ReverseStress(positions []Position, currentPrices map[string]float64, targetLoss float64) (*ReverseStressResult, error) {
	if targetLoss >= 0 {
		return nil, ErrInvalidInput
	}

	tolerance := math.Abs(targetLoss) * 0.01
	shock := reverseStressInitialShock

	for iter := 1; iter <= reverseStressMaxIter; iter++ {
		shocks := make(map[string]float64, len(positions))
		for _, pos := range positions {
			shocks[pos.Instrument] = -shock
		}

		impacts := ApplyScenario(positions, shocks, currentPrices)
		pnl := 0.0
		for _, impact := range impacts {
			v, _ := impact.PnL.Float64()
			pnl += v
		}

		if math.Abs(pnl-targetLoss) < tolerance {
			return &ReverseStressResult{
				UniformShockPct: shock * 100,
				AchievedPnL:     decimal.NewFromFloat(pnl),
				TargetPnL:       decimal.NewFromFloat(targetLoss),
				Difference:      decimal.NewFromFloat(pnl - targetLoss),
				Iterations:      iter,
			}, nil
		}

		if pnl > targetLoss {
			shock *= 1.1
		} else {
			shock *= 0.9
		}
	}

	return nil, ErrNotConverged
}
