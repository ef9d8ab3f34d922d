package domain

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

// ComponentVaR 单一资产的风险贡献
type ComponentVaR struct {
	Asset           string          `json:"asset"`
	WeightPercent   float64         `json:"weight_percent"`
	MarginalVaR     float64         `json:"marginal_var"`
	ComponentVaR    decimal.Decimal `json:"component_var"`
	PctContribution float64         `json:"pct_contribution"`
}

// ComponentVaRAnalysis 分解组合 VaR 到各资产
// 结果按 Component VaR 从大到小排序，贡献占比合计 100%
func (e *Engine) ComponentVaRAnalysis(p *Portfolio) ([]ComponentVaR, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}

	cov, err := mathx.Covariance(p.Returns)
	if err != nil {
		return nil, mapMatrixErr(err)
	}
	covW, err := mathx.MatVec(cov, p.Weights)
	if err != nil {
		return nil, mapMatrixErr(err)
	}
	variance, err := mathx.Dot(p.Weights, covW)
	if err != nil {
		return nil, mapMatrixErr(err)
	}
	portfolioStd := math.Sqrt(variance)
	if portfolioStd == 0 {
		return nil, ErrInsufficientData
	}

	z := math.Abs(mathx.NormInv(e.alpha))
	totalVaR := z * portfolioStd * p.Value

	components := make([]ComponentVaR, len(p.Weights))
	for i, w := range p.Weights {
		marginal := z * covW[i] / portfolioStd
		component := w * marginal * p.Value

		asset := ""
		if i < len(p.Symbols) {
			asset = p.Symbols[i]
		}

		components[i] = ComponentVaR{
			Asset:           asset,
			WeightPercent:   w * 100,
			MarginalVaR:     marginal,
			ComponentVaR:    decimal.NewFromFloat(component),
			PctContribution: component / totalVaR * 100,
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].ComponentVaR.GreaterThan(components[j].ComponentVaR)
	})
	return components, nil
}

// IncrementalVaR 增持后的 VaR 变化
type IncrementalVaR struct {
	Asset          string          `json:"asset"`
	CurrentVaR     decimal.Decimal `json:"current_var"`
	NewVaR         decimal.Decimal `json:"new_var"`
	IncrementalVaR decimal.Decimal `json:"incremental_var"`
	PctChange      float64         `json:"pct_change"`
}

// IncrementalVaRAnalysis 计算对指定资产加仓 increment 后的 VaR 增量
// 加仓后权重重新归一化，VaR 用参数法计算
func (e *Engine) IncrementalVaRAnalysis(p *Portfolio, assetIdx int, increment float64) (*IncrementalVaR, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	if assetIdx < 0 || assetIdx >= len(p.Weights) {
		return nil, ErrDimensionMismatch
	}
	if increment == 0 {
		increment = 0.01
	}

	current, err := e.ParametricVaR(p, 1)
	if err != nil {
		return nil, err
	}

	newWeights := make([]float64, len(p.Weights))
	copy(newWeights, p.Weights)
	newWeights[assetIdx] += increment

	sum := 0.0
	for _, w := range newWeights {
		sum += w
	}
	for i := range newWeights {
		newWeights[i] /= sum
	}

	bumped := &Portfolio{
		Symbols: p.Symbols,
		Returns: p.Returns,
		Weights: newWeights,
		Value:   p.Value,
	}
	after, err := e.ParametricVaR(bumped, 1)
	if err != nil {
		return nil, err
	}

	currentVaR := current.VaRDollar.InexactFloat64()
	newVaR := after.VaRDollar.InexactFloat64()

	asset := ""
	if assetIdx < len(p.Symbols) {
		asset = p.Symbols[assetIdx]
	}

	pctChange := 0.0
	if currentVaR != 0 {
		pctChange = (newVaR - currentVaR) / currentVaR * 100
	}

	return &IncrementalVaR{
		Asset:          asset,
		CurrentVaR:     current.VaRDollar,
		NewVaR:         after.VaRDollar,
		IncrementalVaR: decimal.NewFromFloat(newVaR - currentVaR),
		PctChange:      pctChange,
	}, nil
}
