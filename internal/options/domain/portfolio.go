package domain

import (
	"github.com/shopspring/decimal"
)

// Position 期权持仓定价输入
type Position struct {
	OptionID     string     `json:"option_id"`
	Underlying   string     `json:"underlying"`
	OptionType   OptionType `json:"option_type"`
	Strike       float64    `json:"strike"`
	Spot         float64    `json:"spot"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	Volatility   float64    `json:"volatility"`
	RiskFreeRate float64    `json:"risk_free_rate"`
	Contracts    int        `json:"contracts"`
}

// PositionGreeks 单一持仓的希腊字母与标识
type PositionGreeks struct {
	Greeks
	OptionID   string `json:"option_id"`
	Underlying string `json:"underlying"`
}

// PortfolioSummary 组合希腊字母汇总
type PortfolioSummary struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	TotalDelta   float64         `json:"total_delta"`
	TotalGamma   float64         `json:"total_gamma"`
	TotalVega    float64         `json:"total_vega"`
	TotalTheta   float64         `json:"total_theta"`
	TotalRho     float64         `json:"total_rho"`
	NumPositions int             `json:"num_positions"`
}

// PortfolioGreeks 逐仓计算希腊字母并汇总
func PortfolioGreeks(positions []Position) ([]PositionGreeks, *PortfolioSummary, error) {
	results := make([]PositionGreeks, 0, len(positions))
	summary := &PortfolioSummary{TotalValue: decimal.Zero}

	for _, pos := range positions {
		greeks, err := CalculateGreeks(
			pos.Spot, pos.Strike, pos.TimeToExpiry, pos.RiskFreeRate, pos.Volatility,
			pos.OptionType, pos.Contracts, DefaultMultiplier,
		)
		if err != nil {
			return nil, nil, err
		}

		results = append(results, PositionGreeks{
			Greeks:     *greeks,
			OptionID:   pos.OptionID,
			Underlying: pos.Underlying,
		})

		summary.TotalValue = summary.TotalValue.Add(greeks.PositionValue)
		summary.TotalDelta += greeks.Delta
		summary.TotalGamma += greeks.Gamma
		summary.TotalVega += greeks.Vega
		summary.TotalTheta += greeks.Theta
		summary.TotalRho += greeks.Rho
	}
	summary.NumPositions = len(results)

	return results, summary, nil
}

// HedgeResult Delta 对冲需求
type HedgeResult struct {
	OptionDelta    float64         `json:"option_delta"`
	PositionDelta  float64         `json:"position_delta"`
	HedgeUnits     float64         `json:"hedge_units"`
	HedgeValue     decimal.Decimal `json:"hedge_value"`
	HedgeDirection string          `json:"hedge_direction"`
}

// DeltaHedge 计算 Delta 中性对冲所需的标的头寸
func DeltaHedge(s, k, tte, r, sigma float64, optionType OptionType, contracts, multiplier int) (*HedgeResult, error) {
	if err := validateInputs(s, k, tte, sigma); err != nil {
		return nil, err
	}
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}

	delta := Delta(s, k, tte, r, sigma, optionType)
	positionDelta := delta * float64(contracts*multiplier)

	// 对冲方向与头寸 Delta 相反
	hedgeUnits := -positionDelta
	direction := "BUY"
	if hedgeUnits < 0 {
		direction = "SELL"
	}

	return &HedgeResult{
		OptionDelta:    delta,
		PositionDelta:  positionDelta,
		HedgeUnits:     hedgeUnits,
		HedgeValue:     decimal.NewFromFloat(hedgeUnits * s),
		HedgeDirection: direction,
	}, nil
}
