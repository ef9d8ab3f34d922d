// Package domain 包含期权定价与希腊字母的领域模型
package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

// OptionType 期权类型
type OptionType string

const (
	// Call 看涨期权
	Call OptionType = "CALL"
	// Put 看跌期权
	Put OptionType = "PUT"
)

// DefaultMultiplier 农产品期权合约乘数
const DefaultMultiplier = 100

var (
	// ErrInvalidInput 定价参数非法
	ErrInvalidInput = errors.New("options: invalid pricing input")
	// ErrNotConverged 隐含波动率迭代未收敛
	ErrNotConverged = errors.New("options: implied volatility did not converge")
)

// ParseOptionType 解析期权类型，未知类型按 PUT 以外处理为错误
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "CALL", "call", "Call":
		return Call, nil
	case "PUT", "put", "Put":
		return Put, nil
	default:
		return "", ErrInvalidInput
	}
}

func validateInputs(s, k, tte, sigma float64) error {
	if s <= 0 || k <= 0 || tte <= 0 || sigma <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// d1 Black-Scholes 的 d1 参数
func d1(s, k, tte, r, sigma float64) float64 {
	return (math.Log(s/k) + (r+0.5*sigma*sigma)*tte) / (sigma * math.Sqrt(tte))
}

// d2 Black-Scholes 的 d2 参数
func d2(s, k, tte, r, sigma float64) float64 {
	return d1(s, k, tte, r, sigma) - sigma*math.Sqrt(tte)
}

// Price 计算 Black-Scholes 欧式期权价格
func Price(s, k, tte, r, sigma float64, optionType OptionType) (float64, error) {
	if err := validateInputs(s, k, tte, sigma); err != nil {
		return 0, err
	}

	dOne := d1(s, k, tte, r, sigma)
	dTwo := d2(s, k, tte, r, sigma)

	if optionType == Call {
		return s*mathx.NormCDF(dOne) - k*math.Exp(-r*tte)*mathx.NormCDF(dTwo), nil
	}
	return k*math.Exp(-r*tte)*mathx.NormCDF(-dTwo) - s*mathx.NormCDF(-dOne), nil
}

// Delta 标的价格敏感度
func Delta(s, k, tte, r, sigma float64, optionType OptionType) float64 {
	dOne := d1(s, k, tte, r, sigma)
	if optionType == Call {
		return mathx.NormCDF(dOne)
	}
	return mathx.NormCDF(dOne) - 1
}

// Gamma Delta 的变化率，看涨看跌相同
func Gamma(s, k, tte, r, sigma float64) float64 {
	dOne := d1(s, k, tte, r, sigma)
	return mathx.NormPDF(dOne) / (s * sigma * math.Sqrt(tte))
}

// Vega 波动率敏感度，按 1 个百分点波动率变化计
func Vega(s, k, tte, r, sigma float64) float64 {
	dOne := d1(s, k, tte, r, sigma)
	return s * mathx.NormPDF(dOne) * math.Sqrt(tte) / 100
}

// Theta 时间价值衰减，按每日计
func Theta(s, k, tte, r, sigma float64, optionType OptionType) float64 {
	dOne := d1(s, k, tte, r, sigma)
	dTwo := d2(s, k, tte, r, sigma)

	firstTerm := -(s * mathx.NormPDF(dOne) * sigma) / (2 * math.Sqrt(tte))

	var secondTerm float64
	if optionType == Call {
		secondTerm = -r * k * math.Exp(-r*tte) * mathx.NormCDF(dTwo)
	} else {
		secondTerm = r * k * math.Exp(-r*tte) * mathx.NormCDF(-dTwo)
	}
	return (firstTerm + secondTerm) / 365
}

// Rho 利率敏感度，按 1 个百分点利率变化计
func Rho(s, k, tte, r, sigma float64, optionType OptionType) float64 {
	dTwo := d2(s, k, tte, r, sigma)
	if optionType == Call {
		return k * tte * math.Exp(-r*tte) * mathx.NormCDF(dTwo) / 100
	}
	return -k * tte * math.Exp(-r*tte) * mathx.NormCDF(-dTwo) / 100
}

// Greeks 单一期权头寸的希腊字母，已按头寸规模放大
type Greeks struct {
	OptionType    OptionType      `json:"option_type"`
	Spot          float64         `json:"spot"`
	Strike        float64         `json:"strike"`
	TimeToExpiry  float64         `json:"time_to_expiry"`
	VolatilityPct float64         `json:"volatility_pct"`
	Price         float64         `json:"price"`
	PositionValue decimal.Decimal `json:"position_value"`
	Delta         float64         `json:"delta"`
	Gamma         float64         `json:"gamma"`
	Vega          float64         `json:"vega"`
	Theta         float64         `json:"theta"`
	Rho           float64         `json:"rho"`
	Contracts     int             `json:"contracts"`
}

// CalculateGreeks 计算期权头寸的价格与全部希腊字母
// positionSize = contracts * multiplier，空头为负
func CalculateGreeks(s, k, tte, r, sigma float64, optionType OptionType, contracts, multiplier int) (*Greeks, error) {
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	price, err := Price(s, k, tte, r, sigma, optionType)
	if err != nil {
		return nil, err
	}

	positionSize := float64(contracts * multiplier)

	return &Greeks{
		OptionType:    optionType,
		Spot:          s,
		Strike:        k,
		TimeToExpiry:  tte,
		VolatilityPct: sigma * 100,
		Price:         price,
		PositionValue: decimal.NewFromFloat(price * positionSize),
		Delta:         Delta(s, k, tte, r, sigma, optionType) * positionSize,
		Gamma:         Gamma(s, k, tte, r, sigma) * positionSize,
		Vega:          Vega(s, k, tte, r, sigma) * positionSize,
		Theta:         Theta(s, k, tte, r, sigma, optionType) * positionSize,
		Rho:           Rho(s, k, tte, r, sigma, optionType) * positionSize,
		Contracts:     contracts,
	}, nil
}
