package domain

import "math"

// 隐含波动率求解参数
const (
	impliedVolInitialGuess = 0.3
	impliedVolMin          = 0.001
	impliedVolMax          = 5.0
	impliedVolTolerance    = 1e-6
	impliedVolMaxIter      = 100
)

// ImpliedVolatility 用 Newton-Raphson 法反解隐含波动率
// 迭代退化或用尽时返回最后的估计值与 ErrNotConverged
func ImpliedVolatility(marketPrice, s, k, tte, r float64, optionType OptionType) (float64, error) {
	if marketPrice <= 0 {
		return 0, ErrInvalidInput
	}
	if err := validateInputs(s, k, tte, impliedVolInitialGuess); err != nil {
		return 0, err
	}

	sigma := impliedVolInitialGuess

	for i := 0; i < impliedVolMaxIter; i++ {
		price, err := Price(s, k, tte, r, sigma, optionType)
		if err != nil {
			return sigma, err
		}
		vega := Vega(s, k, tte, r, sigma) * 100 // 换回每单位波动率

		if vega < 1e-10 {
			return sigma, ErrNotConverged
		}

		diff := marketPrice - price
		if math.Abs(diff) < impliedVolTolerance {
			return sigma, nil
		}

		sigma += diff / vega
		sigma = math.Max(impliedVolMin, math.Min(impliedVolMax, sigma))
	}
	return sigma, ErrNotConverged
}

// SurfacePoint 隐含波动率曲面上的一个点
type SurfacePoint struct {
	Strike        float64 `json:"strike"`
	Expiry        float64 `json:"expiry"`
	Moneyness     float64 `json:"moneyness"`
	ImpliedVolPct float64 `json:"implied_vol_pct"`
	Converged     bool    `json:"converged"`
}

// BuildVolSurface 由市场价格矩阵构建隐含波动率曲面
// marketPrices 的维度为 [strikes x expiries]
func BuildVolSurface(s, r float64, strikes, expiries []float64, marketPrices [][]float64, optionType OptionType) ([]SurfacePoint, error) {
	if len(marketPrices) != len(strikes) {
		return nil, ErrInvalidInput
	}

	points := make([]SurfacePoint, 0, len(strikes)*len(expiries))
	for i, k := range strikes {
		if len(marketPrices[i]) != len(expiries) {
			return nil, ErrInvalidInput
		}
		for j, tte := range expiries {
			iv, err := ImpliedVolatility(marketPrices[i][j], s, k, tte, r, optionType)
			points = append(points, SurfacePoint{
				Strike:        k,
				Expiry:        tte,
				Moneyness:     s / k,
				ImpliedVolPct: iv * 100,
				Converged:     err == nil,
			})
		}
	}
	return points, nil
}
