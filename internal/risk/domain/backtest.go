package domain

// BacktestPoint 回测中单日的观察结果
type BacktestPoint struct {
	Day          int     `json:"day"`
	VaRPercent   float64 `json:"var_percent"`
	ActualReturn float64 `json:"actual_return"` // 百分比
	Breach       bool    `json:"breach"`
}

// BacktestResult 滚动窗口 VaR 回测结果
type BacktestResult struct {
	Window           int             `json:"window"`
	Confidence       float64         `json:"confidence"`
	Observations     int             `json:"observations"`
	ExpectedBreaches float64         `json:"expected_breaches"`
	ActualBreaches   int             `json:"actual_breaches"`
	BreachRatio      float64         `json:"breach_ratio"`
	Points           []BacktestPoint `json:"points"`
}

// Backtest 用滚动窗口做 VaR 回测
// 每个观察日用前 window 天的收益估计历史 VaR，再与当日实际收益比较
func (e *Engine) Backtest(p *Portfolio, window int) (*BacktestResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	if window < 2 {
		window = TradingDaysPerYear
	}

	obs := len(p.Returns[0])
	if obs <= window {
		return nil, ErrInsufficientData
	}

	actualReturns := portfolioReturns(p)
	points := make([]BacktestPoint, 0, obs-window)
	breaches := 0

	for i := window; i < obs; i++ {
		windowReturns := make([][]float64, len(p.Returns))
		for a, r := range p.Returns {
			windowReturns[a] = r[i-window : i]
		}

		windowPortfolio := &Portfolio{
			Symbols: p.Symbols,
			Returns: windowReturns,
			Weights: p.Weights,
			Value:   1.0, // 归一化，只取百分比
		}
		varResult, err := e.HistoricalVaR(windowPortfolio, 1)
		if err != nil {
			return nil, err
		}

		actual := actualReturns[i]
		breach := actual < -varResult.VaRPercent/100
		if breach {
			breaches++
		}

		points = append(points, BacktestPoint{
			Day:          i,
			VaRPercent:   varResult.VaRPercent,
			ActualReturn: actual * 100,
			Breach:       breach,
		})
	}

	n := len(points)
	return &BacktestResult{
		Window:           window,
		Confidence:       e.confidence,
		Observations:     n,
		ExpectedBreaches: float64(n) * e.alpha,
		ActualBreaches:   breaches,
		BreachRatio:      float64(breaches) / float64(n),
		Points:           points,
	}, nil
}
