package domain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/pkg/mathx"
)

// TradingDaysPerYear 年交易日数
const TradingDaysPerYear = 252

// ContractMultiplier 农产品期货合约乘数
const ContractMultiplier = 100

// Generator 合成行情生成器
// 用几何布朗运动模拟农产品与外汇的历史价格序列
type Generator struct {
	instruments []Instrument
	rng         *rand.Rand
}

// NewGenerator 创建行情生成器，seed 固定时输出可复现
func NewGenerator(seed int64) *Generator {
	return &Generator{
		instruments: DefaultUniverse(),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Instruments 返回标的清单
func (g *Generator) Instruments() []Instrument {
	return g.instruments
}

// PriceSeries 按 GBM 生成价格序列
// S(t+dt) = S(t) * exp((mu - 0.5*sigma^2)*dt + sigma*sqrt(dt)*Z)
func (g *Generator) PriceSeries(initialPrice, volatility float64, days int, mu float64) []float64 {
	dt := 1.0 / float64(TradingDaysPerYear)
	prices := make([]float64, days)
	prices[0] = initialPrice

	for t := 1; t < days; t++ {
		dW := g.rng.NormFloat64()
		prices[t] = prices[t-1] * math.Exp(
			(mu-0.5*volatility*volatility)*dt+volatility*math.Sqrt(dt)*dW,
		)
	}
	return prices
}

// History 标的历史价格集合
type History struct {
	Symbols []string             `json:"symbols"`
	Prices  map[string][]float64 `json:"prices"`
	Days    int                  `json:"days"`
}

// GenerateHistory 为指定标的生成历史价格
// symbols 为空时使用全部标的
func (g *Generator) GenerateHistory(symbols []string, days int) (*History, error) {
	if days < 2 {
		return nil, fmt.Errorf("days must be at least 2, got %d", days)
	}
	if len(symbols) == 0 {
		for _, inst := range g.instruments {
			symbols = append(symbols, inst.Symbol)
		}
	}

	prices := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		inst, ok := FindInstrument(g.instruments, symbol)
		if !ok {
			return nil, fmt.Errorf("unknown instrument: %s", symbol)
		}
		prices[symbol] = g.PriceSeries(inst.Price, inst.Vol, days, 0)
	}

	return &History{
		Symbols: symbols,
		Prices:  prices,
		Days:    days,
	}, nil
}

// LogReturns 由价格序列计算对数收益
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return returns
}

// ReturnsMatrix 按标的组织的收益矩阵，行序与 Symbols 一致
func (h *History) ReturnsMatrix() [][]float64 {
	matrix := make([][]float64, len(h.Symbols))
	for i, symbol := range h.Symbols {
		matrix[i] = LogReturns(h.Prices[symbol])
	}
	return matrix
}

// CorrelationMatrix 由收益矩阵计算相关系数矩阵
func CorrelationMatrix(returns [][]float64) ([][]float64, error) {
	cov, err := mathx.Covariance(returns)
	if err != nil {
		return nil, err
	}
	return mathx.Correlation(cov), nil
}

// Position 组合持仓
type Position struct {
	PositionID   string          `json:"position_id"`
	Instrument   string          `json:"instrument"`
	Type         InstrumentType  `json:"type"`
	Direction    string          `json:"direction"` // LONG 或 SHORT
	Quantity     float64         `json:"quantity"`  // 多头为正，空头为负
	EntryPrice   float64         `json:"entry_price"`
	CurrentPrice float64         `json:"current_price"`
	NotionalUSD  decimal.Decimal `json:"notional_usd"`
	Desk         string          `json:"desk"`
}

var positionDesks = []string{"APAC_Grains", "APAC_Oilseeds", "LATAM_Sugar", "FX_Hedging"}

// GeneratePositions 生成样例组合持仓
// 农产品持仓以合约数计，外汇持仓以百万美元计
func (g *Generator) GeneratePositions(numPositions int) []Position {
	positions := make([]Position, 0, numPositions)

	for i := 0; i < numPositions; i++ {
		inst := g.instruments[g.rng.Intn(len(g.instruments))]
		direction := "LONG"
		sign := 1.0
		if g.rng.Intn(2) == 1 {
			direction = "SHORT"
			sign = -1.0
		}

		var quantity float64
		var notional float64
		if inst.Type == InstrumentCommodity {
			quantity = float64(10+g.rng.Intn(490)) * sign
			notional = math.Abs(quantity) * inst.Price * ContractMultiplier
		} else {
			quantity = float64(1+g.rng.Intn(49)) * sign
			notional = math.Abs(quantity) * 1_000_000
		}

		positions = append(positions, Position{
			PositionID:   fmt.Sprintf("POS_%03d", i+1),
			Instrument:   inst.Symbol,
			Type:         inst.Type,
			Direction:    direction,
			Quantity:     quantity,
			EntryPrice:   inst.Price * (1 + (g.rng.Float64()*0.10 - 0.05)),
			CurrentPrice: inst.Price,
			NotionalUSD:  decimal.NewFromFloat(notional),
			Desk:         positionDesks[g.rng.Intn(len(positionDesks))],
		})
	}
	return positions
}

// OptionPosition 期权持仓
type OptionPosition struct {
	OptionID     string  `json:"option_id"`
	Underlying   string  `json:"underlying"`
	OptionType   string  `json:"option_type"` // CALL 或 PUT
	Strike       float64 `json:"strike"`
	Spot         float64 `json:"spot"`
	TimeToExpiry float64 `json:"time_to_expiry"` // 年
	Volatility   float64 `json:"volatility"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	Contracts    int     `json:"contracts"` // 多头为正，空头为负
	Desk         string  `json:"desk"`
}

var optionDesks = []string{"APAC_Options", "Hedging"}

// GenerateOptions 生成样例农产品期权组合
func (g *Generator) GenerateOptions(numOptions int) []OptionPosition {
	commodities := DefaultCommodities()
	options := make([]OptionPosition, 0, numOptions)

	for i := 0; i < numOptions; i++ {
		inst := commodities[g.rng.Intn(len(commodities))]

		optionType := "CALL"
		if g.rng.Intn(2) == 1 {
			optionType = "PUT"
		}

		// 行权价围绕现价 85% 到 115%
		strike := inst.Price * (0.85 + g.rng.Float64()*0.30)
		// 到期 1 到 12 个月
		tte := float64(20+g.rng.Intn(232)) / float64(TradingDaysPerYear)

		contracts := (10 + g.rng.Intn(190))
		if g.rng.Intn(2) == 1 {
			contracts = -contracts
		}

		options = append(options, OptionPosition{
			OptionID:     fmt.Sprintf("OPT_%03d", i+1),
			Underlying:   inst.Symbol,
			OptionType:   optionType,
			Strike:       math.Round(strike*100) / 100,
			Spot:         inst.Price,
			TimeToExpiry: math.Round(tte*1000) / 1000,
			Volatility:   inst.Vol,
			RiskFreeRate: 0.05,
			Contracts:    contracts,
			Desk:         optionDesks[g.rng.Intn(len(optionDesks))],
		})
	}
	return options
}

// TotalNotional 组合总名义价值
func TotalNotional(positions []Position) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.NotionalUSD)
	}
	return total
}
