// Package domain 包含市场数据服务的领域模型
package domain

// InstrumentType 标的类型
type InstrumentType string

const (
	// InstrumentCommodity 农产品期货
	InstrumentCommodity InstrumentType = "Commodity"
	// InstrumentFX 外汇对
	InstrumentFX InstrumentType = "FX"
)

// Instrument 可交易标的
type Instrument struct {
	Symbol string         `json:"symbol"`
	Type   InstrumentType `json:"type"`
	Price  float64        `json:"price"` // 当前价格或汇率
	Vol    float64        `json:"vol"`   // 年化波动率
	Unit   string         `json:"unit"`  // 报价单位
}

// DefaultCommodities 农产品标的基准参数
func DefaultCommodities() []Instrument {
	return []Instrument{
		{Symbol: "CORN", Type: InstrumentCommodity, Price: 450, Vol: 0.25, Unit: "USD/bushel"},
		{Symbol: "SOYBEAN", Type: InstrumentCommodity, Price: 1350, Vol: 0.22, Unit: "USD/bushel"},
		{Symbol: "WHEAT", Type: InstrumentCommodity, Price: 650, Vol: 0.28, Unit: "USD/bushel"},
		{Symbol: "SUGAR", Type: InstrumentCommodity, Price: 22, Vol: 0.30, Unit: "USD/lb"},
		{Symbol: "PALM_OIL", Type: InstrumentCommodity, Price: 3800, Vol: 0.26, Unit: "MYR/tonne"},
		{Symbol: "SOYBEAN_OIL", Type: InstrumentCommodity, Price: 58, Vol: 0.24, Unit: "USD/lb"},
		{Symbol: "SOYBEAN_MEAL", Type: InstrumentCommodity, Price: 380, Vol: 0.23, Unit: "USD/ton"},
	}
}

// DefaultFXPairs 外汇对基准参数
func DefaultFXPairs() []Instrument {
	return []Instrument{
		{Symbol: "USDCNY", Type: InstrumentFX, Price: 7.25, Vol: 0.05},
		{Symbol: "USDSGD", Type: InstrumentFX, Price: 1.34, Vol: 0.04},
		{Symbol: "USDBRL", Type: InstrumentFX, Price: 4.95, Vol: 0.15},
		{Symbol: "USDMYR", Type: InstrumentFX, Price: 4.45, Vol: 0.06},
		{Symbol: "USDINR", Type: InstrumentFX, Price: 83.5, Vol: 0.05},
		{Symbol: "EURUSD", Type: InstrumentFX, Price: 1.08, Vol: 0.07},
		{Symbol: "USDARS", Type: InstrumentFX, Price: 350, Vol: 0.35},
	}
}

// DefaultUniverse 全部标的（农产品在前，外汇在后）
func DefaultUniverse() []Instrument {
	return append(DefaultCommodities(), DefaultFXPairs()...)
}

// CurrentPrices 标的到当前价格的映射
func CurrentPrices(instruments []Instrument) map[string]float64 {
	prices := make(map[string]float64, len(instruments))
	for _, inst := range instruments {
		prices[inst.Symbol] = inst.Price
	}
	return prices
}

// FindInstrument 按符号查找标的
func FindInstrument(instruments []Instrument, symbol string) (Instrument, bool) {
	for _, inst := range instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return Instrument{}, false
}
