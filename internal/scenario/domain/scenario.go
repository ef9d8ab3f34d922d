// Package domain 包含情景分析与压力测试的领域模型
package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ContractMultiplier 农产品期货合约乘数
const ContractMultiplier = 100

// Position 压力测试用的持仓视图
type Position struct {
	PositionID   string  `json:"position_id"`
	Instrument   string  `json:"instrument"`
	Type         string  `json:"type"` // Commodity 或 FX
	Direction    string  `json:"direction"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"current_price"`
	NotionalUSD  float64 `json:"notional_usd"`
}

// Scenario 压力情景，shock 为价格变动比例
type Scenario struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Shocks      map[string]float64 `json:"shocks"`
}

// HistoricalScenarios 预置的历史压力情景
// 覆盖农产品与相关汇率的历史极端行情
func HistoricalScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "2008_Financial_Crisis",
			Description: "Global financial crisis - commodity collapse",
			Shocks: map[string]float64{
				"CORN": -0.40, "SOYBEAN": -0.35, "WHEAT": -0.45, "SUGAR": -0.50,
				"PALM_OIL": -0.55, "SOYBEAN_OIL": -0.45, "SOYBEAN_MEAL": -0.35,
				"USDCNY": 0.02, "USDSGD": 0.08, "USDBRL": 0.40, "USDMYR": 0.10,
				"USDINR": 0.20, "EURUSD": -0.15, "USDARS": 0.25,
			},
		},
		{
			Name:        "2020_COVID_Crash",
			Description: "COVID-19 market crash - March 2020",
			Shocks: map[string]float64{
				"CORN": -0.15, "SOYBEAN": -0.10, "WHEAT": -0.08, "SUGAR": -0.25,
				"PALM_OIL": -0.30, "SOYBEAN_OIL": -0.20, "SOYBEAN_MEAL": -0.12,
				"USDCNY": 0.03, "USDSGD": 0.06, "USDBRL": 0.25, "USDMYR": 0.08,
				"USDINR": 0.05, "EURUSD": -0.05, "USDARS": 0.15,
			},
		},
		{
			Name:        "2022_Ukraine_War",
			Description: "Russia-Ukraine conflict - grain supply shock",
			Shocks: map[string]float64{
				"CORN": 0.35, "SOYBEAN": 0.25, "WHEAT": 0.60, "SUGAR": 0.15,
				"PALM_OIL": 0.45, "SOYBEAN_OIL": 0.30, "SOYBEAN_MEAL": 0.20,
				"USDCNY": 0.02, "USDSGD": 0.03, "USDBRL": -0.05, "USDMYR": 0.04,
				"USDINR": 0.06, "EURUSD": -0.12, "USDARS": 0.30,
			},
		},
		{
			Name:        "2011_Commodity_Spike",
			Description: "Commodity super-cycle peak",
			Shocks: map[string]float64{
				"CORN": 0.45, "SOYBEAN": 0.40, "WHEAT": 0.50, "SUGAR": 0.80,
				"PALM_OIL": 0.35, "SOYBEAN_OIL": 0.40, "SOYBEAN_MEAL": 0.35,
				"USDCNY": -0.05, "USDSGD": -0.08, "USDBRL": -0.15, "USDMYR": -0.10,
				"USDINR": -0.05, "EURUSD": 0.10, "USDARS": 0.05,
			},
		},
		{
			Name:        "China_Demand_Shock",
			Description: "Major Chinese demand reduction",
			Shocks: map[string]float64{
				"CORN": -0.25, "SOYBEAN": -0.35, "WHEAT": -0.15, "SUGAR": -0.10,
				"PALM_OIL": -0.20, "SOYBEAN_OIL": -0.25, "SOYBEAN_MEAL": -0.30,
				"USDCNY": 0.08, "USDSGD": 0.05, "USDBRL": 0.15, "USDMYR": 0.06,
				"USDINR": 0.04, "EURUSD": 0.05, "USDARS": 0.10,
			},
		},
		{
			Name:        "El_Nino_Event",
			Description: "Severe El Nino weather pattern",
			Shocks: map[string]float64{
				"CORN": -0.20, "SOYBEAN": 0.30, "WHEAT": 0.15, "SUGAR": 0.40,
				"PALM_OIL": 0.35, "SOYBEAN_OIL": 0.25, "SOYBEAN_MEAL": 0.20,
				"USDCNY": 0.01, "USDSGD": 0.02, "USDBRL": 0.10, "USDMYR": 0.05,
				"USDINR": 0.03, "EURUSD": -0.02, "USDARS": 0.08,
			},
		},
	}
}

// FindScenario 按名称查找预置情景
func FindScenario(name string) (Scenario, bool) {
	for _, s := range HistoricalScenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// PositionImpact 单一持仓在情景下的损益
type PositionImpact struct {
	PositionID   string          `json:"position_id"`
	Instrument   string          `json:"instrument"`
	Direction    string          `json:"direction"`
	CurrentPrice float64         `json:"current_price"`
	ShockPct     float64         `json:"shock_pct"`
	NewPrice     float64         `json:"new_price"`
	PnL          decimal.Decimal `json:"pnl"`
}

// ApplyScenario 把情景冲击套用到持仓上
// 没有冲击定义的标的损益为零；农产品持仓按合约乘数放大
func ApplyScenario(positions []Position, shocks map[string]float64, currentPrices map[string]float64) []PositionImpact {
	impacts := make([]PositionImpact, 0, len(positions))

	for _, pos := range positions {
		shock := shocks[pos.Instrument]

		price, ok := currentPrices[pos.Instrument]
		if !ok {
			price = pos.CurrentPrice
		}

		priceChange := price * shock

		var pnl float64
		if pos.Quantity != 0 {
			pnl = pos.Quantity * priceChange
			if pos.Type == "Commodity" {
				pnl *= ContractMultiplier
			}
		} else {
			pnl = pos.NotionalUSD * shock
		}

		impacts = append(impacts, PositionImpact{
			PositionID:   pos.PositionID,
			Instrument:   pos.Instrument,
			Direction:    pos.Direction,
			CurrentPrice: price,
			ShockPct:     shock * 100,
			NewPrice:     price * (1 + shock),
			PnL:          decimal.NewFromFloat(pnl),
		})
	}
	return impacts
}

// ScenarioSummary 单一情景的汇总结果
type ScenarioSummary struct {
	Scenario          string          `json:"scenario"`
	Description       string          `json:"description"`
	TotalPnL          decimal.Decimal `json:"total_pnl"`
	MaxLoss           decimal.Decimal `json:"max_loss"` // 受损持仓的损益合计
	PositionsAffected int             `json:"positions_affected"`
}

// RunHistoricalScenarios 对组合运行全部历史情景
// 结果按总损益从坏到好排序
func RunHistoricalScenarios(positions []Position, currentPrices map[string]float64) []ScenarioSummary {
	summaries := make([]ScenarioSummary, 0, len(HistoricalScenarios()))

	for _, scenario := range HistoricalScenarios() {
		impacts := ApplyScenario(positions, scenario.Shocks, currentPrices)

		totalPnL := decimal.Zero
		maxLoss := decimal.Zero
		affected := 0
		for _, impact := range impacts {
			totalPnL = totalPnL.Add(impact.PnL)
			if impact.PnL.IsNegative() {
				maxLoss = maxLoss.Add(impact.PnL)
			}
			if !impact.PnL.IsZero() {
				affected++
			}
		}

		summaries = append(summaries, ScenarioSummary{
			Scenario:          scenario.Name,
			Description:       scenario.Description,
			TotalPnL:          totalPnL,
			MaxLoss:           maxLoss,
			PositionsAffected: affected,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalPnL.LessThan(summaries[j].TotalPnL)
	})
	return summaries
}

// SensitivityPoint 敏感性分析中的一个观测
type SensitivityPoint struct {
	Instrument string          `json:"instrument"`
	ShockPct   float64         `json:"shock_pct"`
	PnL        decimal.Decimal `json:"pnl"`
}

// DefaultShockRange 默认敏感性冲击档位
func DefaultShockRange() []float64 {
	return []float64{-0.20, -0.15, -0.10, -0.05, 0.05, 0.10, 0.15, 0.20}
}

// SensitivityAnalysis 对每个标的单独施加各档冲击
func SensitivityAnalysis(positions []Position, currentPrices map[string]float64, shockRange []float64) []SensitivityPoint {
	if len(shockRange) == 0 {
		shockRange = DefaultShockRange()
	}

	seen := make(map[string]bool)
	instruments := make([]string, 0)
	for _, pos := range positions {
		if !seen[pos.Instrument] {
			seen[pos.Instrument] = true
			instruments = append(instruments, pos.Instrument)
		}
	}

	points := make([]SensitivityPoint, 0, len(instruments)*len(shockRange))
	for _, instrument := range instruments {
		for _, shock := range shockRange {
			impacts := ApplyScenario(positions, map[string]float64{instrument: shock}, currentPrices)

			pnl := decimal.Zero
			for _, impact := range impacts {
				if impact.Instrument == instrument {
					pnl = pnl.Add(impact.PnL)
				}
			}
			points = append(points, SensitivityPoint{
				Instrument: instrument,
				ShockPct:   shock * 100,
				PnL:        pnl,
			})
		}
	}
	return points
}
