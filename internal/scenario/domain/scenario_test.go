package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPositions() []Position {
	return []Position{
		{
			PositionID:   "POS_001",
			Instrument:   "CORN",
			Type:         "Commodity",
			Direction:    "LONG",
			Quantity:     100,
			CurrentPrice: 450,
			NotionalUSD:  100 * 450 * ContractMultiplier,
		},
		{
			PositionID:   "POS_002",
			Instrument:   "SOYBEAN",
			Type:         "Commodity",
			Direction:    "SHORT",
			Quantity:     -50,
			CurrentPrice: 1350,
			NotionalUSD:  50 * 1350 * ContractMultiplier,
		},
		{
			PositionID:   "POS_003",
			Instrument:   "USDBRL",
			Type:         "FX",
			Direction:    "LONG",
			Quantity:     10,
			CurrentPrice: 5.1,
			NotionalUSD:  10_000_000,
		},
	}
}

func testPrices() map[string]float64 {
	return map[string]float64{
		"CORN":    450,
		"SOYBEAN": 1350,
		"USDBRL":  5.1,
	}
}

func TestHistoricalScenariosCatalogue(t *testing.T) {
	scenarios := HistoricalScenarios()
	require.Len(t, scenarios, 6)

	crisis, ok := FindScenario("2008_Financial_Crisis")
	require.True(t, ok)
	assert.Equal(t, -0.40, crisis.Shocks["CORN"])
	assert.Equal(t, 0.40, crisis.Shocks["USDBRL"])
	assert.Len(t, crisis.Shocks, 14)

	ukraine, ok := FindScenario("2022_Ukraine_War")
	require.True(t, ok)
	assert.Equal(t, 0.60, ukraine.Shocks["WHEAT"])

	_, ok = FindScenario("Unknown")
	assert.False(t, ok)
}

func TestApplyScenarioCommodityMultiplier(t *testing.T) {
	positions := testPositions()[:1]
	impacts := ApplyScenario(positions, map[string]float64{"CORN": -0.10}, testPrices())
	require.Len(t, impacts, 1)

	// 100 手 × 450×(-0.10) × 100 合约乘数
	pnl, _ := impacts[0].PnL.Float64()
	assert.InDelta(t, -450_000, pnl, 1e-6)
	assert.InDelta(t, -10, impacts[0].ShockPct, 1e-9)
	assert.InDelta(t, 405, impacts[0].NewPrice, 1e-9)
}

func TestApplyScenarioShortPositionGainsOnDrop(t *testing.T) {
	positions := testPositions()
	impacts := ApplyScenario(positions, map[string]float64{"SOYBEAN": -0.20}, testPrices())

	var soybeanPnL float64
	for _, impact := range impacts {
		if impact.Instrument == "SOYBEAN" {
			soybeanPnL, _ = impact.PnL.Float64()
		}
	}
	// -50 × 1350×(-0.20) × 100
	assert.InDelta(t, 1_350_000, soybeanPnL, 1e-6)
}

func TestApplyScenarioMissingShockIsZero(t *testing.T) {
	impacts := ApplyScenario(testPositions(), map[string]float64{"WHEAT": -0.50}, testPrices())
	for _, impact := range impacts {
		assert.True(t, impact.PnL.IsZero(), "instrument %s should be unaffected", impact.Instrument)
	}
}

func TestApplyScenarioNotionalFallback(t *testing.T) {
	positions := []Position{{
		PositionID:  "POS_010",
		Instrument:  "USDINR",
		Type:        "FX",
		NotionalUSD: 2_000_000,
	}}
	impacts := ApplyScenario(positions, map[string]float64{"USDINR": 0.05}, map[string]float64{"USDINR": 83})
	require.Len(t, impacts, 1)

	pnl, _ := impacts[0].PnL.Float64()
	assert.InDelta(t, 100_000, pnl, 1e-6)
}

func TestRunHistoricalScenariosSortedWorstFirst(t *testing.T) {
	summaries := RunHistoricalScenarios(testPositions(), testPrices())
	require.Len(t, summaries, 6)

	for i := 1; i < len(summaries); i++ {
		assert.True(t, summaries[i-1].TotalPnL.LessThanOrEqual(summaries[i].TotalPnL),
			"summaries must be sorted ascending by total pnl")
	}

	for _, summary := range summaries {
		assert.False(t, summary.MaxLoss.IsPositive(), "max loss aggregates only losing positions")
		assert.Equal(t, 3, summary.PositionsAffected)
	}
}

func TestSensitivityAnalysisDefaultRange(t *testing.T) {
	positions := testPositions()[:1]
	points := SensitivityAnalysis(positions, testPrices(), nil)
	require.Len(t, points, len(DefaultShockRange()))

	for _, point := range points {
		assert.Equal(t, "CORN", point.Instrument)
		// 损益与冲击成正比
		expected := 100 * 450 * point.ShockPct / 100 * ContractMultiplier
		pnl, _ := point.PnL.Float64()
		assert.InDelta(t, expected, pnl, 1e-6)
	}
}

func TestSensitivityAnalysisIsolatesInstruments(t *testing.T) {
	points := SensitivityAnalysis(testPositions(), testPrices(), []float64{-0.10, 0.10})
	// 3 个标的 × 2 档冲击
	require.Len(t, points, 6)

	for _, point := range points {
		assert.False(t, point.PnL.IsZero())
	}
}
