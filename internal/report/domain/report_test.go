package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDashboard() *Dashboard {
	return &Dashboard{
		ReportDate:   "2026-08-29",
		Organization: "APAC Commodities Desk",
		VaRLimitPct:  0.05,
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567", formatMoney(1234567.4))
	assert.Equal(t, "$-1,234,568", formatMoney(-1234567.5))
	assert.Equal(t, "$0", formatMoney(0.2))
	assert.Equal(t, "$999", formatMoney(999))
	assert.Equal(t, "$1,000", formatMoney(999.6))
}

func TestExecutiveSummarySections(t *testing.T) {
	d := testDashboard()
	summary := d.ExecutiveSummary(
		[]VaRLine{
			{Method: "Historical", VaRDollar: 1_200_000, VaRPercent: 2.4, ESDollar: 1_500_000},
			{Method: "Parametric", VaRDollar: 1_100_000, VaRPercent: 2.2, ESDollar: 1_300_000},
		},
		50_000_000,
		[]ScenarioLine{
			{Name: "2008_Financial_Crisis", TotalPnL: -8_000_000},
			{Name: "El_Nino_Event", TotalPnL: 2_000_000},
		},
	)

	assert.Contains(t, summary, "MARKET RISK EXECUTIVE SUMMARY")
	assert.Contains(t, summary, "Report Date: 2026-08-29")
	assert.Contains(t, summary, "Total Portfolio Value: $50,000,000")
	assert.Contains(t, summary, "Historical VaR:")
	assert.Contains(t, summary, "- VaR: $1,200,000 (2.40%)")
	assert.Contains(t, summary, "2008_Financial_Crisis")
	assert.Contains(t, summary, "- P&L Impact: $-8,000,000")

	// 限额 5% = 2.5M，最大 VaR 1.2M → 48% GREEN
	assert.Contains(t, summary, "VaR Limit: $2,500,000")
	assert.Contains(t, summary, "Utilization: 48.0% [GREEN]")
}

func TestExecutiveSummaryLimitStatusRed(t *testing.T) {
	d := testDashboard()
	summary := d.ExecutiveSummary(
		[]VaRLine{{Method: "Historical", VaRDollar: 3_000_000, VaRPercent: 6.0, ESDollar: 3_500_000}},
		50_000_000,
		nil,
	)
	assert.Contains(t, summary, "[RED]")
}

func TestPositionReportGrouping(t *testing.T) {
	d := testDashboard()
	report := d.PositionReport(
		[]PositionLine{
			{Desk: "APAC_Grains", Type: "Commodity", Direction: "LONG", NotionalUSD: 10_000_000},
			{Desk: "APAC_Grains", Type: "Commodity", Direction: "SHORT", NotionalUSD: 5_000_000},
			{Desk: "FX_Hedging", Type: "FX", Direction: "LONG", NotionalUSD: 8_000_000},
		},
		[]ComponentLine{
			{Asset: "CORN", ComponentVaR: 900_000, PctContribution: 60},
			{Asset: "USDBRL", ComponentVaR: 600_000, PctContribution: 40},
		},
	)

	assert.Contains(t, report, "POSITION RISK REPORT")
	assert.Contains(t, report, "APAC_Grains:")
	assert.Contains(t, report, "- Positions: 2")
	assert.Contains(t, report, "- Notional: $15,000,000")
	assert.Contains(t, report, "FX:")
	assert.Contains(t, report, "TOP RISK CONTRIBUTORS")
	assert.Contains(t, report, "CORN:")
	assert.Contains(t, report, "LONG: $18,000,000")
	assert.Contains(t, report, "SHORT: $5,000,000")
}

func TestGreeksReportFlags(t *testing.T) {
	d := testDashboard()
	report := d.GreeksReport(
		[]GreeksLine{{Underlying: "SOYBEAN", Delta: 15_000, Gamma: -150, Vega: 120_000, Theta: -12_000}},
		&GreeksSummary{
			TotalValue: 2_000_000,
			TotalDelta: 15_000,
			TotalGamma: -150,
			TotalVega:  120_000,
			TotalTheta: -12_000,
			TotalRho:   30_000,
		},
	)

	assert.Contains(t, report, "OPTIONS GREEKS REPORT")
	assert.Contains(t, report, "Total Delta: 15,000")
	assert.Contains(t, report, "[!] HIGH DELTA EXPOSURE")
	assert.Contains(t, report, "[!] NEGATIVE GAMMA")
	assert.Contains(t, report, "[!] HIGH VEGA EXPOSURE")
	assert.Contains(t, report, "[!] HIGH TIME DECAY - $12,000/day")
}

func TestGreeksReportNoFlagsWhenWithinLimits(t *testing.T) {
	d := testDashboard()
	report := d.GreeksReport(
		[]GreeksLine{{Underlying: "CORN", Delta: 100, Gamma: 1, Vega: 500, Theta: -50}},
		&GreeksSummary{TotalDelta: 100, TotalGamma: 1, TotalVega: 500, TotalTheta: -50},
	)
	assert.NotContains(t, report, "[!]")
}

func TestVaRAttributionBarsAndConcentration(t *testing.T) {
	d := testDashboard()
	report := d.VaRAttribution([]ComponentLine{
		{Asset: "CORN", ComponentVaR: 500_000, PctContribution: 50},
		{Asset: "WHEAT", ComponentVaR: 300_000, PctContribution: 30},
		{Asset: "SUGAR", ComponentVaR: 200_000, PctContribution: 20},
	})

	assert.Contains(t, report, "Total Portfolio VaR: $1,000,000")
	// 50% 贡献对应 25 个等号
	assert.Contains(t, report, strings.Repeat("=", 25))
	assert.Contains(t, report, "Top 3 assets contribute: 100.0% of total VaR")
	assert.Contains(t, report, "[!] HIGH CONCENTRATION")

	// 降序排列
	cornIdx := strings.Index(report, "CORN")
	sugarIdx := strings.Index(report, "SUGAR")
	require.Greater(t, sugarIdx, cornIdx)
}

func TestDailyReportAssembly(t *testing.T) {
	d := testDashboard()
	report := d.DailyReport(&DailyReportInput{
		PortfolioValue: 50_000_000,
		VaRLines:       []VaRLine{{Method: "Monte Carlo", VaRDollar: 1_000_000, VaRPercent: 2.0, ESDollar: 1_200_000}},
		Scenarios:      []ScenarioLine{{Name: "2020_COVID_Crash", TotalPnL: -4_000_000}},
		Positions:      []PositionLine{{Desk: "APAC_Grains", Type: "Commodity", Direction: "LONG", NotionalUSD: 50_000_000}},
		Components:     []ComponentLine{{Asset: "CORN", ComponentVaR: 1_000_000, PctContribution: 100}},
		GreeksLines:    []GreeksLine{{Underlying: "CORN", Delta: 500}},
		GreeksSummary:  &GreeksSummary{TotalDelta: 500},
	})

	assert.Contains(t, report, "DAILY MARKET RISK REPORT")
	assert.Contains(t, report, "APAC Commodities Desk")
	assert.Contains(t, report, "MARKET RISK EXECUTIVE SUMMARY")
	assert.Contains(t, report, "POSITION RISK REPORT")
	assert.Contains(t, report, "VAR ATTRIBUTION REPORT")
	assert.Contains(t, report, "OPTIONS GREEKS REPORT")
	assert.True(t, strings.HasSuffix(strings.TrimRight(report, "\n"), "======================================================================"))
	assert.Contains(t, report, "END OF REPORT")
}
