package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	riskdomain "github.com/wyfcoding/riskanalytics/internal/risk/domain"
)

// VaRLine 报告中的单一 VaR 结果行
type VaRLine struct {
	Method     string  `json:"method"`
	VaRDollar  float64 `json:"var_dollar"`
	VaRPercent float64 `json:"var_percent"`
	ESDollar   float64 `json:"es_dollar"`
}

// ScenarioLine 报告中的情景结果行
type ScenarioLine struct {
	Name     string  `json:"name"`
	TotalPnL float64 `json:"total_pnl"`
}

// PositionLine 报告中的持仓行
type PositionLine struct {
	Desk        string  `json:"desk"`
	Type        string  `json:"type"`
	Direction   string  `json:"direction"`
	NotionalUSD float64 `json:"notional_usd"`
}

// ComponentLine 报告中的成分 VaR 行
type ComponentLine struct {
	Asset           string  `json:"asset"`
	ComponentVaR    float64 `json:"component_var"`
	PctContribution float64 `json:"pct_contribution"`
}

// GreeksLine 报告中按标的汇总的希腊字母行
type GreeksLine struct {
	Underlying string  `json:"underlying"`
	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Vega       float64 `json:"vega"`
	Theta      float64 `json:"theta"`
}

// GreeksSummary 报告中的组合希腊字母汇总
type GreeksSummary struct {
	TotalValue float64 `json:"total_value"`
	TotalDelta float64 `json:"total_delta"`
	TotalGamma float64 `json:"total_gamma"`
	TotalVega  float64 `json:"total_vega"`
	TotalTheta float64 `json:"total_theta"`
	TotalRho   float64 `json:"total_rho"`
}

const sectionRule = "----------------------------------------------------------------------"
const headerRule = "======================================================================"

// Dashboard 文本风险报告生成器
type Dashboard struct {
	ReportDate   string
	Organization string
	VaRLimitPct  float64
}

// NewDashboard 创建报告生成器，报告日期取当天
func NewDashboard(organization string, varLimitPct float64) *Dashboard {
	if varLimitPct <= 0 {
		varLimitPct = 0.05
	}
	return &Dashboard{
		ReportDate:   time.Now().Format("2006-01-02"),
		Organization: organization,
		VaRLimitPct:  varLimitPct,
	}
}

// ExecutiveSummary 管理层摘要
// 含组合概览、VaR 汇总、最差情景与限额状态
func (d *Dashboard) ExecutiveSummary(varLines []VaRLine, portfolioValue float64, scenarios []ScenarioLine) string {
	var b strings.Builder
	b.WriteString(headerRule + "\n")
	b.WriteString("MARKET RISK EXECUTIVE SUMMARY\n")
	fmt.Fprintf(&b, "Report Date: %s\n", d.ReportDate)
	b.WriteString(headerRule + "\n")

	b.WriteString("\n1. PORTFOLIO OVERVIEW\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Total Portfolio Value: %s\n", formatMoney(portfolioValue))

	if len(varLines) > 0 {
		b.WriteString("\n2. VALUE-AT-RISK SUMMARY\n")
		b.WriteString(sectionRule + "\n")
		for _, line := range varLines {
			fmt.Fprintf(&b, "  %s VaR:\n", line.Method)
			fmt.Fprintf(&b, "    - VaR: %s (%.2f%%)\n", formatMoney(line.VaRDollar), line.VaRPercent)
			fmt.Fprintf(&b, "    - Expected Shortfall: %s\n", formatMoney(line.ESDollar))
		}
	}

	if len(scenarios) > 0 {
		b.WriteString("\n3. WORST-CASE SCENARIOS\n")
		b.WriteString(sectionRule + "\n")
		worst := worstScenarios(scenarios, 3)
		for _, line := range worst {
			fmt.Fprintf(&b, "  %s:\n", line.Name)
			fmt.Fprintf(&b, "    - P&L Impact: %s\n", formatMoney(line.TotalPnL))
		}
	}

	b.WriteString("\n4. RISK LIMITS STATUS\n")
	b.WriteString(sectionRule + "\n")
	if len(varLines) > 0 {
		maxVaR := 0.0
		for _, line := range varLines {
			if line.VaRDollar > maxVaR {
				maxVaR = line.VaRDollar
			}
		}
		limit, utilization, status := riskdomain.EvaluateLimit(maxVaR, portfolioValue, d.VaRLimitPct)
		fmt.Fprintf(&b, "  VaR Limit: %s\n", formatMoney(limit))
		fmt.Fprintf(&b, "  Current VaR: %s\n", formatMoney(maxVaR))
		fmt.Fprintf(&b, "  Utilization: %.1f%% [%s]\n", utilization, status)
	}

	return b.String()
}

func worstScenarios(scenarios []ScenarioLine, n int) []ScenarioLine {
	sorted := make([]ScenarioLine, len(scenarios))
	copy(sorted, scenarios)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TotalPnL < sorted[j].TotalPnL
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PositionReport 持仓风险报告
// 按交易台、标的类型与多空方向分组汇总
func (d *Dashboard) PositionReport(positions []PositionLine, components []ComponentLine) string {
	var b strings.Builder
	b.WriteString(headerRule + "\n")
	b.WriteString("POSITION RISK REPORT\n")
	fmt.Fprintf(&b, "Report Date: %s\n", d.ReportDate)
	b.WriteString(headerRule + "\n")

	b.WriteString("\n1. POSITIONS BY DESK\n")
	b.WriteString(sectionRule + "\n")
	writeGroupSummary(&b, positions, func(p PositionLine) string { return p.Desk })

	b.WriteString("\n2. POSITIONS BY INSTRUMENT TYPE\n")
	b.WriteString(sectionRule + "\n")
	writeGroupSummary(&b, positions, func(p PositionLine) string { return p.Type })

	if len(components) > 0 {
		b.WriteString("\n3. TOP RISK CONTRIBUTORS\n")
		b.WriteString(sectionRule + "\n")
		top := sortedComponents(components)
		if len(top) > 5 {
			top = top[:5]
		}
		for _, c := range top {
			fmt.Fprintf(&b, "  %s:\n", c.Asset)
			fmt.Fprintf(&b, "    - Component VaR: %s\n", formatMoney(c.ComponentVaR))
			fmt.Fprintf(&b, "    - Contribution: %.1f%%\n", c.PctContribution)
		}
	}

	b.WriteString("\n4. LONG/SHORT BREAKDOWN\n")
	b.WriteString(sectionRule + "\n")
	totals := make(map[string]float64)
	for _, p := range positions {
		totals[p.Direction] += p.NotionalUSD
	}
	for _, direction := range sortedKeys(totals) {
		fmt.Fprintf(&b, "  %s: %s\n", direction, formatMoney(totals[direction]))
	}

	return b.String()
}

func writeGroupSummary(b *strings.Builder, positions []PositionLine, key func(PositionLine) string) {
	notionals := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range positions {
		k := key(p)
		notionals[k] += p.NotionalUSD
		counts[k]++
	}
	for _, k := range sortedKeys(notionals) {
		fmt.Fprintf(b, "  %s:\n", k)
		fmt.Fprintf(b, "    - Positions: %d\n", counts[k])
		fmt.Fprintf(b, "    - Notional: %s\n", formatMoney(notionals[k]))
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 风险预警阈值
const (
	deltaFlagThreshold = 10_000
	gammaFlagThreshold = -100
	vegaFlagThreshold  = 100_000
	thetaFlagThreshold = -10_000
)

// GreeksReport 期权希腊字母报告
func (d *Dashboard) GreeksReport(lines []GreeksLine, summary *GreeksSummary) string {
	var b strings.Builder
	b.WriteString(headerRule + "\n")
	b.WriteString("OPTIONS GREEKS REPORT\n")
	fmt.Fprintf(&b, "Report Date: %s\n", d.ReportDate)
	b.WriteString(headerRule + "\n")

	b.WriteString("\n1. PORTFOLIO GREEKS SUMMARY\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "  Total Value: %s\n", formatMoney(summary.TotalValue))
	fmt.Fprintf(&b, "  Total Delta: %s\n", formatNumber(summary.TotalDelta))
	fmt.Fprintf(&b, "  Total Gamma: %.2f\n", summary.TotalGamma)
	fmt.Fprintf(&b, "  Total Vega: %s\n", formatMoney(summary.TotalVega))
	fmt.Fprintf(&b, "  Total Theta: %s/day\n", formatMoney(summary.TotalTheta))
	fmt.Fprintf(&b, "  Total Rho: %s\n", formatMoney(summary.TotalRho))

	b.WriteString("\n2. GREEKS BY UNDERLYING\n")
	b.WriteString(sectionRule + "\n")
	sorted := make([]GreeksLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Underlying < sorted[j].Underlying
	})
	for _, line := range sorted {
		fmt.Fprintf(&b, "  %s:\n", line.Underlying)
		fmt.Fprintf(&b, "    Delta: %s, Gamma: %.2f\n", formatNumber(line.Delta), line.Gamma)
		fmt.Fprintf(&b, "    Vega: %s, Theta: %s/day\n", formatMoney(line.Vega), formatMoney(line.Theta))
	}

	b.WriteString("\n3. RISK FLAGS\n")
	b.WriteString(sectionRule + "\n")
	if math.Abs(summary.TotalDelta) > deltaFlagThreshold {
		b.WriteString("  [!] HIGH DELTA EXPOSURE - Consider delta hedging\n")
	}
	if summary.TotalGamma < gammaFlagThreshold {
		b.WriteString("  [!] NEGATIVE GAMMA - Vulnerable to large moves\n")
	}
	if math.Abs(summary.TotalVega) > vegaFlagThreshold {
		b.WriteString("  [!] HIGH VEGA EXPOSURE - Sensitive to volatility\n")
	}
	if summary.TotalTheta < thetaFlagThreshold {
		fmt.Fprintf(&b, "  [!] HIGH TIME DECAY - %s/day\n", formatMoney(math.Abs(summary.TotalTheta)))
	}

	return b.String()
}

// VaRAttribution VaR 归因报告
// 按贡献降序展示各资产的成分 VaR 与集中度
func (d *Dashboard) VaRAttribution(components []ComponentLine) string {
	var b strings.Builder
	b.WriteString(headerRule + "\n")
	b.WriteString("VAR ATTRIBUTION REPORT\n")
	fmt.Fprintf(&b, "Report Date: %s\n", d.ReportDate)
	b.WriteString(headerRule + "\n")

	sorted := sortedComponents(components)

	totalVaR := 0.0
	for _, c := range sorted {
		totalVaR += c.ComponentVaR
	}
	fmt.Fprintf(&b, "\nTotal Portfolio VaR: %s\n", formatMoney(totalVaR))

	b.WriteString("\nVaR Attribution by Asset:\n")
	b.WriteString(sectionRule + "\n")
	for _, c := range sorted {
		bar := strings.Repeat("=", int(c.PctContribution/2))
		fmt.Fprintf(&b, "  %-15s %13s (%5.1f%%) %s\n",
			c.Asset, formatMoney(c.ComponentVaR), c.PctContribution, bar)
	}

	b.WriteString("\nConcentration Analysis:\n")
	b.WriteString(sectionRule + "\n")
	top3 := 0.0
	for i, c := range sorted {
		if i >= 3 {
			break
		}
		top3 += c.PctContribution
	}
	fmt.Fprintf(&b, "  Top 3 assets contribute: %.1f%% of total VaR\n", top3)
	if top3 > 70 {
		b.WriteString("  [!] HIGH CONCENTRATION - Consider diversification\n")
	}

	return b.String()
}

func sortedComponents(components []ComponentLine) []ComponentLine {
	sorted := make([]ComponentLine, len(components))
	copy(sorted, components)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PctContribution > sorted[j].PctContribution
	})
	return sorted
}

// DailyReportInput 日度报告输入
type DailyReportInput struct {
	PortfolioValue float64
	VaRLines       []VaRLine
	Scenarios      []ScenarioLine
	Positions      []PositionLine
	Components     []ComponentLine
	GreeksLines    []GreeksLine
	GreeksSummary  *GreeksSummary
}

// DailyReport 组装完整的日度风险报告
func (d *Dashboard) DailyReport(input *DailyReportInput) string {
	var b strings.Builder
	b.WriteString(headerRule + "\n")
	b.WriteString("DAILY MARKET RISK REPORT\n")
	if d.Organization != "" {
		b.WriteString(d.Organization + "\n")
	}
	fmt.Fprintf(&b, "Report Date: %s\n", d.ReportDate)
	b.WriteString(headerRule + "\n")

	b.WriteString(d.ExecutiveSummary(input.VaRLines, input.PortfolioValue, input.Scenarios))
	b.WriteString("\n" + d.PositionReport(input.Positions, input.Components))
	if len(input.Components) > 0 {
		b.WriteString("\n" + d.VaRAttribution(input.Components))
	}
	if len(input.GreeksLines) > 0 && input.GreeksSummary != nil {
		b.WriteString("\n" + d.GreeksReport(input.GreeksLines, input.GreeksSummary))
	}

	b.WriteString("\n" + headerRule + "\n")
	b.WriteString("END OF REPORT\n")
	b.WriteString(headerRule + "\n")

	return b.String()
}

// formatMoney 美元金额，千分位分组，四舍五入到整数
func formatMoney(v float64) string {
	return "$" + formatNumber(v)
}

func formatNumber(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	b.WriteString(sign)
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
