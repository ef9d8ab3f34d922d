// Package application 风险报告应用服务
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	marketdataapp "github.com/wyfcoding/riskanalytics/internal/marketdata/application"
	marketdatadomain "github.com/wyfcoding/riskanalytics/internal/marketdata/domain"
	optionsapp "github.com/wyfcoding/riskanalytics/internal/options/application"
	optionsdomain "github.com/wyfcoding/riskanalytics/internal/options/domain"
	"github.com/wyfcoding/riskanalytics/internal/report/domain"
	riskapp "github.com/wyfcoding/riskanalytics/internal/risk/application"
	riskdomain "github.com/wyfcoding/riskanalytics/internal/risk/domain"
	scenarioapp "github.com/wyfcoding/riskanalytics/internal/scenario/application"
	scenariodomain "github.com/wyfcoding/riskanalytics/internal/scenario/domain"
	"github.com/wyfcoding/riskanalytics/pkg/cache"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Config 报告服务配置
type Config struct {
	Organization string
	RiskFreeRate float64
	VaRLimitPct  float64
}

// DailyReportRequest 日度报告请求 DTO
type DailyReportRequest struct {
	NumPositions int  `json:"num_positions"`
	NumOptions   int  `json:"num_options"`
	Days         int  `json:"days"`
	Refresh      bool `json:"refresh"`
}

// DailyReportResponse 日度报告响应 DTO
type DailyReportResponse struct {
	ReportDate     string              `json:"report_date"`
	PortfolioValue float64             `json:"portfolio_value"`
	Report         string              `json:"report"`
	Metrics        *domain.RiskMetrics `json:"metrics"`
}

// ReportService 风险报告应用服务
// 聚合行情、VaR、情景与期权分析，生成管理层文本报告
type ReportService struct {
	marketData *marketdataapp.MarketDataService
	risk       *riskapp.RiskService
	scenario   *scenarioapp.ScenarioService
	options    *optionsapp.OptionsService
	cache      *cache.RedisCache
	cfg        Config
}

// NewReportService 创建风险报告应用服务
func NewReportService(
	marketData *marketdataapp.MarketDataService,
	risk *riskapp.RiskService,
	scenario *scenarioapp.ScenarioService,
	options *optionsapp.OptionsService,
	redisCache *cache.RedisCache,
	cfg Config,
) *ReportService {
	if cfg.RiskFreeRate <= 0 {
		cfg.RiskFreeRate = 0.05
	}
	if cfg.VaRLimitPct <= 0 {
		cfg.VaRLimitPct = 0.05
	}
	return &ReportService{
		marketData: marketData,
		risk:       risk,
		scenario:   scenario,
		options:    options,
		cache:      redisCache,
		cfg:        cfg,
	}
}

// DailyReport 生成日度风险报告
// 同一天的报告会命中缓存，Refresh 为 true 时强制重算
func (s *ReportService) DailyReport(ctx context.Context, req *DailyReportRequest) (*DailyReportResponse, error) {
	dashboard := domain.NewDashboard(s.cfg.Organization, s.cfg.VaRLimitPct)
	cacheKey := "report:daily:" + dashboard.ReportDate

	if s.cache != nil && !req.Refresh {
		var cached DailyReportResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn(ctx, "Failed to read cached report", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	days := req.Days
	if days <= 0 {
		days = 504
	}

	portfolio, err := s.marketData.GeneratePortfolio(ctx, &marketdataapp.GeneratePositionsRequest{
		NumPositions: req.NumPositions,
		NumOptions:   req.NumOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build portfolio: %w", err)
	}

	returns, symbols, err := s.marketData.HistoricalReturns(ctx, nil, days)
	if err != nil {
		return nil, fmt.Errorf("failed to build returns: %w", err)
	}

	weights := make([]float64, len(returns))
	for i := range weights {
		weights[i] = 1.0 / float64(len(returns))
	}

	totalNotional, err := decimal.NewFromString(portfolio.TotalNotional)
	if err != nil {
		return nil, fmt.Errorf("invalid portfolio notional: %w", err)
	}
	portfolioValue := totalNotional.InexactFloat64()

	varResp, err := s.risk.CalculateVaR(ctx, &riskapp.CalculateVaRRequest{
		Method:         "all",
		Symbols:        symbols,
		Returns:        returns,
		Weights:        weights,
		PortfolioValue: portfolioValue,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate var: %w", err)
	}

	components, err := s.risk.ComponentVaR(ctx, &riskapp.ComponentVaRRequest{
		Symbols:        symbols,
		Returns:        returns,
		Weights:        weights,
		PortfolioValue: portfolioValue,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate component var: %w", err)
	}

	scenarios, err := s.scenario.RunHistoricalScenarios(ctx, &scenarioapp.RunScenariosRequest{
		Positions: toScenarioPositions(portfolio.Positions),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run scenarios: %w", err)
	}

	greeks, err := s.options.PortfolioGreeks(ctx, &optionsapp.PortfolioRequest{
		Positions: toOptionPositions(portfolio.Options),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate greeks: %w", err)
	}

	input := &domain.DailyReportInput{
		PortfolioValue: portfolioValue,
		VaRLines:       toVaRLines(varResp),
		Scenarios:      toScenarioLines(scenarios),
		Positions:      toPositionLines(portfolio.Positions),
		Components:     toComponentLines(components),
		GreeksLines:    toGreeksLines(greeks),
		GreeksSummary:  toGreeksSummary(greeks),
	}

	portfolioReturns, err := domain.PortfolioReturns(returns, weights)
	if err != nil {
		return nil, err
	}
	metrics, err := domain.CalculateRiskMetrics(portfolioReturns, s.cfg.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	resp := &DailyReportResponse{
		ReportDate:     dashboard.ReportDate,
		PortfolioValue: portfolioValue,
		Report:         dashboard.DailyReport(input),
		Metrics:        metrics,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, 24*time.Hour); err != nil {
			logger.Warn(ctx, "Failed to cache daily report", "error", err)
		}
	}

	logger.Info(ctx, "Daily risk report generated",
		"portfolio_value", portfolioValue,
		"positions", len(portfolio.Positions),
		"options", len(portfolio.Options),
	)
	return resp, nil
}

// RiskMetrics 单独计算组合统计指标
func (s *ReportService) RiskMetrics(ctx context.Context, symbols []string, weights []float64, days int) (*domain.RiskMetrics, error) {
	if days <= 0 {
		days = 504
	}
	returns, _, err := s.marketData.HistoricalReturns(ctx, symbols, days)
	if err != nil {
		return nil, err
	}

	if len(weights) == 0 {
		weights = make([]float64, len(returns))
		for i := range weights {
			weights[i] = 1.0 / float64(len(returns))
		}
	}

	portfolioReturns, err := domain.PortfolioReturns(returns, weights)
	if err != nil {
		return nil, err
	}
	return domain.CalculateRiskMetrics(portfolioReturns, s.cfg.RiskFreeRate)
}

func toVaRLines(resp *riskapp.VaRResponse) []domain.VaRLine {
	lines := make([]domain.VaRLine, 0, len(resp.Results))
	for _, r := range resp.Results {
		lines = append(lines, domain.VaRLine{
			Method:     r.Method,
			VaRDollar:  r.VaRDollar.InexactFloat64(),
			VaRPercent: r.VaRPercent,
			ESDollar:   r.ESDollar.InexactFloat64(),
		})
	}
	return lines
}

func toScenarioLines(resp *scenarioapp.RunScenariosResponse) []domain.ScenarioLine {
	lines := make([]domain.ScenarioLine, 0, len(resp.Summaries))
	for _, s := range resp.Summaries {
		lines = append(lines, domain.ScenarioLine{
			Name:     s.Scenario,
			TotalPnL: s.TotalPnL.InexactFloat64(),
		})
	}
	return lines
}

func toPositionLines(positions []marketdatadomain.Position) []domain.PositionLine {
	lines := make([]domain.PositionLine, 0, len(positions))
	for _, p := range positions {
		lines = append(lines, domain.PositionLine{
			Desk:        p.Desk,
			Type:        string(p.Type),
			Direction:   p.Direction,
			NotionalUSD: p.NotionalUSD.InexactFloat64(),
		})
	}
	return lines
}

func toComponentLines(components []riskdomain.ComponentVaR) []domain.ComponentLine {
	lines := make([]domain.ComponentLine, 0, len(components))
	for _, c := range components {
		lines = append(lines, domain.ComponentLine{
			Asset:           c.Asset,
			ComponentVaR:    c.ComponentVaR.InexactFloat64(),
			PctContribution: c.PctContribution,
		})
	}
	return lines
}

func toScenarioPositions(positions []marketdatadomain.Position) []scenariodomain.Position {
	converted := make([]scenariodomain.Position, 0, len(positions))
	for _, p := range positions {
		converted = append(converted, scenariodomain.Position{
			PositionID:   p.PositionID,
			Instrument:   p.Instrument,
			Type:         string(p.Type),
			Direction:    p.Direction,
			Quantity:     p.Quantity,
			CurrentPrice: p.CurrentPrice,
			NotionalUSD:  p.NotionalUSD.InexactFloat64(),
		})
	}
	return converted
}

func toOptionPositions(options []marketdatadomain.OptionPosition) []optionsdomain.Position {
	converted := make([]optionsdomain.Position, 0, len(options))
	for _, o := range options {
		optionType, err := optionsdomain.ParseOptionType(o.OptionType)
		if err != nil {
			continue
		}
		converted = append(converted, optionsdomain.Position{
			OptionID:     o.OptionID,
			Underlying:   o.Underlying,
			OptionType:   optionType,
			Strike:       o.Strike,
			Spot:         o.Spot,
			TimeToExpiry: o.TimeToExpiry,
			Volatility:   o.Volatility,
			RiskFreeRate: o.RiskFreeRate,
			Contracts:    o.Contracts,
		})
	}
	return converted
}

func toGreeksLines(resp *optionsapp.PortfolioResponse) []domain.GreeksLine {
	grouped := make(map[string]*domain.GreeksLine)
	order := make([]string, 0)
	for _, pg := range resp.Positions {
		line, ok := grouped[pg.Underlying]
		if !ok {
			line = &domain.GreeksLine{Underlying: pg.Underlying}
			grouped[pg.Underlying] = line
			order = append(order, pg.Underlying)
		}
		line.Delta += pg.Delta
		line.Gamma += pg.Gamma
		line.Vega += pg.Vega
		line.Theta += pg.Theta
	}

	lines := make([]domain.GreeksLine, 0, len(order))
	for _, underlying := range order {
		lines = append(lines, *grouped[underlying])
	}
	return lines
}

func toGreeksSummary(resp *optionsapp.PortfolioResponse) *domain.GreeksSummary {
	return &domain.GreeksSummary{
		TotalValue: resp.Summary.TotalValue.InexactFloat64(),
		TotalDelta: resp.Summary.TotalDelta,
		TotalGamma: resp.Summary.TotalGamma,
		TotalVega:  resp.Summary.TotalVega,
		TotalTheta: resp.Summary.TotalTheta,
		TotalRho:   resp.Summary.TotalRho,
	}
}
