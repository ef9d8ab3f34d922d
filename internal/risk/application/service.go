// Package application 风险计算应用服务
package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/internal/risk/domain"
	"github.com/wyfcoding/riskanalytics/pkg/cache"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
	"github.com/wyfcoding/riskanalytics/pkg/metrics"
)

// ReturnsProvider 历史收益提供方
// 行序与返回的符号序一致
type ReturnsProvider interface {
	HistoricalReturns(ctx context.Context, symbols []string, days int) ([][]float64, []string, error)
}

// Config 风险服务配置
type Config struct {
	DefaultConfidence  float64
	DefaultSimulations int
	BacktestWindow     int
	VaRLimitPct        float64
}

// CalculateVaRRequest VaR 计算请求 DTO
// Returns 为空时按 Symbols 生成合成历史收益
type CalculateVaRRequest struct {
	Method         string      `json:"method"` // historical, parametric, monte_carlo 或 all
	Symbols        []string    `json:"symbols"`
	Returns        [][]float64 `json:"returns,omitempty"`
	Weights        []float64   `json:"weights"`
	PortfolioValue float64     `json:"portfolio_value"`
	Confidence     float64     `json:"confidence"`
	HoldingPeriod  int         `json:"holding_period"`
	Simulations    int         `json:"simulations"`
	Days           int         `json:"days"`
}

// VaRResponse VaR 计算响应 DTO
type VaRResponse struct {
	Results        []*domain.VaRResult `json:"results"`
	VaRLimit       float64             `json:"var_limit"`
	UtilizationPct float64             `json:"utilization_pct"`
	LimitStatus    domain.LimitStatus  `json:"limit_status"`
}

// ComponentVaRRequest 成分 VaR 请求 DTO
type ComponentVaRRequest struct {
	Symbols        []string    `json:"symbols"`
	Returns        [][]float64 `json:"returns,omitempty"`
	Weights        []float64   `json:"weights"`
	PortfolioValue float64     `json:"portfolio_value"`
	Confidence     float64     `json:"confidence"`
	Days           int         `json:"days"`
}

// IncrementalVaRRequest 增量 VaR 请求 DTO
type IncrementalVaRRequest struct {
	ComponentVaRRequest
	AssetIndex int     `json:"asset_index"`
	Increment  float64 `json:"increment"`
}

// BacktestRequest 回测请求 DTO
type BacktestRequest struct {
	Symbols    []string    `json:"symbols"`
	Returns    [][]float64 `json:"returns,omitempty"`
	Weights    []float64   `json:"weights"`
	Confidence float64     `json:"confidence"`
	Window     int         `json:"window"`
	Days       int         `json:"days"`
}

// RiskService 风险计算应用服务
// 组合 VaR 引擎、留痕仓储、缓存与告警发布
type RiskService struct {
	repo      domain.VaRRunRepository
	returns   ReturnsProvider
	publisher domain.AlertPublisher
	cache     *cache.RedisCache
	metrics   *metrics.Metrics
	cfg       Config
}

// NewRiskService 创建风险计算应用服务
func NewRiskService(
	repo domain.VaRRunRepository,
	returns ReturnsProvider,
	publisher domain.AlertPublisher,
	redisCache *cache.RedisCache,
	m *metrics.Metrics,
	cfg Config,
) *RiskService {
	if cfg.DefaultConfidence <= 0 || cfg.DefaultConfidence >= 1 {
		cfg.DefaultConfidence = 0.99
	}
	if cfg.DefaultSimulations <= 0 {
		cfg.DefaultSimulations = 10000
	}
	if cfg.BacktestWindow <= 0 {
		cfg.BacktestWindow = 252
	}
	if cfg.VaRLimitPct <= 0 {
		cfg.VaRLimitPct = 0.05
	}

	return &RiskService{
		repo:      repo,
		returns:   returns,
		publisher: publisher,
		cache:     redisCache,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *RiskService) buildPortfolio(
	ctx context.Context,
	symbols []string,
	returns [][]float64,
	weights []float64,
	value float64,
	days int,
) (*domain.Portfolio, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weights are required")
	}

	if len(returns) == 0 {
		matrix, resolved, err := s.returns.HistoricalReturns(ctx, symbols, days)
		if err != nil {
			return nil, fmt.Errorf("failed to build returns: %w", err)
		}
		returns = matrix
		symbols = resolved
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		logger.Warn(ctx, "Portfolio weights do not sum to 1",
			"sum", sum,
		)
	}

	return &domain.Portfolio{
		Symbols: symbols,
		Returns: returns,
		Weights: weights,
		Value:   value,
	}, nil
}

func (s *RiskService) newEngine(confidence float64) (*domain.Engine, error) {
	if confidence == 0 {
		confidence = s.cfg.DefaultConfidence
	}
	return domain.NewEngine(confidence)
}

// CalculateVaR 计算组合 VaR
// method 为 all 时同时运行三种方法，并按最大 VaR 评估限额
func (s *RiskService) CalculateVaR(ctx context.Context, req *CalculateVaRRequest) (*VaRResponse, error) {
	engine, err := s.newEngine(req.Confidence)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.buildPortfolio(ctx, req.Symbols, req.Returns, req.Weights, req.PortfolioValue, req.Days)
	if err != nil {
		return nil, err
	}

	holdingPeriod := req.HoldingPeriod
	if holdingPeriod <= 0 {
		holdingPeriod = 1
	}
	simulations := req.Simulations
	if simulations <= 0 {
		simulations = s.cfg.DefaultSimulations
	}

	var results []*domain.VaRResult
	switch req.Method {
	case "historical":
		r, err := engine.HistoricalVaR(portfolio, holdingPeriod)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	case "parametric":
		r, err := engine.ParametricVaR(portfolio, holdingPeriod)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	case "monte_carlo":
		start := time.Now()
		r, err := engine.MonteCarloVaR(portfolio, holdingPeriod, simulations)
		if err != nil {
			return nil, err
		}
		s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
		results = append(results, r)
	case "", "all":
		start := time.Now()
		all, err := engine.CalculateAll(portfolio, holdingPeriod, simulations)
		if err != nil {
			return nil, err
		}
		s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
		results = all
	default:
		return nil, fmt.Errorf("unknown var method: %s", req.Method)
	}

	maxVaR := 0.0
	maxMethod := ""
	for _, r := range results {
		s.metrics.VaRCalculationTotal.WithLabelValues(r.Method).Inc()
		s.persistRun(ctx, portfolio, r)

		if v := r.VaRDollar.InexactFloat64(); v > maxVaR {
			maxVaR = v
			maxMethod = r.Method
		}
	}

	limit, utilization, status := domain.EvaluateLimit(maxVaR, portfolio.Value, s.cfg.VaRLimitPct)
	if status != domain.StatusGreen {
		s.raiseAlert(ctx, maxMethod, maxVaR, limit, utilization, status)
	}

	resp := &VaRResponse{
		Results:        results,
		VaRLimit:       limit,
		UtilizationPct: utilization,
		LimitStatus:    status,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, "risk:var:last", resp, 10*time.Minute); err != nil {
			logger.Warn(ctx, "Failed to cache VaR result", "error", err)
		}
	}
	return resp, nil
}

func (s *RiskService) persistRun(ctx context.Context, p *domain.Portfolio, r *domain.VaRResult) {
	if s.repo == nil {
		return
	}
	run := &domain.VaRRun{
		ID:             uuid.New().String(),
		Method:         r.Method,
		Confidence:     r.Confidence,
		HoldingPeriod:  r.HoldingPeriod,
		PortfolioValue: decimal.NewFromFloat(p.Value),
		VaRPercent:     r.VaRPercent,
		VaRDollar:      r.VaRDollar,
		ESDollar:       r.ESDollar,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error(ctx, "Failed to persist VaR run",
			"method", r.Method,
			"error", err,
		)
	}
}

func (s *RiskService) raiseAlert(ctx context.Context, method string, varDollar, limit, utilization float64, status domain.LimitStatus) {
	s.metrics.RiskAlertTotal.WithLabelValues(string(status)).Inc()

	if s.publisher == nil {
		return
	}
	alert := &domain.Alert{
		ID:             uuid.New().String(),
		Severity:       status,
		Method:         method,
		VaRDollar:      decimal.NewFromFloat(varDollar),
		VaRLimit:       decimal.NewFromFloat(limit),
		UtilizationPct: utilization,
		CreatedAt:      time.Now(),
	}
	if err := s.publisher.Publish(ctx, alert); err != nil {
		logger.Error(ctx, "Failed to publish risk alert",
			"severity", status,
			"error", err,
		)
	}
}

// ComponentVaR 计算各资产的风险贡献
func (s *RiskService) ComponentVaR(ctx context.Context, req *ComponentVaRRequest) ([]domain.ComponentVaR, error) {
	engine, err := s.newEngine(req.Confidence)
	if err != nil {
		return nil, err
	}
	portfolio, err := s.buildPortfolio(ctx, req.Symbols, req.Returns, req.Weights, req.PortfolioValue, req.Days)
	if err != nil {
		return nil, err
	}
	return engine.ComponentVaRAnalysis(portfolio)
}

// IncrementalVaR 计算加仓后的 VaR 增量
func (s *RiskService) IncrementalVaR(ctx context.Context, req *IncrementalVaRRequest) (*domain.IncrementalVaR, error) {
	engine, err := s.newEngine(req.Confidence)
	if err != nil {
		return nil, err
	}
	portfolio, err := s.buildPortfolio(ctx, req.Symbols, req.Returns, req.Weights, req.PortfolioValue, req.Days)
	if err != nil {
		return nil, err
	}
	return engine.IncrementalVaRAnalysis(portfolio, req.AssetIndex, req.Increment)
}

// Backtest 滚动窗口 VaR 回测
func (s *RiskService) Backtest(ctx context.Context, req *BacktestRequest) (*domain.BacktestResult, error) {
	engine, err := s.newEngine(req.Confidence)
	if err != nil {
		return nil, err
	}

	days := req.Days
	window := req.Window
	if window <= 0 {
		window = s.cfg.BacktestWindow
	}
	if days <= 0 {
		days = 2*window + 2
	}

	portfolio, err := s.buildPortfolio(ctx, req.Symbols, req.Returns, req.Weights, 1.0, days)
	if err != nil {
		return nil, err
	}

	result, err := engine.Backtest(portfolio, window)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "VaR backtest completed",
		"window", result.Window,
		"observations", result.Observations,
		"breaches", result.ActualBreaches,
	)
	return result, nil
}

// ListRecentRuns 查询最近的 VaR 计算记录
func (s *RiskService) ListRecentRuns(ctx context.Context, limit int) ([]*domain.VaRRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("var run repository is not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}
