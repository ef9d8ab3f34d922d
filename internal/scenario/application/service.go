// Package application 情景分析应用服务
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/internal/scenario/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
	"github.com/wyfcoding/riskanalytics/pkg/metrics"
)

// PortfolioProvider 提供样例持仓与行情的上游接口
type PortfolioProvider interface {
	SamplePositions(ctx context.Context, num int) ([]domain.Position, error)
	CurrentPrices() map[string]float64
	HistoricalReturns(ctx context.Context, symbols []string, days int) ([][]float64, []string, error)
}

// RunScenariosRequest 运行全部历史情景请求
type RunScenariosRequest struct {
	Positions    []domain.Position `json:"positions"`
	NumPositions int               `json:"num_positions"`
}

// RunScenariosResponse 历史情景运行结果
type RunScenariosResponse struct {
	PortfolioValue decimal.Decimal          `json:"portfolio_value"`
	Summaries      []domain.ScenarioSummary `json:"summaries"`
}

// ApplyScenarioRequest 套用单一情景请求
// ScenarioName 指定预置情景；Shocks 非空时使用自定义冲击
type ApplyScenarioRequest struct {
	ScenarioName string             `json:"scenario_name"`
	Shocks       map[string]float64 `json:"shocks"`
	Positions    []domain.Position  `json:"positions"`
	NumPositions int                `json:"num_positions"`
}

// ApplyScenarioResponse 情景冲击明细
type ApplyScenarioResponse struct {
	Scenario string                  `json:"scenario"`
	TotalPnL decimal.Decimal         `json:"total_pnl"`
	Impacts  []domain.PositionImpact `json:"impacts"`
}

// SensitivityRequest 敏感性分析请求
type SensitivityRequest struct {
	Positions    []domain.Position `json:"positions"`
	NumPositions int               `json:"num_positions"`
	ShockRange   []float64         `json:"shock_range"`
}

// CorrelationStressRequest 相关性压力测试请求
type CorrelationStressRequest struct {
	Symbols        []string    `json:"symbols"`
	Returns        [][]float64 `json:"returns"`
	Weights        []float64   `json:"weights"`
	PortfolioValue float64     `json:"portfolio_value"`
	Shock          float64     `json:"shock"`
	Days           int         `json:"days"`
}

// LiquidityStressRequest 流动性压力测试请求
type LiquidityStressRequest struct {
	Positions    []domain.Position  `json:"positions"`
	NumPositions int                `json:"num_positions"`
	ADV          map[string]float64 `json:"adv"` // 各标的日均成交额
	TargetDays   float64            `json:"target_days"`
}

// ReverseStressRequest 反向压力测试请求
type ReverseStressRequest struct {
	Positions    []domain.Position `json:"positions"`
	NumPositions int               `json:"num_positions"`
	TargetLoss   float64           `json:"target_loss"`
}

// ScenarioService 情景分析应用服务
type ScenarioService struct {
	repo      domain.ScenarioRunRepository
	portfolio PortfolioProvider
	metrics   *metrics.Metrics
}

// NewScenarioService 创建情景分析应用服务
func NewScenarioService(repo domain.ScenarioRunRepository, portfolio PortfolioProvider, m *metrics.Metrics) *ScenarioService {
	return &ScenarioService{
		repo:      repo,
		portfolio: portfolio,
		metrics:   m,
	}
}

// resolvePositions 请求未携带持仓时从上游生成样例组合
func (s *ScenarioService) resolvePositions(ctx context.Context, positions []domain.Position, num int) ([]domain.Position, error) {
	if len(positions) > 0 {
		return positions, nil
	}
	if num <= 0 {
		num = 20
	}
	sampled, err := s.portfolio.SamplePositions(ctx, num)
	if err != nil {
		return nil, fmt.Errorf("failed to sample positions: %w", err)
	}
	return sampled, nil
}

func portfolioValue(positions []domain.Position) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(decimal.NewFromFloat(pos.NotionalUSD).Abs())
	}
	return total
}

// RunHistoricalScenarios 对组合运行全部历史情景
func (s *ScenarioService) RunHistoricalScenarios(ctx context.Context, req *RunScenariosRequest) (*RunScenariosResponse, error) {
	positions, err := s.resolvePositions(ctx, req.Positions, req.NumPositions)
	if err != nil {
		return nil, err
	}

	summaries := domain.RunHistoricalScenarios(positions, s.portfolio.CurrentPrices())
	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("historical").Inc()
	}

	value := portfolioValue(positions)
	if len(summaries) > 0 {
		s.persistRun(ctx, "historical", summaries[0].Scenario, value, summaries[0].TotalPnL)
	}

	logger.Info(ctx, "Historical scenarios completed",
		"scenarios", len(summaries),
		"positions", len(positions),
	)

	return &RunScenariosResponse{
		PortfolioValue: value,
		Summaries:      summaries,
	}, nil
}

// ApplyScenario 套用单一情景并返回逐持仓明细
func (s *ScenarioService) ApplyScenario(ctx context.Context, req *ApplyScenarioRequest) (*ApplyScenarioResponse, error) {
	shocks := req.Shocks
	name := req.ScenarioName
	if len(shocks) == 0 {
		scenario, ok := domain.FindScenario(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown scenario %q", domain.ErrInvalidInput, name)
		}
		shocks = scenario.Shocks
	} else if name == "" {
		name = "Custom"
	}

	positions, err := s.resolvePositions(ctx, req.Positions, req.NumPositions)
	if err != nil {
		return nil, err
	}

	impacts := domain.ApplyScenario(positions, shocks, s.portfolio.CurrentPrices())
	total := decimal.Zero
	for _, impact := range impacts {
		total = total.Add(impact.PnL)
	}

	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("apply").Inc()
	}
	s.persistRun(ctx, "apply", name, portfolioValue(positions), total)

	return &ApplyScenarioResponse{
		Scenario: name,
		TotalPnL: total,
		Impacts:  impacts,
	}, nil
}

// Sensitivity 单因子敏感性分析
func (s *ScenarioService) Sensitivity(ctx context.Context, req *SensitivityRequest) ([]domain.SensitivityPoint, error) {
	positions, err := s.resolvePositions(ctx, req.Positions, req.NumPositions)
	if err != nil {
		return nil, err
	}

	points := domain.SensitivityAnalysis(positions, s.portfolio.CurrentPrices(), req.ShockRange)
	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("sensitivity").Inc()
	}
	return points, nil
}

// CorrelationStress 相关性压力测试
// 请求未携带收益序列时按 symbols 生成合成历史
func (s *ScenarioService) CorrelationStress(ctx context.Context, req *CorrelationStressRequest) (*domain.CorrelationStressResult, error) {
	returns := req.Returns
	if len(returns) == 0 {
		generated, _, err := s.portfolio.HistoricalReturns(ctx, req.Symbols, req.Days)
		if err != nil {
			return nil, err
		}
		returns = generated
	}

	weights := req.Weights
	if len(weights) == 0 {
		weights = make([]float64, len(returns))
		for i := range weights {
			weights[i] = 1.0 / float64(len(returns))
		}
	}

	shock := req.Shock
	if shock == 0 {
		shock = 0.5
	}
	value := req.PortfolioValue
	if value <= 0 {
		value = 1_000_000
	}

	result, err := domain.CorrelationStress(returns, weights, value, shock)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("correlation").Inc()
	}
	s.persistRun(ctx, "correlation", fmt.Sprintf("corr+%.0f%%", shock*100),
		decimal.NewFromFloat(value), result.StressedVaR.Neg())

	return result, nil
}

// LiquidityStress 流动性压力测试
func (s *ScenarioService) LiquidityStress(ctx context.Context, req *LiquidityStressRequest) ([]domain.LiquidityImpact, error) {
	positions, err := s.resolvePositions(ctx, req.Positions, req.NumPositions)
	if err != nil {
		return nil, err
	}

	adv := req.ADV
	if len(adv) == 0 {
		adv = defaultDailyVolumes(positions, s.portfolio.CurrentPrices())
	}

	impacts := domain.LiquidityStress(positions, adv, req.TargetDays)
	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("liquidity").Inc()
	}
	return impacts, nil
}

// defaultDailyVolumes 按名义价值的倍数估一个保守的日均成交额
func defaultDailyVolumes(positions []domain.Position, prices map[string]float64) map[string]float64 {
	adv := make(map[string]float64)
	for _, pos := range positions {
		price, ok := prices[pos.Instrument]
		if !ok {
			price = pos.CurrentPrice
		}
		if pos.Type == "Commodity" {
			// 假设日成交 5 万手
			adv[pos.Instrument] = price * domain.ContractMultiplier * 50_000
		} else {
			adv[pos.Instrument] = 500_000_000
		}
	}
	return adv
}

// ReverseStress 反向压力测试
func (s *ScenarioService) ReverseStress(ctx context.Context, req *ReverseStressRequest) (*domain.ReverseStressResult, error) {
	positions, err := s.resolvePositions(ctx, req.Positions, req.NumPositions)
	if err != nil {
		return nil, err
	}

	result, err := domain.ReverseStress(positions, s.portfolio.CurrentPrices(), req.TargetLoss)
	if err != nil {
		if errors.Is(err, domain.ErrNotConverged) {
			logger.Warn(ctx, "Reverse stress did not converge",
				"target_loss", req.TargetLoss,
				"positions", len(positions),
			)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ScenarioRunTotal.WithLabelValues("reverse").Inc()
	}
	s.persistRun(ctx, "reverse", "reverse_stress", portfolioValue(positions), result.AchievedPnL)

	return result, nil
}

// ListRecentRuns 查询最近的情景分析记录
func (s *ScenarioService) ListRecentRuns(ctx context.Context, limit int) ([]*domain.ScenarioRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *ScenarioService) persistRun(ctx context.Context, runType, name string, value, worstPnL decimal.Decimal) {
	if s.repo == nil {
		return
	}
	run := &domain.ScenarioRun{
		ID:             uuid.NewString(),
		ScenarioType:   runType,
		ScenarioName:   name,
		PortfolioValue: value,
		WorstPnL:       worstPnL,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logger.Warn(ctx, "Failed to persist scenario run", "error", err, "type", runType)
	}
}
