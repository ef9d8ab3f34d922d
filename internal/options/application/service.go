// Package application 期权分析应用服务
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/riskanalytics/internal/options/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
	"github.com/wyfcoding/riskanalytics/pkg/metrics"
)

// BookProvider 样例期权组合提供方
type BookProvider interface {
	SampleOptionsBook(ctx context.Context, num int) ([]domain.Position, error)
}

// GreeksRequest 单一期权希腊字母请求 DTO
type GreeksRequest struct {
	Spot         float64 `json:"spot"`
	Strike       float64 `json:"strike"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	Volatility   float64 `json:"volatility"`
	OptionType   string  `json:"option_type"`
	Contracts    int     `json:"contracts"`
	Multiplier   int     `json:"multiplier"`
}

// PortfolioRequest 组合希腊字母请求 DTO
// Positions 为空时生成 NumPositions 个样例持仓
type PortfolioRequest struct {
	Positions    []domain.Position `json:"positions"`
	NumPositions int               `json:"num_positions"`
}

// PortfolioResponse 组合希腊字母响应 DTO
type PortfolioResponse struct {
	Positions []domain.PositionGreeks  `json:"positions"`
	Summary   *domain.PortfolioSummary `json:"summary"`
}

// HedgeRequest Delta 对冲请求 DTO
type HedgeRequest struct {
	GreeksRequest
}

// ImpliedVolRequest 隐含波动率请求 DTO
type ImpliedVolRequest struct {
	MarketPrice  float64 `json:"market_price"`
	Spot         float64 `json:"spot"`
	Strike       float64 `json:"strike"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	OptionType   string  `json:"option_type"`
}

// ImpliedVolResponse 隐含波动率响应 DTO
type ImpliedVolResponse struct {
	ImpliedVol    float64 `json:"implied_vol"`
	ImpliedVolPct float64 `json:"implied_vol_pct"`
	Converged     bool    `json:"converged"`
}

// VolSurfaceRequest 波动率曲面请求 DTO
type VolSurfaceRequest struct {
	Spot         float64     `json:"spot"`
	RiskFreeRate float64     `json:"risk_free_rate"`
	Strikes      []float64   `json:"strikes"`
	Expiries     []float64   `json:"expiries"`
	MarketPrices [][]float64 `json:"market_prices"`
	OptionType   string      `json:"option_type"`
}

// OptionsService 期权分析应用服务
type OptionsService struct {
	book    BookProvider
	metrics *metrics.Metrics
}

// NewOptionsService 创建期权分析应用服务
func NewOptionsService(book BookProvider, m *metrics.Metrics) *OptionsService {
	return &OptionsService{
		book:    book,
		metrics: m,
	}
}

// Greeks 计算单一期权头寸的希腊字母
func (s *OptionsService) Greeks(ctx context.Context, req *GreeksRequest) (*domain.Greeks, error) {
	optionType, err := domain.ParseOptionType(req.OptionType)
	if err != nil {
		return nil, fmt.Errorf("invalid option type %q: %w", req.OptionType, err)
	}

	contracts := req.Contracts
	if contracts == 0 {
		contracts = 1
	}

	greeks, err := domain.CalculateGreeks(
		req.Spot, req.Strike, req.TimeToExpiry, req.RiskFreeRate, req.Volatility,
		optionType, contracts, req.Multiplier,
	)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Option greeks calculated",
		"option_type", optionType,
		"strike", req.Strike,
		"contracts", contracts,
	)
	return greeks, nil
}

// PortfolioGreeks 计算组合希腊字母
func (s *OptionsService) PortfolioGreeks(ctx context.Context, req *PortfolioRequest) (*PortfolioResponse, error) {
	positions := req.Positions
	if len(positions) == 0 {
		if s.book == nil {
			return nil, fmt.Errorf("positions are required")
		}
		num := req.NumPositions
		if num <= 0 {
			num = 15
		}
		sample, err := s.book.SampleOptionsBook(ctx, num)
		if err != nil {
			return nil, fmt.Errorf("failed to build sample book: %w", err)
		}
		positions = sample
	}

	results, summary, err := domain.PortfolioGreeks(positions)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Portfolio greeks calculated",
		"positions", summary.NumPositions,
		"total_delta", summary.TotalDelta,
	)

	return &PortfolioResponse{
		Positions: results,
		Summary:   summary,
	}, nil
}

// DeltaHedge 计算 Delta 中性对冲需求
func (s *OptionsService) DeltaHedge(ctx context.Context, req *HedgeRequest) (*domain.HedgeResult, error) {
	optionType, err := domain.ParseOptionType(req.OptionType)
	if err != nil {
		return nil, fmt.Errorf("invalid option type %q: %w", req.OptionType, err)
	}

	return domain.DeltaHedge(
		req.Spot, req.Strike, req.TimeToExpiry, req.RiskFreeRate, req.Volatility,
		optionType, req.Contracts, req.Multiplier,
	)
}

// ImpliedVol 反解隐含波动率
// 迭代未收敛时仍返回估计值，Converged 置为 false
func (s *OptionsService) ImpliedVol(ctx context.Context, req *ImpliedVolRequest) (*ImpliedVolResponse, error) {
	optionType, err := domain.ParseOptionType(req.OptionType)
	if err != nil {
		return nil, fmt.Errorf("invalid option type %q: %w", req.OptionType, err)
	}

	iv, err := domain.ImpliedVolatility(
		req.MarketPrice, req.Spot, req.Strike, req.TimeToExpiry, req.RiskFreeRate, optionType,
	)
	if err != nil {
		if !errors.Is(err, domain.ErrNotConverged) {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.ImpliedVolFailureTotal.Inc()
		}
		logger.Warn(ctx, "Implied volatility did not converge",
			"market_price", req.MarketPrice,
			"strike", req.Strike,
			"last_estimate", iv,
		)
		return &ImpliedVolResponse{
			ImpliedVol:    iv,
			ImpliedVolPct: iv * 100,
			Converged:     false,
		}, nil
	}

	return &ImpliedVolResponse{
		ImpliedVol:    iv,
		ImpliedVolPct: iv * 100,
		Converged:     true,
	}, nil
}

// VolSurface 构建隐含波动率曲面
func (s *OptionsService) VolSurface(ctx context.Context, req *VolSurfaceRequest) ([]domain.SurfacePoint, error) {
	optionType, err := domain.ParseOptionType(req.OptionType)
	if err != nil {
		return nil, fmt.Errorf("invalid option type %q: %w", req.OptionType, err)
	}

	points, err := domain.BuildVolSurface(
		req.Spot, req.RiskFreeRate, req.Strikes, req.Expiries, req.MarketPrices, optionType,
	)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, pt := range points {
			if !pt.Converged {
				s.metrics.ImpliedVolFailureTotal.Inc()
			}
		}
	}
	return points, nil
}
