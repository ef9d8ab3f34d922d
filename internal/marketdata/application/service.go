// Package application 市场数据应用服务
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/riskanalytics/internal/marketdata/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// GenerateHistoryRequest 生成历史行情请求 DTO
type GenerateHistoryRequest struct {
	Symbols []string `json:"symbols"`
	Days    int      `json:"days"`
}

// HistoryDTO 历史行情 DTO
type HistoryDTO struct {
	Symbols     []string             `json:"symbols"`
	Days        int                  `json:"days"`
	Prices      map[string][]float64 `json:"prices"`
	Correlation [][]float64          `json:"correlation"`
}

// GeneratePositionsRequest 生成持仓请求 DTO
type GeneratePositionsRequest struct {
	NumPositions int `json:"num_positions"`
	NumOptions   int `json:"num_options"`
}

// PortfolioDTO 组合持仓 DTO
type PortfolioDTO struct {
	BookID        string                  `json:"book_id,omitempty"`
	Positions     []domain.Position       `json:"positions"`
	Options       []domain.OptionPosition `json:"options"`
	TotalNotional string                  `json:"total_notional"`
}

// MarketDataService 市场数据应用服务
// 生成合成行情与样例组合，供风险计算与压力测试使用
type MarketDataService struct {
	mu        sync.Mutex
	generator *domain.Generator
	repo      domain.BookRepository
}

// NewMarketDataService 创建市场数据应用服务
// repo 为 nil 时生成的组合不落库
func NewMarketDataService(seed int64, repo domain.BookRepository) *MarketDataService {
	return &MarketDataService{
		generator: domain.NewGenerator(seed),
		repo:      repo,
	}
}

// Instruments 返回标的清单
func (s *MarketDataService) Instruments() []domain.Instrument {
	return s.generator.Instruments()
}

// CurrentPrices 返回标的当前价格映射
func (s *MarketDataService) CurrentPrices() map[string]float64 {
	return domain.CurrentPrices(s.generator.Instruments())
}

// GenerateHistory 生成历史行情并附带相关系数矩阵
func (s *MarketDataService) GenerateHistory(ctx context.Context, req *GenerateHistoryRequest) (*HistoryDTO, error) {
	days := req.Days
	if days <= 0 {
		days = domain.TradingDaysPerYear
	}

	s.mu.Lock()
	history, err := s.generator.GenerateHistory(req.Symbols, days)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to generate history: %w", err)
	}

	corr, err := domain.CorrelationMatrix(history.ReturnsMatrix())
	if err != nil {
		return nil, fmt.Errorf("failed to compute correlation: %w", err)
	}

	logger.Info(ctx, "Market history generated",
		"symbols", len(history.Symbols),
		"days", history.Days,
	)

	return &HistoryDTO{
		Symbols:     history.Symbols,
		Days:        history.Days,
		Prices:      history.Prices,
		Correlation: corr,
	}, nil
}

// HistoricalReturns 生成按标的组织的对数收益矩阵
// 行序与 symbols 一致，供 VaR 引擎直接消费
func (s *MarketDataService) HistoricalReturns(ctx context.Context, symbols []string, days int) ([][]float64, []string, error) {
	if days <= 0 {
		days = 2 * domain.TradingDaysPerYear
	}

	s.mu.Lock()
	history, err := s.generator.GenerateHistory(symbols, days)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate returns: %w", err)
	}

	return history.ReturnsMatrix(), history.Symbols, nil
}

// GeneratePortfolio 生成样例组合（线性持仓与期权持仓）
func (s *MarketDataService) GeneratePortfolio(ctx context.Context, req *GeneratePositionsRequest) (*PortfolioDTO, error) {
	numPositions := req.NumPositions
	if numPositions <= 0 {
		numPositions = 20
	}
	numOptions := req.NumOptions
	if numOptions <= 0 {
		numOptions = 15
	}

	s.mu.Lock()
	positions := s.generator.GeneratePositions(numPositions)
	options := s.generator.GenerateOptions(numOptions)
	s.mu.Unlock()

	book := &domain.PositionBook{
		ID:            uuid.NewString(),
		Positions:     positions,
		Options:       options,
		TotalNotional: domain.TotalNotional(positions),
		CreatedAt:     time.Now(),
	}
	s.persistBook(ctx, book)

	logger.Info(ctx, "Sample portfolio generated",
		"book_id", book.ID,
		"positions", len(positions),
		"options", len(options),
	)

	return &PortfolioDTO{
		BookID:        book.ID,
		Positions:     positions,
		Options:       options,
		TotalNotional: book.TotalNotional.String(),
	}, nil
}

// ListPositions 查询最近持久化的线性持仓
func (s *MarketDataService) ListPositions(ctx context.Context, limit int) ([]domain.Position, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListPositions(ctx, limit)
}

func (s *MarketDataService) persistBook(ctx context.Context, book *domain.PositionBook) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveBook(ctx, book); err != nil {
		logger.Error(ctx, "Failed to persist position book",
			"book_id", book.ID,
			"error", err,
		)
	}
}
