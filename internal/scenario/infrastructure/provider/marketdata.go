// Package provider 适配市场数据服务到情景分析的上游接口
package provider

import (
	"context"

	marketdataapp "github.com/wyfcoding/riskanalytics/internal/marketdata/application"
	"github.com/wyfcoding/riskanalytics/internal/scenario/domain"
)

// MarketDataPortfolioProvider 基于市场数据服务的组合提供者
type MarketDataPortfolioProvider struct {
	marketData *marketdataapp.MarketDataService
}

// NewMarketDataPortfolioProvider 创建组合提供者
func NewMarketDataPortfolioProvider(marketData *marketdataapp.MarketDataService) *MarketDataPortfolioProvider {
	return &MarketDataPortfolioProvider{marketData: marketData}
}

// SamplePositions 生成样例线性持仓并转换为情景分析领域模型
func (p *MarketDataPortfolioProvider) SamplePositions(ctx context.Context, num int) ([]domain.Position, error) {
	portfolio, err := p.marketData.GeneratePortfolio(ctx, &marketdataapp.GeneratePositionsRequest{
		NumPositions: num,
		NumOptions:   1,
	})
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(portfolio.Positions))
	for _, pos := range portfolio.Positions {
		notional, _ := pos.NotionalUSD.Float64()
		positions = append(positions, domain.Position{
			PositionID:   pos.PositionID,
			Instrument:   pos.Instrument,
			Type:         string(pos.Type),
			Direction:    pos.Direction,
			Quantity:     pos.Quantity,
			CurrentPrice: pos.CurrentPrice,
			NotionalUSD:  notional,
		})
	}
	return positions, nil
}

// CurrentPrices 返回标的当前价格映射
func (p *MarketDataPortfolioProvider) CurrentPrices() map[string]float64 {
	return p.marketData.CurrentPrices()
}

// HistoricalReturns 生成按标的组织的收益矩阵
func (p *MarketDataPortfolioProvider) HistoricalReturns(ctx context.Context, symbols []string, days int) ([][]float64, []string, error) {
	return p.marketData.HistoricalReturns(ctx, symbols, days)
}
