// Package provider 期权服务的样例组合适配器
package provider

import (
	"context"
	"fmt"

	marketdataapp "github.com/wyfcoding/riskanalytics/internal/marketdata/application"
	"github.com/wyfcoding/riskanalytics/internal/options/domain"
)

// MarketDataBookProvider 用市场数据服务生成样例期权组合
type MarketDataBookProvider struct {
	marketData *marketdataapp.MarketDataService
}

// NewMarketDataBookProvider 创建样例组合提供方
func NewMarketDataBookProvider(marketData *marketdataapp.MarketDataService) *MarketDataBookProvider {
	return &MarketDataBookProvider{
		marketData: marketData,
	}
}

// SampleOptionsBook 生成样例期权持仓并转换为定价输入
func (p *MarketDataBookProvider) SampleOptionsBook(ctx context.Context, num int) ([]domain.Position, error) {
	portfolio, err := p.marketData.GeneratePortfolio(ctx, &marketdataapp.GeneratePositionsRequest{
		NumPositions: 1,
		NumOptions:   num,
	})
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(portfolio.Options))
	for _, opt := range portfolio.Options {
		optionType, err := domain.ParseOptionType(opt.OptionType)
		if err != nil {
			return nil, fmt.Errorf("invalid generated option type %q: %w", opt.OptionType, err)
		}
		positions = append(positions, domain.Position{
			OptionID:     opt.OptionID,
			Underlying:   opt.Underlying,
			OptionType:   optionType,
			Strike:       opt.Strike,
			Spot:         opt.Spot,
			TimeToExpiry: opt.TimeToExpiry,
			Volatility:   opt.Volatility,
			RiskFreeRate: opt.RiskFreeRate,
			Contracts:    opt.Contracts,
		})
	}
	return positions, nil
}
