package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioRun 一次情景分析的持久化记录
type ScenarioRun struct {
	ID             string          `json:"id"`
	ScenarioType   string          `json:"scenario_type"` // historical / sensitivity / correlation / liquidity / reverse
	ScenarioName   string          `json:"scenario_name"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	WorstPnL       decimal.Decimal `json:"worst_pnl"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ScenarioRunRepository 情景分析记录仓储接口
type ScenarioRunRepository interface {
	Save(ctx context.Context, run *ScenarioRun) error
	ListRecent(ctx context.Context, limit int) ([]*ScenarioRun, error)
}
