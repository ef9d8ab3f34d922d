package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// VaRRun 一次 VaR 计算的留痕记录
type VaRRun struct {
	ID             string          `json:"id"`
	Method         string          `json:"method"`
	Confidence     float64         `json:"confidence"`
	HoldingPeriod  int             `json:"holding_period"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	VaRPercent     float64         `json:"var_percent"`
	VaRDollar      decimal.Decimal `json:"var_dollar"`
	ESDollar       decimal.Decimal `json:"es_dollar"`
	CreatedAt      time.Time       `json:"created_at"`
}

// VaRRunRepository VaR 计算记录仓储
type VaRRunRepository interface {
	Save(ctx context.Context, run *VaRRun) error
	ListRecent(ctx context.Context, limit int) ([]*VaRRun, error)
}
