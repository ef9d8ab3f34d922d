package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LimitStatus 风险限额状态
type LimitStatus string

const (
	// StatusGreen 限额使用率低于 80%
	StatusGreen LimitStatus = "GREEN"
	// StatusAmber 限额使用率在 80% 到 100% 之间
	StatusAmber LimitStatus = "AMBER"
	// StatusRed 限额已被击穿
	StatusRed LimitStatus = "RED"
)

// EvaluateLimit 计算 VaR 限额使用情况
// 限额为组合价值乘以 limitPct
func EvaluateLimit(varDollar, portfolioValue, limitPct float64) (limit, utilization float64, status LimitStatus) {
	limit = portfolioValue * limitPct
	if limit > 0 {
		utilization = varDollar / limit * 100
	}

	switch {
	case utilization < 80:
		status = StatusGreen
	case utilization < 100:
		status = StatusAmber
	default:
		status = StatusRed
	}
	return limit, utilization, status
}

// Alert 风险限额告警
type Alert struct {
	ID             string          `json:"id"`
	Severity       LimitStatus     `json:"severity"`
	Method         string          `json:"method"`
	VaRDollar      decimal.Decimal `json:"var_dollar"`
	VaRLimit       decimal.Decimal `json:"var_limit"`
	UtilizationPct float64         `json:"utilization_pct"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AlertPublisher 告警发布接口
type AlertPublisher interface {
	Publish(ctx context.Context, alert *Alert) error
}
