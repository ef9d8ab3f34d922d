// Package repository 风险服务的持久化实现
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/internal/risk/domain"
	"github.com/wyfcoding/riskanalytics/pkg/db"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// VaRRunModel VaR 计算记录数据库模型
type VaRRunModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
	// 业务 ID
	RunID string `gorm:"column:run_id;type:varchar(36);uniqueIndex;not null"`
	// 计算方法
	Method string `gorm:"column:method;type:varchar(20);index;not null"`
	// 置信水平
	Confidence float64 `gorm:"column:confidence;type:double;not null"`
	// 持有期（天）
	HoldingPeriod int `gorm:"column:holding_period;type:int;not null"`
	// 组合价值
	PortfolioValue string `gorm:"column:portfolio_value;type:decimal(24,4);not null"`
	// VaR 百分比
	VaRPercent float64 `gorm:"column:var_percent;type:double;not null"`
	// VaR 金额
	VaRDollar string `gorm:"column:var_dollar;type:decimal(24,4);not null"`
	// ES 金额
	ESDollar string `gorm:"column:es_dollar;type:decimal(24,4);not null"`
	// 计算时间
	CreatedAt time.Time `gorm:"column:created_at;index;not null"`
}

// TableName 指定表名
func (VaRRunModel) TableName() string {
	return "var_runs"
}

// VaRRunRepositoryImpl VaR 计算记录仓储实现
type VaRRunRepositoryImpl struct {
	db *db.DB
}

// NewVaRRunRepository 创建 VaR 计算记录仓储
func NewVaRRunRepository(database *db.DB) domain.VaRRunRepository {
	return &VaRRunRepositoryImpl{
		db: database,
	}
}

// Save 保存计算记录
func (r *VaRRunRepositoryImpl) Save(ctx context.Context, run *domain.VaRRun) error {
	model := &VaRRunModel{
		RunID:          run.ID,
		Method:         run.Method,
		Confidence:     run.Confidence,
		HoldingPeriod:  run.HoldingPeriod,
		PortfolioValue: run.PortfolioValue.String(),
		VaRPercent:     run.VaRPercent,
		VaRDollar:      run.VaRDollar.String(),
		ESDollar:       run.ESDollar.String(),
		CreatedAt:      run.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.Error(ctx, "Failed to save VaR run",
			"method", run.Method,
			"error", err,
		)
		return fmt.Errorf("failed to save var run: %w", err)
	}
	return nil
}

// ListRecent 查询最近的计算记录
func (r *VaRRunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*domain.VaRRun, error) {
	var models []VaRRunModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list var runs: %w", err)
	}

	runs := make([]*domain.VaRRun, 0, len(models))
	for _, m := range models {
		run, err := toDomain(&m)
		if err != nil {
			logger.Warn(ctx, "Skipping malformed VaR run record",
				"run_id", m.RunID,
				"error", err,
			)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func toDomain(m *VaRRunModel) (*domain.VaRRun, error) {
	portfolioValue, err := decimal.NewFromString(m.PortfolioValue)
	if err != nil {
		return nil, err
	}
	varDollar, err := decimal.NewFromString(m.VaRDollar)
	if err != nil {
		return nil, err
	}
	esDollar, err := decimal.NewFromString(m.ESDollar)
	if err != nil {
		return nil, err
	}

	return &domain.VaRRun{
		ID:             m.RunID,
		Method:         m.Method,
		Confidence:     m.Confidence,
		HoldingPeriod:  m.HoldingPeriod,
		PortfolioValue: portfolioValue,
		VaRPercent:     m.VaRPercent,
		VaRDollar:      varDollar,
		ESDollar:       esDollar,
		CreatedAt:      m.CreatedAt,
	}, nil
}
