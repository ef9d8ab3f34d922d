// Package repository 情景分析的持久化实现
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/riskanalytics/internal/scenario/domain"
	"github.com/wyfcoding/riskanalytics/pkg/db"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// ScenarioRunModel 情景分析记录数据库模型
type ScenarioRunModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
	// 业务 ID
	RunID string `gorm:"column:run_id;type:varchar(36);uniqueIndex;not null"`
	// 情景类型
	ScenarioType string `gorm:"column:scenario_type;type:varchar(20);index;not null"`
	// 情景名称
	ScenarioName string `gorm:"column:scenario_name;type:varchar(64);not null"`
	// 组合价值
	PortfolioValue string `gorm:"column:portfolio_value;type:decimal(24,4);not null"`
	// 最差损益
	WorstPnL string `gorm:"column:worst_pnl;type:decimal(24,4);not null"`
	// 运行时间
	CreatedAt time.Time `gorm:"column:created_at;index;not null"`
}

// TableName 指定表名
func (ScenarioRunModel) TableName() string {
	return "scenario_runs"
}

// ScenarioRunRepositoryImpl 情景分析记录仓储实现
type ScenarioRunRepositoryImpl struct {
	db *db.DB
}

// NewScenarioRunRepository 创建情景分析记录仓储
func NewScenarioRunRepository(database *db.DB) domain.ScenarioRunRepository {
	return &ScenarioRunRepositoryImpl{
		db: database,
	}
}

// Save 保存情景分析记录
func (r *ScenarioRunRepositoryImpl) Save(ctx context.Context, run *domain.ScenarioRun) error {
	model := &ScenarioRunModel{
		RunID:          run.ID,
		ScenarioType:   run.ScenarioType,
		ScenarioName:   run.ScenarioName,
		PortfolioValue: run.PortfolioValue.String(),
		WorstPnL:       run.WorstPnL.String(),
		CreatedAt:      run.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.Error(ctx, "Failed to save scenario run",
			"scenario", run.ScenarioName,
			"error", err,
		)
		return fmt.Errorf("failed to save scenario run: %w", err)
	}
	return nil
}

// ListRecent 查询最近的情景分析记录
func (r *ScenarioRunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*domain.ScenarioRun, error) {
	var models []ScenarioRunModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list scenario runs: %w", err)
	}

	runs := make([]*domain.ScenarioRun, 0, len(models))
	for _, m := range models {
		run, err := toDomain(&m)
		if err != nil {
			logger.Warn(ctx, "Skipping malformed scenario run record",
				"run_id", m.RunID,
				"error", err,
			)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func toDomain(m *ScenarioRunModel) (*domain.ScenarioRun, error) {
	portfolioValue, err := decimal.NewFromString(m.PortfolioValue)
	if err != nil {
		return nil, err
	}
	worstPnL, err := decimal.NewFromString(m.WorstPnL)
	if err != nil {
		return nil, err
	}

	return &domain.ScenarioRun{
		ID:             m.RunID,
		ScenarioType:   m.ScenarioType,
		ScenarioName:   m.ScenarioName,
		PortfolioValue: portfolioValue,
		WorstPnL:       worstPnL,
		CreatedAt:      m.CreatedAt,
	}, nil
}
