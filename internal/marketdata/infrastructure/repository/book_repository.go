// Package repository 市场数据服务的持久化实现
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/riskanalytics/internal/marketdata/domain"
	"github.com/wyfcoding/riskanalytics/pkg/db"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// PositionModel 线性持仓数据库模型
type PositionModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
	// 快照业务 ID
	BookID string `gorm:"column:book_id;type:varchar(36);index;not null"`
	// 持仓编号（快照内唯一）
	PositionID string `gorm:"column:position_id;type:varchar(16);not null"`
	// 标的代码
	Instrument string `gorm:"column:instrument;type:varchar(20);index;not null"`
	// 标的类型
	InstrumentType string `gorm:"column:instrument_type;type:varchar(20);not null"`
	// 持仓方向
	Direction string `gorm:"column:direction;type:varchar(8);not null"`
	// 持仓数量
	Quantity float64 `gorm:"column:quantity;type:double;not null"`
	// 开仓价格
	EntryPrice float64 `gorm:"column:entry_price;type:double;not null"`
	// 当前价格
	CurrentPrice float64 `gorm:"column:current_price;type:double;not null"`
	// 名义价值（美元）
	NotionalUSD string `gorm:"column:notional_usd;type:decimal(24,4);not null"`
	// 所属交易台
	Desk string `gorm:"column:desk;type:varchar(32);not null"`
	// 生成时间
	CreatedAt time.Time `gorm:"column:created_at;index;not null"`
}

// TableName 指定表名
func (PositionModel) TableName() string {
	return "sample_positions"
}

// OptionPositionModel 期权持仓数据库模型
type OptionPositionModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
	// 快照业务 ID
	BookID string `gorm:"column:book_id;type:varchar(36);index;not null"`
	// 期权编号（快照内唯一）
	OptionID string `gorm:"column:option_id;type:varchar(16);not null"`
	// 标的代码
	Underlying string `gorm:"column:underlying;type:varchar(20);index;not null"`
	// 期权类型
	OptionType string `gorm:"column:option_type;type:varchar(4);not null"`
	// 行权价
	Strike float64 `gorm:"column:strike;type:double;not null"`
	// 标的现价
	Spot float64 `gorm:"column:spot;type:double;not null"`
	// 剩余期限（年）
	TimeToExpiry float64 `gorm:"column:time_to_expiry;type:double;not null"`
	// 波动率
	Volatility float64 `gorm:"column:volatility;type:double;not null"`
	// 无风险利率
	RiskFreeRate float64 `gorm:"column:risk_free_rate;type:double;not null"`
	// 合约数量
	Contracts int `gorm:"column:contracts;type:int;not null"`
	// 所属交易台
	Desk string `gorm:"column:desk;type:varchar(32);not null"`
	// 生成时间
	CreatedAt time.Time `gorm:"column:created_at;index;not null"`
}

// TableName 指定表名
func (OptionPositionModel) TableName() string {
	return "sample_option_positions"
}

// BookRepositoryImpl 组合快照仓储实现
type BookRepositoryImpl struct {
	db *db.DB
}

// NewBookRepository 创建组合快照仓储
func NewBookRepository(database *db.DB) domain.BookRepository {
	return &BookRepositoryImpl{
		db: database,
	}
}

// SaveBook 保存组合快照
// 线性持仓与期权持仓在同一事务内写入
func (r *BookRepositoryImpl) SaveBook(ctx context.Context, book *domain.PositionBook) error {
	positions := make([]PositionModel, 0, len(book.Positions))
	for _, p := range book.Positions {
		positions = append(positions, PositionModel{
			BookID:         book.ID,
			PositionID:     p.PositionID,
			Instrument:     p.Instrument,
			InstrumentType: string(p.Type),
			Direction:      p.Direction,
			Quantity:       p.Quantity,
			EntryPrice:     p.EntryPrice,
			CurrentPrice:   p.CurrentPrice,
			NotionalUSD:    p.NotionalUSD.String(),
			Desk:           p.Desk,
			CreatedAt:      book.CreatedAt,
		})
	}

	options := make([]OptionPositionModel, 0, len(book.Options))
	for _, o := range book.Options {
		options = append(options, OptionPositionModel{
			BookID:       book.ID,
			OptionID:     o.OptionID,
			Underlying:   o.Underlying,
			OptionType:   o.OptionType,
			Strike:       o.Strike,
			Spot:         o.Spot,
			TimeToExpiry: o.TimeToExpiry,
			Volatility:   o.Volatility,
			RiskFreeRate: o.RiskFreeRate,
			Contracts:    o.Contracts,
			Desk:         o.Desk,
			CreatedAt:    book.CreatedAt,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(positions) > 0 {
			if err := tx.Create(&positions).Error; err != nil {
				return err
			}
		}
		if len(options) > 0 {
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Failed to save position book",
			"book_id", book.ID,
			"error", err,
		)
		return fmt.Errorf("failed to save position book: %w", err)
	}
	return nil
}

// ListPositions 按生成时间倒序查询已持久化的线性持仓
func (r *BookRepositoryImpl) ListPositions(ctx context.Context, limit int) ([]domain.Position, error) {
	var models []PositionModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	positions := make([]domain.Position, 0, len(models))
	for _, m := range models {
		p, err := toDomainPosition(&m)
		if err != nil {
			logger.Warn(ctx, "Skipping malformed position record",
				"book_id", m.BookID,
				"position_id", m.PositionID,
				"error", err,
			)
			continue
		}
		positions = append(positions, p)
	}
	return positions, nil
}

func toDomainPosition(m *PositionModel) (domain.Position, error) {
	notional, err := decimal.NewFromString(m.NotionalUSD)
	if err != nil {
		return domain.Position{}, err
	}

	return domain.Position{
		PositionID:   m.PositionID,
		Instrument:   m.Instrument,
		Type:         domain.InstrumentType(m.InstrumentType),
		Direction:    m.Direction,
		Quantity:     m.Quantity,
		EntryPrice:   m.EntryPrice,
		CurrentPrice: m.CurrentPrice,
		NotionalUSD:  notional,
		Desk:         m.Desk,
	}, nil
}
