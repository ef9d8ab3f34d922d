package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PositionBook 一次生成的样例组合快照
// 线性持仓与期权持仓共享同一个 BookID
type PositionBook struct {
	ID            string
	Positions     []Position
	Options       []OptionPosition
	TotalNotional decimal.Decimal
	CreatedAt     time.Time
}

// BookRepository 组合快照仓储接口
type BookRepository interface {
	// SaveBook 保存一次生成的组合快照
	SaveBook(ctx context.Context, book *PositionBook) error
	// ListPositions 按生成时间倒序查询已持久化的线性持仓
	ListPositions(ctx context.Context, limit int) ([]Position, error)
}
