package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/riskanalytics/internal/marketdata/domain"
)

type memoryBookRepository struct {
	books []*domain.PositionBook
}

func (r *memoryBookRepository) SaveBook(_ context.Context, book *domain.PositionBook) error {
	r.books = append(r.books, book)
	return nil
}

func (r *memoryBookRepository) ListPositions(_ context.Context, limit int) ([]domain.Position, error) {
	var positions []domain.Position
	for i := len(r.books) - 1; i >= 0; i-- {
		for _, p := range r.books[i].Positions {
			if len(positions) == limit {
				return positions, nil
			}
			positions = append(positions, p)
		}
	}
	return positions, nil
}

func TestGeneratePortfolioPersistsBook(t *testing.T) {
	repo := &memoryBookRepository{}
	svc := NewMarketDataService(42, repo)

	portfolio, err := svc.GeneratePortfolio(context.Background(), &GeneratePositionsRequest{
		NumPositions: 5,
		NumOptions:   3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, portfolio.BookID)

	require.Len(t, repo.books, 1)
	book := repo.books[0]
	assert.Equal(t, portfolio.BookID, book.ID)
	assert.Len(t, book.Positions, 5)
	assert.Len(t, book.Options, 3)
	assert.Equal(t, portfolio.TotalNotional, book.TotalNotional.String())
	assert.False(t, book.CreatedAt.IsZero())
}

func TestListPositionsReturnsPersisted(t *testing.T) {
	repo := &memoryBookRepository{}
	svc := NewMarketDataService(42, repo)

	_, err := svc.GeneratePortfolio(context.Background(), &GeneratePositionsRequest{
		NumPositions: 4,
		NumOptions:   1,
	})
	require.NoError(t, err)

	positions, err := svc.ListPositions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, positions, 4)
	for _, p := range positions {
		assert.NotEmpty(t, p.Instrument)
		assert.True(t, p.NotionalUSD.IsPositive())
	}

	limited, err := svc.ListPositions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGeneratePortfolioWithoutRepository(t *testing.T) {
	svc := NewMarketDataService(42, nil)

	portfolio, err := svc.GeneratePortfolio(context.Background(), &GeneratePositionsRequest{})
	require.NoError(t, err)
	assert.Len(t, portfolio.Positions, 20)
	assert.Len(t, portfolio.Options, 15)

	positions, err := svc.ListPositions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, positions)
}
