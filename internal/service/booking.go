package service

import (
	"context"
	"time"

	"rental-service/internal/models"
	"rental-service/internal/repository"

	"github.com/google/uuid"
)

// BookingResolver решает, можно ли выдать quantity единиц товара на интервал,
// и материализует блокировки. Работает только внутри транзакции вызывающего:
// строка продукта берётся под FOR UPDATE, поэтому пересчёт и вставка
// сериализованы по продукту — гонка "проверил, потом записал" закрыта.
type BookingResolver struct{}

func NewBookingResolver() *BookingResolver { return &BookingResolver{} }

// TryBook резервирует quantity блокировок под orderID на [from, to).
// Всё или ничего: при нехватке не создаётся ни одной строки.
func (b *BookingResolver) TryBook(ctx context.Context, tx *repository.Repository, productID uuid.UUID, quantity uint32, from, to time.Time, orderID uuid.UUID) error {
	if quantity == 0 {
		return ErrQuantityInvalid
	}
	from = normalizeDate(from)
	to = normalizeDate(to)
	if !from.Before(to) {
		return ErrInvalidDateRange
	}

	// точка сериализации по продукту
	p, err := tx.Products.GetByIDForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}

	blocked, err := tx.StockBlocks.CountOverlapping(ctx, productID, from, to, nil)
	if err != nil {
		return err
	}
	if int64(p.TotalStock)-blocked < int64(quantity) {
		return ErrInsufficientStock
	}

	blocks := make([]models.StockBlock, 0, quantity)
	for i := uint32(0); i < quantity; i++ {
		blocks = append(blocks, models.StockBlock{
			ProductID: productID,
			OrderID:   orderID,
			StartDate: from,
			EndDate:   to,
		})
	}
	return tx.StockBlocks.BulkCreate(ctx, blocks)
}
