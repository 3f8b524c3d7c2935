package repository

import (
	"context"

	"rental-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderItem) error
	SumByOrder(ctx context.Context, orderID uuid.UUID) (totalCents int64, currencyCode string, err error)
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}


func (r *orderItemRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, string, error) {
	type aggRow struct {
		TotalCents   int64
		CurrencyCode string
	}

	var res aggRow
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("COALESCE(SUM(line_total_cents),0) AS total_cents, MIN(currency_code) AS currency_code").
		Where("order_id = ?", orderID).
		Scan(&res).Error
	return res.TotalCents, res.CurrencyCode, err
}
