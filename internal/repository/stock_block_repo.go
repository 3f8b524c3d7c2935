package repository

import (
	"context"
	"time"

	"rental-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статусы заказов, блокировки которых не считаются занятыми.
// COMPLETED исключается наравне с CANCELLED — фильтр по статусу, не по датам.
const notBlockingStatuses = `('CANCELLED','COMPLETED')`

// Трёхчастная проверка пересечения с полуинтервалом [@from, @to):
// блок начинается внутри, блок заканчивается внутри, либо блок целиком накрывает запрос.
// Именно три явных условия, чтобы граничные сравнения (lte/gte) совпадали
// с поведением витрины: соприкасающиеся интервалы не пересекаются.
const overlapPredicate = `(
	   (sb.start_date >= @from AND sb.start_date < @to)
	OR (sb.end_date   >  @from AND sb.end_date  <= @to)
	OR (sb.start_date <= @from AND sb.end_date  >= @to)
)`

// BlockingOrderRow — заказ, удерживающий единицы товара в интервале (для отчёта по перебронированию).
type BlockingOrderRow struct {
	OrderID       uuid.UUID  `gorm:"column:order_id"`
	Units         int64      `gorm:"column:units"`
	RentalStart   time.Time  `gorm:"column:rental_start"`
	RentalEnd     time.Time  `gorm:"column:rental_end"`
	CustomerName  string     `gorm:"column:customer_name"`
	CustomerEmail string     `gorm:"column:customer_email"`
	CustomerID    *uuid.UUID `gorm:"column:customer_id"`
}

type StockBlockRepo interface {
	BulkCreate(ctx context.Context, blocks []models.StockBlock) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.StockBlock, error)
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)

	// CountOverlapping — сколько единиц товара занято в полуинтервале [from, to).
	// Блокировки отменённых и завершённых заказов не считаются; excludeOrderID
	// убирает из подсчёта блокировки собственного заказа (повторная проверка при правке).
	CountOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time, excludeOrderID *uuid.UUID) (int64, error)

	// MinEndOverlapping — ближайшая дата, когда освободится хотя бы одна занятая
	// единица (минимальный end_date среди блокирующих строк). nil — блокировок нет.
	MinEndOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time) (*time.Time, error)

	// ListBlockingOrders — заказы, чьи блокировки пересекают интервал (для отчёта).
	ListBlockingOrders(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]BlockingOrderRow, error)
}

type stockBlockRepo struct{ db *gorm.DB }

func NewStockBlockRepo(db *gorm.DB) StockBlockRepo { return &stockBlockRepo{db: db} }

func (r *stockBlockRepo) BulkCreate(ctx context.Context, blocks []models.StockBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&blocks).Error
}

func (r *stockBlockRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.StockBlock, error) {
	var rows []models.StockBlock
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("product_id, start_date").
		Find(&rows).Error
	return rows, err
}

func (r *stockBlockRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.StockBlock{})
	return tx.RowsAffected, tx.Error
}

func (r *stockBlockRepo) CountOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time, excludeOrderID *uuid.UUID) (int64, error) {
	query := `
SELECT COUNT(*)
FROM stock_blocks sb
JOIN orders o ON o.id = sb.order_id
WHERE sb.product_id = @pid
  AND o.status NOT IN ` + notBlockingStatuses + `
  AND ` + overlapPredicate

	params := map[string]any{
		"pid":  productID,
		"from": from,
		"to":   to,
	}
	if excludeOrderID != nil {
		query += ` AND sb.order_id <> @exclude`
		params["exclude"] = *excludeOrderID
	}

	var cnt int64
	err := r.db.WithContext(ctx).Raw(query, params).Scan(&cnt).Error
	return cnt, err
}

func (r *stockBlockRepo) MinEndOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time) (*time.Time, error) {
	query := `
SELECT MIN(sb.end_date)
FROM stock_blocks sb
JOIN orders o ON o.id = sb.order_id
WHERE sb.product_id = @pid
  AND o.status NOT IN ` + notBlockingStatuses + `
  AND ` + overlapPredicate

	var minEnd *time.Time
	err := r.db.WithContext(ctx).Raw(query, map[string]any{
		"pid":  productID,
		"from": from,
		"to":   to,
	}).Scan(&minEnd).Error
	return minEnd, err
}

func (r *stockBlockRepo) ListBlockingOrders(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]BlockingOrderRow, error) {
	query := `
SELECT o.id             AS order_id,
       COUNT(*)         AS units,
       MIN(sb.start_date) AS rental_start,
       MAX(sb.end_date)   AS rental_end,
       o.customer_name,
       o.customer_email,
       o.customer_id
FROM stock_blocks sb
JOIN orders o ON o.id = sb.order_id
WHERE sb.product_id = @pid
  AND o.status NOT IN ` + notBlockingStatuses + `
  AND ` + overlapPredicate + `
GROUP BY o.id, o.customer_name, o.customer_email, o.customer_id
ORDER BY MIN(sb.start_date), o.id`

	var rows []BlockingOrderRow
	err := r.db.WithContext(ctx).Raw(query, map[string]any{
		"pid":  productID,
		"from": from,
		"to":   to,
	}).Scan(&rows).Error
	return rows, err
}
