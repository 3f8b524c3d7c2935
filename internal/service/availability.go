package service

import (
	"context"
	"time"

	"rental-service/internal/repository"

	"github.com/google/uuid"
)

const currencyEUR = "EUR"

// Availability — снимок занятости товара на интервал.
// Available может быть отрицательной при перебронировании: калькулятор
// ничего не обрезает, политику решает вызывающий.
type Availability struct {
	ProductID     uuid.UUID
	TotalStock    int32
	Blocked       int32
	Available     int32
	AvailableFrom time.Time
}

type AvailabilityService struct {
	repo *repository.Repository
}

func NewAvailabilityService(repo *repository.Repository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

// normalizeDate приводит дату к полуночи UTC — весь учёт идёт по календарным дням.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeAvailable считает свободные единицы товара на полуинтервал [from, to).
// Занятыми считаются блокировки заказов вне статусов CANCELLED/COMPLETED,
// пересекающие интервал; excludeOrderID выкидывает из подсчёта блокировки
// собственного заказа. Без побочных эффектов.
func (s *AvailabilityService) ComputeAvailable(ctx context.Context, productID uuid.UUID, from, to time.Time, excludeOrderID *uuid.UUID) (*Availability, error) {
	from = normalizeDate(from)
	to = normalizeDate(to)
	if !from.Before(to) {
		return nil, ErrInvalidDateRange
	}

	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	blocked, err := s.repo.StockBlocks.CountOverlapping(ctx, productID, from, to, excludeOrderID)
	if err != nil {
		return nil, err
	}

	av := &Availability{
		ProductID:     productID,
		TotalStock:    p.TotalStock,
		Blocked:       int32(blocked),
		Available:     p.TotalStock - int32(blocked),
		AvailableFrom: from,
	}

	if av.Available < 1 {
		// ближайший момент, когда освободится хотя бы одна единица
		minEnd, err := s.repo.StockBlocks.MinEndOverlapping(ctx, productID, from, to)
		if err != nil {
			return nil, err
		}
		if minEnd != nil {
			av.AvailableFrom = normalizeDate(*minEnd)
		}
	}

	return av, nil
}
