package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"rental-service/internal/models"
	"rental-service/internal/repository"

	"github.com/google/uuid"
)

type orderService struct {
	repo    *repository.Repository
	booking *BookingResolver
	bundles *BundleService
	events  EventBus
	now     func() time.Time
}

func NewOrderService(repo *repository.Repository, booking *BookingResolver, bundles *BundleService, events EventBus) OrderService {
	return &orderService{
		repo:    repo,
		booking: booking,
		bundles: bundles,
		events:  events,
		now:     time.Now,
	}
}

// bookLine — позиция заказа после развёртки комплектов: всегда обычный товар.
type bookLine struct {
	ProductID      uuid.UUID
	ProductName    string
	Quantity       uint32
	UnitPriceCents int64
	RentalStart    time.Time
	RentalEnd      time.Time
}

func rentalDays(from, to time.Time) int64 {
	return int64(to.Sub(from) / (24 * time.Hour))
}

// resolveLines валидирует позиции и разворачивает комплекты в составляющие.
// Количество комплекта умножает количество каждой составляющей.
func (s *orderService) resolveLines(ctx context.Context, items []CreateOrderItem) ([]bookLine, error) {
	lines := make([]bookLine, 0, len(items))

	for _, it := range items {
		if it.Quantity == 0 {
			return nil, ErrQuantityInvalid
		}
		from := normalizeDate(it.RentalStart)
		to := normalizeDate(it.RentalEnd)
		if !from.Before(to) {
			return nil, ErrInvalidDateRange
		}

		p, err := s.repo.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrProductNotFound
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrInactiveProduct, p.Name)
		}

		if !p.IsBundle {
			lines = append(lines, bookLine{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Quantity:       it.Quantity,
				UnitPriceCents: p.PriceCents,
				RentalStart:    from,
				RentalEnd:      to,
			})
			continue
		}

		// комплект: каждая составляющая бронируется независимо
		_, expanded, err := s.bundles.Expand(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(expanded) == 0 {
			return nil, ErrBundleNotFound
		}
		for _, bl := range expanded {
			lines = append(lines, bookLine{
				ProductID:      bl.ProductID,
				ProductName:    bl.ProductName,
				Quantity:       bl.Quantity * it.Quantity,
				UnitPriceCents: bl.PriceCents,
				RentalStart:    from,
				RentalEnd:      to,
			})
		}
	}

	return lines, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	name := strings.TrimSpace(in.CustomerName)
	email := strings.TrimSpace(in.CustomerEmail)

	if in.CustomerID != nil {
		c, err := s.repo.Customers.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrCustomerNotFound
		}
		if name == "" {
			name = c.Name
		}
		if email == "" {
			email = c.Email
		}
	}
	if name == "" || email == "" {
		return nil, ErrCustomerInfoRequired
	}

	lines, err := s.resolveLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	// канонический порядок продуктов: встречные заказы берут замки строк
	// в одном и том же порядке и не взаимоблокируются
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ProductID[:], lines[j].ProductID[:]) < 0
	})

	var (
		order *models.Order
		now   = s.now()
	)

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		order = &models.Order{
			CustomerID:    in.CustomerID,
			CustomerName:  name,
			CustomerEmail: email,
			Status:        models.OrderStatusPending,
			CurrencyCode:  currencyEUR,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		itemsDB := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			lineTotal := l.UnitPriceCents * rentalDays(l.RentalStart, l.RentalEnd) * int64(l.Quantity)
			itemsDB = append(itemsDB, models.OrderItem{
				OrderID:        order.ID,
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				UnitPriceCents: l.UnitPriceCents,
				LineTotalCents: lineTotal,
				CurrencyCode:   currencyEUR,
				RentalStart:    l.RentalStart,
				RentalEnd:      l.RentalEnd,
				CreatedAt:      now,
			})
		}
		if err := tx.OrderItems.BulkCreate(ctx, itemsDB); err != nil {
			return err
		}

		// Бронирование: любая нехватка откатывает заказ целиком,
		// частично созданные блокировки не переживают транзакцию.
		for _, l := range lines {
			if err := s.booking.TryBook(ctx, tx, l.ProductID, l.Quantity, l.RentalStart, l.RentalEnd, order.ID); err != nil {
				if err == ErrInsufficientStock {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, l.ProductName)
				}
				return err
			}
		}

		// итог считаем по сохранённым позициям
		total, _, err := tx.OrderItems.SumByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := tx.Orders.UpdateTotals(ctx, order.ID, total, currencyEUR); err != nil {
			return err
		}

		ordWith, err := tx.Orders.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		order = ordWith
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		evItems := make([]OrderItemEvent, 0, len(order.Items))
		for _, it := range order.Items {
			evItems = append(evItems, OrderItemEvent{
				ProductID:   it.ProductID,
				Quantity:    it.Quantity,
				PriceCents:  it.UnitPriceCents,
				LineTotal:   it.LineTotalCents,
				RentalStart: it.RentalStart,
				RentalEnd:   it.RentalEnd,
			})
		}
		_ = s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerEmail: order.CustomerEmail,
			Items:         evItems,
			TotalCents:    order.TotalCents,
			Currency:      order.CurrencyCode,
			CreatedAt:     order.CreatedAt,
		})
	}

	return order, nil
}

// GetOrder отдаёт заказ с проверкой владения: админ видит любой, клиент —
// только свой, гость — только по совпадению email, указанного при оформлении.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID, guestEmail string) (*models.Order, error) {
	if uid, role, err := requireAuth(ctx); err == nil {
		var ord *models.Order
		if role == RoleAdmin {
			ord, err = s.repo.Orders.GetByID(ctx, id)
		} else {
			ord, err = s.repo.Orders.GetByIDForCustomer(ctx, id, uid)
		}
		if err != nil {
			return nil, err
		}
		if ord == nil {
			return nil, ErrOrderNotFound
		}
		return ord, nil
	}

	guestEmail = strings.TrimSpace(guestEmail)
	if guestEmail == "" {
		return nil, ErrUnauthorized
	}
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// чужой заказ неотличим от несуществующего
	if ord == nil || !strings.EqualFold(ord.CustomerEmail, guestEmail) {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if role != RoleAdmin {
		f.CustomerID = &userID
	}

	ordersPtr, total, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		CustomerID: f.CustomerID,
		Email:      f.Email,
		Status:     f.Status,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, len(ordersPtr))
	for i, o := range ordersPtr {
		orders[i] = *o
	}
	return orders, total, nil
}

// CancelOrder переводит заказ в CANCELLED и в той же транзакции удаляет
// все его блокировки склада — инвентарь освобождается сразу.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, reason *string) (*models.Order, error) {
	var (
		order *models.Order
		now   = s.now()
	)

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}

		switch ord.Status {
		case models.OrderStatusPending, models.OrderStatusConfirmed:
			// допустимо
		default:
			return ErrInvalidStateTransition
		}

		if err := tx.Orders.UpdateStatus(ctx, id, models.OrderStatusCancelled, s.sanitizeReason(reason), &now); err != nil {
			return err
		}
		if _, err := tx.StockBlocks.DeleteByOrderID(ctx, id); err != nil {
			return err
		}

		ord, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		order = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		var r string
		if reason != nil {
			r = *reason
		}
		_ = s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
			OrderID:       order.ID,
			CustomerEmail: order.CustomerEmail,
			Reason:        r,
			CancelledAt:   now,
		})
	}

	return order, nil
}

// ConfirmOrder: PENDING -> CONFIRMED. Блокировки не трогаем.
func (s *orderService) ConfirmOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.OrderStatusPending, models.OrderStatusConfirmed)
}

// CompleteOrder: CONFIRMED -> COMPLETED (терминальный). Блокировки не трогаем:
// из доступности их выводит фильтр по статусу, а не удаление.
func (s *orderService) CompleteOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.OrderStatusConfirmed, models.OrderStatusCompleted)
}

func (s *orderService) transition(ctx context.Context, id uuid.UUID, want, next models.OrderStatus) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.Status != want {
		return nil, ErrInvalidStateTransition
	}
	if err := s.repo.Orders.UpdateStatus(ctx, id, next, nil, nil); err != nil {
		return nil, err
	}
	return s.repo.Orders.GetByID(ctx, id)
}

func (s *orderService) sanitizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if len(r) > 500 {
		r = r[:500]
	}
	return &r
}
