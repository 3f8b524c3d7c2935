package service

import (
	"context"
	"time"

	"rental-service/internal/models"

	"github.com/google/uuid"
)

type CreateOrderItem struct {
	ProductID   uuid.UUID
	Quantity    uint32
	RentalStart time.Time
	RentalEnd   time.Time
}

type CreateOrderInput struct {
	// CustomerID пуст при гостевом оформлении — тогда имя и email обязательны.
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Items         []CreateOrderItem
}

type ListFilter struct {
	CustomerID *uuid.UUID
	Email      *string
	Status     *models.OrderStatus
	Limit      int
	Offset     int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID, guestEmail string) (*models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
	CancelOrder(ctx context.Context, id uuid.UUID, reason *string) (*models.Order, error)
	ConfirmOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CompleteOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
