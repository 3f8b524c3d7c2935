package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    uint32    `json:"quantity"`
	PriceCents  int64     `json:"price_cents"`
	LineTotal   int64     `json:"line_total_cents"`
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`
}

type OrderCreatedEvent struct {
	OrderID       uuid.UUID        `json:"order_id"`
	CustomerEmail string           `json:"customer_email"`
	Items         []OrderItemEvent `json:"items"`
	TotalCents    int64            `json:"total_cents"`
	Currency      string           `json:"currency"`
	CreatedAt     time.Time        `json:"created_at"`
}

type OrderCancelledEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	CustomerEmail string    `json:"customer_email"`
	Reason        string    `json:"reason,omitempty"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
}
