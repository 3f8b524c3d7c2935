package dto

import "rental-service/internal/models"

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  uint32 `json:"quantity" binding:"required,min=1"`
	// Полуинтервал аренды: день возврата не тарифицируется и не блокируется
	RentalStartDate string `json:"rental_start_date" binding:"required"`
	RentalEndDate   string `json:"rental_end_date" binding:"required"`
}

type CreateOrderRequest struct {
	// customer_id пуст при гостевом заказе — тогда обязательны имя и email
	CustomerID    string             `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type OrderItemResponse struct {
	ProductID       string `json:"product_id"`
	Quantity        uint32 `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	LineTotalCents  int64  `json:"line_total_cents"`
	Currency        string `json:"currency"`
	RentalStartDate string `json:"rental_start_date"`
	RentalEndDate   string `json:"rental_end_date"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id,omitempty"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	TotalCents    int64               `json:"total_cents"`
	Currency      string              `json:"currency"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	CancelledAt   string              `json:"cancelled_at,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

func ToOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID.String(),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		TotalCents:    o.TotalCents,
		Currency:      o.CurrencyCode,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if o.CustomerID != nil {
		resp.CustomerID = o.CustomerID.String()
	}
	if o.CancelReason != nil {
		resp.CancelReason = *o.CancelReason
	}
	if o.CancelledAt != nil {
		resp.CancelledAt = o.CancelledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:       it.ProductID.String(),
			Quantity:        it.Quantity,
			UnitPriceCents:  it.UnitPriceCents,
			LineTotalCents:  it.LineTotalCents,
			Currency:        it.CurrencyCode,
			RentalStartDate: FormatDate(it.RentalStart),
			RentalEndDate:   FormatDate(it.RentalEnd),
		})
	}
	return resp
}
