package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"type:text;not null"`
	Slug         string    `gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	Description  string    `gorm:"type:text"`
	ImageURL     string    `gorm:"type:text"`
	PriceCents   int64     `gorm:"not null;default:0"` // цена за сутки аренды
	CurrencyCode string    `gorm:"type:char(3);not null;default:'EUR'"`
	TotalStock   int32     `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	IsBundle     bool      `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	BundleItems []BundleItem `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

// BundleItem — составляющая комплекта: продукт и его количество на один комплект.
// Вложенные комплекты запрещены (проверяется в сервисе, не схемой).
type BundleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BundleID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_bundle_items_bundle_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_bundle_items_bundle_product"`
	Quantity  uint32    `gorm:"type:int;not null"`
	Position  int32     `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (BundleItem) TableName() string { return "bundle_items" }

type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name  string    `gorm:"type:text;not null"`
	Email string    `gorm:"type:text;not null;uniqueIndex:ux_customers_email"`
	Phone string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Customer) TableName() string { return "customers" }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// CustomerID пуст для гостевых заказов — тогда обязательны имя и email.
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"type:text;not null"`
	CustomerEmail string     `gorm:"type:text;not null;index"`

	Status       OrderStatus `gorm:"type:text;not null;default:'PENDING';index"`
	TotalCents   int64       `gorm:"not null;default:0"`
	CurrencyCode string      `gorm:"type:char(3);not null"`
	CancelReason *string     `gorm:"type:text"`
	CancelledAt  *time.Time

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // каскад на позиции
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity       uint32    `gorm:"type:int;not null"` // CHECK добавим в миграции
	UnitPriceCents int64     `gorm:"not null"`          // за сутки
	LineTotalCents int64     `gorm:"not null"`
	CurrencyCode   string    `gorm:"type:char(3);not null"`

	// Полуинтервал аренды [RentalStart, RentalEnd)
	RentalStart time.Time `gorm:"type:date;not null"`
	RentalEnd   time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

// StockBlock — одна единица товара, занятая одним заказом на полуинтервал
// [StartDate, EndDate). Строк ровно quantity на позицию заказа; удаляются
// вместе с отменой заказа и никогда его не переживают.
type StockBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:ix_stock_blocks_product_dates"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`

	StartDate time.Time `gorm:"type:date;not null;index:ix_stock_blocks_product_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:ix_stock_blocks_product_dates"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (StockBlock) TableName() string { return "stock_blocks" }
