package repository

import "gorm.io/gorm"

type Repository struct {
	DB          *gorm.DB
	Products    ProductRepo
	Bundles     BundleRepo
	Customers   CustomerRepo
	Orders      OrderRepo
	OrderItems  OrderItemRepo
	StockBlocks StockBlockRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:          db,
		Products:    NewProductRepo(db),
		Bundles:     NewBundleRepo(db),
		Customers:   NewCustomerRepo(db),
		Orders:      NewOrderRepo(db),
		OrderItems:  NewOrderItemRepo(db),
		StockBlocks: NewStockBlockRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо.
// При DB == nil (репозитории подменены моками) fn выполняется как есть.
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	if r.DB == nil {
		return fn(r)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
