package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrProductNotFound  = errors.New("product not found")
	ErrBundleNotFound   = errors.New("bundle not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")

	ErrEmptyItems           = errors.New("empty items")
	ErrQuantityInvalid      = errors.New("quantity must be > 0")
	ErrInvalidDateRange     = errors.New("start date must be before end date")
	ErrCustomerInfoRequired = errors.New("customer name and email are required")
	ErrInactiveProduct      = errors.New("product is inactive")
	ErrCurrencyNotEUR       = errors.New("currency must be EUR")
	ErrSlugAlreadyExists    = errors.New("slug already exists")

	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidStateTransition = errors.New("invalid order status transition")

	ErrNestedBundle    = errors.New("bundle cannot contain another bundle")
	ErrNotABundle      = errors.New("product is not a bundle")
	ErrProductHasHolds = errors.New("cannot delete product with active stock blocks")
	ErrProductInBundle = errors.New("cannot delete product used in a bundle")
	ErrStockInvalid    = errors.New("total stock must be >= 0")
)
