package service_test

import (
	"context"
	"strings"
	"time"

	"rental-service/internal/models"
	"rental-service/internal/repository"

	"github.com/google/uuid"
)

// In-memory хранилище для сервисных тестов: реализует все репозитории
// поверх общих map/slice. Транзакций нет — откат проверяется
// интеграционными тестами репозитория.
type memStore struct {
	products  map[uuid.UUID]*models.Product
	bundles   map[uuid.UUID][]models.BundleItem
	customers map[uuid.UUID]*models.Customer
	orders    map[uuid.UUID]*models.Order
	items     []models.OrderItem
	blocks    []models.StockBlock
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[uuid.UUID]*models.Product{},
		bundles:   map[uuid.UUID][]models.BundleItem{},
		customers: map[uuid.UUID]*models.Customer{},
		orders:    map[uuid.UUID]*models.Order{},
	}
}

// Repos собирает repository.Repository поверх хранилища.
// DB == nil: WithTx выполняет замыкание без транзакции.
func (s *memStore) Repos() *repository.Repository {
	return &repository.Repository{
		Products:    &memProductRepo{s},
		Bundles:     &memBundleRepo{s},
		Customers:   &memCustomerRepo{s},
		Orders:      &memOrderRepo{s},
		OrderItems:  &memOrderItemRepo{s},
		StockBlocks: &memStockBlockRepo{s},
	}
}

func (s *memStore) addProduct(p models.Product) *models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = "EUR"
	}
	cp := p
	s.products[cp.ID] = &cp
	return &cp
}

// --- ProductRepo ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, p := range r.s.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) List(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.s.products {
		if f.OnlyActive && !p.IsActive {
			continue
		}
		if f.OnlyBundles != nil && p.IsBundle != *f.OnlyBundles {
			continue
		}
		if f.Query != nil && *f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*f.Query)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "slug":
			p.Slug = v.(string)
		case "description":
			p.Description = v.(string)
		case "image_url":
			p.ImageURL = v.(string)
		case "price_cents":
			p.PriceCents = v.(int64)
		case "total_stock":
			p.TotalStock = v.(int32)
		case "is_active":
			p.IsActive = v.(bool)
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	delete(r.s.products, id)
	return true, nil
}

// --- BundleRepo ---

type memBundleRepo struct{ s *memStore }

func (r *memBundleRepo) GetItems(ctx context.Context, bundleID uuid.UUID) ([]models.BundleItem, error) {
	return append([]models.BundleItem(nil), r.s.bundles[bundleID]...), nil
}

func (r *memBundleRepo) ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error {
	rows := make([]models.BundleItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].BundleID = bundleID
	}
	r.s.bundles[bundleID] = rows
	return nil
}

func (r *memBundleRepo) ProductInAnyBundle(ctx context.Context, productID uuid.UUID) (bool, error) {
	for _, items := range r.s.bundles {
		for _, it := range items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- CustomerRepo ---

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, c := range r.s.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// --- OrderRepo ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	cp.Items = nil
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) withItems(o *models.Order) *models.Order {
	cp := *o
	cp.Items = nil
	for _, it := range r.s.items {
		if it.OrderID == o.ID {
			cp.Items = append(cp.Items, it)
		}
	}
	return &cp
}

func (r *memOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(o), nil
}

func (r *memOrderRepo) GetByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.CustomerID == nil || *o.CustomerID != customerID {
		return nil, nil
	}
	return r.withItems(o), nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, reason *string, cancelledAt *time.Time) error {
	o, ok := r.s.orders[id]
	if !ok {
		return nil
	}
	o.Status = status
	if reason != nil {
		o.CancelReason = reason
	}
	if cancelledAt != nil {
		o.CancelledAt = cancelledAt
	}
	return nil
}

func (r *memOrderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64, currencyCode string) error {
	o, ok := r.s.orders[id]
	if !ok {
		return nil
	}
	o.TotalCents = totalCents
	o.CurrencyCode = currencyCode
	return nil
}

func (r *memOrderRepo) List(ctx context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error) {
	var out []*models.Order
	for _, o := range r.s.orders {
		if f.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *f.CustomerID) {
			continue
		}
		if f.Email != nil && o.CustomerEmail != *f.Email {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, r.withItems(o))
	}
	return out, int64(len(out)), nil
}

// --- OrderItemRepo ---

type memOrderItemRepo struct{ s *memStore }

func (r *memOrderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	r.s.items = append(r.s.items, items...)
	return nil
}


func (r *memOrderItemRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, string, error) {
	var total int64
	currency := ""
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			total += it.LineTotalCents
			currency = it.CurrencyCode
		}
	}
	return total, currency, nil
}


// --- StockBlockRepo ---

type memStockBlockRepo struct{ s *memStore }

func (r *memStockBlockRepo) blocking(orderID uuid.UUID) bool {
	o, ok := r.s.orders[orderID]
	if !ok {
		return false
	}
	return o.Status != models.OrderStatusCancelled && o.Status != models.OrderStatusCompleted
}

func overlaps(b models.StockBlock, from, to time.Time) bool {
	return (!b.StartDate.Before(from) && b.StartDate.Before(to)) ||
		(b.EndDate.After(from) && !b.EndDate.After(to)) ||
		(!b.StartDate.After(from) && !b.EndDate.Before(to))
}

func (r *memStockBlockRepo) BulkCreate(ctx context.Context, blocks []models.StockBlock) error {
	for i := range blocks {
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
	}
	r.s.blocks = append(r.s.blocks, blocks...)
	return nil
}

func (r *memStockBlockRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.StockBlock, error) {
	var out []models.StockBlock
	for _, b := range r.s.blocks {
		if b.OrderID == orderID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memStockBlockRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var kept []models.StockBlock
	var deleted int64
	for _, b := range r.s.blocks {
		if b.OrderID == orderID {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	r.s.blocks = kept
	return deleted, nil
}

func (r *memStockBlockRepo) CountOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time, excludeOrderID *uuid.UUID) (int64, error) {
	var cnt int64
	for _, b := range r.s.blocks {
		if b.ProductID != productID || !r.blocking(b.OrderID) {
			continue
		}
		if excludeOrderID != nil && b.OrderID == *excludeOrderID {
			continue
		}
		if overlaps(b, from, to) {
			cnt++
		}
	}
	return cnt, nil
}

func (r *memStockBlockRepo) MinEndOverlapping(ctx context.Context, productID uuid.UUID, from, to time.Time) (*time.Time, error) {
	var min *time.Time
	for _, b := range r.s.blocks {
		if b.ProductID != productID || !r.blocking(b.OrderID) || !overlaps(b, from, to) {
			continue
		}
		end := b.EndDate
		if min == nil || end.Before(*min) {
			min = &end
		}
	}
	return min, nil
}

func (r *memStockBlockRepo) ListBlockingOrders(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]repository.BlockingOrderRow, error) {
	agg := map[uuid.UUID]*repository.BlockingOrderRow{}
	for _, b := range r.s.blocks {
		if b.ProductID != productID || !r.blocking(b.OrderID) || !overlaps(b, from, to) {
			continue
		}
		row, ok := agg[b.OrderID]
		if !ok {
			o := r.s.orders[b.OrderID]
			row = &repository.BlockingOrderRow{
				OrderID:       b.OrderID,
				RentalStart:   b.StartDate,
				RentalEnd:     b.EndDate,
				CustomerName:  o.CustomerName,
				CustomerEmail: o.CustomerEmail,
				CustomerID:    o.CustomerID,
			}
			agg[b.OrderID] = row
		}
		row.Units++
		if b.StartDate.Before(row.RentalStart) {
			row.RentalStart = b.StartDate
		}
		if b.EndDate.After(row.RentalEnd) {
			row.RentalEnd = b.EndDate
		}
	}
	var out []repository.BlockingOrderRow
	for _, row := range agg {
		out = append(out, *row)
	}
	return out, nil
}
