package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-service/internal/models"
	"rental-service/internal/service"

	"github.com/google/uuid"
)

func newCatalog(s *memStore) (*service.CatalogService, *service.BundleService) {
	repos := s.Repos()
	bundles := service.NewBundleService(repos, nil, 0)
	return service.NewCatalogService(repos, bundles), bundles
}

func TestCreateProduct_AdminAndCurrency(t *testing.T) {
	s := newMemStore()
	catalog, _ := newCatalog(s)

	in := service.ProductInput{Name: "Crib", Slug: "crib", PriceCents: 1500, TotalStock: 3, IsActive: true}

	if _, err := catalog.CreateProduct(customerCtx(uuid.New()), in); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("customer create: expected ErrForbidden, got %v", err)
	}

	p, err := catalog.CreateProduct(adminCtx(), in)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.CurrencyCode != "EUR" {
		t.Fatalf("expected EUR, got %s", p.CurrencyCode)
	}

	// повтор slug
	if _, err := catalog.CreateProduct(adminCtx(), in); !errors.Is(err, service.ErrSlugAlreadyExists) {
		t.Fatalf("duplicate slug: expected ErrSlugAlreadyExists, got %v", err)
	}

	in.Slug = "crib-usd"
	in.CurrencyCode = "USD"
	if _, err := catalog.CreateProduct(adminCtx(), in); !errors.Is(err, service.ErrCurrencyNotEUR) {
		t.Fatalf("USD: expected ErrCurrencyNotEUR, got %v", err)
	}
}

func TestUpdateProduct_StockLoweringAllowed(t *testing.T) {
	s := newMemStore()
	p := s.addProduct(models.Product{Name: "Crib", Slug: "crib", PriceCents: 1000, TotalStock: 5, IsActive: true})
	catalog, _ := newCatalog(s)
	repos := s.Repos()
	ctx := context.Background()

	// три занятые единицы
	ord := &models.Order{CustomerName: "A", CustomerEmail: "a@b.c", Status: models.OrderStatusConfirmed, CurrencyCode: "EUR"}
	_ = repos.Orders.Create(ctx, ord)
	_ = repos.StockBlocks.BulkCreate(ctx, []models.StockBlock{
		{ProductID: p.ID, OrderID: ord.ID, StartDate: date(2026, 9, 1), EndDate: date(2026, 9, 5)},
		{ProductID: p.ID, OrderID: ord.ID, StartDate: date(2026, 9, 1), EndDate: date(2026, 9, 5)},
		{ProductID: p.ID, OrderID: ord.ID, StartDate: date(2026, 9, 1), EndDate: date(2026, 9, 5)},
	})

	// уменьшение ниже занятого допустимо: перебронирование видно в отчёте
	newStock := int32(1)
	upd, err := catalog.UpdateProduct(adminCtx(), p.ID, service.ProductPatch{TotalStock: &newStock})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if upd.TotalStock != 1 {
		t.Fatalf("expected stock 1, got %d", upd.TotalStock)
	}

	av := service.NewAvailabilityService(repos)
	got, _ := av.ComputeAvailable(ctx, p.ID, date(2026, 9, 1), date(2026, 9, 5), nil)
	if got.Available != -2 {
		t.Fatalf("expected available -2 after lowering, got %d", got.Available)
	}

	bad := int32(-1)
	if _, err := catalog.UpdateProduct(adminCtx(), p.ID, service.ProductPatch{TotalStock: &bad}); !errors.Is(err, service.ErrStockInvalid) {
		t.Fatalf("negative stock: expected ErrStockInvalid, got %v", err)
	}
}

func TestDeleteProduct_Guards(t *testing.T) {
	s := newMemStore()
	held := s.addProduct(models.Product{Name: "Held", Slug: "held", TotalStock: 1, IsActive: true})
	inBundle := s.addProduct(models.Product{Name: "Part", Slug: "part", TotalStock: 1, IsActive: true})
	free := s.addProduct(models.Product{Name: "Free", Slug: "free", TotalStock: 1, IsActive: true})
	bundle := s.addProduct(models.Product{Name: "Set", Slug: "set", IsActive: true, IsBundle: true})
	catalog, _ := newCatalog(s)
	repos := s.Repos()
	ctx := context.Background()

	ord := &models.Order{CustomerName: "A", CustomerEmail: "a@b.c", Status: models.OrderStatusPending, CurrencyCode: "EUR"}
	_ = repos.Orders.Create(ctx, ord)
	_ = repos.StockBlocks.BulkCreate(ctx, []models.StockBlock{
		{ProductID: held.ID, OrderID: ord.ID, StartDate: date(2026, 9, 1), EndDate: date(2026, 9, 5)},
	})
	_ = repos.Bundles.ReplaceItems(ctx, bundle.ID, []models.BundleItem{{ProductID: inBundle.ID, Quantity: 1}})

	if _, err := catalog.DeleteProduct(adminCtx(), held.ID); !errors.Is(err, service.ErrProductHasHolds) {
		t.Fatalf("held product: expected ErrProductHasHolds, got %v", err)
	}
	if _, err := catalog.DeleteProduct(adminCtx(), inBundle.ID); !errors.Is(err, service.ErrProductInBundle) {
		t.Fatalf("bundled product: expected ErrProductInBundle, got %v", err)
	}
	ok, err := catalog.DeleteProduct(adminCtx(), free.ID)
	if err != nil || !ok {
		t.Fatalf("free product delete: ok=%v err=%v", ok, err)
	}
}

func TestUpdateBundleItems_NestedRejected(t *testing.T) {
	s := newMemStore()
	plain := s.addProduct(models.Product{Name: "Crib", Slug: "crib", TotalStock: 5, IsActive: true})
	inner := s.addProduct(models.Product{Name: "Inner Set", Slug: "inner-set", IsActive: true, IsBundle: true})
	outer := s.addProduct(models.Product{Name: "Outer Set", Slug: "outer-set", IsActive: true, IsBundle: true})
	catalog, bundles := newCatalog(s)

	if err := catalog.UpdateBundleItems(adminCtx(), outer.ID, []service.BundleItemInput{
		{ProductID: inner.ID, Quantity: 1},
	}); !errors.Is(err, service.ErrNestedBundle) {
		t.Fatalf("nested bundle: expected ErrNestedBundle, got %v", err)
	}

	if err := catalog.UpdateBundleItems(adminCtx(), plain.ID, []service.BundleItemInput{
		{ProductID: plain.ID, Quantity: 1},
	}); !errors.Is(err, service.ErrNotABundle) {
		t.Fatalf("plain product: expected ErrNotABundle, got %v", err)
	}

	if err := catalog.UpdateBundleItems(adminCtx(), outer.ID, []service.BundleItemInput{
		{ProductID: plain.ID, Quantity: 0},
	}); !errors.Is(err, service.ErrQuantityInvalid) {
		t.Fatalf("zero quantity: expected ErrQuantityInvalid, got %v", err)
	}

	if err := catalog.UpdateBundleItems(adminCtx(), outer.ID, []service.BundleItemInput{
		{ProductID: plain.ID, Quantity: 2},
	}); err != nil {
		t.Fatalf("valid composition: %v", err)
	}

	name, lines, err := bundles.Expand(context.Background(), outer.ID)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if name != "Outer Set" || len(lines) != 1 || lines[0].Quantity != 2 || lines[0].ProductID != plain.ID {
		t.Fatalf("expansion mismatch: %s %+v", name, lines)
	}
}

func TestBundleService_ExpandUsesCache(t *testing.T) {
	s := newMemStore()
	plain := s.addProduct(models.Product{Name: "Crib", Slug: "crib", PriceCents: 1000, TotalStock: 5, IsActive: true})
	bundle := s.addProduct(models.Product{Name: "Set", Slug: "set", IsActive: true, IsBundle: true})
	repos := s.Repos()
	_ = repos.Bundles.ReplaceItems(context.Background(), bundle.ID, []models.BundleItem{{ProductID: plain.ID, Quantity: 2}})

	cache := &mockCache{data: map[string]string{}}
	bundles := service.NewBundleService(repos, cache, time.Minute)
	ctx := context.Background()

	if _, _, err := bundles.Expand(ctx, bundle.ID); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expansion should be cached, sets=%d", cache.sets)
	}

	// повторная развёртка идёт из кэша
	if _, lines, err := bundles.Expand(ctx, bundle.ID); err != nil || len(lines) != 1 {
		t.Fatalf("cached Expand: %v %v", lines, err)
	}
	if cache.gets < 2 || cache.sets != 1 {
		t.Fatalf("expected cache hit, gets=%d sets=%d", cache.gets, cache.sets)
	}

	bundles.Invalidate(ctx, bundle.ID)
	if cache.dels != 1 {
		t.Fatalf("Invalidate should drop the key, dels=%d", cache.dels)
	}

	if _, _, err := bundles.Expand(ctx, uuid.New()); !errors.Is(err, service.ErrBundleNotFound) {
		t.Fatalf("missing bundle: expected ErrBundleNotFound, got %v", err)
	}
	if _, _, err := bundles.Expand(ctx, plain.ID); !errors.Is(err, service.ErrBundleNotFound) {
		t.Fatalf("plain product: expected ErrBundleNotFound, got %v", err)
	}
}

type mockCache struct {
	data map[string]string
	gets int
	sets int
	dels int
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	m.gets++
	return m.data[key], nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	m.data[key] = value.(string)
	return nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	m.dels++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestStockReport_OversoldOrders(t *testing.T) {
	s := newMemStore()
	ok := s.addProduct(models.Product{Name: "Fine", Slug: "fine", TotalStock: 5, IsActive: true})
	over := s.addProduct(models.Product{Name: "Oversold", Slug: "oversold", TotalStock: 1, IsActive: true})
	s.addProduct(models.Product{Name: "Set", Slug: "set", IsActive: true, IsBundle: true}) // комплекты не попадают в отчёт
	catalog, _ := newCatalog(s)
	repos := s.Repos()
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	ord1 := &models.Order{CustomerName: "Anna", CustomerEmail: "anna@example.com", Status: models.OrderStatusConfirmed, CurrencyCode: "EUR"}
	ord2 := &models.Order{CustomerName: "Ivan", CustomerEmail: "ivan@example.com", Status: models.OrderStatusPending, CurrencyCode: "EUR"}
	_ = repos.Orders.Create(ctx, ord1)
	_ = repos.Orders.Create(ctx, ord2)
	_ = repos.StockBlocks.BulkCreate(ctx, []models.StockBlock{
		{ProductID: over.ID, OrderID: ord1.ID, StartDate: today.AddDate(0, 0, -1), EndDate: today.AddDate(0, 0, 3)},
		{ProductID: over.ID, OrderID: ord2.ID, StartDate: today, EndDate: today.AddDate(0, 0, 2)},
		{ProductID: ok.ID, OrderID: ord1.ID, StartDate: today, EndDate: today.AddDate(0, 0, 2)},
	})

	if _, err := catalog.StockReport(customerCtx(uuid.New())); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("report as customer: expected ErrForbidden, got %v", err)
	}

	entries, err := catalog.StockReport(adminCtx())
	if err != nil {
		t.Fatalf("StockReport: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (bundles excluded), got %d", len(entries))
	}

	byID := map[uuid.UUID]service.StockReportEntry{}
	for _, e := range entries {
		byID[e.Product.ID] = e
	}

	fine := byID[ok.ID]
	if fine.Reserved != 1 || fine.Available != 4 || len(fine.OversoldOrders) != 0 {
		t.Fatalf("fine product mismatch: %+v", fine)
	}

	bad := byID[over.ID]
	if bad.Reserved != 2 || bad.Available != -1 {
		t.Fatalf("oversold product mismatch: %+v", bad)
	}
	if len(bad.OversoldOrders) != 2 {
		t.Fatalf("expected 2 blocking orders, got %d", len(bad.OversoldOrders))
	}
}
