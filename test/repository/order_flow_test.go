package repository_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"rental-service/internal/models"
	"rental-service/internal/repository"
	"rental-service/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newOrderService(db *gorm.DB) (service.OrderService, *repository.Repository) {
	repos := repository.New(db)
	bundles := service.NewBundleService(repos, nil, 0)
	return service.NewOrderService(repos, service.NewBookingResolver(), bundles, nil), repos
}

func TestCreateOrder_BundleShortageLeavesNoHolds(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	svc, repos := newOrderService(db)

	p1 := createProduct(t, db, 5)
	p2 := createProduct(t, db, 5)

	// дефицитной делаем составляющую, которая бронируется второй:
	// первая успевает создать блокировки, и откат обязан их убрать
	first, scarce := p1, p2
	if bytes.Compare(p2.ID[:], p1.ID[:]) < 0 {
		first, scarce = p2, p1
	}
	if err := repos.Products.UpdateFields(ctx, scarce.ID, map[string]any{"total_stock": int32(1)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	bundle := &models.Product{
		Name:         "Travel Set",
		Slug:         "travel-set-" + uuid.NewString()[:8],
		CurrencyCode: "EUR",
		IsActive:     true,
		IsBundle:     true,
	}
	if err := repos.Products.Create(ctx, bundle); err != nil {
		t.Fatalf("create bundle: %v", err)
	}
	if err := repos.Bundles.ReplaceItems(ctx, bundle.ID, []models.BundleItem{
		{ProductID: first.ID, Quantity: 1, Position: 0},
		{ProductID: scarce.ID, Quantity: 1, Position: 1},
	}); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	// 2 комплекта: первой составляющей хватает, дефицитной нужно 2 при складе 1
	_, err := svc.CreateOrder(ctx, service.CreateOrderInput{
		CustomerName:  "Anna",
		CustomerEmail: "anna@example.com",
		Items: []service.CreateOrderItem{
			{ProductID: bundle.ID, Quantity: 2, RentalStart: date(2026, 9, 1), RentalEnd: date(2026, 9, 5)},
		},
	})
	if !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var blocks int64
	if err := db.Model(&models.StockBlock{}).
		Where("product_id IN ?", []uuid.UUID{first.ID, scarce.ID}).
		Count(&blocks).Error; err != nil {
		t.Fatalf("count blocks: %v", err)
	}
	if blocks != 0 {
		t.Fatalf("failed bundle booking must leave zero holds, got %d", blocks)
	}

	var orders int64
	if err := db.Model(&models.Order{}).
		Where("customer_email = ?", "anna@example.com").
		Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("order row must be rolled back, got %d", orders)
	}
}

func TestCreateOrder_LastUnitConcurrent(t *testing.T) {
	db := setupDB(t)
	svc, repos := newOrderService(db)
	p := createProduct(t, db, 1)

	in := service.CreateOrderInput{
		CustomerName:  "Anna",
		CustomerEmail: "anna@example.com",
		Items: []service.CreateOrderItem{
			{ProductID: p.ID, Quantity: 1, RentalStart: date(2026, 9, 1), RentalEnd: date(2026, 9, 5)},
		},
	}

	// две транзакции сериализуются на FOR UPDATE строки продукта
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var booked, short int
	for err := range errs {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, service.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if booked != 1 || short != 1 {
		t.Fatalf("expected one booking and one shortage, got booked=%d short=%d", booked, short)
	}

	cnt, err := repos.StockBlocks.CountOverlapping(context.Background(), p.ID, date(2026, 9, 1), date(2026, 9, 5), nil)
	if err != nil {
		t.Fatalf("CountOverlapping: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected exactly 1 hold, got %d", cnt)
	}
}
