package service

import (
	"context"
	"strings"
	"time"

	"rental-service/internal/models"
	"rental-service/internal/repository"

	"github.com/google/uuid"
)

type ProductInput struct {
	Name         string
	Slug         string
	Description  string
	ImageURL     string
	PriceCents   int64
	CurrencyCode string
	TotalStock   int32
	IsActive     bool
	IsBundle     bool
}

type ProductPatch struct {
	Name        *string
	Slug        *string
	Description *string
	ImageURL    *string
	PriceCents  *int64
	TotalStock  *int32
	IsActive    *bool
}

type BundleItemInput struct {
	ProductID uuid.UUID
	Quantity  uint32
}

type ProductListFilter struct {
	Query      *string
	OnlyActive bool
	Limit      int
	Offset     int
}

// StockReportEntry — строка отчёта по складу на текущий день.
// Available может быть отрицательной; тогда OversoldOrders перечисляет
// заказы, удерживающие единицы товара.
type StockReportEntry struct {
	Product        models.Product
	Reserved       int64
	Available      int64
	OversoldOrders []repository.BlockingOrderRow
}

type CatalogService struct {
	repo    *repository.Repository
	bundles *BundleService
	now     func() time.Time
}

func NewCatalogService(repo *repository.Repository, bundles *BundleService) *CatalogService {
	return &CatalogService{
		repo:    repo,
		bundles: bundles,
		now:     time.Now,
	}
}

func mustEur(code string) bool { return code == currencyEUR }

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if in.CurrencyCode != "" && !mustEur(in.CurrencyCode) {
		return nil, ErrCurrencyNotEUR
	}
	if in.TotalStock < 0 {
		return nil, ErrStockInvalid
	}

	now := s.now()
	p := &models.Product{
		Name:         strings.TrimSpace(in.Name),
		Slug:         strings.TrimSpace(in.Slug),
		Description:  strings.TrimSpace(in.Description),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		PriceCents:   in.PriceCents,
		CurrencyCode: currencyEUR,
		TotalStock:   in.TotalStock,
		IsActive:     in.IsActive,
		IsBundle:     in.IsBundle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		if existing, err := tx.Products.GetBySlug(ctx, p.Slug); err != nil {
			return err
		} else if existing != nil {
			return ErrSlugAlreadyExists
		}
		return tx.Products.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, patch ProductPatch) (*models.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]any{}

	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Slug != nil {
		fields["slug"] = strings.TrimSpace(*patch.Slug)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.PriceCents != nil {
		fields["price_cents"] = *patch.PriceCents
	}
	if patch.TotalStock != nil {
		// уменьшение склада ниже занятого не блокируем: перебронирование
		// всплывёт в отчёте по складу, а не здесь
		if *patch.TotalStock < 0 {
			return nil, ErrStockInvalid
		}
		fields["total_stock"] = *patch.TotalStock
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	if len(fields) == 0 {
		return p, nil
	}
	fields["updated_at"] = s.now()

	if v, ok := fields["slug"]; ok {
		newSlug := v.(string)
		if existing, err := s.repo.Products.GetBySlug(ctx, newSlug); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != p.ID {
			return nil, ErrSlugAlreadyExists
		}
	}

	if err := s.repo.Products.UpdateFields(ctx, productID, fields); err != nil {
		return nil, err
	}

	return s.repo.Products.GetByID(ctx, productID)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.Products.List(ctx, repository.ProductListFilter{
		Query:      f.Query,
		OnlyActive: f.OnlyActive,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return false, err
	}
	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrProductNotFound
	}

	// нельзя удалить товар, который держат активные заказы
	today := normalizeDate(s.now())
	horizon := today.AddDate(10, 0, 0)
	blocked, err := s.repo.StockBlocks.CountOverlapping(ctx, productID, today.AddDate(-10, 0, 0), horizon, nil)
	if err != nil {
		return false, err
	}
	if blocked > 0 {
		return false, ErrProductHasHolds
	}

	inBundle, err := s.repo.Bundles.ProductInAnyBundle(ctx, productID)
	if err != nil {
		return false, err
	}
	if inBundle {
		return false, ErrProductInBundle
	}

	return s.repo.Products.Delete(ctx, productID)
}

// UpdateBundleItems заменяет состав комплекта. Составляющая не может быть
// комплектом сама — вложенность запрещена.
func (s *CatalogService) UpdateBundleItems(ctx context.Context, bundleID uuid.UUID, items []BundleItemInput) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	b, err := s.repo.Products.GetByID(ctx, bundleID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBundleNotFound
	}
	if !b.IsBundle {
		return ErrNotABundle
	}

	rows := make([]models.BundleItem, 0, len(items))
	for i, it := range items {
		if it.Quantity == 0 {
			return ErrQuantityInvalid
		}
		cp, err := s.repo.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if cp == nil {
			return ErrProductNotFound
		}
		if cp.IsBundle {
			return ErrNestedBundle
		}
		rows = append(rows, models.BundleItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Position:  int32(i),
			CreatedAt: s.now(),
		})
	}

	if err := s.repo.Bundles.ReplaceItems(ctx, bundleID, rows); err != nil {
		return err
	}
	s.bundles.Invalidate(ctx, bundleID)
	return nil
}

// StockReport — занятость склада по всем активным обычным товарам на сегодня.
// Перебронированные позиции дополняются списком заказов-виновников.
func (s *CatalogService) StockReport(ctx context.Context) ([]StockReportEntry, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	onlyPlain := false
	products, _, err := s.repo.Products.List(ctx, repository.ProductListFilter{
		OnlyActive:  true,
		OnlyBundles: &onlyPlain,
		Limit:       1000,
	})
	if err != nil {
		return nil, err
	}

	today := normalizeDate(s.now())
	tomorrow := today.AddDate(0, 0, 1)

	entries := make([]StockReportEntry, 0, len(products))
	for i := range products {
		p := products[i]
		reserved, err := s.repo.StockBlocks.CountOverlapping(ctx, p.ID, today, tomorrow, nil)
		if err != nil {
			return nil, err
		}
		entry := StockReportEntry{
			Product:   p,
			Reserved:  reserved,
			Available: int64(p.TotalStock) - reserved,
		}
		if entry.Available < 0 {
			rows, err := s.repo.StockBlocks.ListBlockingOrders(ctx, p.ID, today, tomorrow)
			if err != nil {
				return nil, err
			}
			entry.OversoldOrders = rows
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
