package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rental-service/internal/repository"

	"github.com/google/uuid"
)

// Cache — минимальный интерфейс кэша (Redis в проде, nil — кэш выключен).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// BundleLine — строка корзины, в которую разворачивается составляющая комплекта.
type BundleLine struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	PriceCents   int64     `json:"price_cents"`
	CurrencyCode string    `json:"currency_code"`
	ImageURL     string    `json:"image_url"`
	Quantity     uint32    `json:"quantity"`
}

type BundleService struct {
	repo     *repository.Repository
	cache    Cache
	cacheTTL time.Duration
}

func NewBundleService(repo *repository.Repository, cache Cache, cacheTTL time.Duration) *BundleService {
	return &BundleService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func bundleCacheKey(bundleID uuid.UUID) string {
	return fmt.Sprintf("bundle:cart:%s", bundleID)
}

type cachedExpansion struct {
	BundleName string       `json:"bundle_name"`
	Lines      []BundleLine `json:"lines"`
}

// Expand разворачивает комплект в строки по составляющим товарам.
// Каждая составляющая даёт одну строку с quantity на один комплект;
// количество блокировок при бронировании — quantity × количество комплектов.
func (s *BundleService) Expand(ctx context.Context, bundleID uuid.UUID) (string, []BundleLine, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, bundleCacheKey(bundleID)); err == nil && raw != "" {
			var c cachedExpansion
			if json.Unmarshal([]byte(raw), &c) == nil {
				return c.BundleName, c.Lines, nil
			}
		}
		// любая ошибка кэша — просто промах
	}

	p, err := s.repo.Products.GetByID(ctx, bundleID)
	if err != nil {
		return "", nil, err
	}
	if p == nil || !p.IsBundle {
		return "", nil, ErrBundleNotFound
	}

	items, err := s.repo.Bundles.GetItems(ctx, bundleID)
	if err != nil {
		return "", nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.repo.Products.BatchGetByIDs(ctx, ids)
	if err != nil {
		return "", nil, err
	}
	byID := make(map[uuid.UUID]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}

	lines := make([]BundleLine, 0, len(items))
	for _, it := range items {
		idx, ok := byID[it.ProductID]
		if !ok {
			return "", nil, ErrProductNotFound
		}
		cp := products[idx]
		lines = append(lines, BundleLine{
			ProductID:    cp.ID,
			ProductName:  cp.Name,
			PriceCents:   cp.PriceCents,
			CurrencyCode: cp.CurrencyCode,
			ImageURL:     cp.ImageURL,
			Quantity:     it.Quantity,
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(cachedExpansion{BundleName: p.Name, Lines: lines}); err == nil {
			_ = s.cache.Set(ctx, bundleCacheKey(bundleID), string(raw), s.cacheTTL)
		}
	}

	return p.Name, lines, nil
}

// Invalidate сбрасывает кэш развёртки после правки состава.
func (s *BundleService) Invalidate(ctx context.Context, bundleID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, bundleCacheKey(bundleID))
	}
}
