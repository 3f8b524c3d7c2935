package dto

import "rental-service/internal/models"

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	// Код валюты принимается, но сейчас поддерживается только EUR
	CurrencyCode string `json:"currency_code"`
	TotalStock   int32  `json:"total_stock" binding:"min=0"`
	IsActive     bool   `json:"is_active"`
	IsBundle     bool   `json:"is_bundle"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	PriceCents  *int64  `json:"price_cents"`
	TotalStock  *int32  `json:"total_stock"`
	IsActive    *bool   `json:"is_active"`
}

type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	CurrencyCode string `json:"currency_code"`
	TotalStock   int32  `json:"total_stock"`
	IsActive     bool   `json:"is_active"`
	IsBundle     bool   `json:"is_bundle"`
	CreatedAt    string `json:"created_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

func ToProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		PriceCents:   p.PriceCents,
		CurrencyCode: p.CurrencyCode,
		TotalStock:   p.TotalStock,
		IsActive:     p.IsActive,
		IsBundle:     p.IsBundle,
		CreatedAt:    p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type BundleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  uint32 `json:"quantity" binding:"required,min=1"`
}

type UpdateBundleRequest struct {
	Items []BundleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// BundleCartItem — строка развёрнутого комплекта для предпросмотра корзины.
type BundleCartItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    uint32 `json:"quantity"`
}

type BundleCartResponse struct {
	BundleID   string           `json:"bundle_id"`
	BundleName string           `json:"bundle_name"`
	Items      []BundleCartItem `json:"items"`
}
