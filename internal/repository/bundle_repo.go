package repository

import (
	"context"
	"errors"

	"rental-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BundleRepo interface {
	GetItems(ctx context.Context, bundleID uuid.UUID) ([]models.BundleItem, error)
	// ReplaceItems атомарно заменяет состав комплекта.
	ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error
	// ProductInAnyBundle — входит ли продукт хоть в один комплект.
	ProductInAnyBundle(ctx context.Context, productID uuid.UUID) (bool, error)
}

type bundleRepo struct{ db *gorm.DB }

func NewBundleRepo(db *gorm.DB) BundleRepo { return &bundleRepo{db: db} }

func (r *bundleRepo) GetItems(ctx context.Context, bundleID uuid.UUID) ([]models.BundleItem, error) {
	var rows []models.BundleItem
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return rows, err
}

func (r *bundleRepo) ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bundle_id = ?", bundleID).Delete(&models.BundleItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].BundleID = bundleID
		}
		return tx.Create(&items).Error
	})
}

func (r *bundleRepo) ProductInAnyBundle(ctx context.Context, productID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.BundleItem{}).
		Where("product_id = ?", productID).Count(&cnt).Error
	return cnt > 0, err
}
