package repository

import (
	"context"
	"errors"

	"rental-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepo interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) CustomerRepo { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}
