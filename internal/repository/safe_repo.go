package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SafeRepository interface {
	Create(ctx context.Context, safe *model.Safe) error
	Update(ctx context.Context, safe *model.Safe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Safe, error)
	List(ctx context.Context) ([]model.Safe, error)
}

type safeRepository struct {
	db *gorm.DB
}

func NewSafeRepository(db *gorm.DB) SafeRepository {
	return &safeRepository{db: db}
}

func (r *safeRepository) Create(ctx context.Context, safe *model.Safe) error {
	return GetDB(ctx, r.db).Create(safe).Error
}

func (r *safeRepository) Update(ctx context.Context, safe *model.Safe) error {
	return GetDB(ctx, r.db).Save(safe).Error
}

func (r *safeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Safe{}).Error
}

func (r *safeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Safe, error) {
	var safe model.Safe
	if err := GetDB(ctx, r.db).First(&safe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &safe, nil
}

func (r *safeRepository) List(ctx context.Context) ([]model.Safe, error) {
	var safes []model.Safe
	if err := GetDB(ctx, r.db).Order("name asc").Find(&safes).Error; err != nil {
		return nil, err
	}
	return safes, nil
}
