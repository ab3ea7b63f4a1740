package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstallmentRepository interface {
	BulkCreate(ctx context.Context, installments []model.Installment) error
	Update(ctx context.Context, installment *model.Installment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.Installment, error)
	ListOpenByUnit(ctx context.Context, unitID uuid.UUID) ([]model.Installment, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Installment, error)
	DeleteUnpaidByContract(ctx context.Context, contractID uuid.UUID) error
	CountOverdue(ctx context.Context) (int64, error)
}

type installmentRepository struct {
	db *gorm.DB
}

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) BulkCreate(ctx context.Context, installments []model.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&installments).Error
}

func (r *installmentRepository) Update(ctx context.Context, installment *model.Installment) error {
	return GetDB(ctx, r.db).Save(installment).Error
}

func (r *installmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	var installment model.Installment
	if err := GetDB(ctx, r.db).First(&installment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.Installment, error) {
	var installments []model.Installment
	if err := GetDB(ctx, r.db).Where("unit_id = ?", unitID).
		Order("due_date asc, created_at asc").Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

// ListOpenByUnit returns the unit's unpaid and partially paid installments
// in ascending due-date order. Payment allocation depends on this ordering.
func (r *installmentRepository) ListOpenByUnit(ctx context.Context, unitID uuid.UUID) ([]model.Installment, error) {
	var installments []model.Installment
	if err := GetDB(ctx, r.db).
		Where("unit_id = ? AND status IN ?", unitID, []string{model.InstallmentUnpaid, model.InstallmentPartiallyPaid}).
		Order("due_date asc, created_at asc").Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

func (r *installmentRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Installment, error) {
	var installments []model.Installment
	if err := GetDB(ctx, r.db).Where("contract_id = ?", contractID).
		Order("due_date asc, created_at asc").Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

func (r *installmentRepository) DeleteUnpaidByContract(ctx context.Context, contractID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("contract_id = ? AND status <> ?", contractID, model.InstallmentPaid).
		Delete(&model.Installment{}).Error
}

func (r *installmentRepository) CountOverdue(ctx context.Context) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Installment{}).
		Where("status <> ? AND due_date < CURRENT_DATE", model.InstallmentPaid).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
