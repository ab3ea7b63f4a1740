package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerDebtRepository interface {
	BulkCreate(ctx context.Context, debts []model.PartnerDebt) error
	Update(ctx context.Context, debt *model.PartnerDebt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PartnerDebt, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.PartnerDebt, error)
	List(ctx context.Context, partnerID, status string, page, limit int) ([]model.PartnerDebt, int64, error)
}

type partnerDebtRepository struct {
	db *gorm.DB
}

func NewPartnerDebtRepository(db *gorm.DB) PartnerDebtRepository {
	return &partnerDebtRepository{db: db}
}

func (r *partnerDebtRepository) BulkCreate(ctx context.Context, debts []model.PartnerDebt) error {
	if len(debts) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&debts).Error
}

func (r *partnerDebtRepository) Update(ctx context.Context, debt *model.PartnerDebt) error {
	return GetDB(ctx, r.db).Save(debt).Error
}

func (r *partnerDebtRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PartnerDebt, error) {
	var debt model.PartnerDebt
	if err := GetDB(ctx, r.db).Preload("PayerPartner").Preload("PayeePartner").
		First(&debt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *partnerDebtRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.PartnerDebt, error) {
	var debts []model.PartnerDebt
	if err := GetDB(ctx, r.db).Preload("PayerPartner").Preload("PayeePartner").
		Where("unit_id = ?", unitID).Order("due_date asc, created_at asc").Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *partnerDebtRepository) List(ctx context.Context, partnerID, status string, page, limit int) ([]model.PartnerDebt, int64, error) {
	var debts []model.PartnerDebt
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PartnerDebt{})
	if partnerID != "" {
		query = query.Where("payer_partner_id = ? OR payee_partner_id = ?", partnerID, partnerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("PayerPartner").Preload("PayeePartner").
		Order("due_date asc").Offset(offset).Limit(limit).Find(&debts).Error; err != nil {
		return nil, 0, err
	}

	return debts, total, nil
}
