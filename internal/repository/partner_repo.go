package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *model.Partner) error
	Update(ctx context.Context, partner *model.Partner) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Partner, int64, error)

	// Unit ownership links
	LinkUnit(ctx context.Context, link *model.UnitPartner) error
	UnlinkUnit(ctx context.Context, linkID uuid.UUID) error
	ReplaceUnitLinks(ctx context.Context, unitID uuid.UUID, links []model.UnitPartner) error
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.UnitPartner, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]model.UnitPartner, error)
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Create(partner).Error
}

func (r *partnerRepository) Update(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Save(partner).Error
}

func (r *partnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Partner{}).Error
}

func (r *partnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	var partner model.Partner
	if err := GetDB(ctx, r.db).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Partner, int64, error) {
	var partners []model.Partner
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Partner{})
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&partners).Error; err != nil {
		return nil, 0, err
	}

	return partners, total, nil
}

func (r *partnerRepository) LinkUnit(ctx context.Context, link *model.UnitPartner) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *partnerRepository) UnlinkUnit(ctx context.Context, linkID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", linkID).Delete(&model.UnitPartner{}).Error
}

// ReplaceUnitLinks swaps a unit's ownership links wholesale. Used by the
// return/buyout flow to hand the unit to the buying partner.
func (r *partnerRepository) ReplaceUnitLinks(ctx context.Context, unitID uuid.UUID, links []model.UnitPartner) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("unit_id = ?", unitID).Delete(&model.UnitPartner{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return db.Create(&links).Error
}

func (r *partnerRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]model.UnitPartner, error) {
	var links []model.UnitPartner
	if err := GetDB(ctx, r.db).Where("partner_id = ?", partnerID).
		Order("created_at asc").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *partnerRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]model.UnitPartner, error) {
	var links []model.UnitPartner
	if err := GetDB(ctx, r.db).Preload("Partner").Where("unit_id = ?", unitID).
		Order("created_at asc").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
