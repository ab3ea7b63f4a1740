package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherListFilter narrows voucher listings
type VoucherListFilter struct {
	Type          string
	SafeID        string
	ReferenceType string
	Page          int
	Limit         int
}

type VoucherRepository interface {
	Create(ctx context.Context, voucher *model.Voucher) error
	Update(ctx context.Context, voucher *model.Voucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)
	List(ctx context.Context, filter VoucherListFilter) ([]model.Voucher, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	SumReceiptsByReferences(ctx context.Context, refIDs []uuid.UUID) (decimal.Decimal, error)
	ListByReferences(ctx context.Context, refIDs []uuid.UUID) ([]model.Voucher, error)
}

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *model.Voucher) error {
	return GetDB(ctx, r.db).Create(voucher).Error
}

func (r *voucherRepository) Update(ctx context.Context, voucher *model.Voucher) error {
	return GetDB(ctx, r.db).Save(voucher).Error
}

func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	var voucher model.Voucher
	if err := GetDB(ctx, r.db).Preload("Safe").First(&voucher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) List(ctx context.Context, filter VoucherListFilter) ([]model.Voucher, int64, error) {
	var vouchers []model.Voucher
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Voucher{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.SafeID != "" {
		query = query.Where("safe_id = ?", filter.SafeID)
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Safe").Order("date desc, created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}

	return vouchers, total, nil
}

func (r *voucherRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Voucher{}).
		Where("voucher_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumReceiptsByReferences totals the non-voided receipt vouchers whose
// reference is any of the given ids. Drives the remaining-balance calculation.
func (r *voucherRepository) SumReceiptsByReferences(ctx context.Context, refIDs []uuid.UUID) (decimal.Decimal, error) {
	if len(refIDs) == 0 {
		return decimal.Zero, nil
	}

	var raw *string
	if err := GetDB(ctx, r.db).Model(&model.Voucher{}).
		Where("type = ? AND voided_at IS NULL AND reference_id IN ?", model.VoucherReceipt, refIDs).
		Select("CAST(SUM(amount) AS TEXT)").Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *voucherRepository) ListByReferences(ctx context.Context, refIDs []uuid.UUID) ([]model.Voucher, error) {
	if len(refIDs) == 0 {
		return nil, nil
	}
	var vouchers []model.Voucher
	if err := GetDB(ctx, r.db).
		Where("voided_at IS NULL AND reference_id IN ?", refIDs).
		Order("date asc, created_at asc").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}
