package repository

import (
	"context"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BrokerRepository interface {
	Create(ctx context.Context, broker *model.Broker) error
	Update(ctx context.Context, broker *model.Broker) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Broker, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Broker, int64, error)

	CreateDue(ctx context.Context, due *model.BrokerDue) error
	UpdateDue(ctx context.Context, due *model.BrokerDue) error
	FindDueByID(ctx context.Context, id uuid.UUID) (*model.BrokerDue, error)
	ListDues(ctx context.Context, status, brokerID string, page, limit int) ([]model.BrokerDue, int64, error)
	CancelUnpaidByContract(ctx context.Context, contractID uuid.UUID) error
}

type brokerRepository struct {
	db *gorm.DB
}

func NewBrokerRepository(db *gorm.DB) BrokerRepository {
	return &brokerRepository{db: db}
}

func (r *brokerRepository) Create(ctx context.Context, broker *model.Broker) error {
	return GetDB(ctx, r.db).Create(broker).Error
}

func (r *brokerRepository) Update(ctx context.Context, broker *model.Broker) error {
	return GetDB(ctx, r.db).Save(broker).Error
}

func (r *brokerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Broker{}).Error
}

func (r *brokerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Broker, error) {
	var broker model.Broker
	if err := GetDB(ctx, r.db).First(&broker, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &broker, nil
}

func (r *brokerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Broker, int64, error) {
	var brokers []model.Broker
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Broker{})
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&brokers).Error; err != nil {
		return nil, 0, err
	}

	return brokers, total, nil
}

func (r *brokerRepository) CreateDue(ctx context.Context, due *model.BrokerDue) error {
	return GetDB(ctx, r.db).Create(due).Error
}

func (r *brokerRepository) UpdateDue(ctx context.Context, due *model.BrokerDue) error {
	return GetDB(ctx, r.db).Save(due).Error
}

func (r *brokerRepository) FindDueByID(ctx context.Context, id uuid.UUID) (*model.BrokerDue, error) {
	var due model.BrokerDue
	if err := GetDB(ctx, r.db).Preload("Broker").First(&due, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &due, nil
}

func (r *brokerRepository) ListDues(ctx context.Context, status, brokerID string, page, limit int) ([]model.BrokerDue, int64, error) {
	var dues []model.BrokerDue
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.BrokerDue{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if brokerID != "" {
		query = query.Where("broker_id = ?", brokerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Broker").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&dues).Error; err != nil {
		return nil, 0, err
	}

	return dues, total, nil
}

func (r *brokerRepository) CancelUnpaidByContract(ctx context.Context, contractID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.BrokerDue{}).
		Where("contract_id = ? AND status = ?", contractID, model.BrokerDueUnpaid).
		Update("status", model.BrokerDueCancelled).Error
}
