package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BrokerDueStatus enum constants
const (
	BrokerDueUnpaid    = "UNPAID"
	BrokerDuePaid      = "PAID"
	BrokerDueCancelled = "CANCELLED"
)

// Broker is a commission-earning intermediary on contracts
type Broker struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Broker) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// BrokerDue is a commission obligation created alongside a contract,
// paid out of a designated safe.
type BrokerDue struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	BrokerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"broker_id"`
	Broker     *Broker         `gorm:"foreignKey:BrokerID" json:"broker,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status     string          `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	SafeID     *uuid.UUID      `gorm:"type:uuid" json:"safe_id"` // safe the due was paid from
	PaidAt     *time.Time      `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (d *BrokerDue) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
