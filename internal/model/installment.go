package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallmentType enum constants
const (
	InstallmentRegular     = "REGULAR"
	InstallmentAnnual      = "ANNUAL"
	InstallmentMaintenance = "MAINTENANCE"
)

// InstallmentStatus enum constants
const (
	InstallmentUnpaid        = "UNPAID"
	InstallmentPartiallyPaid = "PARTIALLY_PAID"
	InstallmentPaid          = "PAID"
)

// Installment is one scheduled partial payment of a contract's price.
// Amount is the mutable remaining balance; OriginalAmount never changes,
// so OriginalAmount − Amount is always the cumulative paid total.
type Installment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	UnitID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"unit_id"`
	Type           string          `gorm:"type:varchar(20);not null" json:"type"` // REGULAR, ANNUAL, MAINTENANCE
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_amount"`
	DueDate        time.Time       `gorm:"not null;index" json:"due_date"`
	Status         string          `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	PaidAt         *time.Time      `json:"paid_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (i *Installment) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
