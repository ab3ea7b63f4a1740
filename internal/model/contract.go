package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Frequency enum constants for the cadence of the regular installment schedule.
const (
	FreqMonthly    = "MONTHLY"
	FreqQuarterly  = "QUARTERLY"
	FreqSemiannual = "SEMIANNUAL"
	FreqAnnual     = "ANNUAL"
)

// FrequencyMonths maps a cadence to months per period. Returns 0 for
// unknown values so callers can validate.
func FrequencyMonths(freq string) int {
	switch freq {
	case FreqMonthly:
		return 1
	case FreqQuarterly:
		return 3
	case FreqSemiannual:
		return 6
	case FreqAnnual:
		return 12
	}
	return 0
}

// Contract represents a unit sale to a customer with an installment plan.
// At most one contract may exist per unit at a time.
type Contract struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNo         string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"contract_no"`
	UnitID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"unit_id"`
	Unit               *Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	DownPayment        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"down_payment"`
	MaintenanceDeposit decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"maintenance_deposit"`
	BrokerID           *uuid.UUID      `gorm:"type:uuid;index" json:"broker_id"`
	Broker             *Broker         `gorm:"foreignKey:BrokerID" json:"broker,omitempty"`
	BrokerPercent      decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"broker_percent"`
	BrokerAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"broker_amount"`
	Frequency          string          `gorm:"type:varchar(20);not null" json:"frequency"` // MONTHLY, QUARTERLY, SEMIANNUAL, ANNUAL
	InstallmentCount   int             `gorm:"not null" json:"installment_count"`
	AnnualCount        int             `gorm:"not null;default:0" json:"annual_count"` // 0–3 extra annual bonus installments
	AnnualAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"annual_amount"`
	StartDate          time.Time       `gorm:"not null" json:"start_date"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (c *Contract) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
