package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartnerDebt records that the buying partner of a returned unit owes a
// selling partner one scheduled slice of that seller's share of the
// contract price. Created only by the unit return/buyout flow.
type PartnerDebt struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"unit_id"`
	PayerPartnerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payer_partner_id"`
	PayerPartner   *Partner        `gorm:"foreignKey:PayerPartnerID" json:"payer_partner,omitempty"`
	PayeePartnerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payee_partner_id"`
	PayeePartner   *Partner        `gorm:"foreignKey:PayeePartnerID" json:"payee_partner,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_amount"`
	DueDate        time.Time       `gorm:"not null;index" json:"due_date"`
	Status         string          `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"` // shares installment status values
	PaidAt         *time.Time      `json:"paid_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (d *PartnerDebt) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
