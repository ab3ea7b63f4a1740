package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherType enum constants
const (
	VoucherReceipt = "RECEIPT"
	VoucherPayment = "PAYMENT"
)

// VoucherReference enum constants describe what a voucher settles
const (
	RefContract    = "CONTRACT"
	RefInstallment = "INSTALLMENT"
	RefBrokerDue   = "BROKER_DUE"
	RefPartnerDebt = "PARTNER_DEBT"
	RefTransfer    = "TRANSFER"
	RefManual      = "MANUAL"
)

// Safe is a named cash account with a running balance. The balance is
// only ever mutated in the same transaction as the voucher that moves it.
type Safe struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName pins the table to "safes"; gorm's inflection would otherwise
// pluralize Safe to "saves".
func (Safe) TableName() string {
	return "safes"
}

func (s *Safe) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Voucher is an append-only ledger entry against a safe. Vouchers are
// never deleted; voiding one reverses its balance effect and stamps VoidedAt.
type Voucher struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	VoucherNo     string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"voucher_no"`
	Type          string          `gorm:"type:varchar(20);not null;index" json:"type"` // RECEIPT, PAYMENT
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	SafeID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"safe_id"`
	Safe          *Safe           `gorm:"foreignKey:SafeID" json:"safe,omitempty"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Description   string          `gorm:"type:text" json:"description"`
	ReferenceType string          `gorm:"type:varchar(20);not null;index" json:"reference_type"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	VoidedAt      *time.Time      `json:"voided_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (v *Voucher) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
