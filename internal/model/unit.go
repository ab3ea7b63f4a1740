package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitStatus enum constants
const (
	UnitAvailable = "AVAILABLE"
	UnitReserved  = "RESERVED"
	UnitSold      = "SOLD"
	UnitReturned  = "RETURNED"
)

// Unit represents a sellable property record.
// Code is derived from building, floor and name and must stay unique.
type Unit struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Building    string          `gorm:"type:varchar(100);not null" json:"building"`
	Floor       string          `gorm:"type:varchar(50);not null" json:"floor"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Area        decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"area"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	Status      string          `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	Description string          `gorm:"type:text" json:"description"`
	Partners    []UnitPartner   `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"partners,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (u *Unit) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
