package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Partner represents a fractional owner of units, entitled to a share of their cash flows
type Partner struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Partner) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// UnitPartner links a partner to a unit with an ownership percentage.
// The percentages of one unit may never sum above 100, and must equal
// exactly 100 before a contract can be created on the unit.
type UnitPartner struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_unit_partner,unique" json:"unit_id"`
	PartnerID uuid.UUID       `gorm:"type:uuid;not null;index:idx_unit_partner,unique" json:"partner_id"`
	Partner   *Partner        `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Percent   decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"percent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (up *UnitPartner) BeforeCreate(*gorm.DB) error {
	ensureID(&up.ID)
	return nil
}
