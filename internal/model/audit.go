package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateCustomer    = "CREATE_CUSTOMER"
	ActionUpdateCustomer    = "UPDATE_CUSTOMER"
	ActionDeleteCustomer    = "DELETE_CUSTOMER"
	ActionCreateUnit        = "CREATE_UNIT"
	ActionUpdateUnit        = "UPDATE_UNIT"
	ActionLinkUnitPartner   = "LINK_UNIT_PARTNER"
	ActionUnlinkUnitPartner = "UNLINK_UNIT_PARTNER"
	ActionCreateContract    = "CREATE_CONTRACT"
	ActionDeleteContract    = "DELETE_CONTRACT"
	ActionApplyPayment      = "APPLY_PAYMENT"
	ActionReschedule        = "RESCHEDULE_INSTALLMENT"
	ActionReturnUnit        = "RETURN_UNIT"
	ActionPayPartnerDebt    = "PAY_PARTNER_DEBT"
	ActionCreateSafe        = "CREATE_SAFE"
	ActionDeleteSafe        = "DELETE_SAFE"
	ActionCreateVoucher     = "CREATE_VOUCHER"
	ActionVoidVoucher       = "VOID_VOUCHER"
	ActionTransferSafe      = "TRANSFER_BETWEEN_SAFES"
	ActionPayBrokerDue      = "PAY_BROKER_DUE"
	ActionRestoreBackup     = "RESTORE_BACKUP"
	ActionCreateUser        = "CREATE_USER"
	ActionUpdateUser        = "UPDATE_USER"
	ActionDeleteUser        = "DELETE_USER"
)

// AuditLog tracks Who, What, and When for every mutating operation
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system-originated events
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
