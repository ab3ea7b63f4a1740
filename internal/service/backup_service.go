package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"gorm.io/gorm"
)

const backupVersion = 1

// BackupPayload is the full-database snapshot exchanged by export and
// restore. Order of fields mirrors insert order on restore (parents
// before children).
type BackupPayload struct {
	Version      int                 `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []model.User        `json:"users"`
	Customers    []model.Customer    `json:"customers"`
	Partners     []model.Partner     `json:"partners"`
	Brokers      []model.Broker      `json:"brokers"`
	Units        []model.Unit        `json:"units"`
	UnitPartners []model.UnitPartner `json:"unit_partners"`
	Safes        []model.Safe        `json:"safes"`
	Contracts    []model.Contract    `json:"contracts"`
	Installments []model.Installment `json:"installments"`
	Vouchers     []model.Voucher     `json:"vouchers"`
	BrokerDues   []model.BrokerDue   `json:"broker_dues"`
	PartnerDebts []model.PartnerDebt `json:"partner_debts"`
	AuditLogs    []model.AuditLog    `json:"audit_logs"`
}

type BackupService interface {
	Export(ctx context.Context) (*BackupPayload, error)
	Restore(ctx context.Context, userID string, payload *BackupPayload) error
}

type backupService struct {
	db        *gorm.DB
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewBackupService(db *gorm.DB, auditRepo repository.AuditRepository, txManager repository.TransactionManager) BackupService {
	return &backupService{db: db, auditRepo: auditRepo, txManager: txManager}
}

func (s *backupService) Export(ctx context.Context) (*BackupPayload, error) {
	payload := &BackupPayload{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
	}

	db := s.db.WithContext(ctx)
	loaders := []struct {
		name string
		dest interface{}
	}{
		{"users", &payload.Users},
		{"customers", &payload.Customers},
		{"partners", &payload.Partners},
		{"brokers", &payload.Brokers},
		{"units", &payload.Units},
		{"unit_partners", &payload.UnitPartners},
		{"safes", &payload.Safes},
		{"contracts", &payload.Contracts},
		{"installments", &payload.Installments},
		{"vouchers", &payload.Vouchers},
		{"broker_dues", &payload.BrokerDues},
		{"partner_debts", &payload.PartnerDebts},
		{"audit_logs", &payload.AuditLogs},
	}
	for _, l := range loaders {
		if err := db.Table(l.name).Find(l.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", l.name, err)
		}
	}

	return payload, nil
}

// Restore wipes every table and reinserts the snapshot in one
// transaction, so a failed restore leaves the database untouched.
func (s *backupService) Restore(ctx context.Context, userID string, payload *BackupPayload) error {
	if payload == nil {
		return errors.New("empty backup payload")
	}
	if payload.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %d", payload.Version)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		db := repository.GetDB(txCtx, s.db)

		// Children first on delete, parents first on insert.
		wipeOrder := []string{
			"audit_logs", "partner_debts", "broker_dues", "vouchers",
			"installments", "contracts", "unit_partners", "safes",
			"units", "brokers", "partners", "customers", "users",
		}
		for _, table := range wipeOrder {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		inserts := []struct {
			name string
			rows interface{}
			size int
		}{
			{"users", payload.Users, len(payload.Users)},
			{"customers", payload.Customers, len(payload.Customers)},
			{"partners", payload.Partners, len(payload.Partners)},
			{"brokers", payload.Brokers, len(payload.Brokers)},
			{"units", payload.Units, len(payload.Units)},
			{"unit_partners", payload.UnitPartners, len(payload.UnitPartners)},
			{"safes", payload.Safes, len(payload.Safes)},
			{"contracts", payload.Contracts, len(payload.Contracts)},
			{"installments", payload.Installments, len(payload.Installments)},
			{"vouchers", payload.Vouchers, len(payload.Vouchers)},
			{"broker_dues", payload.BrokerDues, len(payload.BrokerDues)},
			{"partner_debts", payload.PartnerDebts, len(payload.PartnerDebts)},
			{"audit_logs", payload.AuditLogs, len(payload.AuditLogs)},
		}
		for _, ins := range inserts {
			if ins.size == 0 {
				continue
			}
			if err := db.Table(ins.name).CreateInBatches(ins.rows, 500).Error; err != nil {
				return fmt.Errorf("failed to restore %s: %w", ins.name, err)
			}
		}

		entry := newAuditEntry(userID, model.ActionRestoreBackup, "", "", map[string]interface{}{
			"exported_at": payload.ExportedAt,
		})
		return s.auditRepo.Log(txCtx, entry)
	})
}
