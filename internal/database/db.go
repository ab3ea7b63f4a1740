package database

import (
	"log"

	"estate-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs auto-migration for every core model. Split out of
// NewConnection so tests can run it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Partner{},
		&model.Unit{},
		&model.UnitPartner{},
		&model.Contract{},
		&model.Installment{},
		&model.Safe{},
		&model.Voucher{},
		&model.Broker{},
		&model.BrokerDue{},
		&model.PartnerDebt{},
		&model.AuditLog{},
	)
}
