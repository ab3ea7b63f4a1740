package service

import (
	"context"
	"fmt"
	"testing"

	"estate-backend/internal/database"
	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service graph against an in-memory database so
// tests exercise the same transaction paths as production.
type testEnv struct {
	db *gorm.DB

	customerRepo    repository.CustomerRepository
	partnerRepo     repository.PartnerRepository
	unitRepo        repository.UnitRepository
	contractRepo    repository.ContractRepository
	installmentRepo repository.InstallmentRepository
	safeRepo        repository.SafeRepository
	voucherRepo     repository.VoucherRepository
	brokerRepo      repository.BrokerRepository
	debtRepo        repository.PartnerDebtRepository
	auditRepo       repository.AuditRepository

	units     UnitService
	contracts ContractService
	payments  PaymentService
	treasury  TreasuryService
	returns   ReturnService
	brokers   BrokerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:              db,
		customerRepo:    repository.NewCustomerRepository(db),
		partnerRepo:     repository.NewPartnerRepository(db),
		unitRepo:        repository.NewUnitRepository(db),
		contractRepo:    repository.NewContractRepository(db),
		installmentRepo: repository.NewInstallmentRepository(db),
		safeRepo:        repository.NewSafeRepository(db),
		voucherRepo:     repository.NewVoucherRepository(db),
		brokerRepo:      repository.NewBrokerRepository(db),
		debtRepo:        repository.NewPartnerDebtRepository(db),
		auditRepo:       repository.NewAuditRepository(db),
	}

	txManager := repository.NewTransactionManager(db)

	env.units = NewUnitService(env.unitRepo, env.partnerRepo, env.contractRepo, env.auditRepo, txManager)
	env.contracts = NewContractService(
		env.contractRepo, env.installmentRepo, env.unitRepo, env.customerRepo,
		env.partnerRepo, env.brokerRepo, env.voucherRepo, env.auditRepo, txManager,
	)
	env.payments = NewPaymentService(
		env.installmentRepo, env.contractRepo, env.unitRepo, env.safeRepo,
		env.voucherRepo, env.auditRepo, txManager, nil,
	)
	env.treasury = NewTreasuryService(env.safeRepo, env.voucherRepo, env.auditRepo, txManager, nil)
	env.returns = NewReturnService(
		env.unitRepo, env.partnerRepo, env.contractRepo, env.installmentRepo,
		env.debtRepo, env.safeRepo, env.voucherRepo, env.brokerRepo, env.auditRepo, txManager,
	)
	env.brokers = NewBrokerService(env.brokerRepo, env.safeRepo, env.voucherRepo, env.auditRepo, txManager)

	return env
}

func (e *testEnv) seedCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, Phone: "01000000000"}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) seedPartner(t *testing.T, name string) *model.Partner {
	t.Helper()
	p := &model.Partner{Name: name}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) seedBroker(t *testing.T, name string) *model.Broker {
	t.Helper()
	b := &model.Broker{Name: name}
	require.NoError(t, e.db.Create(b).Error)
	return b
}

// seedUnit creates an available unit and links owners with the given
// percentages (one link per partner, in order).
func (e *testEnv) seedUnit(t *testing.T, name, price string, owners []*model.Partner, percents []string) *model.Unit {
	t.Helper()
	u := &model.Unit{
		Code:       UnitCode("A", "1", name),
		Building:   "A",
		Floor:      "1",
		Name:       name,
		TotalPrice: d(price),
		Status:     model.UnitAvailable,
	}
	require.NoError(t, e.db.Create(u).Error)

	for i, owner := range owners {
		link := &model.UnitPartner{UnitID: u.ID, PartnerID: owner.ID, Percent: d(percents[i])}
		require.NoError(t, e.db.Create(link).Error)
	}
	return u
}

func (e *testEnv) seedSafe(t *testing.T, name, balance string) *model.Safe {
	t.Helper()
	s := &model.Safe{Name: name, Balance: d(balance)}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

// seedContract provisions customer + sole-owner unit and sells it through
// the contract service so installments, unit status and broker dues all
// come from the real creation path.
func (e *testEnv) seedContract(t *testing.T, req CreateContractRequest) (ContractResponse, *model.Unit, *model.Customer) {
	t.Helper()

	customer := e.seedCustomer(t, "Test Buyer")
	owner := e.seedPartner(t, fmt.Sprintf("Owner of %s", req.TotalPrice))
	unit := e.seedUnit(t, fmt.Sprintf("U-%s", req.TotalPrice), req.TotalPrice, []*model.Partner{owner}, []string{"100"})

	req.UnitID = unit.ID.String()
	req.CustomerID = customer.ID.String()

	contract, err := e.contracts.CreateContract(context.Background(), "", req)
	require.NoError(t, err)
	return contract, unit, customer
}
