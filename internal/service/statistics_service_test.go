package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatisticsService(env *testEnv) StatisticsService {
	return NewStatisticsService(env.db, env.unitRepo, env.installmentRepo)
}

func TestOverviewEmptyDatabase(t *testing.T) {
	env := newTestEnv(t)

	overview, err := newStatisticsService(env).GetOverview(context.Background())
	require.NoError(t, err)

	assert.Zero(t, overview.ActiveContracts)
	assert.Equal(t, "0.00", overview.TotalContracted)
	assert.Equal(t, "0.00", overview.TotalCollected)
	assert.Equal(t, "0.00", overview.TotalOutstanding)
	assert.Equal(t, "0.00", overview.TotalSafeBalance)
}

func TestOverviewReflectsContractsAndCollections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("100000.00", 10))
	safe := env.seedSafe(t, "Main", "0")

	_, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "25000.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	overview, err := newStatisticsService(env).GetOverview(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, overview.ActiveContracts)
	assert.Equal(t, "100000.00", overview.TotalContracted)
	assert.Equal(t, "25000.00", overview.TotalCollected)
	assert.Equal(t, "75000.00", overview.TotalOutstanding)
	assert.Equal(t, "25000.00", overview.TotalSafeBalance)
	assert.EqualValues(t, 1, overview.UnitCounts[model.UnitSold])
}

func TestOverviewIgnoresVoidedAndManualVouchers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedContract(t, monthlyContractRequest("50000.00", 5))
	safe := env.seedSafe(t, "Main", "0")

	// manual receipts are treasury movements, not collections
	_, err := env.treasury.CreateVoucher(ctx, "", CreateVoucherRequest{
		Type:   model.VoucherReceipt,
		Amount: "9999.00",
		SafeID: safe.ID.String(),
		Date:   "2025-02-01",
	})
	require.NoError(t, err)

	overview, err := newStatisticsService(env).GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", overview.TotalCollected)
	assert.Equal(t, "50000.00", overview.TotalOutstanding)
}

func TestCustomerDeleteBlockedWhileContracted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customers := NewCustomerService(env.customerRepo, env.contractRepo, env.auditRepo, repository.NewTransactionManager(env.db))

	_, _, customer := env.seedContract(t, monthlyContractRequest("100000.00", 10))

	err := customers.DeleteCustomer(ctx, "", customer.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be deleted")

	free := env.seedCustomer(t, "Free Agent")
	require.NoError(t, customers.DeleteCustomer(ctx, "", free.ID.String()))
}

func TestPartnerDeleteBlockedWhileHoldingShares(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	partners := NewPartnerService(env.partnerRepo, env.auditRepo, repository.NewTransactionManager(env.db))

	holder := env.seedPartner(t, "Holder")
	env.seedUnit(t, "U-held", "100000.00", []*model.Partner{holder}, []string{"100"})

	err := partners.DeletePartner(ctx, "", holder.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be deleted")

	free := env.seedPartner(t, "Free")
	require.NoError(t, partners.DeletePartner(ctx, "", free.ID.String()))
}
