package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupService(env *testEnv) BackupService {
	return NewBackupService(env.db, env.auditRepo, repository.NewTransactionManager(env.db))
}

func TestBackupExportRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contract, unit, _ := env.seedContract(t, monthlyContractRequest("100000.00", 10))
	safe := env.seedSafe(t, "Main", "0")
	_, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "10000.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	backup := newBackupService(env)
	payload, err := backup.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, payload.Version)
	assert.Len(t, payload.Contracts, 1)
	assert.Len(t, payload.Installments, 10)
	assert.Len(t, payload.Vouchers, 1)

	// wreck the live data, then restore the snapshot
	require.NoError(t, env.db.Exec("DELETE FROM installments").Error)
	require.NoError(t, env.db.Exec("DELETE FROM vouchers").Error)
	require.NoError(t, env.db.Exec("DELETE FROM contracts").Error)

	require.NoError(t, backup.Restore(ctx, "", payload))

	restored, err := env.contractRepo.FindByUnitID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ContractNo, restored.ContractNo)

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Len(t, installments, 10)

	remaining, err := env.contracts.Remaining(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000.00", remaining.TotalPaid)

	reloadedSafe, err := env.safeRepo.FindByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.True(t, reloadedSafe.Balance.Equal(d("10000.00")))
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	env := newTestEnv(t)

	backup := newBackupService(env)
	err := backup.Restore(context.Background(), "", &BackupPayload{Version: 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backup version")

	err = backup.Restore(context.Background(), "", nil)
	require.Error(t, err)
}

func TestRestoreReplacesExistingRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	backup := newBackupService(env)

	first := env.seedCustomer(t, "Kept")
	payload, err := backup.Export(ctx)
	require.NoError(t, err)

	// rows created after the snapshot disappear on restore
	env.seedCustomer(t, "Dropped")
	require.NoError(t, backup.Restore(ctx, "", payload))

	var customers []model.Customer
	require.NoError(t, env.db.Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, first.ID, customers[0].ID)
	assert.Equal(t, "Kept", customers[0].Name)
}
