package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentAllocatesOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 3 installments of 10000 each, due monthly
	_, unit, _ := env.seedContract(t, monthlyContractRequest("30000.00", 3))
	safe := env.seedSafe(t, "Main", "1000.00")

	res, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "15000.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "15000.00", res.Applied)
	assert.Equal(t, "0.00", res.Leftover)
	assert.Equal(t, "16000.00", res.SafeBalance)
	require.Len(t, res.Touched, 2)

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	assert.Equal(t, model.InstallmentPaid, installments[0].Status)
	assert.True(t, installments[0].Amount.IsZero())
	assert.NotNil(t, installments[0].PaidAt)

	assert.Equal(t, model.InstallmentPartiallyPaid, installments[1].Status)
	assert.True(t, installments[1].Amount.Equal(d("5000.00")))
	assert.True(t, installments[1].OriginalAmount.Equal(d("10000.00")))

	assert.Equal(t, model.InstallmentUnpaid, installments[2].Status)
	assert.True(t, installments[2].Amount.Equal(d("10000.00")))

	reloadedSafe, err := env.safeRepo.FindByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.True(t, reloadedSafe.Balance.Equal(d("16000.00")))
}

func TestApplyPaymentWritesReceiptVoucher(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contract, unit, _ := env.seedContract(t, monthlyContractRequest("30000.00", 3))
	safe := env.seedSafe(t, "Main", "0")

	res, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "10000.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	var voucher model.Voucher
	require.NoError(t, env.db.First(&voucher, "id = ?", res.VoucherID).Error)
	assert.Equal(t, model.VoucherReceipt, voucher.Type)
	assert.Equal(t, model.RefContract, voucher.ReferenceType)
	require.NotNil(t, voucher.ReferenceID)
	assert.Equal(t, contract.ID, voucher.ReferenceID.String())
	assert.Equal(t, res.VoucherNo, voucher.VoucherNo)
}

func TestApplyPaymentInstallmentTargetShapesReferenceOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("30000.00", 3))
	safe := env.seedSafe(t, "Main", "0")

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, installments, 3)
	last := installments[2]

	// Nominally pay the last installment; the money still lands on the oldest.
	res, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID:        unit.ID.String(),
		Amount:        "10000.00",
		Date:          "2025-02-01",
		SafeID:        safe.ID.String(),
		InstallmentID: last.ID.String(),
	})
	require.NoError(t, err)

	var voucher model.Voucher
	require.NoError(t, env.db.First(&voucher, "id = ?", res.VoucherID).Error)
	assert.Equal(t, model.RefInstallment, voucher.ReferenceType)
	require.NotNil(t, voucher.ReferenceID)
	assert.Equal(t, last.ID, *voucher.ReferenceID)

	reloaded, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentPaid, reloaded[0].Status)
	assert.Equal(t, model.InstallmentUnpaid, reloaded[2].Status)
}

func TestApplyPaymentOverpaymentTolerated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("1000.00", 2))
	safe := env.seedSafe(t, "Main", "0")

	res, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "1200.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", res.Applied)
	assert.Equal(t, "200.00", res.Leftover)
	// The safe keeps the full received amount, leftover included.
	assert.Equal(t, "1200.00", res.SafeBalance)
}

func TestApplyPaymentRejectsUnitWithoutContract(t *testing.T) {
	env := newTestEnv(t)

	owner := env.seedPartner(t, "Owner")
	unit := env.seedUnit(t, "U-empty", "100000.00", []*model.Partner{owner}, []string{"100"})
	safe := env.seedSafe(t, "Main", "0")

	_, err := env.payments.ApplyPayment(context.Background(), "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "100.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contract")
}

func TestApplyPaymentRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)

	_, unit, _ := env.seedContract(t, monthlyContractRequest("1000.00", 2))
	safe := env.seedSafe(t, "Main", "0")

	_, err := env.payments.ApplyPayment(context.Background(), "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "0",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.Error(t, err)
}

func TestRescheduleRedistributesDeltaToLaterInstallments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 4 installments of 2500 each
	_, unit, _ := env.seedContract(t, monthlyContractRequest("10000.00", 4))

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, installments, 4)

	// Cut the second installment from 2500 to 1500; the 1000 delta spreads
	// over the two later ones (500 each).
	_, err = env.payments.RescheduleInstallment(ctx, "", installments[1].ID.String(), RescheduleRequest{
		Amount: "1500.00",
	})
	require.NoError(t, err)

	reloaded, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)

	assert.True(t, reloaded[1].Amount.Equal(d("1500.00")))
	assert.True(t, reloaded[1].OriginalAmount.Equal(d("1500.00")))
	assert.True(t, reloaded[2].Amount.Equal(d("3000.00")))
	assert.True(t, reloaded[3].Amount.Equal(d("3000.00")))

	total := decimal.Zero
	for _, inst := range reloaded {
		total = total.Add(inst.Amount)
	}
	assert.True(t, total.Equal(d("10000.00")), "reschedule must conserve the plan total")
}

func TestRescheduleDeltaConservedWithRounding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("12000.00", 4))

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)

	// Delta of 100 over 3 later installments does not divide evenly in cents.
	_, err = env.payments.RescheduleInstallment(ctx, "", installments[0].ID.String(), RescheduleRequest{
		Amount: "2900.00",
	})
	require.NoError(t, err)

	reloaded, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)

	total := decimal.Zero
	for _, inst := range reloaded {
		total = total.Add(inst.Amount)
	}
	assert.True(t, total.Equal(d("12000.00")))
}

func TestRescheduleDueDateOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("10000.00", 2))

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)

	_, err = env.payments.RescheduleInstallment(ctx, "", installments[0].ID.String(), RescheduleRequest{
		DueDate: "2025-06-15",
	})
	require.NoError(t, err)

	reloaded, err := env.installmentRepo.FindByID(ctx, installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", reloaded.DueDate.Format("2006-01-02"))
	assert.True(t, reloaded.Amount.Equal(installments[0].Amount))
}

func TestRescheduleRejectsPaidInstallment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("1000.00", 2))
	safe := env.seedSafe(t, "Main", "0")

	_, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "500.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Equal(t, model.InstallmentPaid, installments[0].Status)

	_, err = env.payments.RescheduleInstallment(ctx, "", installments[0].ID.String(), RescheduleRequest{
		Amount: "100.00",
	})
	require.Error(t, err)
}

func TestRescheduleRejectsEmptyRequest(t *testing.T) {
	env := newTestEnv(t)

	_, unit, _ := env.seedContract(t, monthlyContractRequest("1000.00", 2))

	installments, err := env.installmentRepo.ListByUnit(context.Background(), unit.ID)
	require.NoError(t, err)

	_, err = env.payments.RescheduleInstallment(context.Background(), "", installments[0].ID.String(), RescheduleRequest{})
	require.Error(t, err)
}
