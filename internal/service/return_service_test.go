package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSharedContract sells a unit co-owned by three partners (50/30/20)
// and returns everything a buyout test needs.
func seedSharedContract(t *testing.T, env *testEnv, price string, count int) (*model.Unit, []*model.Partner) {
	t.Helper()
	ctx := context.Background()

	customer := env.seedCustomer(t, "Buyer")
	partners := []*model.Partner{
		env.seedPartner(t, "Partner A"),
		env.seedPartner(t, "Partner B"),
		env.seedPartner(t, "Partner C"),
	}
	unit := env.seedUnit(t, "U-shared", price, partners, []string{"50", "30", "20"})

	req := monthlyContractRequest(price, count)
	req.UnitID = unit.ID.String()
	req.CustomerID = customer.ID.String()
	_, err := env.contracts.CreateContract(ctx, "", req)
	require.NoError(t, err)

	return unit, partners
}

func TestReturnUnitGeneratesDebtsPerSellerShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 4)
	buyer := partners[0]

	debts, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: buyer.ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)

	// two sellers × four schedule slots
	require.Len(t, debts, 8)

	totals := map[string]decimal.Decimal{}
	for _, debt := range debts {
		assert.Equal(t, buyer.ID.String(), debt.PayerPartnerID)
		assert.Equal(t, model.InstallmentUnpaid, debt.Status)
		prev, ok := totals[debt.PayeePartnerID]
		if !ok {
			prev = decimal.Zero
		}
		totals[debt.PayeePartnerID] = prev.Add(d(debt.Amount))
	}

	// each seller's debt principal equals their share of the price
	assert.True(t, totals[partners[1].ID.String()].Equal(d("30000.00")))
	assert.True(t, totals[partners[2].ID.String()].Equal(d("20000.00")))
}

func TestReturnUnitTransfersOwnershipAndReleasesUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 4)
	buyer := partners[1]

	_, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: buyer.ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)

	reloaded, err := env.unitRepo.FindByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitReturned, reloaded.Status)

	links, err := env.partnerRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, buyer.ID, links[0].PartnerID)
	assert.True(t, links[0].Percent.Equal(d("100")))

	// contract and its unpaid installments are gone
	_, err = env.contractRepo.FindByUnitID(ctx, unit.ID)
	require.Error(t, err)

	installments, err := env.installmentRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Empty(t, installments)
}

func TestReturnUnitDebtConservationWithRoundingShares(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Buyer")
	a := env.seedPartner(t, "Partner A")
	b := env.seedPartner(t, "Partner B")

	// 33.33/66.67 split over a 3-slot schedule forces cent remainders.
	unit := env.seedUnit(t, "U-round", "100000.00", []*model.Partner{a, b}, []string{"33.33", "66.67"})

	req := monthlyContractRequest("100000.00", 3)
	req.UnitID = unit.ID.String()
	req.CustomerID = customer.ID.String()
	_, err := env.contracts.CreateContract(ctx, "", req)
	require.NoError(t, err)

	debts, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: a.ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)
	require.Len(t, debts, 3)

	total := decimal.Zero
	for _, debt := range debts {
		total = total.Add(d(debt.Amount))
	}
	// 66.67% of 100000, to the cent
	assert.True(t, total.Equal(d("66670.00")), "debt total is %s", total)
}

func TestReturnUnitRejectsNonOwnerBuyer(t *testing.T) {
	env := newTestEnv(t)

	unit, _ := seedSharedContract(t, env, "100000.00", 4)
	outsider := env.seedPartner(t, "Outsider")

	_, err := env.returns.ReturnUnit(context.Background(), "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: outsider.ID.String(),
		Date:           "2025-06-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no share")
}

func TestReturnUnitRejectsUnitWithoutContract(t *testing.T) {
	env := newTestEnv(t)

	owner := env.seedPartner(t, "Owner")
	unit := env.seedUnit(t, "U-nocontract", "100000.00", []*model.Partner{owner}, []string{"100"})

	_, err := env.returns.ReturnUnit(context.Background(), "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: owner.ID.String(),
		Date:           "2025-06-01",
	})
	require.Error(t, err)
}

func TestPayPartnerDebtPartialThenSettled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 1)
	debts, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: partners[0].ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)
	require.Len(t, debts, 2)

	var target PartnerDebtResponse
	for _, debt := range debts {
		if debt.PayeePartnerID == partners[1].ID.String() {
			target = debt
		}
	}
	require.Equal(t, "30000.00", target.Amount)

	paid, err := env.returns.PayPartnerDebt(ctx, "", target.ID, PayPartnerDebtRequest{
		Amount: "10000.00",
		Date:   "2025-07-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "20000.00", paid.Amount)
	assert.Equal(t, model.InstallmentPartiallyPaid, paid.Status)

	paid, err = env.returns.PayPartnerDebt(ctx, "", target.ID, PayPartnerDebtRequest{
		Amount: "20000.00",
		Date:   "2025-08-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", paid.Amount)
	assert.Equal(t, model.InstallmentPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
}

func TestPayPartnerDebtRejectsOverpayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 1)
	debts, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: partners[0].ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)

	_, err = env.returns.PayPartnerDebt(ctx, "", debts[0].ID, PayPartnerDebtRequest{
		Amount: "999999.00",
		Date:   "2025-07-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the remaining debt")
}

func TestPartnerStatementProratesCollections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 4)
	safe := env.seedSafe(t, "Main", "0")

	_, err := env.payments.ApplyPayment(ctx, "", ApplyPaymentRequest{
		UnitID: unit.ID.String(),
		Amount: "10000.00",
		Date:   "2025-02-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	// partner B holds 30%
	statement, err := env.returns.PartnerStatement(ctx, partners[1].ID.String())
	require.NoError(t, err)

	require.Len(t, statement.Lines, 1)
	assert.Equal(t, "10000.00", statement.Lines[0].Amount)
	assert.Equal(t, "30.00", statement.Lines[0].Percent)
	assert.Equal(t, "3000.00", statement.Lines[0].Share)
	assert.Equal(t, "3000.00", statement.TotalReceipts)
	assert.Equal(t, "0.00", statement.TotalPayments)
}

func TestListPartnerDebtsFiltersByPayee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 2)
	_, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: partners[0].ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)

	debts, total, err := env.returns.ListPartnerDebts(ctx, partners[1].ID.String(), "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, debt := range debts {
		assert.Equal(t, partners[1].ID.String(), debt.PayeePartnerID)
	}
}

func TestPayPartnerDebtThroughSafeWritesReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, partners := seedSharedContract(t, env, "100000.00", 1)
	debts, err := env.returns.ReturnUnit(ctx, "", unit.ID.String(), ReturnUnitRequest{
		BuyerPartnerID: partners[0].ID.String(),
		Date:           "2025-06-01",
	})
	require.NoError(t, err)

	safe := env.seedSafe(t, "Main", "0")
	_, err = env.returns.PayPartnerDebt(ctx, "", debts[0].ID, PayPartnerDebtRequest{
		Amount: "5000.00",
		Date:   "2025-07-01",
		SafeID: safe.ID.String(),
	})
	require.NoError(t, err)

	reloaded, err := env.safeRepo.FindByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(d("5000.00")))

	debtID, err := uuid.Parse(debts[0].ID)
	require.NoError(t, err)

	var voucher model.Voucher
	require.NoError(t, env.db.First(&voucher, "reference_type = ? AND reference_id = ?", model.RefPartnerDebt, debtID).Error)
	assert.Equal(t, model.VoucherReceipt, voucher.Type)
	assert.True(t, voucher.Amount.Equal(d("5000.00")))
}
