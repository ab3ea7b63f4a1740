package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayBrokerDueSettlesFromSafe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broker := env.seedBroker(t, "Agency")
	req := monthlyContractRequest("200000.00", 10)
	req.BrokerID = broker.ID.String()
	req.BrokerAmount = "4000.00"
	env.seedContract(t, req)

	dues, _, err := env.brokers.ListDues(ctx, "", broker.ID.String(), 1, 10)
	require.NoError(t, err)
	require.Len(t, dues, 1)

	safe := env.seedSafe(t, "Main", "10000.00")
	paid, err := env.brokers.PayDue(ctx, "", dues[0].ID, PayBrokerDueRequest{
		SafeID: safe.ID.String(),
		Date:   "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BrokerDuePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	reloaded, err := env.safeRepo.FindByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(d("6000.00")))

	var voucher model.Voucher
	require.NoError(t, env.db.First(&voucher, "reference_type = ?", model.RefBrokerDue).Error)
	assert.Equal(t, model.VoucherPayment, voucher.Type)
	assert.True(t, voucher.Amount.Equal(d("4000.00")))
}

func TestPayBrokerDueRejectsInsufficientSafe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broker := env.seedBroker(t, "Agency")
	req := monthlyContractRequest("200000.00", 10)
	req.BrokerID = broker.ID.String()
	req.BrokerAmount = "4000.00"
	env.seedContract(t, req)

	dues, _, err := env.brokers.ListDues(ctx, "", broker.ID.String(), 1, 10)
	require.NoError(t, err)
	require.Len(t, dues, 1)

	safe := env.seedSafe(t, "Main", "1000.00")
	_, err = env.brokers.PayDue(ctx, "", dues[0].ID, PayBrokerDueRequest{
		SafeID: safe.ID.String(),
		Date:   "2025-03-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")

	// balance untouched, due still open
	reloaded, err := env.safeRepo.FindByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(d("1000.00")))

	dues, _, err = env.brokers.ListDues(ctx, model.BrokerDueUnpaid, broker.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, dues, 1)
}

func TestPayBrokerDueRejectsDoubleSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broker := env.seedBroker(t, "Agency")
	req := monthlyContractRequest("200000.00", 10)
	req.BrokerID = broker.ID.String()
	req.BrokerAmount = "4000.00"
	env.seedContract(t, req)

	dues, _, err := env.brokers.ListDues(ctx, "", broker.ID.String(), 1, 10)
	require.NoError(t, err)
	require.Len(t, dues, 1)

	safe := env.seedSafe(t, "Main", "10000.00")
	payReq := PayBrokerDueRequest{SafeID: safe.ID.String(), Date: "2025-03-01"}

	_, err = env.brokers.PayDue(ctx, "", dues[0].ID, payReq)
	require.NoError(t, err)

	_, err = env.brokers.PayDue(ctx, "", dues[0].ID, payReq)
	require.Error(t, err)
}
