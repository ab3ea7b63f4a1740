package service

import (
	"context"
	"testing"

	"estate-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCode(t *testing.T) {
	assert.Equal(t, "A-3-12", UnitCode("A", "3", "12"))
	assert.Equal(t, "Tower_B-G-Shop_4", UnitCode(" Tower B ", "G", "Shop 4"))
}

func TestCreateUnitStartsAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit, err := env.units.CreateUnit(ctx, "", CreateUnitRequest{
		Building:   "A",
		Floor:      "3",
		Name:       "12",
		Area:       "145.5",
		TotalPrice: "850000.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "A-3-12", unit.Code)
	assert.Equal(t, model.UnitAvailable, unit.Status)
	assert.Equal(t, "850000.00", unit.TotalPrice)
	assert.Equal(t, "145.50", unit.Area)
}

func TestCreateUnitRejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := CreateUnitRequest{Building: "A", Floor: "1", Name: "5", TotalPrice: "100000.00"}
	_, err := env.units.CreateUnit(ctx, "", req)
	require.NoError(t, err)

	_, err = env.units.CreateUnit(ctx, "", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdateUnitRejectsRepriceWhileSold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("100000.00", 10))

	price := "200000.00"
	_, err := env.units.UpdateUnit(ctx, "", unit.ID.String(), UpdateUnitRequest{TotalPrice: &price})
	require.Error(t, err)

	status := model.UnitReserved
	_, err = env.units.UpdateUnit(ctx, "", unit.ID.String(), UpdateUnitRequest{Status: &status})
	require.Error(t, err)
}

func TestLinkPartnerEnforcesPercentBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.seedPartner(t, "Owner")
	unit := env.seedUnit(t, "U-link", "100000.00", nil, nil)

	_, err := env.units.LinkPartner(ctx, "", unit.ID.String(), LinkPartnerRequest{
		PartnerID: owner.ID.String(),
		Percent:   "0",
	})
	require.Error(t, err)

	_, err = env.units.LinkPartner(ctx, "", unit.ID.String(), LinkPartnerRequest{
		PartnerID: owner.ID.String(),
		Percent:   "100.01",
	})
	require.Error(t, err)
}

func TestLinkPartnerRejectsSumAbove100(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedPartner(t, "A")
	b := env.seedPartner(t, "B")
	unit := env.seedUnit(t, "U-sum", "100000.00", []*model.Partner{a}, []string{"70"})

	_, err := env.units.LinkPartner(ctx, "", unit.ID.String(), LinkPartnerRequest{
		PartnerID: b.ID.String(),
		Percent:   "30.01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeding 100")

	res, err := env.units.LinkPartner(ctx, "", unit.ID.String(), LinkPartnerRequest{
		PartnerID: b.ID.String(),
		Percent:   "30",
	})
	require.NoError(t, err)
	assert.Len(t, res.Partners, 2)
}

func TestLinkPartnerRejectsDuplicateShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedPartner(t, "A")
	unit := env.seedUnit(t, "U-dup", "100000.00", []*model.Partner{a}, []string{"40"})

	_, err := env.units.LinkPartner(ctx, "", unit.ID.String(), LinkPartnerRequest{
		PartnerID: a.ID.String(),
		Percent:   "10",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already holds a share")
}

func TestUnlinkPartnerBlockedWhileContractActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, unit, _ := env.seedContract(t, monthlyContractRequest("100000.00", 10))

	links, err := env.partnerRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)

	_, err = env.units.UnlinkPartner(ctx, "", unit.ID.String(), links[0].ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active contract")
}

func TestUnlinkPartnerRemovesShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.seedPartner(t, "A")
	b := env.seedPartner(t, "B")
	unit := env.seedUnit(t, "U-unlink", "100000.00", []*model.Partner{a, b}, []string{"60", "40"})

	links, err := env.partnerRepo.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)

	res, err := env.units.UnlinkPartner(ctx, "", unit.ID.String(), links[0].ID.String())
	require.NoError(t, err)
	assert.Len(t, res.Partners, 1)
}
