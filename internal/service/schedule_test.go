package service

import (
	"testing"
	"time"

	"estate-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSplitEvenlySumsBackToTotal(t *testing.T) {
	cases := []struct {
		total string
		n     int
	}{
		{"100.00", 3},
		{"1000.00", 7},
		{"0.01", 2},
		{"999999.99", 12},
		{"50000.00", 1},
	}

	for _, tc := range cases {
		parts := splitEvenly(d(tc.total), tc.n)
		require.Len(t, parts, tc.n)

		sum := decimal.Zero
		for i, p := range parts {
			sum = sum.Add(p)
			if i < tc.n-1 {
				assert.Equal(t, p, p.RoundDown(2), "non-final part must be floored to cents")
			}
		}
		assert.True(t, sum.Equal(d(tc.total)), "parts of %s/%d sum to %s", tc.total, tc.n, sum)
	}
}

func TestSplitEvenlyLastAbsorbsRemainder(t *testing.T) {
	parts := splitEvenly(d("100.00"), 3)
	require.Len(t, parts, 3)
	assert.True(t, parts[0].Equal(d("33.33")))
	assert.True(t, parts[1].Equal(d("33.33")))
	assert.True(t, parts[2].Equal(d("33.34")))
}

func TestSplitEvenlyInvalidCount(t *testing.T) {
	assert.Nil(t, splitEvenly(d("100.00"), 0))
	assert.Nil(t, splitEvenly(d("100.00"), -1))
}

func TestBuildScheduleMonthly(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	plan, err := BuildSchedule(ScheduleInput{
		TotalPrice:       d("120000.00"),
		Frequency:        model.FreqMonthly,
		InstallmentCount: 12,
		StartDate:        start,
	})
	require.NoError(t, err)
	require.Len(t, plan, 12)

	sum := decimal.Zero
	for i, p := range plan {
		assert.Equal(t, model.InstallmentRegular, p.Type)
		assert.Equal(t, start.AddDate(0, i+1, 0), p.DueDate)
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(d("120000.00")))
}

func TestBuildScheduleQuarterlyCadence(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := BuildSchedule(ScheduleInput{
		TotalPrice:       d("40000.00"),
		Frequency:        model.FreqQuarterly,
		InstallmentCount: 4,
		StartDate:        start,
	})
	require.NoError(t, err)
	require.Len(t, plan, 4)

	for i, p := range plan {
		assert.Equal(t, start.AddDate(0, 3*(i+1), 0), p.DueDate)
	}
}

func TestBuildScheduleDeductionsAndAnnuals(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	plan, err := BuildSchedule(ScheduleInput{
		TotalPrice:         d("500000.00"),
		DiscountAmount:     d("20000.00"),
		DownPayment:        d("80000.00"),
		MaintenanceDeposit: d("25000.00"),
		Frequency:          model.FreqMonthly,
		InstallmentCount:   36,
		AnnualCount:        2,
		AnnualAmount:       d("50000.00"),
		StartDate:          start,
	})
	require.NoError(t, err)
	// 36 regular + 2 annual + 1 maintenance
	require.Len(t, plan, 39)

	var regular, annual, maintenance decimal.Decimal
	var annualDates []time.Time
	var maintenanceDue time.Time
	latest := start
	for _, p := range plan {
		switch p.Type {
		case model.InstallmentRegular:
			regular = regular.Add(p.Amount)
		case model.InstallmentAnnual:
			annual = annual.Add(p.Amount)
			annualDates = append(annualDates, p.DueDate)
		case model.InstallmentMaintenance:
			maintenance = maintenance.Add(p.Amount)
			maintenanceDue = p.DueDate
		}
		if p.Type != model.InstallmentMaintenance && p.DueDate.After(latest) {
			latest = p.DueDate
		}
	}

	// 500000 - 25000 maintenance - 20000 discount - 80000 down - 100000 annual
	assert.True(t, regular.Equal(d("275000.00")), "regular pool is %s", regular)
	assert.True(t, annual.Equal(d("100000.00")))
	assert.True(t, maintenance.Equal(d("25000.00")))

	require.Len(t, annualDates, 2)
	assert.Equal(t, start.AddDate(0, 12, 0), annualDates[0])
	assert.Equal(t, start.AddDate(0, 24, 0), annualDates[1])

	// maintenance lands one cadence step after the last other installment
	assert.Equal(t, latest.AddDate(0, 1, 0), maintenanceDue)
}

func TestBuildScheduleValidation(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := BuildSchedule(ScheduleInput{
		TotalPrice:       d("1000.00"),
		Frequency:        "WEEKLY",
		InstallmentCount: 10,
		StartDate:        start,
	})
	assert.Error(t, err)

	_, err = BuildSchedule(ScheduleInput{
		TotalPrice:       d("1000.00"),
		DiscountAmount:   d("600.00"),
		DownPayment:      d("600.00"),
		Frequency:        model.FreqMonthly,
		InstallmentCount: 10,
		StartDate:        start,
	})
	assert.Error(t, err, "deductions beyond the price must be rejected")

	_, err = BuildSchedule(ScheduleInput{
		TotalPrice:       d("1000.00"),
		Frequency:        model.FreqMonthly,
		InstallmentCount: 10,
		AnnualCount:      2,
		AnnualAmount:     d("600.00"),
		StartDate:        start,
	})
	assert.Error(t, err, "annual slice beyond the schedulable amount must be rejected")

	_, err = BuildSchedule(ScheduleInput{
		TotalPrice:       d("1000.00"),
		Frequency:        model.FreqMonthly,
		InstallmentCount: 10,
		AnnualCount:      4,
		AnnualAmount:     d("10.00"),
		StartDate:        start,
	})
	assert.Error(t, err, "more than 3 annual installments must be rejected")

	_, err = BuildSchedule(ScheduleInput{
		TotalPrice: d("1000.00"),
		Frequency:  model.FreqMonthly,
		StartDate:  start,
	})
	assert.Error(t, err, "missing installment count must be rejected")
}

func newOpenInstallment(amount string, due time.Time) *model.Installment {
	return &model.Installment{
		Amount:         d(amount),
		OriginalAmount: d(amount),
		DueDate:        due,
		Status:         model.InstallmentUnpaid,
	}
}

func TestAllocatePaymentOldestFirst(t *testing.T) {
	now := time.Now()
	first := newOpenInstallment("50.00", now)
	second := newOpenInstallment("50.00", now.AddDate(0, 1, 0))

	leftover := AllocatePayment([]*model.Installment{first, second}, d("70.00"), now)

	assert.True(t, leftover.IsZero())
	assert.Equal(t, model.InstallmentPaid, first.Status)
	assert.True(t, first.Amount.IsZero())
	require.NotNil(t, first.PaidAt)

	assert.Equal(t, model.InstallmentPartiallyPaid, second.Status)
	assert.True(t, second.Amount.Equal(d("30.00")))
	assert.Nil(t, second.PaidAt)
}

func TestAllocatePaymentSplitEqualsLumpSum(t *testing.T) {
	now := time.Now()

	lump := []*model.Installment{
		newOpenInstallment("50.00", now),
		newOpenInstallment("50.00", now.AddDate(0, 1, 0)),
	}
	AllocatePayment(lump, d("100.00"), now)

	split := []*model.Installment{
		newOpenInstallment("50.00", now),
		newOpenInstallment("50.00", now.AddDate(0, 1, 0)),
	}
	AllocatePayment(split, d("50.00"), now)
	AllocatePayment(split, d("50.00"), now)

	for i := range lump {
		assert.True(t, lump[i].Amount.Equal(split[i].Amount))
		assert.Equal(t, lump[i].Status, split[i].Status)
	}
}

func TestAllocatePaymentOverpaymentLeftover(t *testing.T) {
	now := time.Now()
	open := []*model.Installment{
		newOpenInstallment("40.00", now),
		newOpenInstallment("40.00", now.AddDate(0, 1, 0)),
	}

	leftover := AllocatePayment(open, d("100.00"), now)

	assert.True(t, leftover.Equal(d("20.00")))
	for _, inst := range open {
		assert.Equal(t, model.InstallmentPaid, inst.Status)
	}
}

func TestAllocatePaymentEpsilonSnap(t *testing.T) {
	now := time.Now()
	inst := newOpenInstallment("50.00", now)

	leftover := AllocatePayment([]*model.Installment{inst}, d("49.996"), now)

	assert.True(t, leftover.IsZero())
	assert.Equal(t, model.InstallmentPaid, inst.Status, "residue at or below half a cent snaps to paid")
	assert.True(t, inst.Amount.IsZero())
}

func TestAllocatePaymentJustAboveEpsilonStaysOpen(t *testing.T) {
	now := time.Now()
	inst := newOpenInstallment("50.00", now)

	AllocatePayment([]*model.Installment{inst}, d("49.99"), now)

	assert.Equal(t, model.InstallmentPartiallyPaid, inst.Status)
	assert.True(t, inst.Amount.Equal(d("0.01")))
}
