package service

import (
	"fmt"
	"time"

	"estate-backend/internal/model"

	"github.com/shopspring/decimal"
)

// paidEpsilon is the snap-to-zero threshold: a remaining balance at or
// below half a cent counts as fully paid.
var paidEpsilon = decimal.RequireFromString("0.005")

// ScheduleInput carries everything needed to build a contract's
// installment plan.
type ScheduleInput struct {
	TotalPrice         decimal.Decimal
	DiscountAmount     decimal.Decimal
	DownPayment        decimal.Decimal
	MaintenanceDeposit decimal.Decimal
	Frequency          string // MONTHLY, QUARTERLY, SEMIANNUAL, ANNUAL
	InstallmentCount   int
	AnnualCount        int // 0–3 extra annual bonus installments
	AnnualAmount       decimal.Decimal
	StartDate          time.Time
}

// ScheduledInstallment is one planned obligation before persistence.
type ScheduledInstallment struct {
	Type    string
	Amount  decimal.Decimal
	DueDate time.Time
}

// splitEvenly divides total into n parts rounded down to the cent, with
// the last part absorbing the rounding remainder so the parts always sum
// back to total exactly.
func splitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	parts := make([]decimal.Decimal, n)
	per := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = per
		running = running.Add(per)
	}
	parts[n-1] = total.Sub(running)
	return parts
}

// BuildSchedule generates the ordered installment plan for a contract.
//
// The maintenance deposit is carved out of the price first, then discount
// and down payment reduce the amount left to schedule. Annual bonus
// installments take a fixed slice; the rest is split evenly across the
// regular installments with the last one absorbing rounding.
func BuildSchedule(in ScheduleInput) ([]ScheduledInstallment, error) {
	months := model.FrequencyMonths(in.Frequency)
	if months == 0 {
		return nil, fmt.Errorf("invalid frequency %q", in.Frequency)
	}
	if in.AnnualCount < 0 || in.AnnualCount > 3 {
		return nil, fmt.Errorf("annual installment count must be between 0 and 3")
	}

	installmentBase := in.TotalPrice.Sub(in.MaintenanceDeposit)
	amountToSchedule := installmentBase.Sub(in.DiscountAmount).Sub(in.DownPayment)
	if amountToSchedule.IsNegative() {
		return nil, fmt.Errorf("discount and down payment exceed the contract price")
	}

	annualTotal := in.AnnualAmount.Mul(decimal.NewFromInt(int64(in.AnnualCount)))
	if annualTotal.GreaterThan(amountToSchedule) {
		return nil, fmt.Errorf("annual installments exceed the amount to schedule")
	}

	regularPool := amountToSchedule.Sub(annualTotal)
	if regularPool.IsPositive() && in.InstallmentCount <= 0 {
		return nil, fmt.Errorf("installment count is required when an amount remains to schedule")
	}

	var plan []ScheduledInstallment

	if in.InstallmentCount > 0 && regularPool.IsPositive() {
		amounts := splitEvenly(regularPool, in.InstallmentCount)
		for i, amount := range amounts {
			plan = append(plan, ScheduledInstallment{
				Type:    model.InstallmentRegular,
				Amount:  amount,
				DueDate: in.StartDate.AddDate(0, months*(i+1), 0),
			})
		}
	}

	for j := 0; j < in.AnnualCount; j++ {
		plan = append(plan, ScheduledInstallment{
			Type:    model.InstallmentAnnual,
			Amount:  in.AnnualAmount,
			DueDate: in.StartDate.AddDate(0, 12*(j+1), 0),
		})
	}

	if in.MaintenanceDeposit.IsPositive() {
		due := in.StartDate
		if len(plan) > 0 {
			latest := plan[0].DueDate
			for _, p := range plan[1:] {
				if p.DueDate.After(latest) {
					latest = p.DueDate
				}
			}
			due = latest.AddDate(0, months, 0)
		}
		plan = append(plan, ScheduledInstallment{
			Type:    model.InstallmentMaintenance,
			Amount:  in.MaintenanceDeposit,
			DueDate: due,
		})
	}

	return plan, nil
}

// AllocatePayment spreads amount across the given open installments,
// which must already be sorted by ascending due date. Each installment in
// order takes as much as it still carries; a remainder at or below
// paidEpsilon snaps to zero and marks the installment paid. Returns the
// leftover that exceeded the total open debt.
func AllocatePayment(open []*model.Installment, amount decimal.Decimal, paidAt time.Time) decimal.Decimal {
	left := amount
	for _, inst := range open {
		if !left.IsPositive() {
			break
		}

		applied := decimal.Min(left, inst.Amount)
		inst.Amount = inst.Amount.Sub(applied)
		left = left.Sub(applied)

		if inst.Amount.LessThanOrEqual(paidEpsilon) {
			inst.Amount = decimal.Zero
			inst.Status = model.InstallmentPaid
			at := paidAt
			inst.PaidAt = &at
		} else {
			inst.Status = model.InstallmentPartiallyPaid
		}
	}
	return left
}
