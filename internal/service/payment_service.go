package service

import (
	"context"
	"errors"
	"fmt"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"
	"estate-backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type ApplyPaymentRequest struct {
	UnitID        string `json:"unit_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Date          string `json:"date" binding:"required"`
	SafeID        string `json:"safe_id" binding:"required"`
	InstallmentID string `json:"installment_id"` // nominal target; allocation is still oldest-first
	Description   string `json:"description"`
}

type ApplyPaymentResponse struct {
	VoucherID   string                `json:"voucher_id"`
	VoucherNo   string                `json:"voucher_no"`
	Applied     string                `json:"applied"`
	Leftover    string                `json:"leftover"` // amount beyond total open debt, tolerated
	SafeBalance string                `json:"safe_balance"`
	Touched     []InstallmentResponse `json:"touched"`
}

type RescheduleRequest struct {
	Amount  string `json:"amount"`   // new remaining amount, optional
	DueDate string `json:"due_date"` // optional
}

// --- Interface ---

type PaymentService interface {
	ApplyPayment(ctx context.Context, userID string, req ApplyPaymentRequest) (ApplyPaymentResponse, error)
	RescheduleInstallment(ctx context.Context, userID, installmentID string, req RescheduleRequest) ([]InstallmentResponse, error)
	ListInstallmentsByUnit(ctx context.Context, unitID string) ([]InstallmentResponse, error)
}

type paymentService struct {
	installmentRepo repository.InstallmentRepository
	contractRepo    repository.ContractRepository
	unitRepo        repository.UnitRepository
	safeRepo        repository.SafeRepository
	voucherRepo     repository.VoucherRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *websocket.Hub
}

func NewPaymentService(
	installmentRepo repository.InstallmentRepository,
	contractRepo repository.ContractRepository,
	unitRepo repository.UnitRepository,
	safeRepo repository.SafeRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) PaymentService {
	return &paymentService{
		installmentRepo: installmentRepo,
		contractRepo:    contractRepo,
		unitRepo:        unitRepo,
		safeRepo:        safeRepo,
		voucherRepo:     voucherRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

// --- Implementation ---

// ApplyPayment records a receipt into the safe and spreads it across the
// unit's open installments, oldest due date first. The nominal
// installment target only shapes the voucher reference; allocation order
// never changes. Overpayment beyond the open debt is tolerated and
// surfaced in the response and audit entry.
func (s *paymentService) ApplyPayment(ctx context.Context, userID string, req ApplyPaymentRequest) (ApplyPaymentResponse, error) {
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		return ApplyPaymentResponse{}, fmt.Errorf("invalid unit_id: %w", err)
	}
	safeID, err := uuid.Parse(req.SafeID)
	if err != nil {
		return ApplyPaymentResponse{}, fmt.Errorf("invalid safe_id: %w", err)
	}

	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return ApplyPaymentResponse{}, err
	}
	if !amount.IsPositive() {
		return ApplyPaymentResponse{}, fmt.Errorf("amount must be greater than 0")
	}

	paidAt, err := parseDate(req.Date)
	if err != nil {
		return ApplyPaymentResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return ApplyPaymentResponse{}, fmt.Errorf("unit not found: %w", err)
	}

	contract, err := s.contractRepo.FindByUnitID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplyPaymentResponse{}, fmt.Errorf("unit %s has no contract to pay against", unit.Code)
		}
		return ApplyPaymentResponse{}, fmt.Errorf("failed to load contract: %w", err)
	}

	refType := model.RefContract
	refID := contract.ID
	if req.InstallmentID != "" {
		targetID, parseErr := uuid.Parse(req.InstallmentID)
		if parseErr != nil {
			return ApplyPaymentResponse{}, fmt.Errorf("invalid installment_id: %w", parseErr)
		}
		target, findErr := s.installmentRepo.FindByID(ctx, targetID)
		if findErr != nil {
			return ApplyPaymentResponse{}, fmt.Errorf("installment not found: %w", findErr)
		}
		if target.UnitID != unitID {
			return ApplyPaymentResponse{}, fmt.Errorf("installment does not belong to unit %s", unit.Code)
		}
		refType = model.RefInstallment
		refID = target.ID
	}

	var resp ApplyPaymentResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		safe, findErr := s.safeRepo.FindByID(txCtx, safeID)
		if findErr != nil {
			return fmt.Errorf("safe not found: %w", findErr)
		}

		safe.Balance = safe.Balance.Add(amount)
		if updateErr := s.safeRepo.Update(txCtx, safe); updateErr != nil {
			return fmt.Errorf("failed to update safe balance: %w", updateErr)
		}

		voucherNo, genErr := generateVoucherNo(txCtx, s.voucherRepo, model.VoucherReceipt)
		if genErr != nil {
			return fmt.Errorf("failed to generate voucher number: %w", genErr)
		}

		voucher := model.Voucher{
			VoucherNo:     voucherNo,
			Type:          model.VoucherReceipt,
			Amount:        amount,
			SafeID:        safe.ID,
			Date:          paidAt,
			Description:   req.Description,
			ReferenceType: refType,
			ReferenceID:   &refID,
		}
		if createErr := s.voucherRepo.Create(txCtx, &voucher); createErr != nil {
			return fmt.Errorf("failed to create voucher: %w", createErr)
		}

		open, listErr := s.installmentRepo.ListOpenByUnit(txCtx, unitID)
		if listErr != nil {
			return fmt.Errorf("failed to load open installments: %w", listErr)
		}

		refs := make([]*model.Installment, len(open))
		before := make([]string, len(open))
		for i := range open {
			refs[i] = &open[i]
			before[i] = open[i].Amount.StringFixed(2)
		}
		leftover := AllocatePayment(refs, amount, paidAt)

		touched := make([]InstallmentResponse, 0, len(open))
		for i := range open {
			if open[i].Amount.StringFixed(2) == before[i] {
				continue
			}
			if updateErr := s.installmentRepo.Update(txCtx, &open[i]); updateErr != nil {
				return fmt.Errorf("failed to update installment: %w", updateErr)
			}
			touched = append(touched, toInstallmentResponse(open[i]))
		}

		entry := newAuditEntry(userID, model.ActionApplyPayment, voucher.ID.String(), voucherNo, map[string]interface{}{
			"unit_code": unit.Code,
			"amount":    amount.StringFixed(2),
			"leftover":  leftover.StringFixed(2),
			"safe":      safe.Name,
		})
		if auditErr := s.auditRepo.Log(txCtx, entry); auditErr != nil {
			return auditErr
		}

		resp = ApplyPaymentResponse{
			VoucherID:   voucher.ID.String(),
			VoucherNo:   voucherNo,
			Applied:     amount.Sub(leftover).StringFixed(2),
			Leftover:    leftover.StringFixed(2),
			SafeBalance: safe.Balance.StringFixed(2),
			Touched:     touched,
		}
		return nil
	})
	if err != nil {
		return ApplyPaymentResponse{}, err
	}

	s.broadcastSafeChange(req.SafeID, resp.SafeBalance)
	return resp, nil
}

// RescheduleInstallment changes one unpaid installment's amount and/or due
// date. An amount delta is redistributed evenly across the later unpaid
// installments of the same contract, last one absorbing rounding; with no
// later installments the edited one simply keeps the new amount.
func (s *paymentService) RescheduleInstallment(ctx context.Context, userID, installmentID string, req RescheduleRequest) ([]InstallmentResponse, error) {
	id, err := uuid.Parse(installmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid installment id: %w", err)
	}
	if req.Amount == "" && req.DueDate == "" {
		return nil, fmt.Errorf("nothing to reschedule: provide amount and/or due_date")
	}

	target, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("installment not found: %w", err)
	}
	if target.Status != model.InstallmentUnpaid {
		return nil, fmt.Errorf("only unpaid installments can be rescheduled")
	}

	newAmount := target.Amount
	if req.Amount != "" {
		newAmount, err = parseAmount(req.Amount, "amount")
		if err != nil {
			return nil, err
		}
	}

	newDue := target.DueDate
	if req.DueDate != "" {
		newDue, err = parseDate(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
	}

	delta := target.Amount.Sub(newAmount)

	var result []InstallmentResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		siblings, listErr := s.installmentRepo.ListByContract(txCtx, target.ContractID)
		if listErr != nil {
			return fmt.Errorf("failed to load installments: %w", listErr)
		}

		// Unpaid installments strictly after the target in due-date order.
		var later []*model.Installment
		for i := range siblings {
			sib := &siblings[i]
			if sib.ID == target.ID || sib.Status != model.InstallmentUnpaid {
				continue
			}
			if sib.DueDate.After(target.DueDate) {
				later = append(later, sib)
			}
		}

		target.Amount = newAmount
		target.OriginalAmount = target.OriginalAmount.Sub(delta)
		target.DueDate = newDue
		if updateErr := s.installmentRepo.Update(txCtx, target); updateErr != nil {
			return fmt.Errorf("failed to update installment: %w", updateErr)
		}
		result = append(result, toInstallmentResponse(*target))

		if !delta.IsZero() && len(later) > 0 {
			shares := splitEvenly(delta, len(later))
			for i, sib := range later {
				sib.Amount = sib.Amount.Add(shares[i])
				sib.OriginalAmount = sib.OriginalAmount.Add(shares[i])
				if updateErr := s.installmentRepo.Update(txCtx, sib); updateErr != nil {
					return fmt.Errorf("failed to redistribute installment: %w", updateErr)
				}
				result = append(result, toInstallmentResponse(*sib))
			}
		}

		entry := newAuditEntry(userID, model.ActionReschedule, target.ID.String(), "", map[string]interface{}{
			"new_amount":    newAmount.StringFixed(2),
			"delta":         delta.StringFixed(2),
			"redistributed": len(later),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *paymentService) ListInstallmentsByUnit(ctx context.Context, unitID string) ([]InstallmentResponse, error) {
	id, err := uuid.Parse(unitID)
	if err != nil {
		return nil, fmt.Errorf("invalid unit id: %w", err)
	}

	installments, err := s.installmentRepo.ListByUnit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}

	res := make([]InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		res = append(res, toInstallmentResponse(inst))
	}
	return res, nil
}

func (s *paymentService) broadcastSafeChange(safeID, balance string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(websocket.Event{
		Type: websocket.EventSafeBalance,
		Payload: map[string]string{
			"safe_id": safeID,
			"balance": balance,
		},
	})
}
