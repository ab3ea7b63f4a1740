package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type ReturnUnitRequest struct {
	BuyerPartnerID string `json:"buyer_partner_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
}

type PartnerDebtResponse struct {
	ID             string  `json:"id"`
	UnitID         string  `json:"unit_id"`
	PayerPartnerID string  `json:"payer_partner_id"`
	PayerName      string  `json:"payer_name,omitempty"`
	PayeePartnerID string  `json:"payee_partner_id"`
	PayeeName      string  `json:"payee_name,omitempty"`
	Amount         string  `json:"amount"`
	OriginalAmount string  `json:"original_amount"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	PaidAt         *string `json:"paid_at"`
}

type PayPartnerDebtRequest struct {
	Amount string `json:"amount" binding:"required"`
	Date   string `json:"date" binding:"required"`
	SafeID string `json:"safe_id"` // optional: route the settlement through a safe
}

type PartnerShareLine struct {
	VoucherID   string `json:"voucher_id"`
	VoucherNo   string `json:"voucher_no"`
	VoucherType string `json:"voucher_type"`
	UnitID      string `json:"unit_id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Percent     string `json:"percent"`
	Share       string `json:"share"`
}

type PartnerStatementResponse struct {
	PartnerID     string             `json:"partner_id"`
	PartnerName   string             `json:"partner_name"`
	TotalReceipts string             `json:"total_receipts"`
	TotalPayments string             `json:"total_payments"`
	Lines         []PartnerShareLine `json:"lines"`
}

// --- Interface ---

type ReturnService interface {
	ReturnUnit(ctx context.Context, userID, unitID string, req ReturnUnitRequest) ([]PartnerDebtResponse, error)
	PayPartnerDebt(ctx context.Context, userID, debtID string, req PayPartnerDebtRequest) (PartnerDebtResponse, error)
	ListPartnerDebts(ctx context.Context, partnerID, status string, page, limit int) ([]PartnerDebtResponse, int64, error)
	PartnerStatement(ctx context.Context, partnerID string) (PartnerStatementResponse, error)
}

type returnService struct {
	unitRepo        repository.UnitRepository
	partnerRepo     repository.PartnerRepository
	contractRepo    repository.ContractRepository
	installmentRepo repository.InstallmentRepository
	debtRepo        repository.PartnerDebtRepository
	safeRepo        repository.SafeRepository
	voucherRepo     repository.VoucherRepository
	brokerRepo      repository.BrokerRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewReturnService(
	unitRepo repository.UnitRepository,
	partnerRepo repository.PartnerRepository,
	contractRepo repository.ContractRepository,
	installmentRepo repository.InstallmentRepository,
	debtRepo repository.PartnerDebtRepository,
	safeRepo repository.SafeRepository,
	voucherRepo repository.VoucherRepository,
	brokerRepo repository.BrokerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ReturnService {
	return &returnService{
		unitRepo:        unitRepo,
		partnerRepo:     partnerRepo,
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		debtRepo:        debtRepo,
		safeRepo:        safeRepo,
		voucherRepo:     voucherRepo,
		brokerRepo:      brokerRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

// --- Implementation ---

// ReturnUnit cancels a unit's contract and buys out the co-owners. The
// buying partner takes 100% ownership; every selling partner's share of
// the contract price is prorated into as many PartnerDebt rows as the
// original schedule had installments, using the same equal-split rule, so
// each seller's debt principal matches their share to the cent.
func (s *returnService) ReturnUnit(ctx context.Context, userID, unitID string, req ReturnUnitRequest) ([]PartnerDebtResponse, error) {
	uid, err := uuid.Parse(unitID)
	if err != nil {
		return nil, fmt.Errorf("invalid unit id: %w", err)
	}
	buyerID, err := uuid.Parse(req.BuyerPartnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid buyer_partner_id: %w", err)
	}
	returnDate, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	unit, err := s.unitRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("unit not found: %w", err)
	}

	contract, err := s.contractRepo.FindByUnitID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unit %s has no contract to return", unit.Code)
		}
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	links, err := s.partnerRepo.ListByUnit(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit partners: %w", err)
	}

	var buyerLink *model.UnitPartner
	for i := range links {
		if links[i].PartnerID == buyerID {
			buyerLink = &links[i]
			break
		}
	}
	if buyerLink == nil {
		return nil, fmt.Errorf("buying partner holds no share in unit %s", unit.Code)
	}

	schedule, err := s.installmentRepo.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}
	scheduleCount := len(schedule)
	if scheduleCount == 0 {
		scheduleCount = 1
	}

	months := model.FrequencyMonths(contract.Frequency)
	if months == 0 {
		months = 1
	}

	var debts []model.PartnerDebt
	for _, link := range links {
		if link.PartnerID == buyerID {
			continue
		}
		principal := contract.TotalPrice.Mul(link.Percent).Div(hundred).Round(2)
		shares := splitEvenly(principal, scheduleCount)
		for i, share := range shares {
			debts = append(debts, model.PartnerDebt{
				UnitID:         uid,
				PayerPartnerID: buyerID,
				PayeePartnerID: link.PartnerID,
				Amount:         share,
				OriginalAmount: share,
				DueDate:        returnDate.AddDate(0, months*(i+1), 0),
				Status:         model.InstallmentUnpaid,
			})
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.installmentRepo.DeleteUnpaidByContract(txCtx, contract.ID); delErr != nil {
			return fmt.Errorf("failed to delete installments: %w", delErr)
		}
		if cancelErr := s.brokerRepo.CancelUnpaidByContract(txCtx, contract.ID); cancelErr != nil {
			return fmt.Errorf("failed to cancel broker dues: %w", cancelErr)
		}
		if delErr := s.contractRepo.Delete(txCtx, contract.ID); delErr != nil {
			return fmt.Errorf("failed to delete contract: %w", delErr)
		}

		ownership := []model.UnitPartner{{
			UnitID:    uid,
			PartnerID: buyerID,
			Percent:   hundred,
		}}
		if replaceErr := s.partnerRepo.ReplaceUnitLinks(txCtx, uid, ownership); replaceErr != nil {
			return fmt.Errorf("failed to transfer ownership: %w", replaceErr)
		}

		if statusErr := s.unitRepo.UpdateStatus(txCtx, uid, model.UnitReturned); statusErr != nil {
			return fmt.Errorf("failed to mark unit returned: %w", statusErr)
		}

		if createErr := s.debtRepo.BulkCreate(txCtx, debts); createErr != nil {
			return fmt.Errorf("failed to create partner debts: %w", createErr)
		}

		entry := newAuditEntry(userID, model.ActionReturnUnit, uid.String(), unit.Code, map[string]interface{}{
			"contract_no": contract.ContractNo,
			"buyer":       buyerID.String(),
			"debt_rows":   len(debts),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.debtRepo.ListByUnit(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to reload partner debts: %w", err)
	}

	res := make([]PartnerDebtResponse, 0, len(created))
	for _, d := range created {
		res = append(res, toPartnerDebtResponse(d))
	}
	return res, nil
}

// PayPartnerDebt settles (part of) an inter-partner debt. The treasury is
// only touched when a safe is supplied, in which case the settlement lands
// there as a receipt.
func (s *returnService) PayPartnerDebt(ctx context.Context, userID, debtID string, req PayPartnerDebtRequest) (PartnerDebtResponse, error) {
	id, err := uuid.Parse(debtID)
	if err != nil {
		return PartnerDebtResponse{}, fmt.Errorf("invalid debt id: %w", err)
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return PartnerDebtResponse{}, err
	}
	if !amount.IsPositive() {
		return PartnerDebtResponse{}, fmt.Errorf("amount must be greater than 0")
	}
	paidAt, err := parseDate(req.Date)
	if err != nil {
		return PartnerDebtResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	var debt *model.PartnerDebt
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		debt, findErr = s.debtRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("partner debt not found: %w", findErr)
		}
		if debt.Status == model.InstallmentPaid {
			return fmt.Errorf("partner debt is already settled")
		}
		if amount.GreaterThan(debt.Amount) {
			return fmt.Errorf("amount exceeds the remaining debt of %s", debt.Amount.StringFixed(2))
		}

		debt.Amount = debt.Amount.Sub(amount)
		if debt.Amount.LessThanOrEqual(paidEpsilon) {
			debt.Amount = decimal.Zero
			debt.Status = model.InstallmentPaid
			at := paidAt
			debt.PaidAt = &at
		} else {
			debt.Status = model.InstallmentPartiallyPaid
		}
		if updateErr := s.debtRepo.Update(txCtx, debt); updateErr != nil {
			return fmt.Errorf("failed to update partner debt: %w", updateErr)
		}

		if req.SafeID != "" {
			safeID, parseErr := uuid.Parse(req.SafeID)
			if parseErr != nil {
				return fmt.Errorf("invalid safe_id: %w", parseErr)
			}
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
				return genErr
			}
			refID := debt.ID
			voucher := model.Voucher{
				VoucherNo:     voucherNo,
				Type:          model.VoucherReceipt,
				Amount:        amount,
				SafeID:        safeID,
				Date:          paidAt,
				Description:   "partner debt settlement",
				ReferenceType: model.RefPartnerDebt,
				ReferenceID:   &refID,
			}
			if createErr := s.voucherRepo.Create(txCtx, &voucher); createErr != nil {
				return fmt.Errorf("failed to create voucher: %w", createErr)
			}
		}

		entry := newAuditEntry(userID, model.ActionPayPartnerDebt, debt.ID.String(), "", map[string]interface{}{
			"amount":    amount.StringFixed(2),
			"remaining": debt.Amount.StringFixed(2),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return PartnerDebtResponse{}, err
	}
	return toPartnerDebtResponse(*debt), nil
}

func (s *returnService) ListPartnerDebts(ctx context.Context, partnerID, status string, page, limit int) ([]PartnerDebtResponse, int64, error) {
	debts, total, err := s.debtRepo.List(ctx, partnerID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch partner debts: %w", err)
	}

	res := make([]PartnerDebtResponse, 0, len(debts))
	for _, d := range debts {
		res = append(res, toPartnerDebtResponse(d))
	}
	return res, total, nil
}

// PartnerStatement prorates every contract-linked voucher across the
// partner's ownership percentage. Reporting only; nothing is written.
func (s *returnService) PartnerStatement(ctx context.Context, partnerID string) (PartnerStatementResponse, error) {
	pid, err := uuid.Parse(partnerID)
	if err != nil {
		return PartnerStatementResponse{}, fmt.Errorf("invalid partner id: %w", err)
	}

	partner, err := s.partnerRepo.FindByID(ctx, pid)
	if err != nil {
		return PartnerStatementResponse{}, fmt.Errorf("partner not found: %w", err)
	}

	links, err := s.partnerRepo.ListByPartner(ctx, pid)
	if err != nil {
		return PartnerStatementResponse{}, fmt.Errorf("failed to load partner units: %w", err)
	}

	statement := PartnerStatementResponse{
		PartnerID:   pid.String(),
		PartnerName: partner.Name,
	}
	totalReceipts := decimal.Zero
	totalPayments := decimal.Zero

	for _, link := range links {
		contract, findErr := s.contractRepo.FindByUnitID(ctx, link.UnitID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				continue
			}
			return PartnerStatementResponse{}, fmt.Errorf("failed to load contract: %w", findErr)
		}

		installments, listErr := s.installmentRepo.ListByContract(ctx, contract.ID)
		if listErr != nil {
			return PartnerStatementResponse{}, fmt.Errorf("failed to load installments: %w", listErr)
		}

		refIDs := make([]uuid.UUID, 0, len(installments)+1)
		refIDs = append(refIDs, contract.ID)
		for _, inst := range installments {
			refIDs = append(refIDs, inst.ID)
		}

		vouchers, vErr := s.voucherRepo.ListByReferences(ctx, refIDs)
		if vErr != nil {
			return PartnerStatementResponse{}, fmt.Errorf("failed to load vouchers: %w", vErr)
		}

		for _, v := range vouchers {
			share := v.Amount.Mul(link.Percent).Div(hundred).Round(2)
			statement.Lines = append(statement.Lines, PartnerShareLine{
				VoucherID:   v.ID.String(),
				VoucherNo:   v.VoucherNo,
				VoucherType: v.Type,
				UnitID:      link.UnitID.String(),
				Date:        v.Date.Format("2006-01-02"),
				Amount:      v.Amount.StringFixed(2),
				Percent:     link.Percent.StringFixed(2),
				Share:       share.StringFixed(2),
			})
			if v.Type == model.VoucherReceipt {
				totalReceipts = totalReceipts.Add(share)
			} else {
				totalPayments = totalPayments.Add(share)
			}
		}
	}

	statement.TotalReceipts = totalReceipts.StringFixed(2)
	statement.TotalPayments = totalPayments.StringFixed(2)
	return statement, nil
}

// --- Mapping ---

func toPartnerDebtResponse(d model.PartnerDebt) PartnerDebtResponse {
	resp := PartnerDebtResponse{
		ID:             d.ID.String(),
		UnitID:         d.UnitID.String(),
		PayerPartnerID: d.PayerPartnerID.String(),
		PayeePartnerID: d.PayeePartnerID.String(),
		Amount:         d.Amount.StringFixed(2),
		OriginalAmount: d.OriginalAmount.StringFixed(2),
		DueDate:        d.DueDate.Format("2006-01-02"),
		Status:         d.Status,
	}
	if d.PayerPartner != nil {
		resp.PayerName = d.PayerPartner.Name
	}
	if d.PayeePartner != nil {
		resp.PayeeName = d.PayeePartner.Name
	}
	if d.PaidAt != nil {
		at := d.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &at
	}
	return resp
}
