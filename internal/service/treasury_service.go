package service

import (
	"context"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"
	"estate-backend/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateSafeRequest struct {
	Name           string `json:"name" binding:"required"`
	OpeningBalance string `json:"opening_balance"`
}

type SafeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

type CreateVoucherRequest struct {
	Type        string `json:"type" binding:"required,oneof=RECEIPT PAYMENT"`
	Amount      string `json:"amount" binding:"required"`
	SafeID      string `json:"safe_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
}

type VoucherResponse struct {
	ID            string  `json:"id"`
	VoucherNo     string  `json:"voucher_no"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	SafeID        string  `json:"safe_id"`
	SafeName      string  `json:"safe_name,omitempty"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	ReferenceType string  `json:"reference_type"`
	ReferenceID   *string `json:"reference_id"`
	VoidedAt      *string `json:"voided_at"`
	CreatedAt     string  `json:"created_at"`
}

type TransferRequest struct {
	FromSafeID  string `json:"from_safe_id" binding:"required"`
	ToSafeID    string `json:"to_safe_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
}

type TransferResponse struct {
	OutVoucher VoucherResponse `json:"out_voucher"`
	InVoucher  VoucherResponse `json:"in_voucher"`
}

// --- Interface ---

type TreasuryService interface {
	CreateSafe(ctx context.Context, userID string, req CreateSafeRequest) (SafeResponse, error)
	DeleteSafe(ctx context.Context, userID, id string) error
	ListSafes(ctx context.Context) ([]SafeResponse, error)
	CreateVoucher(ctx context.Context, userID string, req CreateVoucherRequest) (VoucherResponse, error)
	VoidVoucher(ctx context.Context, userID, id string) (VoucherResponse, error)
	ListVouchers(ctx context.Context, filter repository.VoucherListFilter) ([]VoucherResponse, int64, error)
	Transfer(ctx context.Context, userID string, req TransferRequest) (TransferResponse, error)
}

type treasuryService struct {
	safeRepo    repository.SafeRepository
	voucherRepo repository.VoucherRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewTreasuryService(
	safeRepo repository.SafeRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) TreasuryService {
	return &treasuryService{
		safeRepo:    safeRepo,
		voucherRepo: voucherRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *treasuryService) CreateSafe(ctx context.Context, userID string, req CreateSafeRequest) (SafeResponse, error) {
	opening, err := parseOptionalAmount(req.OpeningBalance, "opening_balance")
	if err != nil {
		return SafeResponse{}, err
	}

	safe := model.Safe{Name: req.Name, Balance: opening}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.safeRepo.Create(txCtx, &safe); createErr != nil {
			return fmt.Errorf("failed to create safe: %w", createErr)
		}
		entry := newAuditEntry(userID, model.ActionCreateSafe, safe.ID.String(), safe.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return SafeResponse{}, err
	}
	return toSafeResponse(safe), nil
}

func (s *treasuryService) DeleteSafe(ctx context.Context, userID, id string) error {
	safeID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid safe id: %w", err)
	}

	safe, err := s.safeRepo.FindByID(ctx, safeID)
	if err != nil {
		return fmt.Errorf("safe not found: %w", err)
	}
	if !safe.Balance.IsZero() {
		return fmt.Errorf("safe %s still holds %s and cannot be deleted", safe.Name, safe.Balance.StringFixed(2))
	}

	vouchers, _, err := s.voucherRepo.List(ctx, repository.VoucherListFilter{SafeID: id, Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check safe vouchers: %w", err)
	}
	if len(vouchers) > 0 {
		return fmt.Errorf("safe %s has ledger history and cannot be deleted", safe.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.safeRepo.Delete(txCtx, safeID); delErr != nil {
			return fmt.Errorf("failed to delete safe: %w", delErr)
		}
		entry := newAuditEntry(userID, model.ActionDeleteSafe, id, safe.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
}

func (s *treasuryService) ListSafes(ctx context.Context) ([]SafeResponse, error) {
	safes, err := s.safeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch safes: %w", err)
	}

	res := make([]SafeResponse, 0, len(safes))
	for _, safe := range safes {
		res = append(res, toSafeResponse(safe))
	}
	return res, nil
}

// CreateVoucher records a manual treasury movement. Receipts add to the
// safe, payments draw from it and are rejected when the balance is short.
func (s *treasuryService) CreateVoucher(ctx context.Context, userID string, req CreateVoucherRequest) (VoucherResponse, error) {
	safeID, err := uuid.Parse(req.SafeID)
	if err != nil {
		return VoucherResponse{}, fmt.Errorf("invalid safe_id: %w", err)
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return VoucherResponse{}, err
	}
	if !amount.IsPositive() {
		return VoucherResponse{}, fmt.Errorf("amount must be greater than 0")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return VoucherResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	var voucher model.Voucher
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		safe, findErr := s.safeRepo.FindByID(txCtx, safeID)
		if findErr != nil {
			return fmt.Errorf("safe not found: %w", findErr)
		}

		switch req.Type {
		case model.VoucherReceipt:
			safe.Balance = safe.Balance.Add(amount)
		case model.VoucherPayment:
			if safe.Balance.LessThan(amount) {
				return fmt.Errorf("insufficient balance in safe %s", safe.Name)
			}
			safe.Balance = safe.Balance.Sub(amount)
		}
		if updateErr := s.safeRepo.Update(txCtx, safe); updateErr != nil {
			return fmt.Errorf("failed to update safe balance: %w", updateErr)
		}

		voucherNo, genErr := generateVoucherNo(txCtx, s.voucherRepo, req.Type)
		if genErr != nil {
			return fmt.Errorf("failed to generate voucher number: %w", genErr)
		}

		voucher = model.Voucher{
			VoucherNo:     voucherNo,
			Type:          req.Type,
			Amount:        amount,
			SafeID:        safeID,
			Date:          date,
			Description:   req.Description,
			ReferenceType: model.RefManual,
		}
		if createErr := s.voucherRepo.Create(txCtx, &voucher); createErr != nil {
			return fmt.Errorf("failed to create voucher: %w", createErr)
		}

		entry := newAuditEntry(userID, model.ActionCreateVoucher, voucher.ID.String(), voucherNo, map[string]interface{}{
			"type":   req.Type,
			"amount": amount.StringFixed(2),
			"safe":   safe.Name,
		})
		if auditErr := s.auditRepo.Log(txCtx, entry); auditErr != nil {
			return auditErr
		}

		s.broadcastSafeChange(safe.ID.String(), safe.Balance.StringFixed(2))
		return nil
	})
	if err != nil {
		return VoucherResponse{}, err
	}
	return toVoucherResponse(voucher), nil
}

// VoidVoucher reverses a voucher's balance effect without deleting the
// ledger row. Voiding a receipt that the safe has since spent is rejected.
func (s *treasuryService) VoidVoucher(ctx context.Context, userID, id string) (VoucherResponse, error) {
	voucherID, err := uuid.Parse(id)
	if err != nil {
		return VoucherResponse{}, fmt.Errorf("invalid voucher id: %w", err)
	}

	var voucher *model.Voucher
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		voucher, findErr = s.voucherRepo.FindByID(txCtx, voucherID)
		if findErr != nil {
			return fmt.Errorf("voucher not found: %w", findErr)
		}
		if voucher.VoidedAt != nil {
			return fmt.Errorf("voucher %s is already voided", voucher.VoucherNo)
		}

		safe, findErr := s.safeRepo.FindByID(txCtx, voucher.SafeID)
		if findErr != nil {
			return fmt.Errorf("safe not found: %w", findErr)
		}

		switch voucher.Type {
		case model.VoucherReceipt:
			if safe.Balance.LessThan(voucher.Amount) {
				return fmt.Errorf("insufficient balance in safe %s to reverse receipt", safe.Name)
			}
			safe.Balance = safe.Balance.Sub(voucher.Amount)
		case model.VoucherPayment:
			safe.Balance = safe.Balance.Add(voucher.Amount)
		}
		if updateErr := s.safeRepo.Update(txCtx, safe); updateErr != nil {
			return fmt.Errorf("failed to update safe balance: %w", updateErr)
		}

		now := time.Now()
		voucher.VoidedAt = &now
		if updateErr := s.voucherRepo.Update(txCtx, voucher); updateErr != nil {
			return fmt.Errorf("failed to void voucher: %w", updateErr)
		}

		entry := newAuditEntry(userID, model.ActionVoidVoucher, voucher.ID.String(), voucher.VoucherNo, map[string]interface{}{
			"type":   voucher.Type,
			"amount": voucher.Amount.StringFixed(2),
		})
		if auditErr := s.auditRepo.Log(txCtx, entry); auditErr != nil {
			return auditErr
		}

		s.broadcastSafeChange(safe.ID.String(), safe.Balance.StringFixed(2))
		return nil
	})
	if err != nil {
		return VoucherResponse{}, err
	}
	return toVoucherResponse(*voucher), nil
}

func (s *treasuryService) ListVouchers(ctx context.Context, filter repository.VoucherListFilter) ([]VoucherResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	vouchers, total, err := s.voucherRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vouchers: %w", err)
	}

	res := make([]VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		res = append(res, toVoucherResponse(v))
	}
	return res, total, nil
}

// Transfer moves cash between safes as a paired payment/receipt sharing
// one TRANSFER reference id, inside a single transaction.
func (s *treasuryService) Transfer(ctx context.Context, userID string, req TransferRequest) (TransferResponse, error) {
	fromID, err := uuid.Parse(req.FromSafeID)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("invalid from_safe_id: %w", err)
	}
	toID, err := uuid.Parse(req.ToSafeID)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("invalid to_safe_id: %w", err)
	}
	if fromID == toID {
		return TransferResponse{}, fmt.Errorf("cannot transfer a safe into itself")
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return TransferResponse{}, err
	}
	if !amount.IsPositive() {
		return TransferResponse{}, fmt.Errorf("amount must be greater than 0")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	transferRef := uuid.New()
	var out, in model.Voucher
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		from, findErr := s.safeRepo.FindByID(txCtx, fromID)
		if findErr != nil {
			return fmt.Errorf("source safe not found: %w", findErr)
		}
		to, findErr := s.safeRepo.FindByID(txCtx, toID)
		if findErr != nil {
			return fmt.Errorf("target safe not found: %w", findErr)
		}

		if from.Balance.LessThan(amount) {
			return fmt.Errorf("insufficient balance in safe %s", from.Name)
		}

		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)
		if updateErr := s.safeRepo.Update(txCtx, from); updateErr != nil {
			return fmt.Errorf("failed to update source safe: %w", updateErr)
		}
		if updateErr := s.safeRepo.Update(txCtx, to); updateErr != nil {
			return fmt.Errorf("failed to update target safe: %w", updateErr)
		}

		outNo, genErr := generateVoucherNo(txCtx, s.voucherRepo, model.VoucherPayment)
		if genErr != nil {
			return genErr
		}
		out = model.Voucher{
			VoucherNo:     outNo,
			Type:          model.VoucherPayment,
			Amount:        amount,
			SafeID:        fromID,
			Date:          date,
			Description:   req.Description,
			ReferenceType: model.RefTransfer,
			ReferenceID:   &transferRef,
		}
		if createErr := s.voucherRepo.Create(txCtx, &out); createErr != nil {
			return fmt.Errorf("failed to create outgoing voucher: %w", createErr)
		}

		inNo, genErr := generateVoucherNo(txCtx, s.voucherRepo, model.VoucherReceipt)
		if genErr != nil {
			return genErr
		}
		in = model.Voucher{
			VoucherNo:     inNo,
			Type:          model.VoucherReceipt,
			Amount:        amount,
			SafeID:        toID,
			Date:          date,
			Description:   req.Description,
			ReferenceType: model.RefTransfer,
			ReferenceID:   &transferRef,
		}
		if createErr := s.voucherRepo.Create(txCtx, &in); createErr != nil {
			return fmt.Errorf("failed to create incoming voucher: %w", createErr)
		}

		entry := newAuditEntry(userID, model.ActionTransferSafe, transferRef.String(), "", map[string]interface{}{
			"from":   from.Name,
			"to":     to.Name,
			"amount": amount.StringFixed(2),
		})
		if auditErr := s.auditRepo.Log(txCtx, entry); auditErr != nil {
			return auditErr
		}

		s.broadcastSafeChange(from.ID.String(), from.Balance.StringFixed(2))
		s.broadcastSafeChange(to.ID.String(), to.Balance.StringFixed(2))
		return nil
	})
	if err != nil {
		return TransferResponse{}, err
	}

	return TransferResponse{
		OutVoucher: toVoucherResponse(out),
		InVoucher:  toVoucherResponse(in),
	}, nil
}

func (s *treasuryService) broadcastSafeChange(safeID, balance string) {
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

// generateVoucherNo issues RCV-/PAY- prefixed sequence numbers per day.
func generateVoucherNo(ctx context.Context, repo repository.VoucherRepository, voucherType string) (string, error) {
	kind := "RCV"
	if voucherType == model.VoucherPayment {
		kind = "PAY"
	}
	prefix := fmt.Sprintf("%s-%s-", kind, time.Now().Format("20060102"))

	count, err := repo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// --- Mapping ---

func toSafeResponse(safe model.Safe) SafeResponse {
	return SafeResponse{
		ID:        safe.ID.String(),
		Name:      safe.Name,
		Balance:   safe.Balance.StringFixed(2),
		CreatedAt: safe.CreatedAt.Format(time.RFC3339),
	}
}

func toVoucherResponse(v model.Voucher) VoucherResponse {
	resp := VoucherResponse{
		ID:            v.ID.String(),
		VoucherNo:     v.VoucherNo,
		Type:          v.Type,
		Amount:        v.Amount.StringFixed(2),
		SafeID:        v.SafeID.String(),
		Date:          v.Date.Format("2006-01-02"),
		Description:   v.Description,
		ReferenceType: v.ReferenceType,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.Safe != nil {
		resp.SafeName = v.Safe.Name
	}
	if v.ReferenceID != nil {
		id := v.ReferenceID.String()
		resp.ReferenceID = &id
	}
	if v.VoidedAt != nil {
		at := v.VoidedAt.Format(time.RFC3339)
		resp.VoidedAt = &at
	}
	return resp
}
