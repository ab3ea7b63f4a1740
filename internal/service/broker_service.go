package service

import (
	"context"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/google/uuid"
)

type CreateBrokerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type BrokerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type BrokerDueResponse struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contract_id"`
	BrokerID   string  `json:"broker_id"`
	BrokerName string  `json:"broker_name,omitempty"`
	Amount     string  `json:"amount"`
	Status     string  `json:"status"`
	SafeID     *string `json:"safe_id"`
	PaidAt     *string `json:"paid_at"`
	CreatedAt  string  `json:"created_at"`
}

type PayBrokerDueRequest struct {
	SafeID string `json:"safe_id" binding:"required"`
	Date   string `json:"date" binding:"required"`
}

type BrokerService interface {
	CreateBroker(ctx context.Context, userID string, req CreateBrokerRequest) (BrokerResponse, error)
	ListBrokers(ctx context.Context, search string, page, limit int) ([]BrokerResponse, int64, error)
	ListDues(ctx context.Context, status, brokerID string, page, limit int) ([]BrokerDueResponse, int64, error)
	PayDue(ctx context.Context, userID, dueID string, req PayBrokerDueRequest) (BrokerDueResponse, error)
}

type brokerService struct {
	brokerRepo  repository.BrokerRepository
	safeRepo    repository.SafeRepository
	voucherRepo repository.VoucherRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewBrokerService(
	brokerRepo repository.BrokerRepository,
	safeRepo repository.SafeRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) BrokerService {
	return &brokerService{
		brokerRepo:  brokerRepo,
		safeRepo:    safeRepo,
		voucherRepo: voucherRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *brokerService) CreateBroker(ctx context.Context, userID string, req CreateBrokerRequest) (BrokerResponse, error) {
	broker := model.Broker{Name: req.Name, Phone: req.Phone, Notes: req.Notes}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.brokerRepo.Create(txCtx, &broker); createErr != nil {
			return fmt.Errorf("failed to create broker: %w", createErr)
		}
		entry := newAuditEntry(userID, "CREATE_BROKER", broker.ID.String(), broker.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return BrokerResponse{}, err
	}
	return toBrokerResponse(broker), nil
}

func (s *brokerService) ListBrokers(ctx context.Context, search string, page, limit int) ([]BrokerResponse, int64, error) {
	brokers, total, err := s.brokerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch brokers: %w", err)
	}

	res := make([]BrokerResponse, 0, len(brokers))
	for _, b := range brokers {
		res = append(res, toBrokerResponse(b))
	}
	return res, total, nil
}

func (s *brokerService) ListDues(ctx context.Context, status, brokerID string, page, limit int) ([]BrokerDueResponse, int64, error) {
	dues, total, err := s.brokerRepo.ListDues(ctx, status, brokerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch broker dues: %w", err)
	}

	res := make([]BrokerDueResponse, 0, len(dues))
	for _, d := range dues {
		res = append(res, toBrokerDueResponse(d))
	}
	return res, total, nil
}

// PayDue settles a broker commission out of a safe. Rejected when the
// safe cannot cover it.
func (s *brokerService) PayDue(ctx context.Context, userID, dueID string, req PayBrokerDueRequest) (BrokerDueResponse, error) {
	id, err := uuid.Parse(dueID)
	if err != nil {
		return BrokerDueResponse{}, fmt.Errorf("invalid due id: %w", err)
	}
	safeID, err := uuid.Parse(req.SafeID)
	if err != nil {
		return BrokerDueResponse{}, fmt.Errorf("invalid safe_id: %w", err)
	}
	paidAt, err := parseDate(req.Date)
	if err != nil {
		return BrokerDueResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	var due *model.BrokerDue
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		due, findErr = s.brokerRepo.FindDueByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("broker due not found: %w", findErr)
		}
		if due.Status != model.BrokerDueUnpaid {
			return fmt.Errorf("broker due is %s", due.Status)
		}

		safe, findErr := s.safeRepo.FindByID(txCtx, safeID)
		if findErr != nil {
			return fmt.Errorf("safe not found: %w", findErr)
		}
		if safe.Balance.LessThan(due.Amount) {
			return fmt.Errorf("insufficient balance in safe %s", safe.Name)
		}

		safe.Balance = safe.Balance.Sub(due.Amount)
		if updateErr := s.safeRepo.Update(txCtx, safe); updateErr != nil {
			return fmt.Errorf("failed to update safe balance: %w", updateErr)
		}

		voucherNo, genErr := generateVoucherNo(txCtx, s.voucherRepo, model.VoucherPayment)
		if genErr != nil {
			return genErr
		}
		refID := due.ID
		voucher := model.Voucher{
			VoucherNo:     voucherNo,
			Type:          model.VoucherPayment,
			Amount:        due.Amount,
			SafeID:        safeID,
			Date:          paidAt,
			Description:   "broker commission",
			ReferenceType: model.RefBrokerDue,
			ReferenceID:   &refID,
		}
		if createErr := s.voucherRepo.Create(txCtx, &voucher); createErr != nil {
			return fmt.Errorf("failed to create voucher: %w", createErr)
		}

		due.Status = model.BrokerDuePaid
		due.SafeID = &safeID
		at := paidAt
		due.PaidAt = &at
		if updateErr := s.brokerRepo.UpdateDue(txCtx, due); updateErr != nil {
			return fmt.Errorf("failed to update broker due: %w", updateErr)
		}

		entry := newAuditEntry(userID, model.ActionPayBrokerDue, due.ID.String(), "", map[string]interface{}{
			"amount": due.Amount.StringFixed(2),
			"safe":   safe.Name,
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return BrokerDueResponse{}, err
	}
	return toBrokerDueResponse(*due), nil
}

func toBrokerResponse(b model.Broker) BrokerResponse {
	return BrokerResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		Phone:     b.Phone,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

func toBrokerDueResponse(d model.BrokerDue) BrokerDueResponse {
	resp := BrokerDueResponse{
		ID:         d.ID.String(),
		ContractID: d.ContractID.String(),
		BrokerID:   d.BrokerID.String(),
		Amount:     d.Amount.StringFixed(2),
		Status:     d.Status,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
	if d.Broker != nil {
		resp.BrokerName = d.Broker.Name
	}
	if d.SafeID != nil {
		id := d.SafeID.String()
		resp.SafeID = &id
	}
	if d.PaidAt != nil {
		at := d.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &at
	}
	return resp
}
