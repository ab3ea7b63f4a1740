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

type CreateContractRequest struct {
	UnitID             string `json:"unit_id" binding:"required"`
	CustomerID         string `json:"customer_id" binding:"required"`
	TotalPrice         string `json:"total_price" binding:"required"`
	DiscountAmount     string `json:"discount_amount"`
	DownPayment        string `json:"down_payment"`
	MaintenanceDeposit string `json:"maintenance_deposit"`
	BrokerID           string `json:"broker_id"`
	BrokerPercent      string `json:"broker_percent"`
	BrokerAmount       string `json:"broker_amount"`
	Frequency          string `json:"frequency" binding:"required,oneof=MONTHLY QUARTERLY SEMIANNUAL ANNUAL"`
	InstallmentCount   int    `json:"installment_count"`
	AnnualCount        int    `json:"annual_count"`
	AnnualAmount       string `json:"annual_amount"`
	StartDate          string `json:"start_date" binding:"required"` // RFC3339 or YYYY-MM-DD
}

type ContractResponse struct {
	ID                 string  `json:"id"`
	ContractNo         string  `json:"contract_no"`
	UnitID             string  `json:"unit_id"`
	UnitCode           string  `json:"unit_code,omitempty"`
	CustomerID         string  `json:"customer_id"`
	CustomerName       string  `json:"customer_name,omitempty"`
	TotalPrice         string  `json:"total_price"`
	DiscountAmount     string  `json:"discount_amount"`
	DownPayment        string  `json:"down_payment"`
	MaintenanceDeposit string  `json:"maintenance_deposit"`
	BrokerID           *string `json:"broker_id"`
	BrokerName         string  `json:"broker_name,omitempty"`
	BrokerPercent      string  `json:"broker_percent"`
	BrokerAmount       string  `json:"broker_amount"`
	Frequency          string  `json:"frequency"`
	InstallmentCount   int     `json:"installment_count"`
	AnnualCount        int     `json:"annual_count"`
	AnnualAmount       string  `json:"annual_amount"`
	StartDate          string  `json:"start_date"`
	CreatedAt          string  `json:"created_at"`
}

type InstallmentResponse struct {
	ID             string  `json:"id"`
	ContractID     string  `json:"contract_id"`
	UnitID         string  `json:"unit_id"`
	Type           string  `json:"type"`
	Amount         string  `json:"amount"`
	OriginalAmount string  `json:"original_amount"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	PaidAt         *string `json:"paid_at"`
}

type RemainingResponse struct {
	ContractID string `json:"contract_id"`
	UnitID     string `json:"unit_id"`
	TotalOwed  string `json:"total_owed"`
	TotalPaid  string `json:"total_paid"`
	Remaining  string `json:"remaining"`
}

// --- Interface ---

type ContractService interface {
	CreateContract(ctx context.Context, userID string, req CreateContractRequest) (ContractResponse, error)
	DeleteContract(ctx context.Context, userID, id string) error
	GetContract(ctx context.Context, id string) (ContractResponse, []InstallmentResponse, error)
	ListContracts(ctx context.Context, customerID string, page, limit int) ([]ContractResponse, int64, error)
	Remaining(ctx context.Context, contractID string) (RemainingResponse, error)
	RemainingForUnit(ctx context.Context, unitID uuid.UUID) (RemainingResponse, error)
}

type contractService struct {
	contractRepo    repository.ContractRepository
	installmentRepo repository.InstallmentRepository
	unitRepo        repository.UnitRepository
	customerRepo    repository.CustomerRepository
	partnerRepo     repository.PartnerRepository
	brokerRepo      repository.BrokerRepository
	voucherRepo     repository.VoucherRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewContractService(
	contractRepo repository.ContractRepository,
	installmentRepo repository.InstallmentRepository,
	unitRepo repository.UnitRepository,
	customerRepo repository.CustomerRepository,
	partnerRepo repository.PartnerRepository,
	brokerRepo repository.BrokerRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ContractService {
	return &contractService{
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		unitRepo:        unitRepo,
		customerRepo:    customerRepo,
		partnerRepo:     partnerRepo,
		brokerRepo:      brokerRepo,
		voucherRepo:     voucherRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

// --- Implementation ---

var hundred = decimal.NewFromInt(100)

func (s *contractService) CreateContract(ctx context.Context, userID string, req CreateContractRequest) (ContractResponse, error) {
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid unit_id: %w", err)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid customer_id: %w", err)
	}

	totalPrice, err := parseAmount(req.TotalPrice, "total_price")
	if err != nil {
		return ContractResponse{}, err
	}
	discount, err := parseOptionalAmount(req.DiscountAmount, "discount_amount")
	if err != nil {
		return ContractResponse{}, err
	}
	downPayment, err := parseOptionalAmount(req.DownPayment, "down_payment")
	if err != nil {
		return ContractResponse{}, err
	}
	maintenance, err := parseOptionalAmount(req.MaintenanceDeposit, "maintenance_deposit")
	if err != nil {
		return ContractResponse{}, err
	}
	annualAmount, err := parseOptionalAmount(req.AnnualAmount, "annual_amount")
	if err != nil {
		return ContractResponse{}, err
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid start_date: %w", err)
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("unit not found: %w", err)
	}
	if unit.Status != model.UnitAvailable && unit.Status != model.UnitReserved {
		return ContractResponse{}, fmt.Errorf("unit %s is %s and cannot be sold", unit.Code, unit.Status)
	}
	if _, err := s.contractRepo.FindByUnitID(ctx, unitID); err == nil {
		return ContractResponse{}, fmt.Errorf("unit %s already has an active contract", unit.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ContractResponse{}, fmt.Errorf("failed to check existing contract: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	// Ownership gate: the unit's partner percentages must sum to exactly 100.
	links, err := s.partnerRepo.ListByUnit(ctx, unitID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("failed to load unit partners: %w", err)
	}
	percentSum := decimal.Zero
	for _, link := range links {
		percentSum = percentSum.Add(link.Percent)
	}
	if !percentSum.Equal(hundred) {
		return ContractResponse{}, fmt.Errorf("unit partner percentages sum to %s, must equal 100", percentSum.String())
	}

	// Broker commission: explicit amount wins, otherwise derived from percent.
	var brokerID *uuid.UUID
	brokerPercent := decimal.Zero
	brokerAmount := decimal.Zero
	if req.BrokerID != "" {
		parsed, parseErr := uuid.Parse(req.BrokerID)
		if parseErr != nil {
			return ContractResponse{}, fmt.Errorf("invalid broker_id: %w", parseErr)
		}
		if _, findErr := s.brokerRepo.FindByID(ctx, parsed); findErr != nil {
			return ContractResponse{}, fmt.Errorf("broker not found: %w", findErr)
		}
		brokerID = &parsed

		brokerPercent, err = parseOptionalAmount(req.BrokerPercent, "broker_percent")
		if err != nil {
			return ContractResponse{}, err
		}
		brokerAmount, err = parseOptionalAmount(req.BrokerAmount, "broker_amount")
		if err != nil {
			return ContractResponse{}, err
		}
		if brokerAmount.IsZero() && brokerPercent.IsPositive() {
			brokerAmount = totalPrice.Mul(brokerPercent).Div(hundred).Round(2)
		}
	}

	plan, err := BuildSchedule(ScheduleInput{
		TotalPrice:         totalPrice,
		DiscountAmount:     discount,
		DownPayment:        downPayment,
		MaintenanceDeposit: maintenance,
		Frequency:          req.Frequency,
		InstallmentCount:   req.InstallmentCount,
		AnnualCount:        req.AnnualCount,
		AnnualAmount:       annualAmount,
		StartDate:          startDate,
	})
	if err != nil {
		return ContractResponse{}, err
	}

	contractNo, err := s.generateContractNo(ctx)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("failed to generate contract number: %w", err)
	}

	contract := model.Contract{
		ContractNo:         contractNo,
		UnitID:             unitID,
		CustomerID:         customerID,
		TotalPrice:         totalPrice,
		DiscountAmount:     discount,
		DownPayment:        downPayment,
		MaintenanceDeposit: maintenance,
		BrokerID:           brokerID,
		BrokerPercent:      brokerPercent,
		BrokerAmount:       brokerAmount,
		Frequency:          req.Frequency,
		InstallmentCount:   req.InstallmentCount,
		AnnualCount:        req.AnnualCount,
		AnnualAmount:       annualAmount,
		StartDate:          startDate,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contractRepo.Create(txCtx, &contract); err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		installments := make([]model.Installment, 0, len(plan))
		for _, p := range plan {
			installments = append(installments, model.Installment{
				ContractID:     contract.ID,
				UnitID:         unitID,
				Type:           p.Type,
				Amount:         p.Amount,
				OriginalAmount: p.Amount,
				DueDate:        p.DueDate,
				Status:         model.InstallmentUnpaid,
			})
		}
		if err := s.installmentRepo.BulkCreate(txCtx, installments); err != nil {
			return fmt.Errorf("failed to create installments: %w", err)
		}

		if err := s.unitRepo.UpdateStatus(txCtx, unitID, model.UnitSold); err != nil {
			return fmt.Errorf("failed to mark unit sold: %w", err)
		}

		if brokerID != nil && brokerAmount.IsPositive() {
			due := model.BrokerDue{
				ContractID: contract.ID,
				BrokerID:   *brokerID,
				Amount:     brokerAmount,
				Status:     model.BrokerDueUnpaid,
			}
			if err := s.brokerRepo.CreateDue(txCtx, &due); err != nil {
				return fmt.Errorf("failed to create broker due: %w", err)
			}
		}

		entry := newAuditEntry(userID, model.ActionCreateContract, contract.ID.String(), contractNo, map[string]interface{}{
			"unit_code":    unit.Code,
			"customer":     customer.Name,
			"total_price":  totalPrice.StringFixed(2),
			"installments": len(plan),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return ContractResponse{}, err
	}

	reloaded, err := s.contractRepo.FindByID(ctx, contract.ID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("failed to reload contract: %w", err)
	}
	return toContractResponse(*reloaded), nil
}

func (s *contractService) DeleteContract(ctx context.Context, userID, id string) error {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid contract id: %w", err)
	}

	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return fmt.Errorf("contract not found: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.installmentRepo.DeleteUnpaidByContract(txCtx, contractID); err != nil {
			return fmt.Errorf("failed to delete installments: %w", err)
		}
		if err := s.brokerRepo.CancelUnpaidByContract(txCtx, contractID); err != nil {
			return fmt.Errorf("failed to cancel broker dues: %w", err)
		}
		if err := s.contractRepo.Delete(txCtx, contractID); err != nil {
			return fmt.Errorf("failed to delete contract: %w", err)
		}
		if err := s.unitRepo.UpdateStatus(txCtx, contract.UnitID, model.UnitAvailable); err != nil {
			return fmt.Errorf("failed to release unit: %w", err)
		}

		entry := newAuditEntry(userID, model.ActionDeleteContract, contractID.String(), contract.ContractNo, map[string]interface{}{
			"unit_id": contract.UnitID.String(),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
}

func (s *contractService) GetContract(ctx context.Context, id string) (ContractResponse, []InstallmentResponse, error) {
	contractID, err := uuid.Parse(id)
	if err != nil {
		return ContractResponse{}, nil, fmt.Errorf("invalid contract id: %w", err)
	}

	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return ContractResponse{}, nil, fmt.Errorf("contract not found: %w", err)
	}

	installments, err := s.installmentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return ContractResponse{}, nil, fmt.Errorf("failed to load installments: %w", err)
	}

	res := make([]InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		res = append(res, toInstallmentResponse(inst))
	}
	return toContractResponse(*contract), res, nil
}

func (s *contractService) ListContracts(ctx context.Context, customerID string, page, limit int) ([]ContractResponse, int64, error) {
	contracts, total, err := s.contractRepo.List(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch contracts: %w", err)
	}

	result := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		result = append(result, toContractResponse(c))
	}
	return result, total, nil
}

func (s *contractService) Remaining(ctx context.Context, contractID string) (RemainingResponse, error) {
	id, err := uuid.Parse(contractID)
	if err != nil {
		return RemainingResponse{}, fmt.Errorf("invalid contract id: %w", err)
	}
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return RemainingResponse{}, fmt.Errorf("contract not found: %w", err)
	}
	return s.remainingForContract(ctx, contract)
}

// RemainingForUnit computes the unit's outstanding debt. A unit without a
// contract owes nothing.
func (s *contractService) RemainingForUnit(ctx context.Context, unitID uuid.UUID) (RemainingResponse, error) {
	contract, err := s.contractRepo.FindByUnitID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RemainingResponse{
				UnitID:    unitID.String(),
				TotalOwed: "0.00",
				TotalPaid: "0.00",
				Remaining: "0.00",
			}, nil
		}
		return RemainingResponse{}, fmt.Errorf("failed to load contract: %w", err)
	}
	return s.remainingForContract(ctx, contract)
}

func (s *contractService) remainingForContract(ctx context.Context, contract *model.Contract) (RemainingResponse, error) {
	installments, err := s.installmentRepo.ListByContract(ctx, contract.ID)
	if err != nil {
		return RemainingResponse{}, fmt.Errorf("failed to load installments: %w", err)
	}

	refIDs := make([]uuid.UUID, 0, len(installments)+1)
	refIDs = append(refIDs, contract.ID)
	for _, inst := range installments {
		refIDs = append(refIDs, inst.ID)
	}

	totalPaid, err := s.voucherRepo.SumReceiptsByReferences(ctx, refIDs)
	if err != nil {
		return RemainingResponse{}, fmt.Errorf("failed to sum receipts: %w", err)
	}

	totalOwed := contract.TotalPrice.Sub(contract.DiscountAmount)
	remaining := totalOwed.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return RemainingResponse{
		ContractID: contract.ID.String(),
		UnitID:     contract.UnitID.String(),
		TotalOwed:  totalOwed.StringFixed(2),
		TotalPaid:  totalPaid.StringFixed(2),
		Remaining:  remaining.StringFixed(2),
	}, nil
}

func (s *contractService) generateContractNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "CTR-" + today + "-"

	count, err := s.contractRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// --- Helpers ---

func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return amount, nil
}

func parseOptionalAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw, field)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// --- Mapping ---

func toContractResponse(c model.Contract) ContractResponse {
	resp := ContractResponse{
		ID:                 c.ID.String(),
		ContractNo:         c.ContractNo,
		UnitID:             c.UnitID.String(),
		CustomerID:         c.CustomerID.String(),
		TotalPrice:         c.TotalPrice.StringFixed(2),
		DiscountAmount:     c.DiscountAmount.StringFixed(2),
		DownPayment:        c.DownPayment.StringFixed(2),
		MaintenanceDeposit: c.MaintenanceDeposit.StringFixed(2),
		BrokerPercent:      c.BrokerPercent.StringFixed(2),
		BrokerAmount:       c.BrokerAmount.StringFixed(2),
		Frequency:          c.Frequency,
		InstallmentCount:   c.InstallmentCount,
		AnnualCount:        c.AnnualCount,
		AnnualAmount:       c.AnnualAmount.StringFixed(2),
		StartDate:          c.StartDate.Format("2006-01-02"),
		CreatedAt:          c.CreatedAt.Format(time.RFC3339),
	}

	if c.Unit != nil {
		resp.UnitCode = c.Unit.Code
	}
	if c.Customer != nil {
		resp.CustomerName = c.Customer.Name
	}
	if c.BrokerID != nil {
		id := c.BrokerID.String()
		resp.BrokerID = &id
	}
	if c.Broker != nil {
		resp.BrokerName = c.Broker.Name
	}
	return resp
}

func toInstallmentResponse(inst model.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:             inst.ID.String(),
		ContractID:     inst.ContractID.String(),
		UnitID:         inst.UnitID.String(),
		Type:           inst.Type,
		Amount:         inst.Amount.StringFixed(2),
		OriginalAmount: inst.OriginalAmount.StringFixed(2),
		DueDate:        inst.DueDate.Format("2006-01-02"),
		Status:         inst.Status,
	}
	if inst.PaidAt != nil {
		at := inst.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &at
	}
	return resp
}
