package service

import (
	"context"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Notes      string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name       *string `json:"name"`
	NationalID *string `json:"national_id"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Notes      *string `json:"notes"`
}

type CustomerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"created_at"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, userID string, req CreateCustomerRequest) (CustomerResponse, error)
	UpdateCustomer(ctx context.Context, userID, id string, req UpdateCustomerRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, userID, id string) error
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	contractRepo repository.ContractRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	contractRepo repository.ContractRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, userID string, req CreateCustomerRequest) (CustomerResponse, error) {
	customer := model.Customer{
		Name:       req.Name,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Address:    req.Address,
		Notes:      req.Notes,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.customerRepo.Create(txCtx, &customer); createErr != nil {
			return fmt.Errorf("failed to create customer: %w", createErr)
		}
		entry := newAuditEntry(userID, model.ActionCreateCustomer, customer.ID.String(), customer.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, userID, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.NationalID != nil {
		customer.NationalID = *req.NationalID
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.customerRepo.Update(txCtx, customer); updateErr != nil {
			return fmt.Errorf("failed to update customer: %w", updateErr)
		}
		entry := newAuditEntry(userID, model.ActionUpdateCustomer, customer.ID.String(), customer.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, userID, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("customer not found: %w", err)
	}

	contracts, _, err := s.contractRepo.List(ctx, id, 1, 1)
	if err != nil {
		return fmt.Errorf("failed to check customer contracts: %w", err)
	}
	if len(contracts) > 0 {
		return fmt.Errorf("customer %s holds contracts and cannot be deleted", customer.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.customerRepo.Delete(txCtx, customerID); delErr != nil {
			return fmt.Errorf("failed to delete customer: %w", delErr)
		}
		entry := newAuditEntry(userID, model.ActionDeleteCustomer, id, customer.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", err)
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, toCustomerResponse(c))
	}
	return res, total, nil
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		NationalID: c.NationalID,
		Phone:      c.Phone,
		Address:    c.Address,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
