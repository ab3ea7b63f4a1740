package service

import (
	"context"
	"fmt"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/google/uuid"
)

type CreatePartnerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type UpdatePartnerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

type PartnerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type PartnerService interface {
	CreatePartner(ctx context.Context, userID string, req CreatePartnerRequest) (PartnerResponse, error)
	UpdatePartner(ctx context.Context, userID, id string, req UpdatePartnerRequest) (PartnerResponse, error)
	DeletePartner(ctx context.Context, userID, id string) error
	GetPartner(ctx context.Context, id string) (PartnerResponse, error)
	ListPartners(ctx context.Context, search string, page, limit int) ([]PartnerResponse, int64, error)
}

type partnerService struct {
	partnerRepo repository.PartnerRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PartnerService {
	return &partnerService{
		partnerRepo: partnerRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *partnerService) CreatePartner(ctx context.Context, userID string, req CreatePartnerRequest) (PartnerResponse, error) {
	partner := model.Partner{Name: req.Name, Phone: req.Phone, Notes: req.Notes}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.partnerRepo.Create(txCtx, &partner); createErr != nil {
			return fmt.Errorf("failed to create partner: %w", createErr)
		}
		entry := newAuditEntry(userID, "CREATE_PARTNER", partner.ID.String(), partner.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return PartnerResponse{}, err
	}
	return toPartnerResponse(partner), nil
}

func (s *partnerService) UpdatePartner(ctx context.Context, userID, id string, req UpdatePartnerRequest) (PartnerResponse, error) {
	partnerID, err := uuid.Parse(id)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("invalid partner id: %w", err)
	}

	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("partner not found: %w", err)
	}

	if req.Name != nil {
		partner.Name = *req.Name
	}
	if req.Phone != nil {
		partner.Phone = *req.Phone
	}
	if req.Notes != nil {
		partner.Notes = *req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.partnerRepo.Update(txCtx, partner); updateErr != nil {
			return fmt.Errorf("failed to update partner: %w", updateErr)
		}
		entry := newAuditEntry(userID, "UPDATE_PARTNER", partner.ID.String(), partner.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return PartnerResponse{}, err
	}
	return toPartnerResponse(*partner), nil
}

func (s *partnerService) DeletePartner(ctx context.Context, userID, id string) error {
	partnerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid partner id: %w", err)
	}

	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("partner not found: %w", err)
	}

	links, err := s.partnerRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("failed to check partner links: %w", err)
	}
	if len(links) > 0 {
		return fmt.Errorf("partner %s still owns unit shares and cannot be deleted", partner.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.partnerRepo.Delete(txCtx, partnerID); delErr != nil {
			return fmt.Errorf("failed to delete partner: %w", delErr)
		}
		entry := newAuditEntry(userID, "DELETE_PARTNER", id, partner.Name, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
}

func (s *partnerService) GetPartner(ctx context.Context, id string) (PartnerResponse, error) {
	partnerID, err := uuid.Parse(id)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("invalid partner id: %w", err)
	}
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("partner not found: %w", err)
	}
	return toPartnerResponse(*partner), nil
}

func (s *partnerService) ListPartners(ctx context.Context, search string, page, limit int) ([]PartnerResponse, int64, error) {
	partners, total, err := s.partnerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch partners: %w", err)
	}

	res := make([]PartnerResponse, 0, len(partners))
	for _, p := range partners {
		res = append(res, toPartnerResponse(p))
	}
	return res, total, nil
}

func toPartnerResponse(p model.Partner) PartnerResponse {
	return PartnerResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Phone:     p.Phone,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
