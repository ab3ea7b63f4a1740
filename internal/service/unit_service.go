package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateUnitRequest struct {
	Building    string `json:"building" binding:"required"`
	Floor       string `json:"floor" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Area        string `json:"area"`
	TotalPrice  string `json:"total_price" binding:"required"`
	Description string `json:"description"`
}

type UpdateUnitRequest struct {
	Area        *string `json:"area"`
	TotalPrice  *string `json:"total_price"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED"`
}

type UnitPartnerShare struct {
	LinkID      string `json:"link_id"`
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name,omitempty"`
	Percent     string `json:"percent"`
}

type UnitResponse struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	Building    string             `json:"building"`
	Floor       string             `json:"floor"`
	Name        string             `json:"name"`
	Area        string             `json:"area"`
	TotalPrice  string             `json:"total_price"`
	Status      string             `json:"status"`
	Description string             `json:"description"`
	Partners    []UnitPartnerShare `json:"partners"`
	CreatedAt   string             `json:"created_at"`
}

type LinkPartnerRequest struct {
	PartnerID string `json:"partner_id" binding:"required"`
	Percent   string `json:"percent" binding:"required"`
}

// --- Interface ---

type UnitService interface {
	CreateUnit(ctx context.Context, userID string, req CreateUnitRequest) (UnitResponse, error)
	UpdateUnit(ctx context.Context, userID, id string, req UpdateUnitRequest) (UnitResponse, error)
	GetUnit(ctx context.Context, id string) (UnitResponse, error)
	ListUnits(ctx context.Context, status, search string, page, limit int) ([]UnitResponse, int64, error)
	LinkPartner(ctx context.Context, userID, unitID string, req LinkPartnerRequest) (UnitResponse, error)
	UnlinkPartner(ctx context.Context, userID, unitID, linkID string) (UnitResponse, error)
}

type unitService struct {
	unitRepo     repository.UnitRepository
	partnerRepo  repository.PartnerRepository
	contractRepo repository.ContractRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewUnitService(
	unitRepo repository.UnitRepository,
	partnerRepo repository.PartnerRepository,
	contractRepo repository.ContractRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) UnitService {
	return &unitService{
		unitRepo:     unitRepo,
		partnerRepo:  partnerRepo,
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

// UnitCode derives the canonical unit code from building, floor and name.
func UnitCode(building, floor, name string) string {
	clean := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	}
	return fmt.Sprintf("%s-%s-%s", clean(building), clean(floor), clean(name))
}

func (s *unitService) CreateUnit(ctx context.Context, userID string, req CreateUnitRequest) (UnitResponse, error) {
	totalPrice, err := parseAmount(req.TotalPrice, "total_price")
	if err != nil {
		return UnitResponse{}, err
	}
	area, err := parseOptionalAmount(req.Area, "area")
	if err != nil {
		return UnitResponse{}, err
	}

	code := UnitCode(req.Building, req.Floor, req.Name)
	if _, err := s.unitRepo.FindByCode(ctx, code); err == nil {
		return UnitResponse{}, fmt.Errorf("unit %s already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UnitResponse{}, fmt.Errorf("failed to check unit code: %w", err)
	}

	unit := model.Unit{
		Code:        code,
		Building:    req.Building,
		Floor:       req.Floor,
		Name:        req.Name,
		Area:        area,
		TotalPrice:  totalPrice,
		Status:      model.UnitAvailable,
		Description: req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.unitRepo.Create(txCtx, &unit); createErr != nil {
			return fmt.Errorf("failed to create unit: %w", createErr)
		}
		entry := newAuditEntry(userID, model.ActionCreateUnit, unit.ID.String(), code, map[string]interface{}{
			"total_price": totalPrice.StringFixed(2),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UnitResponse{}, err
	}
	return toUnitResponse(unit), nil
}

func (s *unitService) UpdateUnit(ctx context.Context, userID, id string, req UpdateUnitRequest) (UnitResponse, error) {
	unitID, err := uuid.Parse(id)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid unit id: %w", err)
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("unit not found: %w", err)
	}

	if req.TotalPrice != nil {
		if unit.Status == model.UnitSold {
			return UnitResponse{}, fmt.Errorf("cannot reprice unit %s while it is sold", unit.Code)
		}
		price, parseErr := parseAmount(*req.TotalPrice, "total_price")
		if parseErr != nil {
			return UnitResponse{}, parseErr
		}
		unit.TotalPrice = price
	}
	if req.Area != nil {
		area, parseErr := parseAmount(*req.Area, "area")
		if parseErr != nil {
			return UnitResponse{}, parseErr
		}
		unit.Area = area
	}
	if req.Description != nil {
		unit.Description = *req.Description
	}
	if req.Status != nil {
		if unit.Status == model.UnitSold {
			return UnitResponse{}, fmt.Errorf("sold units change status through contract operations")
		}
		unit.Status = *req.Status
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.unitRepo.Update(txCtx, unit); updateErr != nil {
			return fmt.Errorf("failed to update unit: %w", updateErr)
		}
		entry := newAuditEntry(userID, model.ActionUpdateUnit, unit.ID.String(), unit.Code, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UnitResponse{}, err
	}
	return toUnitResponse(*unit), nil
}

func (s *unitService) GetUnit(ctx context.Context, id string) (UnitResponse, error) {
	unitID, err := uuid.Parse(id)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid unit id: %w", err)
	}
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("unit not found: %w", err)
	}
	return toUnitResponse(*unit), nil
}

func (s *unitService) ListUnits(ctx context.Context, status, search string, page, limit int) ([]UnitResponse, int64, error) {
	units, total, err := s.unitRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch units: %w", err)
	}

	res := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		res = append(res, toUnitResponse(u))
	}
	return res, total, nil
}

// LinkPartner attaches an ownership share. The unit's percentages may
// never sum above 100.
func (s *unitService) LinkPartner(ctx context.Context, userID, unitID string, req LinkPartnerRequest) (UnitResponse, error) {
	uid, err := uuid.Parse(unitID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid unit id: %w", err)
	}
	pid, err := uuid.Parse(req.PartnerID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid partner_id: %w", err)
	}

	percent, err := decimal.NewFromString(req.Percent)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid percent: %w", err)
	}
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		return UnitResponse{}, fmt.Errorf("percent must be in (0, 100]")
	}

	unit, err := s.unitRepo.FindByID(ctx, uid)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("unit not found: %w", err)
	}
	partner, err := s.partnerRepo.FindByID(ctx, pid)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("partner not found: %w", err)
	}

	links, err := s.partnerRepo.ListByUnit(ctx, uid)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("failed to load unit partners: %w", err)
	}
	sum := percent
	for _, link := range links {
		if link.PartnerID == pid {
			return UnitResponse{}, fmt.Errorf("partner %s already holds a share in unit %s", partner.Name, unit.Code)
		}
		sum = sum.Add(link.Percent)
	}
	if sum.GreaterThan(hundred) {
		return UnitResponse{}, fmt.Errorf("unit partner percentages would sum to %s, exceeding 100", sum.String())
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		link := model.UnitPartner{UnitID: uid, PartnerID: pid, Percent: percent}
		if linkErr := s.partnerRepo.LinkUnit(txCtx, &link); linkErr != nil {
			return fmt.Errorf("failed to link partner: %w", linkErr)
		}
		entry := newAuditEntry(userID, model.ActionLinkUnitPartner, uid.String(), unit.Code, map[string]interface{}{
			"partner": partner.Name,
			"percent": percent.String(),
		})
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UnitResponse{}, err
	}
	return s.GetUnit(ctx, unitID)
}

func (s *unitService) UnlinkPartner(ctx context.Context, userID, unitID, linkID string) (UnitResponse, error) {
	uid, err := uuid.Parse(unitID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid unit id: %w", err)
	}
	lid, err := uuid.Parse(linkID)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("invalid link id: %w", err)
	}

	unit, err := s.unitRepo.FindByID(ctx, uid)
	if err != nil {
		return UnitResponse{}, fmt.Errorf("unit not found: %w", err)
	}

	// Ownership is frozen while a contract is active.
	if _, err := s.contractRepo.FindByUnitID(ctx, uid); err == nil {
		return UnitResponse{}, fmt.Errorf("unit %s has an active contract; ownership cannot change", unit.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UnitResponse{}, fmt.Errorf("failed to check contract: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if unlinkErr := s.partnerRepo.UnlinkUnit(txCtx, lid); unlinkErr != nil {
			return fmt.Errorf("failed to unlink partner: %w", unlinkErr)
		}
		entry := newAuditEntry(userID, model.ActionUnlinkUnitPartner, uid.String(), unit.Code, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UnitResponse{}, err
	}
	return s.GetUnit(ctx, unitID)
}

// --- Mapping ---

func toUnitResponse(u model.Unit) UnitResponse {
	resp := UnitResponse{
		ID:          u.ID.String(),
		Code:        u.Code,
		Building:    u.Building,
		Floor:       u.Floor,
		Name:        u.Name,
		Area:        u.Area.StringFixed(2),
		TotalPrice:  u.TotalPrice.StringFixed(2),
		Status:      u.Status,
		Description: u.Description,
		Partners:    make([]UnitPartnerShare, 0, len(u.Partners)),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
	for _, link := range u.Partners {
		share := UnitPartnerShare{
			LinkID:    link.ID.String(),
			PartnerID: link.PartnerID.String(),
			Percent:   link.Percent.StringFixed(2),
		}
		if link.Partner != nil {
			share.PartnerName = link.Partner.Name
		}
		resp.Partners = append(resp.Partners, share)
	}
	return resp
}
