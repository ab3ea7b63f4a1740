package handler

import (
	"net/http"

	"estate-backend/internal/middleware"
	"estate-backend/internal/model"
	"estate-backend/internal/service"
	"estate-backend/pkg/pagination"
	"estate-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UnitHandler struct {
	unitService     service.UnitService
	contractService service.ContractService
	paymentService  service.PaymentService
	returnService   service.ReturnService
}

func NewUnitHandler(
	unitService service.UnitService,
	contractService service.ContractService,
	paymentService service.PaymentService,
	returnService service.ReturnService,
) *UnitHandler {
	return &UnitHandler{
		unitService:     unitService,
		contractService: contractService,
		paymentService:  paymentService,
		returnService:   returnService,
	}
}

func (h *UnitHandler) RegisterRoutes(router *gin.RouterGroup) {
	units := router.Group("/api/units", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		units.GET("", h.ListUnits)
		units.GET("/:id", h.GetUnit)
		units.POST("", h.CreateUnit)
		units.PUT("/:id", h.UpdateUnit)
		units.GET("/:id/installments", h.ListInstallments)
		units.GET("/:id/remaining", h.GetRemaining)
		units.POST("/:id/partners", h.LinkPartner)
		units.DELETE("/:id/partners/:linkId", h.UnlinkPartner)
		units.POST("/:id/return", h.ReturnUnit)
	}
}

// ListUnits returns paginated units with optional status/search filter
// @Summary      List units
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 25)"
// @Param        status  query  string  false  "Filter by status: AVAILABLE, RESERVED, SOLD, RETURNED"
// @Param        search  query  string  false  "Search by code, building, name"
// @Success      200  {object}  response.Response
// @Router       /api/units [get]
func (h *UnitHandler) ListUnits(c *gin.Context) {
	p := pagination.Parse(c)
	status := c.Query("status")
	search := c.Query("search")

	units, total, err := h.unitService.ListUnits(c.Request.Context(), status, search, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, units, p.Page, p.Limit, total))
}

// GetUnit returns one unit with its partner links
// @Summary      Get unit
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Unit ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/units/{id} [get]
func (h *UnitHandler) GetUnit(c *gin.Context) {
	unit, err := h.unitService.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// CreateUnit creates a new unit
// @Summary      Create unit
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateUnitRequest  true  "Unit payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units [post]
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	var req service.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	unit, err := h.unitService.CreateUnit(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, unit))
}

// UpdateUnit updates an existing unit
// @Summary      Update unit
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Unit ID"
// @Param        payload  body  service.UpdateUnitRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id} [put]
func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	var req service.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	unit, err := h.unitService.UpdateUnit(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// ListInstallments returns the unit's full installment schedule
// @Summary      List unit installments
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Unit ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id}/installments [get]
func (h *UnitHandler) ListInstallments(c *gin.Context) {
	installments, err := h.paymentService.ListInstallmentsByUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, installments))
}

// GetRemaining returns the outstanding balance on the unit's active contract
// @Summary      Unit remaining balance
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Unit ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id}/remaining [get]
func (h *UnitHandler) GetRemaining(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid unit id"))
		return
	}

	remaining, err := h.contractService.RemainingForUnit(c.Request.Context(), unitID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, remaining))
}

// LinkPartner attaches a partner ownership share to the unit
// @Summary      Link unit partner
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Unit ID"
// @Param        payload  body  service.LinkPartnerRequest  true  "Share payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id}/partners [post]
func (h *UnitHandler) LinkPartner(c *gin.Context) {
	var req service.LinkPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	unit, err := h.unitService.LinkPartner(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// UnlinkPartner removes a partner ownership link from the unit
// @Summary      Unlink unit partner
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id      path  string  true  "Unit ID"
// @Param        linkId  path  string  true  "Ownership link ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id}/partners/{linkId} [delete]
func (h *UnitHandler) UnlinkPartner(c *gin.Context) {
	unit, err := h.unitService.UnlinkPartner(c.Request.Context(), currentUserID(c), c.Param("id"), c.Param("linkId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// ReturnUnit unwinds the unit's contract into partner debts owed to the sellers
// @Summary      Return unit
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Unit ID"
// @Param        payload  body  service.ReturnUnitRequest  true  "Return payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/units/{id}/return [post]
func (h *UnitHandler) ReturnUnit(c *gin.Context) {
	var req service.ReturnUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	debts, err := h.returnService.ReturnUnit(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, debts))
}
