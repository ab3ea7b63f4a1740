package handler

import (
	"net/http"

	"estate-backend/internal/middleware"
	"estate-backend/internal/model"
	"estate-backend/internal/repository"
	"estate-backend/internal/service"
	"estate-backend/pkg/pagination"
	"estate-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TreasuryHandler struct {
	treasuryService service.TreasuryService
}

func NewTreasuryHandler(treasuryService service.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{treasuryService: treasuryService}
}

func (h *TreasuryHandler) RegisterRoutes(router *gin.RouterGroup) {
	safes := router.Group("/api/safes", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		safes.GET("", h.ListSafes)
		safes.POST("", h.CreateSafe)
		safes.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteSafe)
	}

	vouchers := router.Group("/api/vouchers", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		vouchers.GET("", h.ListVouchers)
		vouchers.POST("", h.CreateVoucher)
		vouchers.POST("/:id/void", middleware.RequireRole(model.RoleAdmin), h.VoidVoucher)
	}

	transfers := router.Group("/api/transfers", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		transfers.POST("", h.Transfer)
	}
}

// ListSafes returns all safes with their balances
// @Summary      List safes
// @Tags         treasury
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/safes [get]
func (h *TreasuryHandler) ListSafes(c *gin.Context) {
	safes, err := h.treasuryService.ListSafes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, safes))
}

// CreateSafe creates a new cash safe
// @Summary      Create safe
// @Tags         treasury
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSafeRequest  true  "Safe payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/safes [post]
func (h *TreasuryHandler) CreateSafe(c *gin.Context) {
	var req service.CreateSafeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	safe, err := h.treasuryService.CreateSafe(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, safe))
}

// DeleteSafe removes an empty safe
// @Summary      Delete safe
// @Tags         treasury
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Safe ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/safes/{id} [delete]
func (h *TreasuryHandler) DeleteSafe(c *gin.Context) {
	if err := h.treasuryService.DeleteSafe(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Safe deleted successfully"}))
}

// ListVouchers returns paginated vouchers with optional filters
// @Summary      List vouchers
// @Tags         treasury
// @Security     BearerAuth
// @Produce      json
// @Param        page            query  int     false  "Page number (default: 1)"
// @Param        limit           query  int     false  "Items per page (default: 25)"
// @Param        type            query  string  false  "Filter by type: RECEIPT, PAYMENT"
// @Param        safe_id         query  string  false  "Filter by safe"
// @Param        reference_type  query  string  false  "Filter by reference type"
// @Success      200  {object}  response.Response
// @Router       /api/vouchers [get]
func (h *TreasuryHandler) ListVouchers(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.VoucherListFilter{
		Type:          c.Query("type"),
		SafeID:        c.Query("safe_id"),
		ReferenceType: c.Query("reference_type"),
		Page:          p.Page,
		Limit:         p.Limit,
	}

	vouchers, total, err := h.treasuryService.ListVouchers(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vouchers, p.Page, p.Limit, total))
}

// CreateVoucher records a manual receipt or payment against a safe
// @Summary      Create voucher
// @Tags         treasury
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateVoucherRequest  true  "Voucher payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/vouchers [post]
func (h *TreasuryHandler) CreateVoucher(c *gin.Context) {
	var req service.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	voucher, err := h.treasuryService.CreateVoucher(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, voucher))
}

// VoidVoucher reverses a voucher's effect on its safe
// @Summary      Void voucher
// @Tags         treasury
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Voucher ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/vouchers/{id}/void [post]
func (h *TreasuryHandler) VoidVoucher(c *gin.Context) {
	voucher, err := h.treasuryService.VoidVoucher(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, voucher))
}

// Transfer moves money between safes as a paired payment/receipt
// @Summary      Transfer between safes
// @Tags         treasury
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.TransferRequest  true  "Transfer payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/transfers [post]
func (h *TreasuryHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.treasuryService.Transfer(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
