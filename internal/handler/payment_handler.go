package handler

import (
	"net/http"

	"estate-backend/internal/middleware"
	"estate-backend/internal/model"
	"estate-backend/internal/service"
	"estate-backend/pkg/pagination"
	"estate-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	returnService  service.ReturnService
}

func NewPaymentHandler(paymentService service.PaymentService, returnService service.ReturnService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, returnService: returnService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		payments.POST("", h.ApplyPayment)
	}

	installments := router.Group("/api/installments", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		installments.POST("/:id/reschedule", h.Reschedule)
	}

	debts := router.Group("/api/partner-debts", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		debts.GET("", h.ListPartnerDebts)
		debts.POST("/:id/pay", h.PayPartnerDebt)
	}
}

// ApplyPayment records a receipt and spreads it over the oldest open installments
// @Summary      Apply payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ApplyPaymentRequest  true  "Payment payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) ApplyPayment(c *gin.Context) {
	var req service.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reschedule moves an unpaid installment and redistributes the difference
// @Summary      Reschedule installment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Installment ID"
// @Param        payload  body  service.RescheduleRequest  true  "Reschedule payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/installments/{id}/reschedule [post]
func (h *PaymentHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	installments, err := h.paymentService.RescheduleInstallment(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, installments))
}

// ListPartnerDebts returns paginated partner debts
// @Summary      List partner debts
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        page        query  int     false  "Page number (default: 1)"
// @Param        limit       query  int     false  "Items per page (default: 25)"
// @Param        partner_id  query  string  false  "Filter by partner"
// @Param        status      query  string  false  "Filter by status: UNPAID, PARTIALLY_PAID, PAID"
// @Success      200  {object}  response.Response
// @Router       /api/partner-debts [get]
func (h *PaymentHandler) ListPartnerDebts(c *gin.Context) {
	p := pagination.Parse(c)
	partnerID := c.Query("partner_id")
	status := c.Query("status")

	debts, total, err := h.returnService.ListPartnerDebts(c.Request.Context(), partnerID, status, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, debts, p.Page, p.Limit, total))
}

// PayPartnerDebt settles part or all of a debt owed to a seller partner
// @Summary      Pay partner debt
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Partner debt ID"
// @Param        payload  body  service.PayPartnerDebtRequest  true  "Payment payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/partner-debts/{id}/pay [post]
func (h *PaymentHandler) PayPartnerDebt(c *gin.Context) {
	var req service.PayPartnerDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	debt, err := h.returnService.PayPartnerDebt(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, debt))
}
