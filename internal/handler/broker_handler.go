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

type BrokerHandler struct {
	brokerService service.BrokerService
}

func NewBrokerHandler(brokerService service.BrokerService) *BrokerHandler {
	return &BrokerHandler{brokerService: brokerService}
}

func (h *BrokerHandler) RegisterRoutes(router *gin.RouterGroup) {
	brokers := router.Group("/api/brokers", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		brokers.GET("", h.ListBrokers)
		brokers.POST("", h.CreateBroker)
	}

	dues := router.Group("/api/broker-dues", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		dues.GET("", h.ListDues)
		dues.POST("/:id/pay", h.PayDue)
	}
}

// ListBrokers returns paginated brokers with optional search
// @Summary      List brokers
// @Tags         brokers
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 25)"
// @Param        search  query  string  false  "Search by name or phone"
// @Success      200  {object}  response.Response
// @Router       /api/brokers [get]
func (h *BrokerHandler) ListBrokers(c *gin.Context) {
	p := pagination.Parse(c)
	search := c.Query("search")

	brokers, total, err := h.brokerService.ListBrokers(c.Request.Context(), search, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, brokers, p.Page, p.Limit, total))
}

// CreateBroker creates a new broker
// @Summary      Create broker
// @Tags         brokers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateBrokerRequest  true  "Broker payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/brokers [post]
func (h *BrokerHandler) CreateBroker(c *gin.Context) {
	var req service.CreateBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	broker, err := h.brokerService.CreateBroker(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, broker))
}

// ListDues returns paginated broker commission dues
// @Summary      List broker dues
// @Tags         brokers
// @Security     BearerAuth
// @Produce      json
// @Param        page       query  int     false  "Page number (default: 1)"
// @Param        limit      query  int     false  "Items per page (default: 25)"
// @Param        status     query  string  false  "Filter by status: UNPAID, PAID, CANCELLED"
// @Param        broker_id  query  string  false  "Filter by broker"
// @Success      200  {object}  response.Response
// @Router       /api/broker-dues [get]
func (h *BrokerHandler) ListDues(c *gin.Context) {
	p := pagination.Parse(c)
	status := c.Query("status")
	brokerID := c.Query("broker_id")

	dues, total, err := h.brokerService.ListDues(c.Request.Context(), status, brokerID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, dues, p.Page, p.Limit, total))
}

// PayDue settles a broker commission from a safe
// @Summary      Pay broker due
// @Tags         brokers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Broker due ID"
// @Param        payload  body  service.PayBrokerDueRequest  true  "Payment payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/broker-dues/{id}/pay [post]
func (h *BrokerHandler) PayDue(c *gin.Context) {
	var req service.PayBrokerDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	due, err := h.brokerService.PayDue(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, due))
}
