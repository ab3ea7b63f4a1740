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

type ContractHandler struct {
	contractService service.ContractService
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/api/contracts", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.GET("/:id/remaining", h.GetRemaining)
		contracts.POST("", h.CreateContract)
		contracts.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteContract)
	}
}

// ListContracts returns paginated contracts with optional customer filter
// @Summary      List contracts
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        page         query  int     false  "Page number (default: 1)"
// @Param        limit        query  int     false  "Items per page (default: 25)"
// @Param        customer_id  query  string  false  "Filter by customer"
// @Success      200  {object}  response.Response
// @Router       /api/contracts [get]
func (h *ContractHandler) ListContracts(c *gin.Context) {
	p := pagination.Parse(c)
	customerID := c.Query("customer_id")

	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), customerID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, contracts, p.Page, p.Limit, total))
}

// GetContract returns one contract with its installment schedule
// @Summary      Get contract
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	contract, installments, err := h.contractService.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"contract":     contract,
		"installments": installments,
	}))
}

// GetRemaining returns the contract's outstanding balance
// @Summary      Contract remaining balance
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/contracts/{id}/remaining [get]
func (h *ContractHandler) GetRemaining(c *gin.Context) {
	remaining, err := h.contractService.Remaining(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, remaining))
}

// CreateContract sells a unit: generates the installment schedule and broker due
// @Summary      Create contract
// @Tags         contracts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateContractRequest  true  "Contract payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// DeleteContract cancels a contract and releases the unit
// @Summary      Delete contract
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/contracts/{id} [delete]
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	if err := h.contractService.DeleteContract(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Contract deleted successfully"}))
}
