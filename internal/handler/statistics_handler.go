package handler

import (
	"net/http"
	"time"

	"estate-backend/internal/middleware"
	"estate-backend/internal/model"
	"estate-backend/internal/service"
	"estate-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/statistics", middleware.RequireRole(model.RoleAdmin, model.RoleAccountant))
	{
		stats.GET("/overview", h.GetOverview)
		stats.GET("/cashflow", h.GetCashflow)
	}
}

// GetOverview returns the dashboard headline numbers
// @Summary      Overview statistics
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/statistics/overview [get]
func (h *StatisticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.statisticsService.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}

// GetCashflow returns receipts/payments bucketed by period
// @Summary      Cashflow statistics
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        group_by    query  string  false  "Bucket size: week, month, quarter, year (default: month)"
// @Param        start_date  query  string  false  "RFC3339 start (default: 1 year ago)"
// @Param        end_date    query  string  false  "RFC3339 end (default: now)"
// @Param        safe_id     query  string  false  "Filter by safe"
// @Success      200  {object}  response.Response
// @Router       /api/statistics/cashflow [get]
func (h *StatisticsHandler) GetCashflow(c *gin.Context) {
	now := time.Now()
	startDate := c.DefaultQuery("start_date", now.AddDate(-1, 0, 0).Format(time.RFC3339))
	endDate := c.DefaultQuery("end_date", now.Format(time.RFC3339))

	filter := service.CashflowFilter{
		GroupBy:   c.Query("group_by"),
		StartDate: startDate,
		EndDate:   endDate,
		SafeID:    c.Query("safe_id"),
	}

	points, err := h.statisticsService.GetCashflowStatistics(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}
