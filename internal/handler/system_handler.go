package handler

import (
	"net/http"

	"estate-backend/internal/middleware"
	"estate-backend/internal/model"
	"estate-backend/internal/service"
	"estate-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	backupService service.BackupService
}

func NewSystemHandler(backupService service.BackupService) *SystemHandler {
	return &SystemHandler{backupService: backupService}
}

func (h *SystemHandler) RegisterRoutes(router *gin.RouterGroup) {
	system := router.Group("/api/system", middleware.RequireRole(model.RoleAdmin))
	{
		system.GET("/backup", h.ExportBackup)
		system.POST("/restore", middleware.RequireAdminKey(), h.RestoreBackup)
	}
}

// ExportBackup streams a full-database JSON snapshot
// @Summary      Export backup
// @Tags         system
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  service.BackupPayload
// @Router       /api/system/backup [get]
func (h *SystemHandler) ExportBackup(c *gin.Context) {
	payload, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.JSON(http.StatusOK, payload)
}

// RestoreBackup wipes the database and reloads it from a snapshot
// @Summary      Restore backup
// @Tags         system
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header  string                 true  "Admin key"
// @Param        payload      body    service.BackupPayload  true  "Backup snapshot"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/system/restore [post]
func (h *SystemHandler) RestoreBackup(c *gin.Context) {
	var payload service.BackupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid backup payload: "+err.Error()))
		return
	}

	if err := h.backupService.Restore(c.Request.Context(), currentUserID(c), &payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Backup restored successfully"}))
}
