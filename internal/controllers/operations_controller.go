package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// OperationsController serves the admin export and backup endpoints
type OperationsController struct {
	exports services.ExportService
	backups services.BackupService
}

func NewOperationsController(exports services.ExportService, backups services.BackupService) *OperationsController {
	return &OperationsController{exports: exports, backups: backups}
}

// ExportOrders godoc
// @Summary Export all orders
// @Description Downloads every order as a JSON array or CSV file
// @Tags admin
// @Produce json
// @Produce text/csv
// @Param format query string false "json or csv" default(json)
// @Success 200 {file} file
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/export/orders [get]
func (oc *OperationsController) ExportOrders(c *gin.Context) {
	export, err := oc.exports.ExportOrders(c.Request.Context(), c.DefaultQuery("format", services.ExportFormatJSON))
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{"file": export.Filename, "rows": export.Rows}).Info("Orders exported")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// CreateBackup godoc
// @Summary Back up the database
// @Description Dumps the whole database to a timestamped file in the backup directory
// @Tags admin
// @Produce json
// @Success 201 {object} services.BackupFile
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/backups [post]
func (oc *OperationsController) CreateBackup(c *gin.Context) {
	backup, err := oc.backups.CreateBackup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, backup)
}

// LatestBackup godoc
// @Summary Download the latest backup
// @Tags admin
// @Produce octet-stream
// @Success 200 {file} file
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/backups/latest [get]
func (oc *OperationsController) LatestBackup(c *gin.Context) {
	backup, err := oc.backups.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(backup.Path, backup.Name)
}
