// internal/interfaces/http/handlers/backup.go
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/backup"
	"gorm.io/gorm"
)

// BackupHandler handles admin backup endpoints
type BackupHandler struct {
	backupService *backup.Service
	config        *config.Config
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(db *gorm.DB, cfg *config.Config) *BackupHandler {
	return &BackupHandler{
		backupService: backup.NewService(db, cfg),
		config:        cfg,
	}
}

// CreateBackupRequest selects what to back up
type CreateBackupRequest struct {
	Type backup.BackupType `json:"type" binding:"required"`
}

// ListBackups handles GET /admin/backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	records, err := h.backupService.ListBackups()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list backups",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Backups retrieved successfully",
		"data":    records,
	})
}

// CreateBackup handles POST /admin/backups
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	var req CreateBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var record *backup.Record
	var err error
	switch req.Type {
	case backup.TypeDatabase:
		record, err = h.backupService.CreateDatabaseBackup(c.Request.Context())
	case backup.TypeMedia:
		record, err = h.backupService.CreateMediaBackup(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Backup type must be 'db' or 'media'",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Backup created successfully",
		"data":    record,
	})
}

// DownloadBackup handles GET /admin/backups/:id/download
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid backup ID",
		})
		return
	}

	record, file, err := h.backupService.OpenBackup(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, record.Name))
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", fmt.Sprintf("%d", record.Size))

	if _, err := io.Copy(c.Writer, file); err != nil {
		// Headers are already out; nothing useful to send
		return
	}
}

// RestoreBackup handles POST /admin/backups/:id/restore
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid backup ID",
		})
		return
	}

	if err := h.backupService.RestoreBackup(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Backup restored successfully",
	})
}

// DeleteBackup handles DELETE /admin/backups/:id
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid backup ID",
		})
		return
	}

	if err := h.backupService.DeleteBackup(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Backup deleted successfully",
	})
}
