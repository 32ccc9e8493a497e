// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/pkg/geoip"
	"gorm.io/gorm"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AnalyticsHandler {
	resolver := geoip.NewResolver(cfg, redisClient)
	return &AnalyticsHandler{
		analyticsService: analytics.NewService(db, cfg, resolver),
		config:           cfg,
	}
}

// GetVisitorStats handles GET /admin/analytics/visitors
func (h *AnalyticsHandler) GetVisitorStats(c *gin.Context) {
	days := parseDays(c, 30)

	stats, err := h.analyticsService.GetVisitorStats(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve visitor statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Visitor statistics retrieved",
		"data":    stats,
	})
}

// GetVisits handles GET /admin/analytics/visits
func (h *AnalyticsHandler) GetVisits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	response, err := h.analyticsService.ListVisits(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve visits",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Visits retrieved",
		"data":    response,
	})
}

// GetSalesStats handles GET /admin/analytics/sales
func (h *AnalyticsHandler) GetSalesStats(c *gin.Context) {
	days := parseDays(c, 30)
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 32)

	stats, err := h.analyticsService.GetSalesStats(days, uint(productID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sales statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales statistics retrieved",
		"data":    stats,
	})
}

// ExportSalesCSV handles GET /admin/analytics/sales/export
func (h *AnalyticsHandler) ExportSalesCSV(c *gin.Context) {
	days := parseDays(c, 30)
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 32)

	filename := fmt.Sprintf("sales-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv")

	if err := h.analyticsService.ExportSalesCSV(c.Writer, days, uint(productID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export sales data",
		})
		return
	}
}

// parseDays reads a bounded ?days= query parameter
func parseDays(c *gin.Context, fallback int) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(fallback)))
	if err != nil || days <= 0 || days > 365 {
		return fallback
	}
	return days
}
