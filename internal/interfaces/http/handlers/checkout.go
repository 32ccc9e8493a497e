// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// GetSummary handles GET /checkout
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	userID := optionalUserID(c)

	summary, err := h.checkoutService.GetSummary(c.Request.Context(), sessionID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build checkout summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved",
		"data":    summary,
	})
}

// Submit handles POST /checkout. Accepts either JSON or multipart form
// data; the multipart form may carry a payment proof image.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	userID := optionalUserID(c)

	var req checkout.SubmitRequest
	var bindErr error
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		bindErr = c.ShouldBind(&req)
	} else {
		bindErr = c.ShouldBindJSON(&req)
	}
	if bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": bindErr.Error(),
		})
		return
	}

	if fileHeader, err := c.FormFile("payment_proof"); err == nil {
		path, err := h.savePaymentProof(c, fileHeader.Filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		req.PaymentProof = path
	}

	ord, err := h.checkoutService.Submit(c.Request.Context(), sessionID, c.ClientIP(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, checkout.ErrPaymentIncomplete):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Card payment has not been completed",
			})
		case errors.Is(err, product.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order_number": ord.OrderNumber,
			"status":       ord.Status,
			"total_amount": ord.TotalAmount,
		},
	})
}

// savePaymentProof validates and stores an uploaded proof image under the
// media directory, returning the stored path
func (h *CheckoutHandler) savePaymentProof(c *gin.Context, originalName string) (string, error) {
	fileHeader, err := c.FormFile("payment_proof")
	if err != nil {
		return "", fmt.Errorf("failed to read payment proof upload")
	}
	if fileHeader.Size > h.config.Upload.MaxSize {
		return "", fmt.Errorf("payment proof exceeds the %d byte limit", h.config.Upload.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	allowed := false
	for _, allowedExt := range h.config.Upload.AllowedExtensions {
		if ext == allowedExt {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("file type %s is not allowed", ext)
	}

	dir := filepath.Join(h.config.Upload.MediaDir, "payment_proofs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare upload directory")
	}

	path := filepath.Join(dir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		return "", fmt.Errorf("failed to store payment proof")
	}
	return path, nil
}

// optionalUserID returns the authenticated user's ID, or nil for guests
func optionalUserID(c *gin.Context) *uint {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return &userID
	}
	return nil
}
