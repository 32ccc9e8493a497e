// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	cartService   *cart.Service
	config        *config.Config
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: coupon.NewService(db, redisClient, cfg),
		cartService:   cart.NewService(db, redisClient, cfg),
		config:        cfg,
	}
}

// ApplyCouponRequest represents a coupon application request
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyCoupon handles POST /coupons/apply
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	applied, err := h.couponService.Apply(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid or expired coupon code",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to apply coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon applied",
		"data":    applied,
	})
}

// RemoveCoupon handles DELETE /coupons/apply
func (h *CouponHandler) RemoveCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	if err := h.couponService.Clear(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon removed",
	})
}

// GetAppliedCoupon handles GET /coupons/applied
func (h *CouponHandler) GetAppliedCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	ctx := c.Request.Context()

	snapshot, err := h.cartService.Snapshot(ctx, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	applied, err := h.couponService.Current(ctx, sessionID, snapshot.Totals().SubTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve applied coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Applied coupon retrieved",
		"data":    applied,
	})
}

// AdminGetCoupons handles GET /admin/coupons
func (h *CouponHandler) AdminGetCoupons(c *gin.Context) {
	coupons, err := h.couponService.GetCoupons()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve coupons",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupons retrieved successfully",
		"data":    coupons,
	})
}

// AdminCreateCoupon handles POST /admin/coupons
func (h *CouponHandler) AdminCreateCoupon(c *gin.Context) {
	var req coupon.CouponCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"data":    created,
	})
}

// AdminUpdateCoupon handles PUT /admin/coupons/:id
func (h *CouponHandler) AdminUpdateCoupon(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	var req coupon.CouponUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.couponService.UpdateCoupon(id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated successfully",
		"data":    updated,
	})
}

// AdminDeleteCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) AdminDeleteCoupon(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	if err := h.couponService.DeleteCoupon(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deleted successfully",
	})
}
