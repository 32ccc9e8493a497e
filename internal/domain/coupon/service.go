// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// ErrInvalidCoupon is returned for unknown, inactive or expired codes
var ErrInvalidCoupon = errors.New("invalid or expired coupon")

// appliedTTL matches the session cart lifetime
const appliedTTL = 24 * time.Hour

// Service handles coupon business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CouponCreateRequest represents coupon creation data
type CouponCreateRequest struct {
	Code         string       `json:"code" binding:"required"`
	DiscountType DiscountType `json:"discount_type" binding:"required"`
	Value        int64        `json:"value" binding:"required"`
	ValidFrom    time.Time    `json:"valid_from"`
	ValidUntil   time.Time    `json:"valid_until"`
	IsActive     bool         `json:"is_active"`
}

// CouponUpdateRequest represents coupon update data
type CouponUpdateRequest struct {
	Code         *string       `json:"code"`
	DiscountType *DiscountType `json:"discount_type"`
	Value        *int64        `json:"value"`
	ValidFrom    *time.Time    `json:"valid_from"`
	ValidUntil   *time.Time    `json:"valid_until"`
	IsActive     *bool         `json:"is_active"`
}

// AppliedCoupon describes the coupon state of a session against a cart total
type AppliedCoupon struct {
	Coupon   *Coupon `json:"coupon"`
	Discount int64   `json:"discount"` // Clamped to the cart total
}

// Apply matches a code case-insensitively and stores it on the session. Any
// failure clears a previously applied coupon so a stale discount can never
// survive a bad re-apply.
func (s *Service) Apply(ctx context.Context, sessionID, code string) (*Coupon, error) {
	var c Coupon
	result := s.db.Where("LOWER(code) = LOWER(?)", code).First(&c)
	if result.Error != nil || !c.IsValidAt(time.Now().UTC()) {
		_ = s.Clear(ctx, sessionID)
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to look up coupon: %w", result.Error)
		}
		return nil, ErrInvalidCoupon
	}

	if err := s.redisClient.Set(ctx, appliedKey(sessionID), c.ID, appliedTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store applied coupon: %w", err)
	}

	return &c, nil
}

// Current re-reads the session's coupon and recomputes its discount against
// the live cart total, clamped to that total. A coupon that has expired
// since it was applied is dropped.
func (s *Service) Current(ctx context.Context, sessionID string, cartTotal int64) (*AppliedCoupon, error) {
	raw, err := s.redisClient.Get(ctx, appliedKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read applied coupon: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}

	var c Coupon
	if result := s.db.Where("id = ?", uint(id)).First(&c); result.Error != nil {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}

	if !c.IsValidAt(time.Now().UTC()) {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}

	discount := c.CalculateDiscount(cartTotal)
	if discount > cartTotal {
		discount = cartTotal
	}

	return &AppliedCoupon{Coupon: &c, Discount: discount}, nil
}

// Clear removes the applied coupon from the session
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.redisClient.Del(ctx, appliedKey(sessionID)).Err()
}

// GetCoupons lists all coupons, newest first
func (s *Service) GetCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}

// GetCoupon retrieves a single coupon by ID
func (s *Service) GetCoupon(id uint) (*Coupon, error) {
	var c Coupon
	result := s.db.Where("id = ?", id).First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("coupon not found")
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", result.Error)
	}
	return &c, nil
}

// CreateCoupon creates a new coupon
func (s *Service) CreateCoupon(req *CouponCreateRequest) (*Coupon, error) {
	if req.DiscountType != DiscountPercent && req.DiscountType != DiscountFixed {
		return nil, fmt.Errorf("unknown discount type %q", req.DiscountType)
	}
	if req.DiscountType == DiscountPercent && (req.Value < 0 || req.Value > 100) {
		return nil, fmt.Errorf("percent value must be between 0 and 100")
	}

	var existing Coupon
	if result := s.db.Where("LOWER(code) = LOWER(?)", req.Code).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("coupon with code %s already exists", req.Code)
	}

	c := Coupon{
		Code:         req.Code,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		IsActive:     req.IsActive,
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return &c, nil
}

// UpdateCoupon updates an existing coupon
func (s *Service) UpdateCoupon(id uint, req *CouponUpdateRequest) (*Coupon, error) {
	c, err := s.GetCoupon(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Code != nil {
		updates["code"] = *req.Code
	}
	if req.DiscountType != nil {
		if *req.DiscountType != DiscountPercent && *req.DiscountType != DiscountFixed {
			return nil, fmt.Errorf("unknown discount type %q", *req.DiscountType)
		}
		updates["discount_type"] = *req.DiscountType
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(c).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update coupon: %w", err)
		}
	}

	return c, nil
}

// DeleteCoupon soft deletes a coupon
func (s *Service) DeleteCoupon(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Coupon{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon not found")
	}
	return nil
}

func appliedKey(sessionID string) string {
	return fmt.Sprintf("applied_coupon:%s", sessionID)
}
