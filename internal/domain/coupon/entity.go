// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType enumerates how a coupon's value is applied
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Coupon represents a discount code
type Coupon struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountType DiscountType   `gorm:"not null;size:20" json:"discount_type"`
	Value        int64          `gorm:"not null" json:"value"` // Percent (0-100) or cents
	ValidFrom    time.Time      `json:"valid_from"`
	ValidUntil   time.Time      `json:"valid_until"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsValidAt reports whether the coupon is active and inside its window
func (c *Coupon) IsValidAt(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	if !c.ValidFrom.IsZero() && t.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidUntil.IsZero() && t.After(c.ValidUntil) {
		return false
	}
	return true
}

// CalculateDiscount computes the raw discount for a total in cents. The
// result is not clamped here; callers cap it at the order total.
func (c *Coupon) CalculateDiscount(total int64) int64 {
	switch c.DiscountType {
	case DiscountPercent:
		return total * c.Value / 100
	case DiscountFixed:
		return c.Value
	default:
		return 0
	}
}
