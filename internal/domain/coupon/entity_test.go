package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDiscountPercent(t *testing.T) {
	// SAVE10: 10% off a 12000-cent cart
	c := Coupon{Code: "SAVE10", DiscountType: DiscountPercent, Value: 10}
	assert.Equal(t, int64(1200), c.CalculateDiscount(12000))
	assert.Equal(t, int64(0), c.CalculateDiscount(0))
}

func TestCalculateDiscountFixed(t *testing.T) {
	// A fixed 50.00 coupon against a 5.00 cart is not clamped here;
	// the session layer caps it at the total
	c := Coupon{DiscountType: DiscountFixed, Value: 5000}
	assert.Equal(t, int64(5000), c.CalculateDiscount(500))
	assert.Equal(t, int64(5000), c.CalculateDiscount(100000))
}

func TestCalculateDiscountUnknownType(t *testing.T) {
	c := Coupon{DiscountType: "mystery", Value: 10}
	assert.Equal(t, int64(0), c.CalculateDiscount(10000))
}

func TestIsValidAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		coupon   Coupon
		expected bool
	}{
		{
			name: "inside window",
			coupon: Coupon{
				IsActive:   true,
				ValidFrom:  now.AddDate(0, 0, -1),
				ValidUntil: now.AddDate(0, 0, 1),
			},
			expected: true,
		},
		{
			name: "inactive",
			coupon: Coupon{
				IsActive:   false,
				ValidFrom:  now.AddDate(0, 0, -1),
				ValidUntil: now.AddDate(0, 0, 1),
			},
			expected: false,
		},
		{
			name: "not started",
			coupon: Coupon{
				IsActive:   true,
				ValidFrom:  now.AddDate(0, 0, 1),
				ValidUntil: now.AddDate(0, 0, 2),
			},
			expected: false,
		},
		{
			name: "expired",
			coupon: Coupon{
				IsActive:   true,
				ValidFrom:  now.AddDate(0, 0, -2),
				ValidUntil: now.AddDate(0, 0, -1),
			},
			expected: false,
		},
		{
			name:     "open-ended window",
			coupon:   Coupon{IsActive: true},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.coupon.IsValidAt(now))
		})
	}
}
