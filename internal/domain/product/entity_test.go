package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		expected int64
	}{
		{
			name:     "regular price when no discount",
			product:  Product{Price: 1000},
			expected: 1000,
		},
		{
			name:     "discount price wins when set",
			product:  Product{Price: 1000, DiscountPrice: int64Ptr(800)},
			expected: 800,
		},
		{
			name:     "zero discount ignored",
			product:  Product{Price: 1000, DiscountPrice: int64Ptr(0)},
			expected: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.product.EffectivePrice())
		})
	}
}

func TestIsOnSale(t *testing.T) {
	assert.False(t, (&Product{Price: 1000}).IsOnSale())
	assert.True(t, (&Product{Price: 1000, DiscountPrice: int64Ptr(800)}).IsOnSale())
	assert.False(t, (&Product{Price: 1000, DiscountPrice: int64Ptr(1200)}).IsOnSale())
}

func TestGetDiscountPercentage(t *testing.T) {
	p := Product{Price: 1000, DiscountPrice: int64Ptr(750)}
	assert.Equal(t, 25, p.GetDiscountPercentage())

	noSale := Product{Price: 1000}
	assert.Equal(t, 0, noSale.GetDiscountPercentage())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Premium Gaming Laptop", "premium-gaming-laptop"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Ink & Toner (HP)", "ink-toner-hp"},
		{"醬油", ""},
		{"醬油 Soy Sauce 500ml", "soy-sauce-500ml"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slugify(tt.input), "input %q", tt.input)
	}
}

func TestGenerateSKU(t *testing.T) {
	sku := GenerateSKU("Premium Gaming Laptop")
	assert.Contains(t, sku, "PREMIUM-GAMING-LAPTO")
	assert.NotEqual(t, sku, GenerateSKU("Premium Gaming Laptop"), "suffix must vary")

	// Names that slugify to nothing fall back to a generic prefix
	fallback := GenerateSKU("醬油")
	assert.True(t, len(fallback) > 4)
	assert.Contains(t, fallback, "SKU-")
}
