// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents an item in the storefront catalog
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SKU           string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Specs         string         `gorm:"type:text" json:"specs"`
	Price         int64          `gorm:"not null" json:"price"` // Price in cents
	DiscountPrice *int64         `json:"discount_price"`        // Optional sale price in cents
	Stock         int            `gorm:"default:0" json:"stock"`
	ImageURL      string         `gorm:"size:500" json:"image_url"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Categories []Category     `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Images     []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"many2many:product_categories;" json:"products,omitempty"`
}

// ProductImage represents an additional gallery image on a product
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	Caption   string    `gorm:"size:255" json:"caption"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (Category) TableName() string     { return "categories" }
func (ProductImage) TableName() string { return "product_images" }

// Business methods for Product

// EffectivePrice returns the discount price when one is set, otherwise the
// regular price
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

func (p *Product) IsOnSale() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price
}

func (p *Product) GetFormattedPrice() float64 {
	return float64(p.EffectivePrice()) / 100
}

func (p *Product) GetDiscountPercentage() int {
	if p.IsOnSale() {
		return int(((p.Price - *p.DiscountPrice) * 100) / p.Price)
	}
	return 0
}
