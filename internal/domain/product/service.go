// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a stock decrement would take a
// product below zero
var ErrInsufficientStock = errors.New("insufficient stock")

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	IsActive   *bool  `form:"is_active"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU           string `json:"sku"`
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Specs         string `json:"specs"`
	Price         int64  `json:"price" binding:"required"`
	DiscountPrice *int64 `json:"discount_price"`
	Stock         int    `json:"stock"`
	ImageURL      string `json:"image_url"`
	IsActive      bool   `json:"is_active"`
	CategoryIDs   []uint `json:"category_ids"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Specs         *string `json:"specs"`
	Price         *int64  `json:"price"`
	DiscountPrice *int64  `json:"discount_price"`
	Stock         *int    `json:"stock"`
	ImageURL      *string `json:"image_url"`
	IsActive      *bool   `json:"is_active"`
	CategoryIDs   []uint  `json:"category_ids"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	// Build query
	query := s.db.Model(&Product{}).
		Preload("Categories").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})

	// Apply filters
	if req.CategoryID > 0 {
		query = query.
			Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", search, search, search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Categories").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Categories").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = GenerateSKU(req.Name)
	}

	// Check if SKU already exists
	var existing Product
	if result := s.db.Where("sku = ?", sku).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("product with SKU %s already exists", sku)
	}

	product := Product{
		SKU:           sku,
		Name:          req.Name,
		Slug:          s.uniqueSlug(Slugify(req.Name), 0),
		Description:   req.Description,
		Specs:         req.Specs,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if len(req.CategoryIDs) > 0 {
		if err := s.replaceCategories(&product, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	// Load relationships
	s.db.Preload("Categories").Preload("Images").First(&product, product.ID)

	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil && *req.Name != product.Name {
		updates["name"] = *req.Name
		updates["slug"] = s.uniqueSlug(Slugify(*req.Name), product.ID)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Specs != nil {
		updates["specs"] = *req.Specs
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountPrice != nil {
		updates["discount_price"] = *req.DiscountPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if req.CategoryIDs != nil {
		if err := s.replaceCategories(&product, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	// Load updated product with relationships
	s.db.Preload("Categories").Preload("Images").First(&product, product.ID)

	return &product, nil
}

// DuplicateProduct creates a copy of a product with a fresh SKU and slug
func (s *Service) DuplicateProduct(id uint) (*Product, error) {
	source, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	copySKU := s.uniqueSKU(source.SKU)

	duplicate := Product{
		SKU:           copySKU,
		Name:          source.Name + " (copy)",
		Slug:          s.uniqueSlug(source.Slug, 0),
		Description:   source.Description,
		Specs:         source.Specs,
		Price:         source.Price,
		DiscountPrice: source.DiscountPrice,
		Stock:         source.Stock,
		ImageURL:      source.ImageURL,
		IsActive:      false, // Copies start hidden until reviewed
	}

	if err := s.db.Create(&duplicate).Error; err != nil {
		return nil, fmt.Errorf("failed to duplicate product: %w", err)
	}

	if len(source.Categories) > 0 {
		if err := s.db.Model(&duplicate).Association("Categories").Replace(source.Categories); err != nil {
			return nil, fmt.Errorf("failed to copy categories: %w", err)
		}
	}

	for _, img := range source.Images {
		image := ProductImage{
			ProductID: duplicate.ID,
			URL:       img.URL,
			Caption:   img.Caption,
			SortOrder: img.SortOrder,
		}
		if err := s.db.Create(&image).Error; err != nil {
			return nil, fmt.Errorf("failed to copy product image: %w", err)
		}
	}

	s.db.Preload("Categories").Preload("Images").First(&duplicate, duplicate.ID)

	return &duplicate, nil
}

// DeleteProduct soft deletes a product. Products referenced by order items
// cannot be removed.
func (s *Service) DeleteProduct(id uint) error {
	var refs int64
	if err := s.db.Table("order_items").Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("product is referenced by %d order item(s) and cannot be deleted", refs)
	}

	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// DecrementStock atomically deducts stock, failing with ErrInsufficientStock
// when the product does not have qty units left. Safe under concurrent
// checkouts.
func DecrementStock(tx *gorm.DB, productID uint, qty int) error {
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// AdjustStock adds delta to a product's stock without a floor. Used when an
// order re-enters fulfillment and the deducted units may already be gone.
func AdjustStock(tx *gorm.DB, productID uint, delta int) error {
	result := tx.Model(&Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	return nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"updated_at": true,
		"stock":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

// replaceCategories resets the product's category set
func (s *Service) replaceCategories(product *Product, categoryIDs []uint) error {
	var categories []Category
	if len(categoryIDs) > 0 {
		if err := s.db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
	}
	if err := s.db.Model(product).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("failed to set categories: %w", err)
	}
	return nil
}

// uniqueSlug returns base, base-1, base-2, ... whichever is first unused.
// excludeID skips the product being renamed.
func (s *Service) uniqueSlug(base string, excludeID uint) string {
	if base == "" {
		base = "product"
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		query := s.db.Model(&Product{}).Where("slug = ?", candidate)
		if excludeID > 0 {
			query = query.Where("id != ?", excludeID)
		}
		query.Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// uniqueSKU suffixes the source SKU until it no longer collides
func (s *Service) uniqueSKU(base string) string {
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		var count int64
		s.db.Model(&Product{}).Where("sku = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
	}
}

// Slugify converts a name into a URL-friendly slug. Non-ASCII names (for
// example Chinese product names) may slugify to an empty string; callers
// fall back to a generated value.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// GenerateSKU builds a SKU for products that arrive without one
func GenerateSKU(name string) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	if slug := Slugify(name); slug != "" {
		if len(slug) > 20 {
			slug = slug[:20]
		}
		return fmt.Sprintf("%s-%s", strings.ToUpper(slug), suffix)
	}
	return fmt.Sprintf("SKU-%s", suffix)
}
