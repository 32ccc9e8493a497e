// internal/domain/product/category_service.go
package product

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryWithProductCount represents category with product count
type CategoryWithProductCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// GetCategories retrieves all categories with optional filtering
func (s *CategoryService) GetCategories(includeInactive bool) ([]Category, error) {
	var categories []Category

	query := s.db.Model(&Category{}).
		Order("sort_order ASC, name ASC")

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	return categories, nil
}

// GetCategoriesWithProductCount retrieves categories with product counts
func (s *CategoryService) GetCategoriesWithProductCount(includeInactive bool) ([]CategoryWithProductCount, error) {
	categories, err := s.GetCategories(includeInactive)
	if err != nil {
		return nil, err
	}

	var result []CategoryWithProductCount

	for _, cat := range categories {
		var productCount int64

		countQuery := s.db.Table("product_categories").
			Joins("JOIN products p ON p.id = product_categories.product_id").
			Where("product_categories.category_id = ?", cat.ID)
		if !includeInactive {
			countQuery = countQuery.Where("p.is_active = ?", true)
		}
		countQuery.Count(&productCount)

		result = append(result, CategoryWithProductCount{
			Category:     cat,
			ProductCount: productCount,
		})
	}

	return result, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(id uint) (*Category, error) {
	var category Category
	result := s.db.Where("id = ?", id).First(&category)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}

	return &category, nil
}

// GetCategoryBySlug retrieves a single active category by slug
func (s *CategoryService) GetCategoryBySlug(slug string) (*Category, error) {
	var category Category
	result := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&category)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}

	return &category, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(req *CategoryCreateRequest) (*Category, error) {
	slug := s.uniqueSlug(Slugify(req.Name))

	category := Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	result := s.db.Where("id = ?", id).First(&category)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to find category: %w", result.Error)
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil && *req.Name != category.Name {
		updates["name"] = *req.Name
		updates["slug"] = s.uniqueSlug(Slugify(*req.Name))
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	return &category, nil
}

// DeleteCategory soft deletes a category
func (s *CategoryService) DeleteCategory(id uint) error {
	// Check if category has products
	var productCount int64
	s.db.Table("product_categories").Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return fmt.Errorf("cannot delete category with existing products")
	}

	result := s.db.Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

// uniqueSlug returns base, base-1, base-2, ... whichever is first unused
func (s *CategoryService) uniqueSlug(base string) string {
	if base == "" {
		base = "category"
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		s.db.Model(&Category{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
