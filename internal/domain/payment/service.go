// internal/domain/payment/service.go
package payment

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles payment method management
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new payment method service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// MethodCreateRequest represents payment method creation data
type MethodCreateRequest struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required"`
	Description   string `json:"description"`
	Instructions  string `json:"instructions"`
	RequiresProof bool   `json:"requires_proof"`
	IsActive      bool   `json:"is_active"`
	SortOrder     int    `json:"sort_order"`
}

// MethodUpdateRequest represents payment method update data
type MethodUpdateRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Instructions  *string `json:"instructions"`
	RequiresProof *bool   `json:"requires_proof"`
	IsActive      *bool   `json:"is_active"`
	SortOrder     *int    `json:"sort_order"`
}

// GetActiveMethods lists methods available to shoppers. Card payment is
// hidden when the gateway is unconfigured.
func (s *Service) GetActiveMethods() ([]PaymentMethod, error) {
	var methods []PaymentMethod
	query := s.db.Where("is_active = ?", true)
	if !s.config.StripeEnabled() {
		query = query.Where("code != ?", MethodCreditCard)
	}
	if err := query.Order("sort_order ASC, name ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payment methods: %w", err)
	}
	return methods, nil
}

// GetMethods lists every payment method for administration
func (s *Service) GetMethods() ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := s.db.Order("sort_order ASC, name ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payment methods: %w", err)
	}
	return methods, nil
}

// GetMethod retrieves a single payment method by ID
func (s *Service) GetMethod(id uint) (*PaymentMethod, error) {
	var method PaymentMethod
	result := s.db.Where("id = ?", id).First(&method)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment method not found")
		}
		return nil, fmt.Errorf("failed to retrieve payment method: %w", result.Error)
	}
	return &method, nil
}

// GetMethodByCode retrieves an active payment method by its code
func (s *Service) GetMethodByCode(code string) (*PaymentMethod, error) {
	var method PaymentMethod
	result := s.db.Where("code = ? AND is_active = ?", code, true).First(&method)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment method not found")
		}
		return nil, fmt.Errorf("failed to retrieve payment method: %w", result.Error)
	}
	return &method, nil
}

// CreateMethod creates a new payment method
func (s *Service) CreateMethod(req *MethodCreateRequest) (*PaymentMethod, error) {
	var existing PaymentMethod
	if result := s.db.Where("code = ?", req.Code).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("payment method with code %s already exists", req.Code)
	}

	method := PaymentMethod{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		Instructions:  req.Instructions,
		RequiresProof: req.RequiresProof,
		IsActive:      req.IsActive,
		SortOrder:     req.SortOrder,
	}

	if err := s.db.Create(&method).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	return &method, nil
}

// UpdateMethod updates an existing payment method
func (s *Service) UpdateMethod(id uint, req *MethodUpdateRequest) (*PaymentMethod, error) {
	method, err := s.GetMethod(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Instructions != nil {
		updates["instructions"] = *req.Instructions
	}
	if req.RequiresProof != nil {
		updates["requires_proof"] = *req.RequiresProof
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(method).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update payment method: %w", err)
		}
	}

	return method, nil
}

// DeleteMethod soft deletes a payment method
func (s *Service) DeleteMethod(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&PaymentMethod{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment method: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment method not found")
	}
	return nil
}
