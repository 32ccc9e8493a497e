// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db           *gorm.DB
	config       *config.Config
	emailService *email.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, emailService *email.Service) *Service {
	return &Service{
		db:           db,
		config:       cfg,
		emailService: emailService,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    uint        `form:"user_id"`
	Search    string      `form:"search"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
	DateFrom  string      `form:"date_from"`
	DateTo    string      `form:"date_to"`
}

// OrderResponse represents order list response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
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

// UpdateStatusRequest represents a status change request
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// AddNoteRequest represents a note creation request
type AddNoteRequest struct {
	Content           string `json:"content" binding:"required"`
	IsCustomerVisible bool   `json:"is_customer_visible"`
}

// UpdateItemRequest represents an order line mutation
type UpdateItemRequest struct {
	Quantity int   `json:"quantity" binding:"required,min=1"`
	Price    int64 `json:"price" binding:"min=0"`
}

// AddItemRequest adds a product line to an existing order
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{}).
		Preload("Items").
		Preload("PaymentMethod").
		Preload("Coupon")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Search != "" {
		term := "%" + req.Search + "%"
		query = query.Where(
			"order_number ILIKE ? OR email ILIKE ? OR customer_name ILIKE ? OR phone ILIKE ?",
			term, term, term, term,
		)
	}
	if req.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", req.DateFrom); err == nil {
			query = query.Where("created_at >= ?", from)
		}
	}
	if req.DateTo != "" {
		if to, err := time.Parse("2006-01-02", req.DateTo); err == nil {
			query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	orderClause := buildOrderClause(req.SortBy, req.SortOrder)

	if err := query.Order(orderClause).Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetOrder retrieves a single order by ID with all relationships
func (s *Service) GetOrder(id uint) (*Order, error) {
	var ord Order
	err := s.db.
		Preload("Items").
		Preload("Items.Product").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("PaymentMethod").
		Preload("Coupon").
		First(&ord, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// GetOrderByNumber retrieves an order by its public order number. Used by
// the order success page; only customer-visible notes are loaded.
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var ord Order
	err := s.db.
		Preload("Items").
		Preload("Notes", "is_customer_visible = ?", true).
		Preload("PaymentMethod").
		Where("order_number = ?", orderNumber).
		First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// UpdateStatus changes an order's status inside a single transaction.
// Moving into canceled/returned/refunded restores each line's units to
// stock exactly once; moving back out re-deducts them, even if that
// leaves stock negative. An automatic note records the change.
func (s *Service) UpdateStatus(id uint, newStatus OrderStatus, actor string) (*Order, error) {
	if !IsValidStatus(newStatus) {
		return nil, fmt.Errorf("invalid order status: %s", newStatus)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ord Order
		if err := tx.Preload("Items").First(&ord, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order not found")
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if ord.Status == newStatus {
			return nil
		}

		switch TransitionStockAction(ord.Status, newStatus) {
		case StockRestore:
			for _, item := range ord.Items {
				if err := product.AdjustStock(tx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
				}
			}
		case StockRededuct:
			for _, item := range ord.Items {
				if err := product.AdjustStock(tx, item.ProductID, -item.Quantity); err != nil {
					return fmt.Errorf("failed to re-deduct stock for product %d: %w", item.ProductID, err)
				}
			}
		}

		oldStatus := ord.Status
		if err := tx.Model(&ord).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		note := OrderNote{
			OrderID:   ord.ID,
			Content:   fmt.Sprintf("Order status changed from '%s' to '%s'.", oldStatus, newStatus),
			CreatedBy: actor,
		}
		if err := tx.Create(&note).Error; err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(id)
}

// MarkPaidByIntent locates an order by its payment intent and marks it
// paid with a system note. Already-paid (or later) orders are left alone,
// which makes webhook delivery retries safe.
func (s *Service) MarkPaidByIntent(intentID string) (*Order, error) {
	var ord Order
	err := s.db.Where("payment_intent_id = ?", intentID).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no order for payment intent %s", intentID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if ord.Status != StatusCreated {
		return &ord, nil
	}
	return s.UpdateStatus(ord.ID, StatusPaid, "system")
}

// AddNote appends a note to an order. Customer-visible notes are emailed
// to the customer best-effort; delivery failure never fails the request.
func (s *Service) AddNote(ctx context.Context, orderID uint, req *AddNoteRequest, actor string) (*OrderNote, error) {
	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	note := OrderNote{
		OrderID:           ord.ID,
		Content:           req.Content,
		IsCustomerVisible: req.IsCustomerVisible,
		CreatedBy:         actor,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if note.IsCustomerVisible && ord.Email != "" && s.emailService.Enabled() {
		if err := s.emailService.SendOrderNote(ctx, ord.Email, ord.OrderNumber, note.Content); err != nil {
			logrus.WithError(err).WithField("order", ord.OrderNumber).
				Warn("Failed to email order note to customer")
		}
	}

	return &note, nil
}

// DeleteNote removes a note from an order
func (s *Service) DeleteNote(orderID, noteID uint) error {
	result := s.db.Where("id = ? AND order_id = ?", noteID, orderID).Delete(&OrderNote{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note not found")
	}
	return nil
}

// AddItem appends a product line to an order at the product's current
// effective price, then recomputes the cached total
func (s *Service) AddItem(orderID uint, req *AddItemRequest) (*Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ord Order
		if err := tx.First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order not found")
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		var prod product.Product
		if err := tx.First(&prod, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product not found")
			}
			return fmt.Errorf("failed to retrieve product: %w", err)
		}

		item := OrderItem{
			OrderID:     ord.ID,
			ProductID:   prod.ID,
			ProductName: prod.Name,
			SKU:         prod.SKU,
			Price:       prod.EffectivePrice(),
			Quantity:    req.Quantity,
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to add order item: %w", err)
		}
		return recalculateTotal(tx, ord.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

// UpdateItem changes a line's quantity and unit price, then recomputes
// the cached total
func (s *Service) UpdateItem(orderID, itemID uint, req *UpdateItemRequest) (*Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item OrderItem
		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order item not found")
			}
			return fmt.Errorf("failed to retrieve order item: %w", err)
		}

		updates := map[string]interface{}{
			"quantity": req.Quantity,
			"price":    req.Price,
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}
		return recalculateTotal(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

// RemoveItem deletes a line from an order, then recomputes the cached total
func (s *Service) RemoveItem(orderID, itemID uint) (*Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND order_id = ?", itemID, orderID).Delete(&OrderItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete order item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("order item not found")
		}
		return recalculateTotal(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

// recalculateTotal refreshes the cached total from the current lines and
// the stored discount, floored at zero
func recalculateTotal(tx *gorm.DB, orderID uint) error {
	var ord Order
	if err := tx.Preload("Items").First(&ord, orderID).Error; err != nil {
		return fmt.Errorf("failed to reload order: %w", err)
	}
	total := ComputeTotal(ord.Items, ord.DiscountAmount)
	if err := tx.Model(&ord).Update("total_amount", total).Error; err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	return nil
}

// buildOrderClause builds a safe SQL ORDER BY clause for order listings
func buildOrderClause(sortBy, sortOrder string) string {
	allowedSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}
	if !allowedSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
