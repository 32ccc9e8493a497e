// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusCreated          OrderStatus = "created"
	StatusPaid             OrderStatus = "paid"
	StatusFulfilling       OrderStatus = "fulfilling"
	StatusPartiallyShipped OrderStatus = "partially_shipped"
	StatusShipped          OrderStatus = "shipped"
	StatusCompleted        OrderStatus = "completed"
	StatusCanceled         OrderStatus = "canceled"
	StatusReturned         OrderStatus = "returned"
	StatusRefunded         OrderStatus = "refunded"
)

// AllStatuses lists every valid order status
var AllStatuses = []OrderStatus{
	StatusCreated, StatusPaid, StatusFulfilling, StatusPartiallyShipped,
	StatusShipped, StatusCompleted, StatusCanceled, StatusReturned,
	StatusRefunded,
}

// stockReleasedStatuses are the states in which an order's units have been
// handed back to inventory
var stockReleasedStatuses = map[OrderStatus]bool{
	StatusCanceled: true,
	StatusReturned: true,
	StatusRefunded: true,
}

// SalesStatuses are the states counted as revenue in sales reporting
var SalesStatuses = []OrderStatus{
	StatusPaid, StatusFulfilling, StatusPartiallyShipped,
	StatusShipped, StatusCompleted,
}

// IsValidStatus reports whether s is a known order status
func IsValidStatus(s OrderStatus) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ReleasesStock reports whether the status hands inventory back
func (s OrderStatus) ReleasesStock() bool {
	return stockReleasedStatuses[s]
}

// StockAction describes what a status transition does to inventory
type StockAction int

const (
	StockNoop     StockAction = iota
	StockRestore              // entering a released state: give units back
	StockRededuct             // leaving a released state: take units again
)

// TransitionStockAction decides the inventory side effect of moving an
// order from one status to another. Restores happen exactly once on the
// way in; re-deducts on the way out may push stock negative, which is
// surfaced to the operator rather than blocked.
func TransitionStockAction(from, to OrderStatus) StockAction {
	switch {
	case !from.ReleasesStock() && to.ReleasesStock():
		return StockRestore
	case from.ReleasesStock() && !to.ReleasesStock():
		return StockRededuct
	default:
		return StockNoop
	}
}

// Order represents a customer order
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID          *uint       `gorm:"index" json:"user_id"`
	Status          OrderStatus `gorm:"not null;default:'created';size:30" json:"status"`
	CustomerName    string      `gorm:"size:255" json:"customer_name"`
	Email           string      `gorm:"size:255;index" json:"email"`
	Phone           string      `gorm:"size:50" json:"phone"`
	ShippingAddress string      `gorm:"size:500" json:"shipping_address"`
	IPAddress       string      `gorm:"size:45" json:"ip_address"`

	CouponID        *uint  `gorm:"index" json:"coupon_id"`
	PaymentMethodID *uint  `gorm:"index" json:"payment_method_id"`
	PaymentProof    string `gorm:"size:500" json:"payment_proof"`
	PaymentIntentID string `gorm:"index;size:255" json:"payment_intent_id"`

	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"` // In cents
	TotalAmount    int64 `gorm:"default:0" json:"total_amount"`    // Cached, in cents

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	Notes         []OrderNote            `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"notes,omitempty"`
	Coupon        *coupon.Coupon         `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	PaymentMethod *payment.PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
}

// OrderItem represents a single product line on an order. The product row
// is protected from deletion while items reference it.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255" json:"product_name"` // Snapshot at order time
	SKU         string    `gorm:"size:100" json:"sku"`
	Price       int64     `gorm:"not null" json:"price"` // Unit price in cents at order time
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"product,omitempty"`
}

// Subtotal returns price x quantity for the line
func (i *OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// OrderNote is an append-only annotation on an order. Customer-visible
// notes are emailed to the customer on creation.
type OrderNote struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           uint      `gorm:"not null;index" json:"order_id"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	IsCustomerVisible bool      `gorm:"default:false" json:"is_customer_visible"`
	CreatedBy         string    `gorm:"size:255" json:"created_by"` // Email or "system"
	CreatedAt         time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
func (OrderNote) TableName() string { return "order_notes" }

// ComputeTotal returns the order total for a set of lines and a discount:
// the sum of line subtotals minus the discount, floored at zero
func ComputeTotal(items []OrderItem, discount int64) int64 {
	var total int64
	for i := range items {
		total += items[i].Subtotal()
	}
	total -= discount
	if total < 0 {
		total = 0
	}
	return total
}

// GenerateOrderNumber builds a human-readable, practically unique order
// number like ORD-20260829-3FA2B1
func GenerateOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), suffix)
}
