// internal/domain/payment/entity.go
package payment

import (
	"time"

	"gorm.io/gorm"
)

// Well-known payment method codes the checkout flow branches on
const (
	MethodCreditCard     = "credit_card"
	MethodCashOnDelivery = "cod"
)

// PaymentMethod represents a way customers can pay for an order
type PaymentMethod struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:100" json:"name"`
	Code          string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description   string         `gorm:"size:500" json:"description"`
	Instructions  string         `gorm:"type:text" json:"instructions"`
	RequiresProof bool           `gorm:"default:false" json:"requires_proof"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// IsCard reports whether this method settles through the card gateway
func (m *PaymentMethod) IsCard() bool {
	return m.Code == MethodCreditCard
}

// IsCashOnDelivery reports whether this method is settled on delivery
func (m *PaymentMethod) IsCashOnDelivery() bool {
	return m.Code == MethodCashOnDelivery
}
