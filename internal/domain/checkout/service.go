// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no items
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentIncomplete is returned when a card order arrives without a
	// confirmed payment intent
	ErrPaymentIncomplete = errors.New("card payment has not been completed")
)

// Service orchestrates turning a session cart into an order
type Service struct {
	db            *gorm.DB
	redisClient   *redis.Client
	config        *config.Config
	cartService   *cart.Service
	couponService *coupon.Service
	stripeService *payment.StripeService
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:            db,
		redisClient:   redisClient,
		config:        cfg,
		cartService:   cart.NewService(db, redisClient, cfg),
		couponService: coupon.NewService(db, redisClient, cfg),
		stripeService: payment.NewStripeService(cfg),
	}
}

// SubmitRequest represents the checkout form submission
type SubmitRequest struct {
	CustomerName    string `form:"customer_name" json:"customer_name" binding:"required"`
	Email           string `form:"email" json:"email" binding:"required,email"`
	Phone           string `form:"phone" json:"phone" binding:"required"`
	ShippingAddress string `form:"shipping_address" json:"shipping_address" binding:"required"`
	PaymentMethodID uint   `form:"payment_method_id" json:"payment_method_id" binding:"required"`
	PaymentIntentID string `form:"payment_intent_id" json:"payment_intent_id"`
	PaymentProof    string `form:"-" json:"-"` // Stored file path, set by the handler
}

// Summary is everything the checkout page needs in one payload
type Summary struct {
	Cart           *cart.Cart              `json:"cart"`
	Totals         cart.Totals             `json:"totals"`
	Coupon         *coupon.AppliedCoupon   `json:"coupon,omitempty"`
	Total          int64                   `json:"total"` // After discount, in cents
	PaymentMethods []payment.PaymentMethod `json:"payment_methods"`
	StripeKey      string                  `json:"stripe_publishable_key,omitempty"`
	ClientSecret   string                  `json:"client_secret,omitempty"`
	PaymentIntent  string                  `json:"payment_intent_id,omitempty"`
}

// GetSummary assembles the checkout view: cart contents, the applied
// coupon re-validated against the current total, the active payment
// methods, and a Stripe payment intent when card payment is available.
func (s *Service) GetSummary(ctx context.Context, sessionID string, userID *uint) (*Summary, error) {
	snapshot, err := s.cartService.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	totals := snapshot.Totals()

	applied, err := s.couponService.Current(ctx, sessionID, totals.SubTotal)
	if err != nil {
		return nil, err
	}

	methods, err := payment.NewService(s.db, s.config).GetActiveMethods()
	if err != nil {
		return nil, err
	}

	total := totals.SubTotal
	if applied != nil {
		total -= applied.Discount
		if total < 0 {
			total = 0
		}
	}

	summary := &Summary{
		Cart:           snapshot,
		Totals:         totals,
		Coupon:         applied,
		Total:          total,
		PaymentMethods: methods,
	}

	if s.config.StripeEnabled() && !snapshot.IsEmpty() && total >= s.config.Stripe.MinimumAmount {
		intent, err := s.stripeService.CreateIntent(total, sessionID)
		if err != nil {
			// Card payment degrades gracefully; the other methods still work
			logrus.WithError(err).Warn("Failed to create payment intent for checkout")
		} else {
			summary.StripeKey = s.config.Stripe.PublishableKey
			summary.ClientSecret = intent.ClientSecret
			summary.PaymentIntent = intent.IntentID
		}
	}

	return summary, nil
}

// Submit turns the session cart into an order. Stock is checked up front
// so an undersupplied cart fails before anything is written, then each
// line is decremented conditionally inside the transaction so concurrent
// checkouts cannot oversell. On success the cart and any applied coupon
// are cleared from the session.
func (s *Service) Submit(ctx context.Context, sessionID, clientIP string, userID *uint, req *SubmitRequest) (*order.Order, error) {
	snapshot, err := s.cartService.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	method, err := payment.NewService(s.db, s.config).GetMethod(req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, fmt.Errorf("payment method is not available")
	}

	// Card orders must carry a verified payment intent unless the intent
	// is still pending confirmation (webhook will flip the order to paid)
	if method.IsCard() {
		if req.PaymentIntentID == "" && s.config.StripeEnabled() {
			return nil, ErrPaymentIncomplete
		}
	}

	// Pre-check stock so the common failure mode reports which product is
	// short without touching the database
	for _, item := range snapshot.Items {
		var prod product.Product
		if err := s.db.First(&prod, item.ProductID).Error; err != nil {
			return nil, fmt.Errorf("product %q is no longer available", item.Name)
		}
		if prod.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left", product.ErrInsufficientStock, prod.Name, prod.Stock)
		}
	}

	totals := snapshot.Totals()
	applied, err := s.couponService.Current(ctx, sessionID, totals.SubTotal)
	if err != nil {
		return nil, err
	}

	var created order.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ord := order.Order{
			OrderNumber:     order.GenerateOrderNumber(time.Now()),
			UserID:          userID,
			Status:          order.StatusCreated,
			CustomerName:    req.CustomerName,
			Email:           req.Email,
			Phone:           req.Phone,
			ShippingAddress: req.ShippingAddress,
			IPAddress:       clientIP,
			PaymentMethodID: &method.ID,
			PaymentProof:    req.PaymentProof,
			PaymentIntentID: req.PaymentIntentID,
		}
		if applied != nil {
			ord.CouponID = &applied.Coupon.ID
			ord.DiscountAmount = applied.Discount
		}

		if err := tx.Create(&ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		var items []order.OrderItem
		for _, line := range snapshot.Items {
			// Conditional decrement: loses the race, fails the checkout
			if err := product.DecrementStock(tx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("%w: %s", err, line.Name)
			}

			var prod product.Product
			if err := tx.First(&prod, line.ProductID).Error; err != nil {
				return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}

			item := order.OrderItem{
				OrderID:     ord.ID,
				ProductID:   line.ProductID,
				ProductName: line.Name,
				SKU:         prod.SKU,
				Price:       line.Price,
				Quantity:    line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			items = append(items, item)
		}

		// Recompute the discount against the persisted lines so a stale
		// session coupon can never push the total below zero
		discount := ord.DiscountAmount
		total := order.ComputeTotal(items, discount)

		status := resolveInitialStatus(method, req.PaymentIntentID, s.verifyIntent)

		updates := map[string]interface{}{
			"total_amount": total,
			"status":       status,
		}
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to finalize order: %w", err)
		}

		// Audit trail: how the order arrived, plus the proof upload and
		// the payment intent reference when present
		noteContents := []string{fmt.Sprintf("Order placed via %s.", method.Name)}
		if req.PaymentProof != "" {
			noteContents = append(noteContents,
				fmt.Sprintf("Customer uploaded payment proof (%s).", filepath.Base(req.PaymentProof)))
		}
		if req.PaymentIntentID != "" {
			noteContents = append(noteContents,
				fmt.Sprintf("Stripe PaymentIntent confirmed: %s", req.PaymentIntentID))
		}
		for _, content := range noteContents {
			note := order.OrderNote{
				OrderID:   ord.ID,
				Content:   content,
				CreatedBy: "system",
			}
			if err := tx.Create(&note).Error; err != nil {
				return fmt.Errorf("failed to record order note: %w", err)
			}
		}

		ord.Status = status
		ord.TotalAmount = total
		ord.Items = items
		created = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Session cleanup is best-effort; the order already exists
	if err := s.cartService.ClearCart(ctx, sessionID); err != nil {
		logrus.WithError(err).Warn("Failed to clear cart after checkout")
	}
	if err := s.couponService.Clear(ctx, sessionID); err != nil {
		logrus.WithError(err).Warn("Failed to clear applied coupon after checkout")
	}

	return &created, nil
}

// verifyIntent reports whether a payment intent has succeeded at Stripe
func (s *Service) verifyIntent(intentID string) bool {
	if !s.config.StripeEnabled() || intentID == "" {
		return false
	}
	ok, err := s.stripeService.VerifyIntent(intentID)
	if err != nil {
		logrus.WithError(err).WithField("intent", intentID).
			Warn("Failed to verify payment intent")
		return false
	}
	return ok
}

// resolveInitialStatus picks the first matching rule for a new order:
// proof-based methods wait for review, cash on delivery goes straight to
// fulfillment, card orders are paid only once the intent has succeeded,
// and anything else is treated as settled.
func resolveInitialStatus(method *payment.PaymentMethod, intentID string, verified func(string) bool) order.OrderStatus {
	switch {
	case method.RequiresProof:
		return order.StatusCreated
	case method.IsCashOnDelivery():
		return order.StatusFulfilling
	case method.IsCard() && intentID != "" && verified(intentID):
		return order.StatusPaid
	case method.IsCard():
		return order.StatusCreated
	default:
		return order.StatusPaid
	}
}
