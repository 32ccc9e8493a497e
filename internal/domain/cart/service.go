// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// ErrOutOfStock is returned when a product cannot cover the requested cart
// quantity. Stock is only checked, never reserved, at cart time.
var ErrOutOfStock = errors.New("product is out of stock")

// cartTTL bounds how long an idle session cart survives in Redis
const cartTTL = 24 * time.Hour

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartResponse represents a shopping cart with items and totals
type CartResponse struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	Totals    Totals    `json:"totals"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"`
}

// GetCart retrieves the cart for a session
func (s *Service) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(cart), nil
}

// AddToCart adds quantity of a product to the session cart. The stored unit
// price is snapshotted on first add; repeated adds accumulate quantity and
// refresh the image reference only.
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	// Validate product exists and is active
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	newQuantity := req.Quantity
	if existing := cart.Find(req.ProductID); existing != nil {
		newQuantity += existing.Quantity
	}

	// Live stock check against the full requested quantity
	if prod.Stock < newQuantity {
		return nil, fmt.Errorf("%w: available %d", ErrOutOfStock, prod.Stock)
	}

	cart.Upsert(prod.ID, prod.Name, prod.EffectivePrice(), newQuantity, prod.ImageURL)

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.respond(cart), nil
}

// UpdateCartItem sets a line's quantity. Zero removes the line.
func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	existing := cart.Find(productID)
	if existing == nil {
		return nil, fmt.Errorf("item not found in cart")
	}

	if req.Quantity == 0 {
		cart.Remove(productID)
	} else {
		var prod product.Product
		if result := s.db.Where("id = ?", productID).First(&prod); result.Error != nil {
			return nil, fmt.Errorf("product not found")
		}
		if prod.Stock < req.Quantity {
			return nil, fmt.Errorf("%w: available %d", ErrOutOfStock, prod.Stock)
		}
		existing.Quantity = req.Quantity
		cart.UpdatedAt = time.Now().UTC()
	}

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.respond(cart), nil
}

// RemoveFromCart removes a product's line. Removing an absent product
// succeeds quietly.
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID uint) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.respond(cart), nil
}

// ClearCart removes all items from the session cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}
	return s.redisClient.Del(ctx, cartKey(sessionID)).Err()
}

// Snapshot returns the raw cart aggregate for checkout
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required")
	}

	data, err := s.redisClient.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &Cart{
			SessionID: sessionID,
			Items:     []Item{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

func (s *Service) save(ctx context.Context, sessionID string, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.redisClient.Set(ctx, cartKey(sessionID), data, cartTTL).Err()
}

func (s *Service) respond(cart *Cart) *CartResponse {
	return &CartResponse{
		SessionID: cart.SessionID,
		Items:     cart.Items,
		Totals:    cart.Totals(),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
