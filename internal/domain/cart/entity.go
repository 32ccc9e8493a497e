// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is a session-scoped shopping cart stored in Redis
type Cart struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a single cart line. Price is snapshotted when the product is
// first added and kept stable for the life of the cart.
type Item struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"` // Unit price in cents at first add
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
	AddedAt   time.Time `json:"added_at"`
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`     // Number of unique items
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	SubTotal      int64 `json:"sub_total"`      // Sum of price x quantity, in cents
}

// Find returns the line for a product, or nil
func (c *Cart) Find(productID uint) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Upsert sets a product's quantity and image. The unit price is captured
// only when the product first enters the cart; later calls leave it alone
// so a price change mid-session does not reprice a customer's cart.
func (c *Cart) Upsert(productID uint, name string, price int64, quantity int, imageURL string) {
	now := time.Now().UTC()

	if existing := c.Find(productID); existing != nil {
		existing.Quantity = quantity
		existing.ImageURL = imageURL
		c.UpdatedAt = now
		return
	}

	c.Items = append(c.Items, Item{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		ImageURL:  imageURL,
		AddedAt:   now,
	})
	c.UpdatedAt = now
}

// Remove drops a product's line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uint) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now().UTC()
}

// IsEmpty reports whether the cart holds no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Totals computes the cart totals from its lines
func (c *Cart) Totals() Totals {
	totals := Totals{ItemCount: len(c.Items)}
	for _, item := range c.Items {
		totals.TotalQuantity += item.Quantity
		totals.SubTotal += item.Price * int64(item.Quantity)
	}
	return totals
}
