// internal/domain/checkout/submit_test.go
package checkout

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

func newCheckoutEnv(t *testing.T) (*Service, *gorm.DB, *cart.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "checkout.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&coupon.Coupon{},
		&payment.PaymentMethod{},
		&order.Order{},
		&order.OrderItem{},
		&order.OrderNote{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{}

	return NewService(db, rdb, cfg), db, cart.NewService(db, rdb, cfg)
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price int64, stock int) product.Product {
	t.Helper()
	prod := product.Product{SKU: sku, Name: "Widget " + sku, Slug: "widget-" + sku, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&prod).Error)
	return prod
}

func seedMethod(t *testing.T, db *gorm.DB, name, code string, requiresProof bool) payment.PaymentMethod {
	t.Helper()
	method := payment.PaymentMethod{Name: name, Code: code, IsActive: true, RequiresProof: requiresProof}
	require.NoError(t, db.Create(&method).Error)
	return method
}

func submitRequest(methodID uint) *SubmitRequest {
	return &SubmitRequest{
		CustomerName:    "Ada Lovelace",
		Email:           "ada@example.com",
		Phone:           "+852 1234 5678",
		ShippingAddress: "1 Queen's Road Central",
		PaymentMethodID: methodID,
	}
}

func orderNotes(t *testing.T, db *gorm.DB, orderID uint) []string {
	t.Helper()
	var notes []order.OrderNote
	require.NoError(t, db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&notes).Error)
	contents := make([]string, 0, len(notes))
	for _, n := range notes {
		contents = append(contents, n.Content)
	}
	return contents
}

func TestSubmitDecrementsStockExactly(t *testing.T) {
	svc, db, cartSvc := newCheckoutEnv(t)
	ctx := context.Background()

	prod := seedProduct(t, db, "A1", 4000, 5)
	cod := seedMethod(t, db, "Cash on Delivery", payment.MethodCashOnDelivery, false)

	_, err := cartSvc.AddToCart(ctx, "sess-1", &cart.AddToCartRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	ord, err := svc.Submit(ctx, "sess-1", "203.0.113.9", nil, submitRequest(cod.ID))
	require.NoError(t, err)

	assert.Equal(t, order.StatusFulfilling, ord.Status)
	assert.Equal(t, int64(8000), ord.TotalAmount)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, 2, ord.Items[0].Quantity)
	assert.Equal(t, int64(4000), ord.Items[0].Price)

	var after product.Product
	require.NoError(t, db.First(&after, prod.ID).Error)
	assert.Equal(t, 3, after.Stock)

	snapshot, err := cartSvc.Snapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
}

func TestSubmitInsufficientStockLeavesNothing(t *testing.T) {
	svc, db, cartSvc := newCheckoutEnv(t)
	ctx := context.Background()

	prod := seedProduct(t, db, "B1", 2500, 2)
	cod := seedMethod(t, db, "Cash on Delivery", payment.MethodCashOnDelivery, false)

	_, err := cartSvc.AddToCart(ctx, "sess-2", &cart.AddToCartRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	// Another checkout bought a unit while this cart sat idle
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", prod.ID).Update("stock", 1).Error)

	_, err = svc.Submit(ctx, "sess-2", "203.0.113.9", nil, submitRequest(cod.ID))
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	var orderCount int64
	require.NoError(t, db.Model(&order.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var after product.Product
	require.NoError(t, db.First(&after, prod.ID).Error)
	assert.Equal(t, 1, after.Stock)
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, db, _ := newCheckoutEnv(t)
	cod := seedMethod(t, db, "Cash on Delivery", payment.MethodCashOnDelivery, false)

	_, err := svc.Submit(context.Background(), "sess-empty", "203.0.113.9", nil, submitRequest(cod.ID))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitRecordsProofNote(t *testing.T) {
	svc, db, cartSvc := newCheckoutEnv(t)
	ctx := context.Background()

	prod := seedProduct(t, db, "C1", 6000, 3)
	bank := seedMethod(t, db, "Bank Transfer", "bank_transfer", true)

	_, err := cartSvc.AddToCart(ctx, "sess-3", &cart.AddToCartRequest{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	req := submitRequest(bank.ID)
	req.PaymentProof = "media/payment_proofs/receipt-1.jpg"

	ord, err := svc.Submit(ctx, "sess-3", "203.0.113.9", nil, req)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, ord.Status)

	notes := orderNotes(t, db, ord.ID)
	assert.Contains(t, notes, "Order placed via Bank Transfer.")
	assert.Contains(t, notes, "Customer uploaded payment proof (receipt-1.jpg).")
}

func TestSubmitRecordsIntentNote(t *testing.T) {
	svc, db, cartSvc := newCheckoutEnv(t)
	ctx := context.Background()

	prod := seedProduct(t, db, "D1", 9000, 3)
	card := seedMethod(t, db, "Credit Card", payment.MethodCreditCard, false)

	_, err := cartSvc.AddToCart(ctx, "sess-4", &cart.AddToCartRequest{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	req := submitRequest(card.ID)
	req.PaymentIntentID = "pi_test_456"

	ord, err := svc.Submit(ctx, "sess-4", "203.0.113.9", nil, req)
	require.NoError(t, err)
	assert.Equal(t, "pi_test_456", ord.PaymentIntentID)

	notes := orderNotes(t, db, ord.ID)
	assert.Contains(t, notes, "Stripe PaymentIntent confirmed: pi_test_456")
}
