// internal/domain/order/service_test.go
package order

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "orders.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&coupon.Coupon{},
		&payment.PaymentMethod{},
		&Order{},
		&OrderItem{},
		&OrderNote{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	return NewService(db, cfg, email.NewService(cfg)), db
}

func seedOrderWithItem(t *testing.T, db *gorm.DB, status OrderStatus, stock, qty int) (Order, product.Product) {
	t.Helper()
	prod := product.Product{SKU: "WID-1", Name: "Widget", Slug: "widget", Price: 4000, Stock: stock}
	require.NoError(t, db.Create(&prod).Error)

	ord := Order{
		OrderNumber:  GenerateOrderNumber(time.Now()),
		Status:       status,
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		TotalAmount:  prod.Price * int64(qty),
	}
	require.NoError(t, db.Create(&ord).Error)

	item := OrderItem{
		OrderID:     ord.ID,
		ProductID:   prod.ID,
		ProductName: prod.Name,
		SKU:         prod.SKU,
		Price:       prod.Price,
		Quantity:    qty,
	}
	require.NoError(t, db.Create(&item).Error)
	return ord, prod
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var prod product.Product
	require.NoError(t, db.First(&prod, productID).Error)
	return prod.Stock
}

func TestUpdateStatusRestoresStockOnce(t *testing.T) {
	svc, db := newTestService(t)
	ord, prod := seedOrderWithItem(t, db, StatusPaid, 5, 2)

	// Cancellation puts the two units back
	updated, err := svc.UpdateStatus(ord.ID, StatusCanceled, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, updated.Status)
	assert.Equal(t, 7, stockOf(t, db, prod.ID))

	// Moving between released statuses must not restore again
	_, err = svc.UpdateStatus(ord.ID, StatusRefunded, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 7, stockOf(t, db, prod.ID))

	// Reopening the order re-deducts
	_, err = svc.UpdateStatus(ord.ID, StatusFulfilling, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, db, prod.ID))
}

func TestUpdateStatusRedeductMayGoNegative(t *testing.T) {
	svc, db := newTestService(t)
	ord, prod := seedOrderWithItem(t, db, StatusCanceled, 1, 3)

	_, err := svc.UpdateStatus(ord.ID, StatusFulfilling, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, -2, stockOf(t, db, prod.ID))
}

func TestUpdateStatusAppendsNote(t *testing.T) {
	svc, db := newTestService(t)
	ord, _ := seedOrderWithItem(t, db, StatusPaid, 5, 1)

	updated, err := svc.UpdateStatus(ord.ID, StatusShipped, "ops@example.com")
	require.NoError(t, err)

	require.Len(t, updated.Notes, 1)
	assert.Equal(t, "Order status changed from 'paid' to 'shipped'.", updated.Notes[0].Content)
	assert.Equal(t, "ops@example.com", updated.Notes[0].CreatedBy)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	svc, db := newTestService(t)
	ord, prod := seedOrderWithItem(t, db, StatusCanceled, 5, 2)

	updated, err := svc.UpdateStatus(ord.ID, StatusCanceled, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, updated.Status)
	assert.Equal(t, 5, stockOf(t, db, prod.ID))
	assert.Empty(t, updated.Notes)
}

func TestMarkPaidByIntentIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ord, _ := seedOrderWithItem(t, db, StatusCreated, 5, 1)
	require.NoError(t, db.Model(&Order{}).Where("id = ?", ord.ID).
		Update("payment_intent_id", "pi_test_123").Error)

	paid, err := svc.MarkPaidByIntent("pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	// A redelivered webhook finds the order already paid and leaves it alone
	again, err := svc.MarkPaidByIntent("pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, again.Status)

	var noteCount int64
	require.NoError(t, db.Model(&OrderNote{}).Where("order_id = ?", ord.ID).Count(&noteCount).Error)
	assert.Equal(t, int64(1), noteCount)
}
