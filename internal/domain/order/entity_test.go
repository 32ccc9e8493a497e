// internal/domain/order/entity_test.go
package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionStockAction(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want StockAction
	}{
		{"cancel a paid order restores", StatusPaid, StatusCanceled, StockRestore},
		{"refund a shipped order restores", StatusShipped, StatusRefunded, StockRestore},
		{"return a completed order restores", StatusCompleted, StatusReturned, StockRestore},
		{"reactivate a canceled order re-deducts", StatusCanceled, StatusPaid, StockRededuct},
		{"refunded back to created re-deducts", StatusRefunded, StatusCreated, StockRededuct},
		{"normal progression is a noop", StatusCreated, StatusPaid, StockNoop},
		{"paid to shipped is a noop", StatusPaid, StatusShipped, StockNoop},
		{"canceled to refunded stays released", StatusCanceled, StatusRefunded, StockNoop},
		{"returned to canceled stays released", StatusReturned, StatusCanceled, StockNoop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransitionStockAction(tt.from, tt.to))
		})
	}
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{Price: 2500, Quantity: 2}, // 5000
		{Price: 1000, Quantity: 3}, // 3000
	}

	assert.Equal(t, int64(8000), ComputeTotal(items, 0))
	assert.Equal(t, int64(7000), ComputeTotal(items, 1000))
	// Discount larger than the subtotal floors at zero
	assert.Equal(t, int64(0), ComputeTotal(items, 10000))
	assert.Equal(t, int64(0), ComputeTotal(nil, 500))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Price: 1250, Quantity: 4}
	assert.Equal(t, int64(5000), item.Subtotal())
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	number := GenerateOrderNumber(now)

	assert.True(t, strings.HasPrefix(number, "ORD-20260829-"))
	assert.Len(t, number, len("ORD-20260829-")+6)
	assert.Equal(t, strings.ToUpper(number), number)

	// Suffixes should differ between calls
	assert.NotEqual(t, number, GenerateOrderNumber(now))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, IsValidStatus(s), string(s))
	}
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus(""))
}

func TestReleasesStock(t *testing.T) {
	assert.True(t, StatusCanceled.ReleasesStock())
	assert.True(t, StatusReturned.ReleasesStock())
	assert.True(t, StatusRefunded.ReleasesStock())
	assert.False(t, StatusCreated.ReleasesStock())
	assert.False(t, StatusPaid.ReleasesStock())
	assert.False(t, StatusCompleted.ReleasesStock())
}
