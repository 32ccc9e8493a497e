package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSnapshotsPriceOnFirstAddOnly(t *testing.T) {
	c := &Cart{SessionID: "s1"}

	c.Upsert(1, "Laser Printer", 12900, 1, "printer.jpg")
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(12900), c.Items[0].Price)

	// A later add with a changed catalog price keeps the snapshot
	c.Upsert(1, "Laser Printer", 9900, 3, "printer-v2.jpg")
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(12900), c.Items[0].Price)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "printer-v2.jpg", c.Items[0].ImageURL)
}

func TestUpsertAddsSeparateLines(t *testing.T) {
	c := &Cart{SessionID: "s1"}

	c.Upsert(1, "Printer", 12900, 1, "")
	c.Upsert(2, "Ink", 2500, 2, "")

	require.Len(t, c.Items, 2)
	assert.Equal(t, uint(1), c.Items[0].ProductID)
	assert.Equal(t, uint(2), c.Items[1].ProductID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := &Cart{SessionID: "s1"}
	c.Upsert(1, "Printer", 12900, 1, "")

	c.Remove(1)
	assert.Empty(t, c.Items)

	// Removing again must not panic or error
	c.Remove(1)
	assert.Empty(t, c.Items)

	// Removing something never added is a no-op too
	c.Remove(99)
	assert.Empty(t, c.Items)
}

func TestTotals(t *testing.T) {
	c := &Cart{SessionID: "s1"}
	c.Upsert(1, "Printer", 12900, 2, "")
	c.Upsert(2, "Ink", 2500, 3, "")

	totals := c.Totals()

	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 5, totals.TotalQuantity)
	assert.Equal(t, int64(2*12900+3*2500), totals.SubTotal)
}

func TestTotalsEmptyCart(t *testing.T) {
	c := &Cart{SessionID: "s1"}

	totals := c.Totals()

	assert.Equal(t, 0, totals.ItemCount)
	assert.Equal(t, int64(0), totals.SubTotal)
	assert.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c := &Cart{SessionID: "s1"}
	c.Upsert(1, "Printer", 12900, 2, "")

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Totals().SubTotal)
}
