// internal/domain/product/stock_test.go
package product

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStockDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stock.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}, &Product{}, &ProductImage{}))
	return db
}

func currentStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var prod Product
	require.NoError(t, db.First(&prod, id).Error)
	return prod.Stock
}

func TestDecrementStockLoserOfRaceFails(t *testing.T) {
	db := newStockDB(t)
	prod := Product{SKU: "LAST-1", Name: "Last Unit", Slug: "last-unit", Price: 1000, Stock: 1}
	require.NoError(t, db.Create(&prod).Error)

	// First buyer takes the last unit
	require.NoError(t, DecrementStock(db, prod.ID, 1))
	assert.Equal(t, 0, currentStock(t, db, prod.ID))

	// Second buyer's conditional update matches no row
	err := DecrementStock(db, prod.ID, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, currentStock(t, db, prod.ID))
}

func TestDecrementStockRejectsPartialFill(t *testing.T) {
	db := newStockDB(t)
	prod := Product{SKU: "FEW-1", Name: "Few Left", Slug: "few-left", Price: 1000, Stock: 3}
	require.NoError(t, db.Create(&prod).Error)

	err := DecrementStock(db, prod.ID, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, currentStock(t, db, prod.ID))
}

func TestAdjustStockAllowsNegative(t *testing.T) {
	db := newStockDB(t)
	prod := Product{SKU: "NEG-1", Name: "Oversold", Slug: "oversold", Price: 1000, Stock: 1}
	require.NoError(t, db.Create(&prod).Error)

	require.NoError(t, AdjustStock(db, prod.ID, -3))
	assert.Equal(t, -2, currentStock(t, db, prod.ID))
}
