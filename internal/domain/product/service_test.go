// internal/domain/product/service_test.go
package product

import (
	"testing"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&stock.StockItem{}, &stock.SerialUnit{}, &FinishedProduct{}, &ProductComponent{}))

	return NewService(db, &config.Config{}), db
}

func seedStockItem(t *testing.T, db *gorm.DB, code string, sellingPrice float64) *stock.StockItem {
	t.Helper()
	item := &stock.StockItem{Code: code, Name: "Item " + code, Unit: "pcs", SellingPrice: sellingPrice}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestCreateProduct(t *testing.T) {
	svc, db := setupTestService(t)
	panel := seedStockItem(t, db, "PNL-450", 50000)
	battery := seedStockItem(t, db, "BAT-200", 100000)

	t.Run("price derives from component selling prices", func(t *testing.T) {
		created, err := svc.CreateProduct(&CreateProductRequest{
			Code:            "KIT-3K",
			Name:            "3kW Solar Kit",
			OverheadPercent: 10,
			ProfitPercent:   20,
			Components: []ComponentRequest{
				{StockItemID: panel.ID, Quantity: 4},
				{StockItemID: battery.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)

		// raw 400000, +10% overhead 440000, +20% profit 528000
		assert.InDelta(t, 528000.0, created.SellingPrice, 1e-6)
		assert.Len(t, created.Components, 2)
	})

	t.Run("duplicate codes are rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(&CreateProductRequest{
			Code:       "KIT-3K",
			Name:       "Duplicate",
			Components: []ComponentRequest{{StockItemID: panel.ID, Quantity: 1}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("unknown components abort the product", func(t *testing.T) {
		_, err := svc.CreateProduct(&CreateProductRequest{
			Code:       "KIT-X",
			Name:       "Broken",
			Components: []ComponentRequest{{StockItemID: 9999, Quantity: 1}},
		})
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&FinishedProduct{}).Where("code = ?", "KIT-X").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestRecalculatePrice(t *testing.T) {
	svc, db := setupTestService(t)
	panel := seedStockItem(t, db, "PNL-450", 50000)

	created, err := svc.CreateProduct(&CreateProductRequest{
		Code:            "KIT-1K",
		Name:            "1kW Kit",
		OverheadPercent: 0,
		ProfitPercent:   10,
		Components:      []ComponentRequest{{StockItemID: panel.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 110000.0, created.SellingPrice, 1e-6)

	// A new import shifts the component's selling price; the kit follows on
	// recalculation.
	require.NoError(t, db.Model(&stock.StockItem{}).Where("id = ?", panel.ID).
		Update("selling_price", 60000).Error)

	updated, err := svc.RecalculatePrice(created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 132000.0, updated.SellingPrice, 1e-6)
}

func TestDeleteProduct(t *testing.T) {
	svc, db := setupTestService(t)
	panel := seedStockItem(t, db, "PNL-450", 50000)

	created, err := svc.CreateProduct(&CreateProductRequest{
		Code:       "KIT-1K",
		Name:       "1kW Kit",
		Components: []ComponentRequest{{StockItemID: panel.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(created.ID))
	_, err = svc.GetProduct(created.ID)
	require.Error(t, err)
}
