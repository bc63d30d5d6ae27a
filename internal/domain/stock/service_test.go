// internal/domain/stock/service_test.go
package stock

import (
	"testing"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
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
	require.NoError(t, db.AutoMigrate(&StockItem{}, &SerialUnit{}))

	return NewService(db, &config.Config{}), db
}

func seedSerial(t *testing.T, db *gorm.DB, itemID uint, serialNo string, status SerialStatus) *SerialUnit {
	t.Helper()
	serial := &SerialUnit{
		StockItemID:  itemID,
		SerialNo:     serialNo,
		Status:       status,
		UnitCost:     1850,
		PurchaseDate: time.Now(),
	}
	require.NoError(t, db.Create(serial).Error)
	return serial
}

func TestCreateStockItem(t *testing.T) {
	svc, _ := setupTestService(t)

	t.Run("defaults are applied", func(t *testing.T) {
		item, err := svc.CreateStockItem(&CreateStockItemRequest{
			Code:         "PNL-450",
			Name:         "450W Solar Panel",
			ProfitMargin: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, "pcs", item.Unit)
		assert.Equal(t, 5, item.ReorderLevel)
		assert.Equal(t, 0, item.Quantity)
	})

	t.Run("duplicate codes are rejected", func(t *testing.T) {
		_, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "PNL-450", Name: "Duplicate"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestUpdateStockItem(t *testing.T) {
	svc, db := setupTestService(t)

	item, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "BAT-200", Name: "Battery", ProfitMargin: 30})
	require.NoError(t, err)
	require.NoError(t, db.Model(item).Updates(map[string]interface{}{"quantity": 8, "selling_price": 90000}).Error)

	name := "200Ah Battery"
	margin := 35.0
	updated, err := svc.UpdateStockItem(item.ID, &UpdateStockItemRequest{Name: &name, ProfitMargin: &margin})
	require.NoError(t, err)
	assert.Equal(t, "200Ah Battery", updated.Name)
	assert.Equal(t, 35.0, updated.ProfitMargin)

	// Quantity and selling price only move through imports and sales.
	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, 90000.0, updated.SellingPrice)
}

func TestDeleteStockItem(t *testing.T) {
	svc, db := setupTestService(t)

	item, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "PNL-450", Name: "Panel"})
	require.NoError(t, err)

	t.Run("blocked while serial units exist", func(t *testing.T) {
		seedSerial(t, db, item.ID, "PNL-450-00001", SerialStatusUnassigned)
		err := svc.DeleteStockItem(item.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be deleted")
	})

	t.Run("allowed once serials are gone", func(t *testing.T) {
		require.NoError(t, db.Where("stock_item_id = ?", item.ID).Delete(&SerialUnit{}).Error)
		require.NoError(t, svc.DeleteStockItem(item.ID))
		_, err := svc.GetStockItem(item.ID)
		require.Error(t, err)
	})
}

func TestSerialLifecycle(t *testing.T) {
	svc, db := setupTestService(t)

	item, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "INV-5K", Name: "Inverter"})
	require.NoError(t, err)
	require.NoError(t, db.Model(item).Update("quantity", 3).Error)

	serial := seedSerial(t, db, item.ID, "INV-5K-00001", SerialStatusUnassigned)

	t.Run("assign moves the unit to a shop", func(t *testing.T) {
		assigned, err := svc.AssignSerialToShop(serial.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, SerialStatusAssigned, assigned.Status)

		// Shop display stock still counts on hand.
		var refreshed StockItem
		require.NoError(t, db.First(&refreshed, item.ID).Error)
		assert.Equal(t, 3, refreshed.Quantity)
	})

	t.Run("an assigned unit cannot be assigned again", func(t *testing.T) {
		_, err := svc.AssignSerialToShop(serial.ID, 8)
		require.Error(t, err)
	})

	t.Run("recall brings the unit back unassigned", func(t *testing.T) {
		recalled, err := svc.RecallSerialFromShop(serial.ID)
		require.NoError(t, err)
		assert.Equal(t, SerialStatusUnassigned, recalled.Status)

		var refreshed SerialUnit
		require.NoError(t, db.First(&refreshed, serial.ID).Error)
		assert.Nil(t, refreshed.ShopID)
	})

	t.Run("recall requires an assigned unit", func(t *testing.T) {
		_, err := svc.RecallSerialFromShop(serial.ID)
		require.Error(t, err)
	})
}

func TestReturnSerial(t *testing.T) {
	svc, db := setupTestService(t)

	item, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "PNL-450", Name: "Panel"})
	require.NoError(t, err)
	require.NoError(t, db.Model(item).Update("quantity", 2).Error)

	t.Run("an on-hand unit leaves the owned quantity", func(t *testing.T) {
		serial := seedSerial(t, db, item.ID, "PNL-450-00001", SerialStatusUnassigned)

		returned, err := svc.ReturnSerial(serial.ID)
		require.NoError(t, err)
		assert.Equal(t, SerialStatusReturned, returned.Status)

		var refreshed StockItem
		require.NoError(t, db.First(&refreshed, item.ID).Error)
		assert.Equal(t, 1, refreshed.Quantity)
	})

	t.Run("a sold unit does not touch the quantity", func(t *testing.T) {
		serial := seedSerial(t, db, item.ID, "PNL-450-00002", SerialStatusSold)

		_, err := svc.ReturnSerial(serial.ID)
		require.NoError(t, err)

		var refreshed StockItem
		require.NoError(t, db.First(&refreshed, item.ID).Error)
		assert.Equal(t, 1, refreshed.Quantity)
	})

	t.Run("a returned unit cannot be returned twice", func(t *testing.T) {
		serial := seedSerial(t, db, item.ID, "PNL-450-00003", SerialStatusReturned)
		_, err := svc.ReturnSerial(serial.ID)
		require.Error(t, err)
	})
}

func TestGetLowStockItems(t *testing.T) {
	svc, db := setupTestService(t)

	low, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "LOW-1", Name: "Low", ReorderLevel: 5})
	require.NoError(t, err)
	require.NoError(t, db.Model(low).Update("quantity", 3).Error)

	ok, err := svc.CreateStockItem(&CreateStockItemRequest{Code: "OK-1", Name: "OK", ReorderLevel: 5})
	require.NoError(t, err)
	require.NoError(t, db.Model(ok).Update("quantity", 40).Error)

	items, err := svc.GetLowStockItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "LOW-1", items[0].Code)
}
