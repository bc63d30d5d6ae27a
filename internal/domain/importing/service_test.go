// internal/domain/importing/service_test.go
package importing

import (
	"fmt"
	"io"
	"testing"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/supplier"
	"github.com/sirupsen/logrus"
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

	err = db.AutoMigrate(
		&supplier.Supplier{},
		&stock.StockItem{},
		&stock.SerialUnit{},
		&ImportRecord{},
		&ImportItem{},
		&ImportCost{},
	)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(db, &config.Config{}, log), db
}

func seedSupplier(t *testing.T, db *gorm.DB) *supplier.Supplier {
	t.Helper()
	s := &supplier.Supplier{Name: "Guangzhou Solar Co", Country: "China", Currency: "USD", IsActive: true}
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedStockItem(t *testing.T, db *gorm.DB, code string, quantity int, margin float64) *stock.StockItem {
	t.Helper()
	item := &stock.StockItem{
		Code:         code,
		Name:         "Item " + code,
		Unit:         "pcs",
		Quantity:     quantity,
		ProfitMargin: margin,
		ReorderLevel: 2,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestCreateImport(t *testing.T) {
	t.Run("allocation lands on stock and serials in one pass", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 3, 20)
		battery := seedStockItem(t, db, "BAT-200", 0, 30)

		record, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0042",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			ForeignOverheads: map[string]float64{
				"freight": 20,
			},
			LocalOverheads: map[string]float64{
				"clearing": 1000,
			},
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 10, ForeignUnitPrice: 5},
				{StockItemID: battery.ID, QuantityOrdered: 5, ForeignUnitPrice: 10},
			},
		}, 1)
		require.NoError(t, err)

		assert.InDelta(t, 37000.0, record.GrandTotalLocal, 1e-9)
		require.Len(t, record.Items, 2)
		require.Len(t, record.Costs, 2)

		byStockItem := map[uint]ImportItem{}
		for _, item := range record.Items {
			byStockItem[item.StockItemID] = item
		}
		assert.InDelta(t, 1850.0, byStockItem[panel.ID].FinalUnitLocal, 1e-9)
		assert.InDelta(t, 3700.0, byStockItem[battery.ID].FinalUnitLocal, 1e-9)

		// Quantities grow by the ordered amounts; selling prices re-derive
		// from the new landed cost using each item's catalog margin.
		var refreshedPanel stock.StockItem
		require.NoError(t, db.First(&refreshedPanel, panel.ID).Error)
		assert.Equal(t, 13, refreshedPanel.Quantity)
		assert.InDelta(t, 2220.0, refreshedPanel.SellingPrice, 1e-9)

		var refreshedBattery stock.StockItem
		require.NoError(t, db.First(&refreshedBattery, battery.ID).Error)
		assert.Equal(t, 5, refreshedBattery.Quantity)
		assert.InDelta(t, 4810.0, refreshedBattery.SellingPrice, 1e-9)

		// One serial unit per imported physical unit, costed at the landed
		// unit price.
		var serials []stock.SerialUnit
		require.NoError(t, db.Where("stock_item_id = ?", panel.ID).Order("serial_no asc").Find(&serials).Error)
		require.Len(t, serials, 10)
		assert.Equal(t, "PNL-450-00001", serials[0].SerialNo)
		assert.Equal(t, "PNL-450-00010", serials[9].SerialNo)
		assert.InDelta(t, 1850.0, serials[0].UnitCost, 1e-9)
		assert.Equal(t, stock.SerialStatusUnassigned, serials[0].Status)
		require.NotNil(t, serials[0].ImportRecordID)
		assert.Equal(t, record.ID, *serials[0].ImportRecordID)
	})

	t.Run("serial numbers continue across shipments", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 0, 20)

		for i := 0; i < 2; i++ {
			_, err := svc.CreateImport(&CreateImportRequest{
				InvoiceNo:    fmt.Sprintf("GS-2025-%04d", i),
				SupplierID:   sup.ID,
				ExchangeRate: 300,
				Items: []ImportItemRequest{
					{StockItemID: panel.ID, QuantityOrdered: 3, ForeignUnitPrice: 5},
				},
			}, 1)
			require.NoError(t, err)
		}

		var serials []stock.SerialUnit
		require.NoError(t, db.Where("stock_item_id = ?", panel.ID).Order("serial_no asc").Find(&serials).Error)
		require.Len(t, serials, 6)
		assert.Equal(t, "PNL-450-00004", serials[3].SerialNo)
		assert.Equal(t, "PNL-450-00006", serials[5].SerialNo)
	})

	t.Run("duplicate invoice numbers are rejected", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 0, 20)

		req := &CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 1, ForeignUnitPrice: 5},
			},
		}
		_, err := svc.CreateImport(req, 1)
		require.NoError(t, err)

		_, err = svc.CreateImport(req, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("allocation failure writes nothing", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 7, 20)

		// Zero unit prices leave no value base to apportion against.
		_, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 5, ForeignUnitPrice: 0},
			},
		}, 1)
		require.ErrorIs(t, err, ErrInvalidInput)

		var count int64
		require.NoError(t, db.Model(&ImportRecord{}).Count(&count).Error)
		assert.Zero(t, count)

		var refreshed stock.StockItem
		require.NoError(t, db.First(&refreshed, panel.ID).Error)
		assert.Equal(t, 7, refreshed.Quantity)
	})

	t.Run("bad exchange rate fails before any read", func(t *testing.T) {
		svc, _ := setupTestService(t)
		_, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   1,
			ExchangeRate: -1,
			Items:        []ImportItemRequest{{StockItemID: 1, QuantityOrdered: 1, ForeignUnitPrice: 5}},
		}, 1)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeleteImport(t *testing.T) {
	t.Run("deletion reverses quantities and removes serials", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 2, 20)

		record, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 4, ForeignUnitPrice: 5},
			},
		}, 1)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteImport(record.ID))

		var refreshed stock.StockItem
		require.NoError(t, db.First(&refreshed, panel.ID).Error)
		assert.Equal(t, 2, refreshed.Quantity)

		var serials int64
		require.NoError(t, db.Model(&stock.SerialUnit{}).Where("stock_item_id = ?", panel.ID).Count(&serials).Error)
		assert.Zero(t, serials)

		_, err = svc.GetImport(record.ID)
		require.Error(t, err)
	})

	t.Run("quantity reversal floors at zero", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 0, 20)

		record, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 4, ForeignUnitPrice: 5},
			},
		}, 1)
		require.NoError(t, err)

		// Stock shrank through another channel after the import.
		require.NoError(t, db.Model(&stock.StockItem{}).Where("id = ?", panel.ID).
			Update("quantity", 1).Error)

		require.NoError(t, svc.DeleteImport(record.ID))

		var refreshed stock.StockItem
		require.NoError(t, db.First(&refreshed, panel.ID).Error)
		assert.Equal(t, 0, refreshed.Quantity)
	})

	t.Run("consumed serial units block deletion", func(t *testing.T) {
		svc, db := setupTestService(t)
		sup := seedSupplier(t, db)
		panel := seedStockItem(t, db, "PNL-450", 0, 20)

		record, err := svc.CreateImport(&CreateImportRequest{
			InvoiceNo:    "GS-2025-0001",
			SupplierID:   sup.ID,
			ExchangeRate: 300,
			Items: []ImportItemRequest{
				{StockItemID: panel.ID, QuantityOrdered: 2, ForeignUnitPrice: 5},
			},
		}, 1)
		require.NoError(t, err)

		var serial stock.SerialUnit
		require.NoError(t, db.Where("import_record_id = ?", record.ID).First(&serial).Error)
		require.NoError(t, db.Model(&serial).Update("status", stock.SerialStatusSold).Error)

		err = svc.DeleteImport(record.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be deleted")
	})
}
