// internal/domain/sales/service_test.go
package sales

import (
	"io"
	"testing"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/customer"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/product"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
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
		&customer.Customer{},
		&stock.StockItem{},
		&stock.SerialUnit{},
		&product.FinishedProduct{},
		&product.ProductComponent{},
		&Quotation{},
		&QuotationItem{},
		&QuotationItemSerial{},
		&Invoice{},
		&InvoiceItem{},
		&InvoiceItemSerial{},
		&audit.Entry{},
	)
	require.NoError(t, err)

	cfg := &config.Config{
		Sales: config.SalesConfig{
			TxMaxRetries:   3,
			TxRetryBackoff: time.Millisecond,
		},
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(db, cfg, log, audit.NewService(db, log)), db
}

func seedCustomer(t *testing.T, db *gorm.DB) *customer.Customer {
	t.Helper()
	c := &customer.Customer{Name: "Nimal Perera", Phone: "0771234567", City: "Galle", IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedStockItem(t *testing.T, db *gorm.DB, code string, quantity int, price float64) *stock.StockItem {
	t.Helper()
	item := &stock.StockItem{
		Code:         code,
		Name:         "Item " + code,
		Unit:         "pcs",
		Quantity:     quantity,
		SellingPrice: price,
		ProfitMargin: 25,
		ReorderLevel: 2,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedSerials(t *testing.T, db *gorm.DB, item *stock.StockItem, count int) []uint {
	t.Helper()
	ids := make([]uint, 0, count)
	for i := 0; i < count; i++ {
		serial := &stock.SerialUnit{
			StockItemID:  item.ID,
			SerialNo:     item.Code + "-" + string(rune('A'+i)),
			UnitCost:     100,
			Status:       stock.SerialStatusUnassigned,
			PurchaseDate: time.Now(),
		}
		require.NoError(t, db.Create(serial).Error)
		ids = append(ids, serial.ID)
	}
	return ids
}

func seedFinishedProduct(t *testing.T, db *gorm.DB, code string, price float64, comps map[uint]int) *product.FinishedProduct {
	t.Helper()
	fp := &product.FinishedProduct{Code: code, Name: "Product " + code, SellingPrice: price, IsActive: true}
	require.NoError(t, db.Create(fp).Error)
	order := 0
	for stockItemID, qty := range comps {
		comp := &product.ProductComponent{
			FinishedProductID: fp.ID,
			StockItemID:       stockItemID,
			Quantity:          qty,
			SortOrder:         order,
		}
		require.NoError(t, db.Create(comp).Error)
		order++
	}
	return fp
}

func stockQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var item stock.StockItem
	require.NoError(t, db.First(&item, id).Error)
	return item.Quantity
}

func serialStatus(t *testing.T, db *gorm.DB, id uint) stock.SerialStatus {
	t.Helper()
	var serial stock.SerialUnit
	require.NoError(t, db.First(&serial, id).Error)
	return serial.Status
}

var testActor = audit.Actor{ID: 1, Name: "Owner", Role: "owner"}

func TestCreateQuotation(t *testing.T) {
	svc, db := setupTestService(t)
	cust := seedCustomer(t, db)
	panel := seedStockItem(t, db, "PNL-450", 10, 55000)
	serialIDs := seedSerials(t, db, panel, 2)

	t.Run("prices default from the catalog", func(t *testing.T) {
		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID:      cust.ID,
			DiscountPercent: 10,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 2, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		assert.Equal(t, QuotationStatusDraft, quotation.Status)
		assert.Contains(t, quotation.Number, "QT-")
		require.Len(t, quotation.Items, 1)
		assert.Equal(t, 55000.0, quotation.Items[0].UnitPrice)
		assert.Equal(t, 110000.0, quotation.Subtotal)
		assert.Equal(t, 99000.0, quotation.GrandTotal)
		assert.Len(t, quotation.Items[0].ReservedSerials, 2)
	})

	t.Run("serial count must match quantity", func(t *testing.T) {
		_, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 3, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserves 2 serials for quantity 3")
	})

	t.Run("serial must belong to the quoted item", func(t *testing.T) {
		other := seedStockItem(t, db, "INV-5K", 4, 180000)
		otherSerials := seedSerials(t, db, other, 1)
		_, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: otherSerials},
			},
		}, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
	})

	t.Run("finished lines do not reserve serials", func(t *testing.T) {
		fp := seedFinishedProduct(t, db, "KIT-1", 250000, map[uint]int{panel.ID: 2})
		_, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindFinished, FinishedProductID: &fp.ID, Quantity: 1, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.Error(t, err)
	})
}

func TestConvertToInvoice(t *testing.T) {
	t.Run("happy path applies all effects", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		serialIDs := seedSerials(t, db, panel, 2)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID:      cust.ID,
			DiscountPercent: 5,
			WarrantyTerms:   "2 years on panels",
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 2, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		invoice, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		assert.Contains(t, invoice.Number, "INV-")
		assert.Equal(t, InvoiceStatusUnpaid, invoice.Status)
		assert.Equal(t, quotation.GrandTotal, invoice.GrandTotal)
		assert.Equal(t, "2 years on panels", invoice.WarrantyTerms)
		require.Len(t, invoice.Items, 1)
		assert.Len(t, invoice.Items[0].SoldSerials, 2)

		assert.Equal(t, 8, stockQuantity(t, db, panel.ID))
		for _, id := range serialIDs {
			assert.Equal(t, stock.SerialStatusSold, serialStatus(t, db, id))
		}

		refreshed, err := svc.GetQuotation(quotation.ID)
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusInvoiced, refreshed.Status)

		// Conversion leaves an audit trail behind.
		var entries []audit.Entry
		require.NoError(t, db.Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Equal(t, "quotation.convert", entries[0].Action)
	})

	t.Run("second conversion is rejected", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		serialIDs := seedSerials(t, db, panel, 1)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.ErrorIs(t, err, ErrAlreadyProcessed)

		// Stock was deducted exactly once.
		assert.Equal(t, 9, stockQuantity(t, db, panel.ID))
	})

	t.Run("finished products deduct through their components", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 20, 55000)
		battery := seedStockItem(t, db, "BAT-200", 8, 90000)
		kit := seedFinishedProduct(t, db, "KIT-3K", 400000, map[uint]int{panel.ID: 4, battery.ID: 2})

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindFinished, FinishedProductID: &kit.ID, Quantity: 2},
			},
		}, 1)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		assert.Equal(t, 12, stockQuantity(t, db, panel.ID))
		assert.Equal(t, 4, stockQuantity(t, db, battery.ID))
	})

	t.Run("shared stock item is read once and deducted for every line", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		serialIDs := seedSerials(t, db, panel, 1)
		kit := seedFinishedProduct(t, db, "KIT-1K", 120000, map[uint]int{panel.ID: 3})

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
				{Kind: LineKindFinished, FinishedProductID: &kit.ID, Quantity: 2},
			},
		}, 1)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		// 10 - 1 (direct line) - 6 (2 kits x 3 panels) = 3
		assert.Equal(t, 3, stockQuantity(t, db, panel.ID))
	})

	t.Run("quantities floor at zero", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 1, 55000)
		kit := seedFinishedProduct(t, db, "KIT-1K", 120000, map[uint]int{panel.ID: 5})

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindFinished, FinishedProductID: &kit.ID, Quantity: 1},
			},
		}, 1)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		assert.Equal(t, 0, stockQuantity(t, db, panel.ID))
	})

	t.Run("a sold serial blocks the conversion entirely", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		serialIDs := seedSerials(t, db, panel, 1)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		// The reserved serial is sold elsewhere before conversion.
		require.NoError(t, db.Model(&stock.SerialUnit{}).Where("id = ?", serialIDs[0]).
			Update("status", stock.SerialStatusSold).Error)

		_, err = svc.ConvertToInvoice(quotation.ID, testActor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been sold")

		// The whole transaction rolled back: stock untouched, still a draft.
		assert.Equal(t, 10, stockQuantity(t, db, panel.ID))
		refreshed, err := svc.GetQuotation(quotation.ID)
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusDraft, refreshed.Status)
	})
}

func TestCancelInvoice(t *testing.T) {
	t.Run("cancellation reverses every effect", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		battery := seedStockItem(t, db, "BAT-200", 6, 90000)
		serialIDs := seedSerials(t, db, panel, 2)
		kit := seedFinishedProduct(t, db, "KIT-2K", 300000, map[uint]int{battery.ID: 2})

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 2, SerialUnitIDs: serialIDs},
				{Kind: LineKindFinished, FinishedProductID: &kit.ID, Quantity: 1},
			},
		}, 1)
		require.NoError(t, err)

		invoice, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, 8, stockQuantity(t, db, panel.ID))
		assert.Equal(t, 4, stockQuantity(t, db, battery.ID))

		cancelled, err := svc.CancelInvoice(invoice.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusCancelled, cancelled.Status)

		assert.Equal(t, 10, stockQuantity(t, db, panel.ID))
		assert.Equal(t, 6, stockQuantity(t, db, battery.ID))
		for _, id := range serialIDs {
			assert.Equal(t, stock.SerialStatusUnassigned, serialStatus(t, db, id))
		}

		refreshed, err := svc.GetQuotation(quotation.ID)
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusDraft, refreshed.Status)
	})

	t.Run("a re-opened quotation can be converted again", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 5, 55000)
		serialIDs := seedSerials(t, db, panel, 1)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		first, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)
		_, err = svc.CancelInvoice(first.ID, testActor)
		require.NoError(t, err)

		second, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 4, stockQuantity(t, db, panel.ID))
	})

	t.Run("a serial returned under warranty keeps its state", func(t *testing.T) {
		svc, db := setupTestService(t)
		stockSvc := stock.NewService(db, svc.config)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 10, 55000)
		serialIDs := seedSerials(t, db, panel, 2)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 2, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		invoice, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, 8, stockQuantity(t, db, panel.ID))

		// Customer keeps the order but one unit comes back faulty
		_, err = stockSvc.ReturnSerial(serialIDs[0])
		require.NoError(t, err)

		_, err = svc.CancelInvoice(invoice.ID, testActor)
		require.NoError(t, err)

		assert.Equal(t, stock.SerialStatusReturned, serialStatus(t, db, serialIDs[0]))
		assert.Equal(t, stock.SerialStatusUnassigned, serialStatus(t, db, serialIDs[1]))
		// Only the healthy unit goes back on hand
		assert.Equal(t, 9, stockQuantity(t, db, panel.ID))
	})

	t.Run("double cancellation is rejected", func(t *testing.T) {
		svc, db := setupTestService(t)
		cust := seedCustomer(t, db)
		panel := seedStockItem(t, db, "PNL-450", 5, 55000)
		serialIDs := seedSerials(t, db, panel, 1)

		quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
			CustomerID: cust.ID,
			Items: []QuotationItemRequest{
				{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
			},
		}, 1)
		require.NoError(t, err)

		invoice, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)
		_, err = svc.CancelInvoice(invoice.ID, testActor)
		require.NoError(t, err)

		_, err = svc.CancelInvoice(invoice.ID, testActor)
		require.Error(t, err)
		assert.Equal(t, 5, stockQuantity(t, db, panel.ID))
	})
}

func TestInvoicePayments(t *testing.T) {
	svc, db := setupTestService(t)
	cust := seedCustomer(t, db)
	panel := seedStockItem(t, db, "PNL-450", 5, 100000)
	serialIDs := seedSerials(t, db, panel, 1)

	quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
		CustomerID: cust.ID,
		Items: []QuotationItemRequest{
			{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
		},
	}, 1)
	require.NoError(t, err)
	invoice, err := svc.ConvertToInvoice(quotation.ID, testActor)
	require.NoError(t, err)

	t.Run("advance payments accumulate", func(t *testing.T) {
		updated, err := svc.RecordAdvancePayment(invoice.ID, 40000, testActor)
		require.NoError(t, err)
		assert.Equal(t, 40000.0, updated.AdvancePayment)
		assert.Equal(t, 60000.0, updated.Outstanding())

		updated, err = svc.RecordAdvancePayment(invoice.ID, 30000, testActor)
		require.NoError(t, err)
		assert.Equal(t, 70000.0, updated.AdvancePayment)
	})

	t.Run("advance cannot exceed the total", func(t *testing.T) {
		_, err := svc.RecordAdvancePayment(invoice.ID, 50000, testActor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})

	t.Run("mark paid and back", func(t *testing.T) {
		paid, err := svc.MarkInvoicePaid(invoice.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaid, paid.Status)

		unpaid, err := svc.MarkInvoiceUnpaid(invoice.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusUnpaid, unpaid.Status)
	})
}

func TestDeleteQuotation(t *testing.T) {
	svc, db := setupTestService(t)
	cust := seedCustomer(t, db)
	panel := seedStockItem(t, db, "PNL-450", 5, 55000)
	serialIDs := seedSerials(t, db, panel, 1)

	quotation, err := svc.CreateQuotation(&CreateQuotationRequest{
		CustomerID: cust.ID,
		Items: []QuotationItemRequest{
			{Kind: LineKindStock, StockItemID: &panel.ID, Quantity: 1, SerialUnitIDs: serialIDs},
		},
	}, 1)
	require.NoError(t, err)

	t.Run("an invoiced quotation cannot be deleted", func(t *testing.T) {
		_, err := svc.ConvertToInvoice(quotation.ID, testActor)
		require.NoError(t, err)

		err = svc.DeleteQuotation(quotation.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be deleted")
	})
}
