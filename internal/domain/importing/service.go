// internal/domain/importing/service.go
package importing

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrPartialWriteRisk marks a failure on the non-transactional import
// deletion path. Unlike the atomic paths, an interrupted deletion may leave
// inventory inconsistent, and the caller must be told so.
var ErrPartialWriteRisk = errors.New("import deletion interrupted, stock may be inconsistent")

// Service handles import shipments and cost allocation
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new importing service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// ImportItemRequest represents one shipment line
type ImportItemRequest struct {
	StockItemID      uint    `json:"stock_item_id" binding:"required"`
	QuantityOrdered  int     `json:"quantity_ordered" binding:"required"`
	ForeignUnitPrice float64 `json:"foreign_unit_price"`
}

// CreateImportRequest represents one supplier shipment
type CreateImportRequest struct {
	InvoiceNo        string              `json:"invoice_no" binding:"required"`
	SupplierID       uint                `json:"supplier_id" binding:"required"`
	ExchangeRate     float64             `json:"exchange_rate" binding:"required"`
	ForeignOverheads map[string]float64  `json:"foreign_overheads"`
	LocalOverheads   map[string]float64  `json:"local_overheads"`
	Items            []ImportItemRequest `json:"items" binding:"required,min=1"`
	Notes            string              `json:"notes"`
}

// ImportListRequest represents import list query parameters
type ImportListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	SupplierID uint   `form:"supplier_id"`
	Search     string `form:"search"`
}

// CreateImport runs the cost allocator over a shipment and applies all of its
// effects in one transaction: the import record is written, serial units are
// created with per-item sequential numbers, stock quantities grow by the
// ordered amounts and selling prices are re-derived from the new landed cost.
// Any failure aborts the whole import with no partial writes.
func (s *Service) CreateImport(req *CreateImportRequest, userID uint) (*ImportRecord, error) {
	// Reject bad rates before touching the database.
	if req.ExchangeRate <= 0 {
		return nil, fmt.Errorf("%w: exchange rate must be greater than zero", ErrInvalidInput)
	}

	var existing ImportRecord
	if err := s.db.Where("invoice_no = ?", req.InvoiceNo).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("import with invoice number '%s' already exists", req.InvoiceNo)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Resolve each line's stock item; the profit margin is read from the
	// current catalog record, not from the shipment.
	allocItems := make([]AllocationItem, 0, len(req.Items))
	stockItems := make(map[uint]*stock.StockItem, len(req.Items))
	for _, line := range req.Items {
		var item stock.StockItem
		if err := tx.First(&item, line.StockItemID).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("stock item %d not found", line.StockItemID)
		}
		stockItems[item.ID] = &item

		allocItems = append(allocItems, AllocationItem{
			StockItemID:      line.StockItemID,
			QuantityOrdered:  line.QuantityOrdered,
			ForeignUnitPrice: line.ForeignUnitPrice,
			ProfitMargin:     item.ProfitMargin,
		})
	}

	allocation, err := Allocate(AllocationInput{
		Items:            allocItems,
		ForeignOverheads: req.ForeignOverheads,
		LocalOverheads:   req.LocalOverheads,
		ExchangeRate:     req.ExchangeRate,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	record := &ImportRecord{
		InvoiceNo:            req.InvoiceNo,
		SupplierID:           req.SupplierID,
		ExchangeRate:         req.ExchangeRate,
		TotalForeignValue:    allocation.TotalForeignValue,
		TotalForeignOverhead: allocation.TotalForeignOverhead,
		TotalLocalOverhead:   allocation.TotalLocalOverhead,
		GrandTotalLocal:      allocation.GrandTotalLocal,
		Notes:                req.Notes,
		CreatedBy:            userID,
	}

	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}

	for name, amount := range req.ForeignOverheads {
		cost := ImportCost{ImportRecordID: record.ID, Name: name, Kind: CostKindForeign, Amount: amount}
		if err := tx.Create(&cost).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record overhead cost: %w", err)
		}
	}
	for name, amount := range req.LocalOverheads {
		cost := ImportCost{ImportRecordID: record.ID, Name: name, Kind: CostKindLocal, Amount: amount}
		if err := tx.Create(&cost).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record overhead cost: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, allocated := range allocation.Items {
		item := stockItems[allocated.StockItemID]

		importItem := ImportItem{
			ImportRecordID:    record.ID,
			StockItemID:       allocated.StockItemID,
			QuantityOrdered:   allocated.QuantityOrdered,
			ForeignUnitPrice:  allocated.ForeignUnitPrice,
			Share:             allocated.Share,
			OverheadAllocated: allocated.OverheadAllocated,
			FinalLineLocal:    allocated.FinalLineLocal,
			FinalUnitLocal:    allocated.FinalUnitLocal,
		}
		if err := tx.Create(&importItem).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create import item: %w", err)
		}

		// Serial numbers continue from the item's running count, including
		// sold and returned units.
		var existingSerials int64
		if err := tx.Model(&stock.SerialUnit{}).Where("stock_item_id = ?", item.ID).Count(&existingSerials).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to count serial units: %w", err)
		}

		for i := 0; i < allocated.QuantityOrdered; i++ {
			serial := stock.SerialUnit{
				StockItemID:    item.ID,
				SerialNo:       fmt.Sprintf("%s-%05d", item.Code, existingSerials+int64(i)+1),
				PurchaseDate:   now,
				UnitCost:       allocated.FinalUnitLocal,
				Status:         stock.SerialStatusUnassigned,
				ImportRecordID: &record.ID,
			}
			if err := tx.Create(&serial).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to create serial unit: %w", err)
			}
		}

		if err := tx.Model(&stock.StockItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity + ?", allocated.QuantityOrdered),
			"selling_price": allocated.SellingPrice,
		}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update stock item: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	return s.GetImport(record.ID)
}

// GetImport retrieves a single import record with its lines and cost buckets
func (s *Service) GetImport(id uint) (*ImportRecord, error) {
	var record ImportRecord
	if err := s.db.Preload("Items").Preload("Costs").Preload("Supplier").First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("import record not found")
		}
		return nil, fmt.Errorf("failed to retrieve import record: %w", err)
	}
	return &record, nil
}

// GetImports retrieves import records with filtering and pagination
func (s *Service) GetImports(req *ImportListRequest) ([]ImportRecord, int64, error) {
	var records []ImportRecord
	var total int64

	query := s.db.Model(&ImportRecord{}).Preload("Items").Preload("Supplier")

	if req.SupplierID > 0 {
		query = query.Where("supplier_id = ?", req.SupplierID)
	}
	if req.Search != "" {
		query = query.Where("invoice_no LIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import records: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve import records: %w", err)
	}

	return records, total, nil
}

// DeleteImport reverses the quantity changes of a shipment and removes the
// serial units it created, then drops the record.
//
// This path is a best-effort batched write, not a transaction: the original
// workflow accepted an inconsistency window here and callers are warned with
// ErrPartialWriteRisk instead of the atomic paths' "stock was not changed"
// guarantee. Serial units that already left the unassigned state block the
// deletion up front.
func (s *Service) DeleteImport(id uint) error {
	record, err := s.GetImport(id)
	if err != nil {
		return err
	}

	var consumed int64
	if err := s.db.Model(&stock.SerialUnit{}).
		Where("import_record_id = ? AND status <> ?", id, stock.SerialStatusUnassigned).
		Count(&consumed).Error; err != nil {
		return fmt.Errorf("failed to check serial units: %w", err)
	}
	if consumed > 0 {
		return fmt.Errorf("import %s has %d units already assigned or sold and cannot be deleted", record.InvoiceNo, consumed)
	}

	for _, item := range record.Items {
		result := s.db.Model(&stock.StockItem{}).
			Where("id = ?", item.StockItemID).
			UpdateColumn("quantity", gorm.Expr(
				"CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END",
				item.QuantityOrdered, item.QuantityOrdered,
			))
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrPartialWriteRisk, result.Error)
		}
	}

	if err := s.db.Where("import_record_id = ?", id).Delete(&stock.SerialUnit{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPartialWriteRisk, err)
	}

	if err := s.db.Select("Items", "Costs").Delete(record).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPartialWriteRisk, err)
	}

	s.logger.WithFields(logrus.Fields{
		"import_id":  id,
		"invoice_no": record.InvoiceNo,
	}).Warn("Import record deleted outside transaction")

	return nil
}
