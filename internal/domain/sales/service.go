// internal/domain/sales/service.go
package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/product"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/pkg/txn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrAlreadyProcessed is returned when a quotation is no longer a draft at
// commit time, typically because another conversion won the race. The caller
// should refresh and retry; nothing was written.
var ErrAlreadyProcessed = errors.New("quotation is no longer a draft")

// ErrTransactionAborted is returned when the backing store gave up on the
// atomic phase after bounded retries. The entire operation rolled back:
// stock was not changed.
var ErrTransactionAborted = errors.New("transaction aborted, stock was not changed")

// Service handles the quotation-to-invoice sales workflow
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	audit  *audit.Service
}

// NewService creates a new sales service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, auditService *audit.Service) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		audit:  auditService,
	}
}

// QuotationItemRequest represents one sales line
type QuotationItemRequest struct {
	Kind              LineKind `json:"kind" binding:"required"`
	StockItemID       *uint    `json:"stock_item_id,omitempty"`
	FinishedProductID *uint    `json:"finished_product_id,omitempty"`
	Quantity          int      `json:"quantity" binding:"required"`
	UnitPrice         float64  `json:"unit_price"` // 0 means current catalog price
	SerialUnitIDs     []uint   `json:"serial_unit_ids,omitempty"`
}

// CreateQuotationRequest represents quotation creation data
type CreateQuotationRequest struct {
	CustomerID      uint                   `json:"customer_id" binding:"required"`
	DiscountPercent float64                `json:"discount_percent"`
	WarrantyTerms   string                 `json:"warranty_terms"`
	Notes           string                 `json:"notes"`
	Items           []QuotationItemRequest `json:"items" binding:"required,min=1"`
}

// QuotationListRequest represents quotation list query parameters
type QuotationListRequest struct {
	Page       int             `form:"page,default=1"`
	Limit      int             `form:"limit,default=20"`
	Status     QuotationStatus `form:"status"`
	CustomerID uint            `form:"customer_id"`
}

// InvoiceListRequest represents invoice list query parameters
type InvoiceListRequest struct {
	Page       int           `form:"page,default=1"`
	Limit      int           `form:"limit,default=20"`
	Status     InvoiceStatus `form:"status"`
	CustomerID uint          `form:"customer_id"`
	DateFrom   string        `form:"date_from"`
	DateTo     string        `form:"date_to"`
}

// QUOTATIONS

// CreateQuotation creates a draft quotation with priced line items
func (s *Service) CreateQuotation(req *CreateQuotationRequest, userID uint) (*Quotation, error) {
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, fmt.Errorf("discount must be between 0 and 100 percent")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	quotation := &Quotation{
		CustomerID:      req.CustomerID,
		Status:          QuotationStatusDraft,
		DiscountPercent: req.DiscountPercent,
		WarrantyTerms:   req.WarrantyTerms,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}

	if err := tx.Create(quotation).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	quotation.Number = GenerateNumber("QT", time.Now(), quotation.ID)
	if err := tx.Model(quotation).Update("number", quotation.Number).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set quotation number: %w", err)
	}

	var subtotal float64
	for _, line := range req.Items {
		item, err := s.buildQuotationItem(tx, quotation.ID, &line)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		subtotal += item.LineTotal
	}

	quotation.Subtotal = subtotal
	quotation.GrandTotal = GrandTotalFor(subtotal, req.DiscountPercent)
	if err := tx.Model(quotation).Updates(map[string]interface{}{
		"subtotal":    quotation.Subtotal,
		"grand_total": quotation.GrandTotal,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set quotation totals: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit quotation: %w", err)
	}

	return s.GetQuotation(quotation.ID)
}

// buildQuotationItem validates one line request and creates the line with its
// serial reservations.
func (s *Service) buildQuotationItem(tx *gorm.DB, quotationID uint, line *QuotationItemRequest) (*QuotationItem, error) {
	if line.Quantity <= 0 {
		return nil, fmt.Errorf("line quantity must be positive")
	}

	item := QuotationItem{
		QuotationID: quotationID,
		Kind:        line.Kind,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
	}

	switch line.Kind {
	case LineKindStock:
		if line.StockItemID == nil {
			return nil, fmt.Errorf("stock line requires a stock item")
		}
		var stockItem stock.StockItem
		if err := tx.First(&stockItem, *line.StockItemID).Error; err != nil {
			return nil, fmt.Errorf("stock item %d not found", *line.StockItemID)
		}
		item.StockItemID = line.StockItemID
		item.Description = stockItem.Name
		if item.UnitPrice == 0 {
			item.UnitPrice = stockItem.SellingPrice
		}

		if len(line.SerialUnitIDs) != line.Quantity {
			return nil, fmt.Errorf("stock line for '%s' reserves %d serials for quantity %d",
				stockItem.Name, len(line.SerialUnitIDs), line.Quantity)
		}

	case LineKindFinished:
		if line.FinishedProductID == nil {
			return nil, fmt.Errorf("finished line requires a product")
		}
		var finished product.FinishedProduct
		if err := tx.First(&finished, *line.FinishedProductID).Error; err != nil {
			return nil, fmt.Errorf("finished product %d not found", *line.FinishedProductID)
		}
		item.FinishedProductID = line.FinishedProductID
		item.Description = finished.Name
		if item.UnitPrice == 0 {
			item.UnitPrice = finished.SellingPrice
		}
		if len(line.SerialUnitIDs) > 0 {
			return nil, fmt.Errorf("finished product lines do not reserve serials")
		}

	default:
		return nil, fmt.Errorf("unknown line kind '%s'", line.Kind)
	}

	item.LineTotal = item.UnitPrice * float64(item.Quantity)
	if err := tx.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create quotation item: %w", err)
	}

	for _, serialID := range line.SerialUnitIDs {
		var serial stock.SerialUnit
		if err := tx.First(&serial, serialID).Error; err != nil {
			return nil, fmt.Errorf("serial unit %d not found", serialID)
		}
		if serial.StockItemID != *line.StockItemID {
			return nil, fmt.Errorf("serial %s does not belong to the quoted stock item", serial.SerialNo)
		}
		if !serial.CountsOnHand() {
			return nil, fmt.Errorf("serial %s is not available for sale", serial.SerialNo)
		}
		reservation := QuotationItemSerial{QuotationItemID: item.ID, SerialUnitID: serialID}
		if err := tx.Create(&reservation).Error; err != nil {
			return nil, fmt.Errorf("failed to reserve serial unit: %w", err)
		}
	}

	return &item, nil
}

// GetQuotation retrieves a single quotation with its lines and reservations
func (s *Service) GetQuotation(id uint) (*Quotation, error) {
	var quotation Quotation
	if err := s.db.Preload("Items").Preload("Items.ReservedSerials").Preload("Customer").
		First(&quotation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("quotation not found")
		}
		return nil, fmt.Errorf("failed to retrieve quotation: %w", err)
	}
	return &quotation, nil
}

// GetQuotations retrieves quotations with filtering and pagination
func (s *Service) GetQuotations(req *QuotationListRequest) ([]Quotation, int64, error) {
	var quotations []Quotation
	var total int64

	query := s.db.Model(&Quotation{}).Preload("Items").Preload("Customer")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID > 0 {
		query = query.Where("customer_id = ?", req.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotations: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&quotations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve quotations: %w", err)
	}

	return quotations, total, nil
}

// DeleteQuotation removes a quotation that is still a draft
func (s *Service) DeleteQuotation(id uint) error {
	quotation, err := s.GetQuotation(id)
	if err != nil {
		return err
	}
	if !quotation.IsDraft() {
		return fmt.Errorf("quotation %s has been invoiced and cannot be deleted", quotation.Number)
	}

	if err := s.db.Select("Items").Delete(quotation).Error; err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	return nil
}

// CONVERSION

// ConvertToInvoice converts exactly one draft quotation into exactly one
// invoice, applying all inventory effects atomically.
//
// The precondition re-read, the deduplicated read phase over every touched
// stock item, the write phase working from the captured quantities and the
// two final status writes commit as one transaction: either all effects are
// visible or none are. Conflicting commits are retried per the configured
// bounded policy before surfacing ErrTransactionAborted.
func (s *Service) ConvertToInvoice(quotationID uint, actor audit.Actor) (*Invoice, error) {
	var invoiceID uint

	err := txn.RunWithRetry(s.db, s.config.Sales.TxMaxRetries, s.config.Sales.TxRetryBackoff, func(tx *gorm.DB) error {
		// Precondition: the quotation must still be a draft at this moment.
		var quotation Quotation
		if err := tx.Preload("Items").Preload("Items.ReservedSerials").First(&quotation, quotationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("quotation not found")
			}
			return fmt.Errorf("failed to read quotation: %w", err)
		}
		if !quotation.IsDraft() {
			return ErrAlreadyProcessed
		}

		// Read phase: capture every touched stock item's quantity exactly
		// once, resolving finished lines through their components.
		quantities := make(map[uint]int)
		components := make(map[uint][]product.ProductComponent)

		captureQuantity := func(stockItemID uint) error {
			if _, seen := quantities[stockItemID]; seen {
				return nil
			}
			var item stock.StockItem
			if err := tx.First(&item, stockItemID).Error; err != nil {
				return fmt.Errorf("stock item %d not found", stockItemID)
			}
			quantities[stockItemID] = item.Quantity
			return nil
		}

		for _, line := range quotation.Items {
			switch line.Kind {
			case LineKindStock:
				if err := captureQuantity(*line.StockItemID); err != nil {
					return err
				}
			case LineKindFinished:
				var comps []product.ProductComponent
				if err := tx.Where("finished_product_id = ?", *line.FinishedProductID).
					Order("sort_order asc").Find(&comps).Error; err != nil {
					return fmt.Errorf("failed to read product components: %w", err)
				}
				components[line.ID] = comps
				for _, comp := range comps {
					if err := captureQuantity(comp.StockItemID); err != nil {
						return err
					}
				}
			default:
				return fmt.Errorf("unknown line kind '%s'", line.Kind)
			}
		}

		// Write phase: work from the captured values only, flooring at zero.
		for _, line := range quotation.Items {
			switch line.Kind {
			case LineKindStock:
				remaining := quantities[*line.StockItemID] - line.Quantity
				if remaining < 0 {
					remaining = 0
				}
				quantities[*line.StockItemID] = remaining

				for _, reservation := range line.ReservedSerials {
					var serial stock.SerialUnit
					if err := tx.First(&serial, reservation.SerialUnitID).Error; err != nil {
						return fmt.Errorf("reserved serial %d not found", reservation.SerialUnitID)
					}
					if !serial.CanTransitionTo(stock.SerialStatusSold) {
						return fmt.Errorf("serial %s has already been sold", serial.SerialNo)
					}
					if err := tx.Model(&serial).Updates(map[string]interface{}{
						"status":  stock.SerialStatusSold,
						"shop_id": nil,
					}).Error; err != nil {
						return fmt.Errorf("failed to mark serial sold: %w", err)
					}
				}

			case LineKindFinished:
				for _, comp := range components[line.ID] {
					remaining := quantities[comp.StockItemID] - comp.Quantity*line.Quantity
					if remaining < 0 {
						remaining = 0
					}
					quantities[comp.StockItemID] = remaining
				}
			}
		}

		for stockItemID, quantity := range quantities {
			if err := tx.Model(&stock.StockItem{}).Where("id = ?", stockItemID).
				Update("quantity", quantity).Error; err != nil {
				return fmt.Errorf("failed to update stock quantity: %w", err)
			}
		}

		// Freeze the quotation into an invoice.
		now := time.Now().UTC()
		invoice := Invoice{
			QuotationID:     quotation.ID,
			CustomerID:      quotation.CustomerID,
			Status:          InvoiceStatusUnpaid,
			Subtotal:        quotation.Subtotal,
			DiscountPercent: quotation.DiscountPercent,
			GrandTotal:      quotation.GrandTotal,
			WarrantyTerms:   quotation.WarrantyTerms,
			CreatedBy:       actor.ID,
			IssuedAt:        now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		invoice.Number = GenerateNumber("INV", now, invoice.ID)
		if err := tx.Model(&invoice).Update("number", invoice.Number).Error; err != nil {
			return fmt.Errorf("failed to set invoice number: %w", err)
		}

		for _, line := range quotation.Items {
			invoiceItem := InvoiceItem{
				InvoiceID:         invoice.ID,
				Kind:              line.Kind,
				StockItemID:       line.StockItemID,
				FinishedProductID: line.FinishedProductID,
				Description:       line.Description,
				Quantity:          line.Quantity,
				UnitPrice:         line.UnitPrice,
				LineTotal:         line.LineTotal,
			}
			if err := tx.Create(&invoiceItem).Error; err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}
			for _, reservation := range line.ReservedSerials {
				sold := InvoiceItemSerial{InvoiceItemID: invoiceItem.ID, SerialUnitID: reservation.SerialUnitID}
				if err := tx.Create(&sold).Error; err != nil {
					return fmt.Errorf("failed to record sold serial: %w", err)
				}
			}
		}

		if err := tx.Model(&quotation).Update("status", QuotationStatusInvoiced).Error; err != nil {
			return fmt.Errorf("failed to update quotation status: %w", err)
		}

		invoiceID = invoice.ID
		return nil
	})

	if err != nil {
		if txn.IsRetryable(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
		}
		return nil, err
	}

	invoice, err := s.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}

	// Audit is fire-and-forget, outside the atomic unit.
	s.audit.Record(actor, "quotation.convert", "invoice", invoice.ID, invoice.GrandTotal,
		fmt.Sprintf("quotation #%d converted to invoice %s", quotationID, invoice.Number))

	return invoice, nil
}

// CancelInvoice reverses every inventory effect of a conversion: stock
// quantities are restocked, sold serials go back to unassigned, the invoice
// becomes cancelled and the quotation re-opens as a draft.
func (s *Service) CancelInvoice(invoiceID uint, actor audit.Actor) (*Invoice, error) {
	err := txn.RunWithRetry(s.db, s.config.Sales.TxMaxRetries, s.config.Sales.TxRetryBackoff, func(tx *gorm.DB) error {
		var invoice Invoice
		if err := tx.Preload("Items").Preload("Items.SoldSerials").First(&invoice, invoiceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("invoice not found")
			}
			return fmt.Errorf("failed to read invoice: %w", err)
		}
		if !invoice.CanBeCancelled() {
			return fmt.Errorf("invoice %s is already cancelled", invoice.Number)
		}

		for _, line := range invoice.Items {
			switch line.Kind {
			case LineKindStock:
				// A unit warranty-returned after the sale keeps its returned
				// state; only serials actually reset go back on hand.
				restored := 0
				for _, sold := range line.SoldSerials {
					res := tx.Model(&stock.SerialUnit{}).
						Where("id = ? AND status <> ?", sold.SerialUnitID, stock.SerialStatusReturned).
						Updates(map[string]interface{}{
							"status":  stock.SerialStatusUnassigned,
							"shop_id": nil,
						})
					if res.Error != nil {
						return fmt.Errorf("failed to unassign serial: %w", res.Error)
					}
					restored += int(res.RowsAffected)
				}
				if restored > 0 {
					if err := tx.Model(&stock.StockItem{}).Where("id = ?", *line.StockItemID).
						UpdateColumn("quantity", gorm.Expr("quantity + ?", restored)).Error; err != nil {
						return fmt.Errorf("failed to restock item: %w", err)
					}
				}

			case LineKindFinished:
				var comps []product.ProductComponent
				if err := tx.Where("finished_product_id = ?", *line.FinishedProductID).Find(&comps).Error; err != nil {
					return fmt.Errorf("failed to read product components: %w", err)
				}
				for _, comp := range comps {
					if err := tx.Model(&stock.StockItem{}).Where("id = ?", comp.StockItemID).
						UpdateColumn("quantity", gorm.Expr("quantity + ?", comp.Quantity*line.Quantity)).Error; err != nil {
						return fmt.Errorf("failed to restock component: %w", err)
					}
				}

			default:
				return fmt.Errorf("unknown line kind '%s'", line.Kind)
			}
		}

		if err := tx.Model(&invoice).Update("status", InvoiceStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to update invoice status: %w", err)
		}
		if err := tx.Model(&Quotation{}).Where("id = ?", invoice.QuotationID).
			Update("status", QuotationStatusDraft).Error; err != nil {
			return fmt.Errorf("failed to re-open quotation: %w", err)
		}

		return nil
	})

	if err != nil {
		if txn.IsRetryable(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransactionAborted, err)
		}
		return nil, err
	}

	invoice, err := s.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "invoice.cancel", "invoice", invoice.ID, invoice.GrandTotal,
		fmt.Sprintf("invoice %s cancelled, stock restored", invoice.Number))

	return invoice, nil
}

// INVOICES

// GetInvoice retrieves a single invoice with its lines
func (s *Service) GetInvoice(id uint) (*Invoice, error) {
	var invoice Invoice
	if err := s.db.Preload("Items").Preload("Items.SoldSerials").Preload("Customer").
		First(&invoice, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invoice not found")
		}
		return nil, fmt.Errorf("failed to retrieve invoice: %w", err)
	}
	return &invoice, nil
}

// GetInvoices retrieves invoices with filtering and pagination
func (s *Service) GetInvoices(req *InvoiceListRequest) ([]Invoice, int64, error) {
	var invoices []Invoice
	var total int64

	query := s.db.Model(&Invoice{}).Preload("Items").Preload("Customer")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID > 0 {
		query = query.Where("customer_id = ?", req.CustomerID)
	}
	if req.DateFrom != "" {
		query = query.Where("issued_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("issued_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("issued_at desc").Offset(offset).Limit(req.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve invoices: %w", err)
	}

	return invoices, total, nil
}

// MarkInvoicePaid flips an invoice to paid
func (s *Service) MarkInvoicePaid(id uint, actor audit.Actor) (*Invoice, error) {
	return s.setInvoicePaymentStatus(id, InvoiceStatusPaid, actor)
}

// MarkInvoiceUnpaid flips an invoice back to unpaid
func (s *Service) MarkInvoiceUnpaid(id uint, actor audit.Actor) (*Invoice, error) {
	return s.setInvoicePaymentStatus(id, InvoiceStatusUnpaid, actor)
}

func (s *Service) setInvoicePaymentStatus(id uint, status InvoiceStatus, actor audit.Actor) (*Invoice, error) {
	invoice, err := s.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusCancelled {
		return nil, fmt.Errorf("invoice %s is cancelled", invoice.Number)
	}

	if err := s.db.Model(invoice).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	s.audit.Record(actor, "invoice.payment", "invoice", invoice.ID, invoice.GrandTotal,
		fmt.Sprintf("invoice %s marked %s", invoice.Number, status))

	return invoice, nil
}

// RecordAdvancePayment records a partial payment against an invoice
func (s *Service) RecordAdvancePayment(id uint, amount float64, actor audit.Actor) (*Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("advance payment must be positive")
	}

	invoice, err := s.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusCancelled {
		return nil, fmt.Errorf("invoice %s is cancelled", invoice.Number)
	}
	if invoice.AdvancePayment+amount > invoice.GrandTotal {
		return nil, fmt.Errorf("advance payment exceeds the invoice total")
	}

	invoice.AdvancePayment += amount
	if err := s.db.Model(invoice).Update("advance_payment", invoice.AdvancePayment).Error; err != nil {
		return nil, fmt.Errorf("failed to record advance payment: %w", err)
	}

	s.audit.Record(actor, "invoice.advance", "invoice", invoice.ID, amount,
		fmt.Sprintf("advance payment recorded on invoice %s", invoice.Number))

	return invoice, nil
}
