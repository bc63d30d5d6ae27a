// internal/domain/sales/entity.go
package sales

import (
	"fmt"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/customer"
	"gorm.io/gorm"
)

// QuotationStatus represents the quotation lifecycle state
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusInvoiced QuotationStatus = "invoiced"
)

// InvoiceStatus represents the invoice lifecycle state
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// LineKind tags a sales line as either a serialized stock item or a
// composite finished product. Every consumer must switch on it exhaustively.
type LineKind string

const (
	LineKindStock    LineKind = "stock"
	LineKindFinished LineKind = "finished"
)

// Quotation is a draft sales proposal. It converts to exactly one Invoice,
// which flips the status to invoiced irreversibly (cancelling the invoice
// re-opens the draft).
type Quotation struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Number     string          `gorm:"uniqueIndex;not null;size:50" json:"number"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Status     QuotationStatus `gorm:"not null;default:'draft'" json:"status"`

	Subtotal        float64 `gorm:"not null" json:"subtotal"`
	DiscountPercent float64 `gorm:"default:0" json:"discount_percent"`
	GrandTotal      float64 `gorm:"not null" json:"grand_total"` // subtotal × (1 − discount/100)

	WarrantyTerms string `gorm:"type:text" json:"warranty_terms"`
	Notes         string `gorm:"type:text" json:"notes"`
	CreatedBy     uint   `gorm:"index" json:"created_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Customer customer.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []QuotationItem   `gorm:"foreignKey:QuotationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// QuotationItem is one sales line. StockItemID is set for kind=stock,
// FinishedProductID for kind=finished.
type QuotationItem struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	QuotationID uint     `gorm:"not null;index" json:"quotation_id"`
	Kind        LineKind `gorm:"not null" json:"kind"`

	StockItemID       *uint `gorm:"index" json:"stock_item_id,omitempty"`
	FinishedProductID *uint `gorm:"index" json:"finished_product_id,omitempty"`

	Description string  `gorm:"not null;size:255" json:"description"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	LineTotal   float64 `gorm:"not null" json:"line_total"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	ReservedSerials []QuotationItemSerial `gorm:"foreignKey:QuotationItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reserved_serials,omitempty"`
}

// QuotationItemSerial reserves one serial unit for a stock line
type QuotationItemSerial struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	QuotationItemID uint `gorm:"not null;index" json:"quotation_item_id"`
	SerialUnitID    uint `gorm:"not null;index" json:"serial_unit_id"`
}

// Invoice is an immutable record created from a quotation at conversion
// time. After creation the only mutations are paid/unpaid flips and
// cancellation, which reverses the inventory effects.
type Invoice struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Number      string        `gorm:"uniqueIndex;not null;size:50" json:"number"`
	// Not unique: a cancelled invoice is retained and the re-opened
	// quotation may be converted again. The draft-status precondition in
	// ConvertToInvoice keeps at most one active invoice per quotation.
	QuotationID uint          `gorm:"index;not null" json:"quotation_id"`
	CustomerID  uint          `gorm:"not null;index" json:"customer_id"`
	Status      InvoiceStatus `gorm:"not null;default:'unpaid'" json:"status"`

	Subtotal        float64 `gorm:"not null" json:"subtotal"`
	DiscountPercent float64 `gorm:"default:0" json:"discount_percent"`
	GrandTotal      float64 `gorm:"not null" json:"grand_total"`
	AdvancePayment  float64 `gorm:"default:0" json:"advance_payment"`

	WarrantyTerms string    `gorm:"type:text" json:"warranty_terms"`
	CreatedBy     uint      `gorm:"index" json:"created_by"`
	IssuedAt      time.Time `json:"issued_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Customer customer.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem     `gorm:"foreignKey:InvoiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// InvoiceItem is a copied quotation line frozen at conversion time
type InvoiceItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InvoiceID uint     `gorm:"not null;index" json:"invoice_id"`
	Kind      LineKind `gorm:"not null" json:"kind"`

	StockItemID       *uint `gorm:"index" json:"stock_item_id,omitempty"`
	FinishedProductID *uint `gorm:"index" json:"finished_product_id,omitempty"`

	Description string  `gorm:"not null;size:255" json:"description"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	LineTotal   float64 `gorm:"not null" json:"line_total"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	SoldSerials []InvoiceItemSerial `gorm:"foreignKey:InvoiceItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sold_serials,omitempty"`
}

// InvoiceItemSerial records one serial unit sold on an invoice line
type InvoiceItemSerial struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	InvoiceItemID uint `gorm:"not null;index" json:"invoice_item_id"`
	SerialUnitID  uint `gorm:"not null;index" json:"serial_unit_id"`
}

// TableName overrides
func (Quotation) TableName() string           { return "quotations" }
func (QuotationItem) TableName() string       { return "quotation_items" }
func (QuotationItemSerial) TableName() string { return "quotation_item_serials" }
func (Invoice) TableName() string             { return "invoices" }
func (InvoiceItem) TableName() string         { return "invoice_items" }
func (InvoiceItemSerial) TableName() string   { return "invoice_item_serials" }

// Business methods

// GrandTotalFor applies the discount formula shared by quotations and
// invoices.
func GrandTotalFor(subtotal, discountPercent float64) float64 {
	return subtotal * (1 - discountPercent/100)
}

// GenerateNumber formats a document number from a date and row ID
func GenerateNumber(prefix string, t time.Time, id uint) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, t.Format("20060102"), id)
}

// IsDraft reports whether the quotation can still be edited or converted
func (q *Quotation) IsDraft() bool {
	return q.Status == QuotationStatusDraft
}

// CanBeCancelled reports whether the invoice can still be cancelled
func (inv *Invoice) CanBeCancelled() bool {
	return inv.Status != InvoiceStatusCancelled
}

// Outstanding returns the unpaid balance after the advance payment
func (inv *Invoice) Outstanding() float64 {
	remaining := inv.GrandTotal - inv.AdvancePayment
	if remaining < 0 {
		return 0
	}
	return remaining
}
