// internal/domain/importing/entity.go
package importing

import (
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/supplier"
)

// CostKind tells which currency a shared overhead bucket is billed in
type CostKind string

const (
	CostKindForeign CostKind = "foreign"
	CostKindLocal   CostKind = "local"
)

// ImportRecord is an immutable log of one supplier shipment and its cost
// computation. Financial fields are never updated after creation; the only
// destructive operation is deletion, which reverses the stock effects.
type ImportRecord struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	InvoiceNo  string `gorm:"uniqueIndex;not null;size:50" json:"invoice_no"`
	SupplierID uint   `gorm:"not null;index" json:"supplier_id"`

	ExchangeRate         float64 `gorm:"not null" json:"exchange_rate"`
	TotalForeignValue    float64 `gorm:"not null" json:"total_foreign_value"` // pre-overhead item value
	TotalForeignOverhead float64 `gorm:"not null" json:"total_foreign_overhead"`
	TotalLocalOverhead   float64 `gorm:"not null" json:"total_local_overhead"`
	GrandTotalLocal      float64 `gorm:"not null" json:"grand_total_local"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Supplier supplier.Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []ImportItem      `gorm:"foreignKey:ImportRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Costs    []ImportCost      `gorm:"foreignKey:ImportRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"costs"`
}

// ImportItem is one shipment line with its computed landed cost
type ImportItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ImportRecordID uint `gorm:"not null;index" json:"import_record_id"`
	StockItemID    uint `gorm:"not null;index" json:"stock_item_id"`

	QuantityOrdered  int     `gorm:"not null" json:"quantity_ordered"`
	ForeignUnitPrice float64 `gorm:"not null" json:"foreign_unit_price"`

	// Computed by the cost allocator
	Share             float64 `gorm:"not null" json:"share"`
	OverheadAllocated float64 `gorm:"not null" json:"overhead_allocated"`
	FinalLineLocal    float64 `gorm:"not null" json:"final_line_local"`
	FinalUnitLocal    float64 `gorm:"not null" json:"final_unit_local"`

	CreatedAt time.Time `json:"created_at"`
}

// ImportCost is one named overhead bucket (freight, insurance, duty, ...)
type ImportCost struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	ImportRecordID uint     `gorm:"not null;index" json:"import_record_id"`
	Name           string   `gorm:"not null;size:100" json:"name"`
	Kind           CostKind `gorm:"not null" json:"kind"`
	Amount         float64  `gorm:"not null" json:"amount"`
}

// TableName overrides
func (ImportRecord) TableName() string { return "import_records" }
func (ImportItem) TableName() string   { return "import_items" }
func (ImportCost) TableName() string   { return "import_costs" }
