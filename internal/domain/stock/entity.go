// internal/domain/stock/entity.go
package stock

import (
	"time"

	"gorm.io/gorm"
)

// SerialStatus represents the assignment state of a serialized unit
type SerialStatus string

const (
	SerialStatusUnassigned SerialStatus = "unassigned"
	SerialStatusAssigned   SerialStatus = "assigned"   // assigned to a shop
	SerialStatusSold       SerialStatus = "sold"       // invoiced to a customer
	SerialStatusReturned   SerialStatus = "returned"   // warranty return
)

// StockItem represents a catalog entry for one product type
type StockItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Code         string  `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name         string  `gorm:"not null;size:255" json:"name"`
	Model        string  `gorm:"size:100" json:"model"`
	Unit         string  `gorm:"size:20;default:'pcs'" json:"unit"`
	Quantity     int     `gorm:"default:0" json:"quantity"`
	ProfitMargin float64 `gorm:"default:0" json:"profit_margin"` // percentage
	SellingPrice float64 `gorm:"default:0" json:"selling_price"` // local currency, derived from landed cost
	ReorderLevel int     `gorm:"default:5" json:"reorder_level"`
	Description  string  `gorm:"type:text" json:"description"`
	ImageURL     string  `gorm:"size:500" json:"image_url"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Serials []SerialUnit `gorm:"foreignKey:StockItemID" json:"serials,omitempty"`
}

// SerialUnit represents one physically distinct unit of a StockItem
type SerialUnit struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	StockItemID    uint         `gorm:"not null;index;uniqueIndex:idx_serial_per_item,priority:1" json:"stock_item_id"`
	SerialNo       string       `gorm:"not null;size:100;uniqueIndex:idx_serial_per_item,priority:2" json:"serial_no"`
	PurchaseDate   time.Time    `json:"purchase_date"`
	UnitCost       float64      `gorm:"not null" json:"unit_cost"` // landed cost in local currency
	Status         SerialStatus `gorm:"not null;default:'unassigned'" json:"status"`
	ShopID         *uint        `gorm:"index" json:"shop_id,omitempty"`
	ImportRecordID *uint        `gorm:"index" json:"import_record_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relationships
	StockItem StockItem `gorm:"foreignKey:StockItemID" json:"stock_item,omitempty"`
}

// TableName overrides
func (StockItem) TableName() string  { return "stock_items" }
func (SerialUnit) TableName() string { return "serial_units" }

// Business methods for StockItem

// IsLowStock checks if the item is at or below its reorder level
func (si *StockItem) IsLowStock() bool {
	return si.Quantity <= si.ReorderLevel
}

// IsOutOfStock checks if the item has no units on hand
func (si *StockItem) IsOutOfStock() bool {
	return si.Quantity <= 0
}

// Business methods for SerialUnit

// CanTransitionTo checks whether a status change is allowed.
// Valid transitions: unassigned -> assigned -> sold, any state -> returned.
// A sold unit can also revert to unassigned, but only through invoice
// cancellation.
func (su *SerialUnit) CanTransitionTo(target SerialStatus) bool {
	if target == SerialStatusReturned {
		return su.Status != SerialStatusReturned
	}

	switch su.Status {
	case SerialStatusUnassigned:
		return target == SerialStatusAssigned || target == SerialStatusSold
	case SerialStatusAssigned:
		return target == SerialStatusSold || target == SerialStatusUnassigned
	case SerialStatusSold:
		return target == SerialStatusUnassigned
	default:
		return false
	}
}

// CountsOnHand reports whether the unit is part of the owned quantity
func (su *SerialUnit) CountsOnHand() bool {
	return su.Status == SerialStatusUnassigned || su.Status == SerialStatusAssigned
}
