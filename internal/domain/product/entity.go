// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"gorm.io/gorm"
)

// FinishedProduct is a composite catalog entry bundling stock items, e.g. a
// packaged solar kit. It is priced from its components and is not itself
// serialized.
type FinishedProduct struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Code            string  `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name            string  `gorm:"not null;size:255" json:"name"`
	Description     string  `gorm:"type:text" json:"description"`
	OverheadPercent float64 `gorm:"default:0" json:"overhead_percent"` // percentage of raw-material cost
	ProfitPercent   float64 `gorm:"default:0" json:"profit_percent"`
	SellingPrice    float64 `gorm:"default:0" json:"selling_price"` // derived
	IsActive        bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Components []ProductComponent `gorm:"foreignKey:FinishedProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"components"`
}

// ProductComponent is one (stock item, quantity) entry of a finished product
type ProductComponent struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	FinishedProductID uint `gorm:"not null;index" json:"finished_product_id"`
	StockItemID       uint `gorm:"not null;index" json:"stock_item_id"`
	Quantity          int  `gorm:"not null" json:"quantity"`
	SortOrder         int  `gorm:"default:0" json:"sort_order"`

	// Relationships
	StockItem stock.StockItem `gorm:"foreignKey:StockItemID" json:"stock_item,omitempty"`
}

// TableName overrides
func (FinishedProduct) TableName() string  { return "finished_products" }
func (ProductComponent) TableName() string { return "product_components" }

// PriceFrom derives the selling price from a raw-material cost using the
// product's markup formula.
func (fp *FinishedProduct) PriceFrom(rawMaterialCost float64) float64 {
	withOverhead := rawMaterialCost * (1 + fp.OverheadPercent/100)
	return withOverhead * (1 + fp.ProfitPercent/100)
}
