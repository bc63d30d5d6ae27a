// internal/domain/shop/entity.go
package shop

import (
	"time"

	"gorm.io/gorm"
)

// Shop represents a retail outlet that serialized units can be assigned to
type Shop struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	Phone     string         `gorm:"size:20" json:"phone"`
	ManagerID *uint          `gorm:"index" json:"manager_id,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Shop) TableName() string { return "shops" }
