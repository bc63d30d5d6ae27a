// internal/domain/supplier/entity.go
package supplier

import (
	"time"

	"gorm.io/gorm"
)

// Supplier represents an overseas or local equipment supplier
type Supplier struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Country       string         `gorm:"size:100" json:"country"`
	ContactPerson string         `gorm:"size:255" json:"contact_person"`
	Email         string         `gorm:"size:255" json:"email"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	Currency      string         `gorm:"size:3;default:'USD'" json:"currency"`
	Notes         string         `gorm:"type:text" json:"notes"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Supplier) TableName() string { return "suppliers" }
