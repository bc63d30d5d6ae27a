// internal/domain/audit/entity.go
package audit

import "time"

// Entry is one append-only audit record. Entries are never updated or
// deleted.
type Entry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReferenceID string    `gorm:"uniqueIndex;not null;size:36" json:"reference_id"`
	ActorID     uint      `gorm:"index" json:"actor_id"`
	ActorName   string    `gorm:"size:255" json:"actor_name"`
	ActorRole   string    `gorm:"size:50" json:"actor_role"`
	Action      string    `gorm:"not null;size:100;index" json:"action"`
	EntityType  string    `gorm:"size:50;index" json:"entity_type"`
	EntityID    uint      `gorm:"index" json:"entity_id"`
	Detail      string    `gorm:"type:text" json:"detail"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Entry) TableName() string { return "audit_entries" }
