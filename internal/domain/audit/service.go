// internal/domain/audit/service.go
package audit

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who performed an audited action
type Actor struct {
	ID   uint
	Name string
	Role string
}

// Service appends audit entries. Appends are best effort: a logging failure
// must never block or roll back the operation being audited, so errors are
// logged and swallowed.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new audit service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Record appends one audit entry
func (s *Service) Record(actor Actor, action, entityType string, entityID uint, amount float64, detail string) {
	entry := Entry{
		ReferenceID: uuid.NewString(),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Detail:      detail,
		Amount:      amount,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      action,
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		}).Warn("Failed to append audit entry")
	}
}

// GetEntries retrieves recent audit entries, newest first
func (s *Service) GetEntries(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []Entry
	if err := s.db.Order("created_at desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve audit entries: %w", err)
	}
	return entries, nil
}
