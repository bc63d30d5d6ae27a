// internal/domain/supplier/service.go
package supplier

import (
	"fmt"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"gorm.io/gorm"
)

// Service handles supplier business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new supplier service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateSupplierRequest represents supplier creation data
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	Country       string `json:"country"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Currency      string `json:"currency"`
	Notes         string `json:"notes"`
}

// SupplierListRequest represents supplier list query parameters
type SupplierListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// CreateSupplier creates a new supplier
func (s *Service) CreateSupplier(req *CreateSupplierRequest) (*Supplier, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	supplier := &Supplier{
		Name:          req.Name,
		Country:       req.Country,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Currency:      currency,
		Notes:         req.Notes,
		IsActive:      true,
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	return supplier, nil
}

// GetSupplier retrieves a single supplier by ID
func (s *Service) GetSupplier(id uint) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.First(&supplier, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("supplier not found")
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}
	return &supplier, nil
}

// GetSuppliers retrieves suppliers with filtering and pagination
func (s *Service) GetSuppliers(req *SupplierListRequest) ([]Supplier, int64, error) {
	var suppliers []Supplier
	var total int64

	query := s.db.Model(&Supplier{}).Where("is_active = ?", true)

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR country LIKE ? OR contact_person LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count suppliers: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name asc").Offset(offset).Limit(req.Limit).Find(&suppliers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve suppliers: %w", err)
	}

	return suppliers, total, nil
}

// UpdateSupplier updates an existing supplier
func (s *Service) UpdateSupplier(id uint, req *CreateSupplierRequest) (*Supplier, error) {
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return nil, err
	}

	supplier.Name = req.Name
	supplier.Country = req.Country
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	if req.Currency != "" {
		supplier.Currency = req.Currency
	}
	supplier.Notes = req.Notes

	if err := s.db.Save(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}

	return supplier, nil
}

// DeleteSupplier soft-deletes a supplier
func (s *Service) DeleteSupplier(id uint) error {
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(supplier).Error; err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	return nil
}
