// internal/domain/customer/service.go
package customer

import (
	"fmt"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"gorm.io/gorm"
)

// Service handles customer business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new customer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateCustomerRequest represents customer creation data
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	NIC     string `json:"nic"`
	Notes   string `json:"notes"`
}

// CustomerListRequest represents customer list query parameters
type CustomerListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// CreateCustomer creates a new customer
func (s *Service) CreateCustomer(req *CreateCustomerRequest) (*Customer, error) {
	customer := &Customer{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		NIC:      req.NIC,
		Notes:    req.Notes,
		IsActive: true,
	}

	if err := s.db.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// GetCustomer retrieves a single customer by ID
func (s *Service) GetCustomer(id uint) (*Customer, error) {
	var customer Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer not found")
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}
	return &customer, nil
}

// GetCustomers retrieves customers with filtering and pagination
func (s *Service) GetCustomers(req *CustomerListRequest) ([]Customer, int64, error) {
	var customers []Customer
	var total int64

	query := s.db.Model(&Customer{}).Where("is_active = ?", true)

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name asc").Offset(offset).Limit(req.Limit).Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	return customers, total, nil
}

// UpdateCustomer updates an existing customer
func (s *Service) UpdateCustomer(id uint, req *CreateCustomerRequest) (*Customer, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.City = req.City
	customer.NIC = req.NIC
	customer.Notes = req.Notes

	if err := s.db.Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// DeleteCustomer soft-deletes a customer
func (s *Service) DeleteCustomer(id uint) error {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(customer).Error; err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return nil
}
