// internal/domain/shop/service.go
package shop

import (
	"fmt"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"gorm.io/gorm"
)

// Service handles shop business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new shop service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateShopRequest represents shop creation data
type CreateShopRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	ManagerID *uint  `json:"manager_id,omitempty"`
}

// CreateShop creates a new shop
func (s *Service) CreateShop(req *CreateShopRequest) (*Shop, error) {
	// Check if code already exists
	var existing Shop
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("shop with code '%s' already exists", req.Code)
	}

	shop := &Shop{
		Name:      req.Name,
		Code:      req.Code,
		Address:   req.Address,
		City:      req.City,
		Phone:     req.Phone,
		ManagerID: req.ManagerID,
		IsActive:  true,
	}

	if err := s.db.Create(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	return shop, nil
}

// GetShop retrieves a single shop by ID
func (s *Service) GetShop(id uint) (*Shop, error) {
	var shop Shop
	if err := s.db.First(&shop, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("shop not found")
		}
		return nil, fmt.Errorf("failed to retrieve shop: %w", err)
	}
	return &shop, nil
}

// GetShops retrieves all active shops
func (s *Service) GetShops() ([]Shop, error) {
	var shops []Shop
	if err := s.db.Where("is_active = ?", true).Order("name asc").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve shops: %w", err)
	}
	return shops, nil
}

// UpdateShop updates an existing shop
func (s *Service) UpdateShop(id uint, req *CreateShopRequest) (*Shop, error) {
	shop, err := s.GetShop(id)
	if err != nil {
		return nil, err
	}

	shop.Name = req.Name
	shop.Address = req.Address
	shop.City = req.City
	shop.Phone = req.Phone
	shop.ManagerID = req.ManagerID

	if err := s.db.Save(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	return shop, nil
}

// DeleteShop soft-deletes a shop. Serial units still assigned to the shop
// keep it alive.
func (s *Service) DeleteShop(id uint) error {
	shop, err := s.GetShop(id)
	if err != nil {
		return err
	}

	var assigned int64
	if err := s.db.Model(&stock.SerialUnit{}).
		Where("shop_id = ? AND status = ?", id, stock.SerialStatusAssigned).
		Count(&assigned).Error; err != nil {
		return fmt.Errorf("failed to check assigned serial units: %w", err)
	}
	if assigned > 0 {
		return fmt.Errorf("shop '%s' still holds %d assigned units", shop.Code, assigned)
	}

	if err := s.db.Delete(shop).Error; err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	return nil
}

// GetShopInventory lists serial units currently assigned to a shop
func (s *Service) GetShopInventory(shopID uint) ([]stock.SerialUnit, error) {
	var serials []stock.SerialUnit
	if err := s.db.Preload("StockItem").
		Where("shop_id = ? AND status = ?", shopID, stock.SerialStatusAssigned).
		Order("stock_item_id asc, serial_no asc").
		Find(&serials).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve shop inventory: %w", err)
	}
	return serials, nil
}
