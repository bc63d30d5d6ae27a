// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"gorm.io/gorm"
)

// Service handles finished product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ComponentRequest represents one component line
type ComponentRequest struct {
	StockItemID uint `json:"stock_item_id" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required"`
}

// CreateProductRequest represents finished product creation data
type CreateProductRequest struct {
	Code            string             `json:"code" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	Description     string             `json:"description"`
	OverheadPercent float64            `json:"overhead_percent"`
	ProfitPercent   float64            `json:"profit_percent"`
	Components      []ComponentRequest `json:"components" binding:"required,min=1"`
}

// CreateProduct creates a finished product and prices it from its components
func (s *Service) CreateProduct(req *CreateProductRequest) (*FinishedProduct, error) {
	var existing FinishedProduct
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with code '%s' already exists", req.Code)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	productEntry := &FinishedProduct{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		OverheadPercent: req.OverheadPercent,
		ProfitPercent:   req.ProfitPercent,
		IsActive:        true,
	}

	if err := tx.Create(productEntry).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	var rawCost float64
	for i, comp := range req.Components {
		if comp.Quantity <= 0 {
			tx.Rollback()
			return nil, fmt.Errorf("component quantity must be positive")
		}

		var item stock.StockItem
		if err := tx.First(&item, comp.StockItemID).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("stock item %d not found", comp.StockItemID)
		}
		rawCost += item.SellingPrice * float64(comp.Quantity)

		component := ProductComponent{
			FinishedProductID: productEntry.ID,
			StockItemID:       comp.StockItemID,
			Quantity:          comp.Quantity,
			SortOrder:         i,
		}
		if err := tx.Create(&component).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create product component: %w", err)
		}
	}

	productEntry.SellingPrice = productEntry.PriceFrom(rawCost)
	if err := tx.Model(productEntry).Update("selling_price", productEntry.SellingPrice).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set product price: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	return s.GetProduct(productEntry.ID)
}

// GetProduct retrieves a single finished product with its components
func (s *Service) GetProduct(id uint) (*FinishedProduct, error) {
	var productEntry FinishedProduct
	if err := s.db.Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order asc")
	}).Preload("Components.StockItem").First(&productEntry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &productEntry, nil
}

// GetProducts retrieves all active finished products
func (s *Service) GetProducts() ([]FinishedProduct, error) {
	var products []FinishedProduct
	if err := s.db.Preload("Components").Where("is_active = ?", true).
		Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// RecalculatePrice re-derives a product's selling price from the current
// component prices. Called after imports move the underlying landed costs.
func (s *Service) RecalculatePrice(id uint) (*FinishedProduct, error) {
	productEntry, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	rawCost, err := s.RawMaterialCost(productEntry)
	if err != nil {
		return nil, err
	}

	productEntry.SellingPrice = productEntry.PriceFrom(rawCost)
	if err := s.db.Model(productEntry).Update("selling_price", productEntry.SellingPrice).Error; err != nil {
		return nil, fmt.Errorf("failed to update product price: %w", err)
	}

	return productEntry, nil
}

// RawMaterialCost sums the current component selling prices
func (s *Service) RawMaterialCost(productEntry *FinishedProduct) (float64, error) {
	var rawCost float64
	for _, comp := range productEntry.Components {
		var item stock.StockItem
		if err := s.db.First(&item, comp.StockItemID).Error; err != nil {
			return 0, fmt.Errorf("stock item %d not found", comp.StockItemID)
		}
		rawCost += item.SellingPrice * float64(comp.Quantity)
	}
	return rawCost, nil
}

// DeleteProduct soft-deletes a finished product
func (s *Service) DeleteProduct(id uint) error {
	productEntry, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(productEntry).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
