// internal/domain/stock/service.go
package stock

import (
	"fmt"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"gorm.io/gorm"
)

// Service handles stock catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new stock service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateStockItemRequest represents stock item creation data
type CreateStockItemRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Model        string  `json:"model"`
	Unit         string  `json:"unit"`
	ProfitMargin float64 `json:"profit_margin"`
	ReorderLevel int     `json:"reorder_level"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
}

// UpdateStockItemRequest represents stock item update data
type UpdateStockItemRequest struct {
	Name         *string  `json:"name,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	ProfitMargin *float64 `json:"profit_margin,omitempty"`
	ReorderLevel *int     `json:"reorder_level,omitempty"`
	Description  *string  `json:"description,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
}

// StockItemListRequest represents stock list query parameters
type StockItemListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
}

// STOCK ITEM CATALOG

// CreateStockItem creates a new catalog entry
func (s *Service) CreateStockItem(req *CreateStockItemRequest) (*StockItem, error) {
	// Check if code already exists
	var existing StockItem
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("stock item with code '%s' already exists", req.Code)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	reorderLevel := req.ReorderLevel
	if reorderLevel <= 0 {
		reorderLevel = 5
	}

	item := &StockItem{
		Code:         req.Code,
		Name:         req.Name,
		Model:        req.Model,
		Unit:         unit,
		ProfitMargin: req.ProfitMargin,
		ReorderLevel: reorderLevel,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}

	return item, nil
}

// GetStockItem retrieves a single stock item by ID
func (s *Service) GetStockItem(id uint) (*StockItem, error) {
	var item StockItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("stock item not found")
		}
		return nil, fmt.Errorf("failed to retrieve stock item: %w", err)
	}
	return &item, nil
}

// GetStockItems retrieves stock items with filtering and pagination
func (s *Service) GetStockItems(req *StockItemListRequest) ([]StockItem, int64, error) {
	var items []StockItem
	var total int64

	query := s.db.Model(&StockItem{})

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR model LIKE ?", like, like, like)
	}

	if req.LowStock {
		query = query.Where("quantity <= reorder_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock items: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name asc").Offset(offset).Limit(req.Limit).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve stock items: %w", err)
	}

	return items, total, nil
}

// UpdateStockItem updates catalog fields of a stock item.
// Quantity and selling price are deliberately not updatable here; they are
// mutated only by the import and sales workflows.
func (s *Service) UpdateStockItem(id uint, req *UpdateStockItemRequest) (*StockItem, error) {
	item, err := s.GetStockItem(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.ProfitMargin != nil {
		updates["profit_margin"] = *req.ProfitMargin
	}
	if req.ReorderLevel != nil {
		updates["reorder_level"] = *req.ReorderLevel
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}

	return item, nil
}

// DeleteStockItem removes a catalog entry. An item is never deleted while
// serial units still reference it.
func (s *Service) DeleteStockItem(id uint) error {
	item, err := s.GetStockItem(id)
	if err != nil {
		return err
	}

	var serialCount int64
	if err := s.db.Model(&SerialUnit{}).Where("stock_item_id = ?", id).Count(&serialCount).Error; err != nil {
		return fmt.Errorf("failed to check serial units: %w", err)
	}
	if serialCount > 0 {
		return fmt.Errorf("stock item '%s' has %d serial units and cannot be deleted", item.Code, serialCount)
	}

	if err := s.db.Delete(item).Error; err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}

	return nil
}

// SERIAL UNITS

// GetSerials retrieves serial units for a stock item, optionally filtered by status
func (s *Service) GetSerials(stockItemID uint, status SerialStatus) ([]SerialUnit, error) {
	query := s.db.Where("stock_item_id = ?", stockItemID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var serials []SerialUnit
	if err := query.Order("serial_no asc").Find(&serials).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve serial units: %w", err)
	}
	return serials, nil
}

// AssignSerialToShop moves an unassigned serial unit to a shop
func (s *Service) AssignSerialToShop(serialID, shopID uint) (*SerialUnit, error) {
	var serial SerialUnit
	if err := s.db.First(&serial, serialID).Error; err != nil {
		return nil, fmt.Errorf("serial unit not found")
	}

	if !serial.CanTransitionTo(SerialStatusAssigned) {
		return nil, fmt.Errorf("serial %s cannot be assigned while %s", serial.SerialNo, serial.Status)
	}

	updates := map[string]interface{}{
		"status":  SerialStatusAssigned,
		"shop_id": shopID,
	}
	if err := s.db.Model(&serial).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to assign serial unit: %w", err)
	}

	return &serial, nil
}

// RecallSerialFromShop returns an assigned serial unit to the main store
func (s *Service) RecallSerialFromShop(serialID uint) (*SerialUnit, error) {
	var serial SerialUnit
	if err := s.db.First(&serial, serialID).Error; err != nil {
		return nil, fmt.Errorf("serial unit not found")
	}

	if serial.Status != SerialStatusAssigned {
		return nil, fmt.Errorf("serial %s is not assigned to a shop", serial.SerialNo)
	}

	updates := map[string]interface{}{
		"status":  SerialStatusUnassigned,
		"shop_id": nil,
	}
	if err := s.db.Model(&serial).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to recall serial unit: %w", err)
	}

	return &serial, nil
}

// ReturnSerial marks a serial unit as returned under warranty. A unit that
// still counted on hand also leaves the owned quantity.
func (s *Service) ReturnSerial(serialID uint) (*SerialUnit, error) {
	var serial SerialUnit

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&serial, serialID).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("serial unit not found")
	}

	if !serial.CanTransitionTo(SerialStatusReturned) {
		tx.Rollback()
		return nil, fmt.Errorf("serial %s is already returned", serial.SerialNo)
	}

	wasOnHand := serial.CountsOnHand()

	if err := tx.Model(&serial).Updates(map[string]interface{}{
		"status":  SerialStatusReturned,
		"shop_id": nil,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update serial unit: %w", err)
	}

	if wasOnHand {
		result := tx.Model(&StockItem{}).
			Where("id = ? AND quantity > 0", serial.StockItemID).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update stock quantity: %w", result.Error)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit warranty return: %w", err)
	}

	return &serial, nil
}

// GetLowStockItems retrieves items at or below their reorder level
func (s *Service) GetLowStockItems() ([]StockItem, error) {
	var items []StockItem
	if err := s.db.Where("quantity <= reorder_level").Order("quantity asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock items: %w", err)
	}
	return items, nil
}
