// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"net/http"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/upload"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StockHandler handles stock catalog and serial unit endpoints
type StockHandler struct {
	stockService  *stock.Service
	uploadService *upload.Service
	config        *config.Config
}

// NewStockHandler creates a new stock handler
func NewStockHandler(db *gorm.DB, cfg *config.Config) *StockHandler {
	return &StockHandler{
		stockService:  stock.NewService(db, cfg),
		uploadService: upload.NewService(db, cfg),
		config:        cfg,
	}
}

// STOCK ITEM CATALOG

// CreateStockItem handles POST /stock
func (h *StockHandler) CreateStockItem(c *gin.Context) {
	var req stock.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, err := h.stockService.CreateStockItem(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock item created successfully",
		"data":    item,
	})
}

// GetStockItem handles GET /stock/:id
func (h *StockHandler) GetStockItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	item, err := h.stockService.GetStockItem(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item retrieved successfully",
		"data":    item,
	})
}

// GetStockItems handles GET /stock
func (h *StockHandler) GetStockItems(c *gin.Context) {
	var req stock.StockItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	items, total, err := h.stockService.GetStockItems(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock items retrieved successfully",
		"data": gin.H{
			"items": items,
			"total": total,
			"page":  req.Page,
			"limit": req.Limit,
		},
	})
}

// UpdateStockItem handles PUT /stock/:id
func (h *StockHandler) UpdateStockItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req stock.UpdateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, err := h.stockService.UpdateStockItem(id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item updated successfully",
		"data":    item,
	})
}

// DeleteStockItem handles DELETE /stock/:id
func (h *StockHandler) DeleteStockItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.stockService.DeleteStockItem(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item deleted successfully",
	})
}

// GetLowStockItems handles GET /stock/low
func (h *StockHandler) GetLowStockItems(c *gin.Context) {
	items, err := h.stockService.GetLowStockItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve low stock items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock items retrieved successfully",
		"data":    items,
	})
}

// SERIAL UNITS

// GetSerials handles GET /stock/:id/serials
func (h *StockHandler) GetSerials(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	status := stock.SerialStatus(c.Query("status"))
	serials, err := h.stockService.GetSerials(id, status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Serial units retrieved successfully",
		"data":    serials,
	})
}

// AssignSerial handles POST /serials/:id/assign
func (h *StockHandler) AssignSerial(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req struct {
		ShopID uint `json:"shop_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "shop_id is required",
		})
		return
	}

	serial, err := h.stockService.AssignSerialToShop(id, req.ShopID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Serial unit assigned successfully",
		"data":    serial,
	})
}

// RecallSerial handles POST /serials/:id/recall
func (h *StockHandler) RecallSerial(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	serial, err := h.stockService.RecallSerialFromShop(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Serial unit recalled successfully",
		"data":    serial,
	})
}

// ReturnSerial handles POST /serials/:id/return
func (h *StockHandler) ReturnSerial(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	serial, err := h.stockService.ReturnSerial(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Serial unit returned successfully",
		"data":    serial,
	})
}

// IMAGES

// UploadStockImage handles POST /stock/:id/image
func (h *StockHandler) UploadStockImage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image file is required",
		})
		return
	}
	defer file.Close()

	item, err := h.uploadService.SaveStockImage(id, file, header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock image uploaded successfully",
		"data":    item,
	})
}

// DeleteStockImage handles DELETE /stock/:id/image
func (h *StockHandler) DeleteStockImage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	item, err := h.uploadService.RemoveStockImage(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock image removed successfully",
		"data":    item,
	})
}
