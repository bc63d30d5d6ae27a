// internal/interfaces/http/handlers/shop.go
package handlers

import (
	"net/http"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/shop"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ShopHandler handles sales outlet endpoints
type ShopHandler struct {
	shopService *shop.Service
	config      *config.Config
}

// NewShopHandler creates a new shop handler
func NewShopHandler(db *gorm.DB, cfg *config.Config) *ShopHandler {
	return &ShopHandler{
		shopService: shop.NewService(db, cfg),
		config:      cfg,
	}
}

// CreateShop handles POST /shops
func (h *ShopHandler) CreateShop(c *gin.Context) {
	var req shop.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.shopService.CreateShop(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Shop created successfully",
		"data":    created,
	})
}

// GetShop handles GET /shops/:id
func (h *ShopHandler) GetShop(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	found, err := h.shopService.GetShop(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shop retrieved successfully",
		"data":    found,
	})
}

// GetShops handles GET /shops
func (h *ShopHandler) GetShops(c *gin.Context) {
	shops, err := h.shopService.GetShops()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve shops",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shops retrieved successfully",
		"data":    shops,
	})
}

// UpdateShop handles PUT /shops/:id
func (h *ShopHandler) UpdateShop(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req shop.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.shopService.UpdateShop(id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shop updated successfully",
		"data":    updated,
	})
}

// DeleteShop handles DELETE /shops/:id
func (h *ShopHandler) DeleteShop(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.shopService.DeleteShop(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shop deleted successfully",
	})
}

// GetShopInventory handles GET /shops/:id/inventory
func (h *ShopHandler) GetShopInventory(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	serials, err := h.shopService.GetShopInventory(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shop inventory retrieved successfully",
		"data":    serials,
	})
}
