// internal/interfaces/http/handlers/imports.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/importing"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportHandler handles supplier shipment endpoints
type ImportHandler struct {
	importService *importing.Service
	config        *config.Config
}

// NewImportHandler creates a new import handler
func NewImportHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importing.NewService(db, cfg, logger),
		config:        cfg,
	}
}

// CreateImport handles POST /imports
func (h *ImportHandler) CreateImport(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req importing.CreateImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.importService.CreateImport(&req, userID)
	if err != nil {
		if errors.Is(err, importing.ErrInvalidInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Import recorded successfully",
		"data":    record,
	})
}

// GetImport handles GET /imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	record, err := h.importService.GetImport(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Import retrieved successfully",
		"data":    record,
	})
}

// GetImports handles GET /imports
func (h *ImportHandler) GetImports(c *gin.Context) {
	var req importing.ImportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	records, total, err := h.importService.GetImports(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve imports",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Imports retrieved successfully",
		"data": gin.H{
			"imports": records,
			"total":   total,
			"page":    req.Page,
			"limit":   req.Limit,
		},
	})
}

// DeleteImport handles DELETE /imports/:id. Reversal is best effort and
// not transactional, so a partial failure is reported as a distinct error.
func (h *ImportHandler) DeleteImport(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.importService.DeleteImport(id); err != nil {
		if errors.Is(err, importing.ErrPartialWriteRisk) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Import deleted successfully",
	})
}
