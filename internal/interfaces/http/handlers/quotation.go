// internal/interfaces/http/handlers/quotation.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/sales"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/interfaces/http/middleware"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuotationHandler handles quotation endpoints
type QuotationHandler struct {
	salesService *sales.Service
	pdfService   *pdf.Service
	config       *config.Config
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *QuotationHandler {
	auditService := audit.NewService(db, logger)
	return &QuotationHandler{
		salesService: sales.NewService(db, cfg, logger, auditService),
		pdfService:   pdf.NewService(cfg),
		config:       cfg,
	}
}

// CreateQuotation handles POST /quotations
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req sales.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	quotation, err := h.salesService.CreateQuotation(&req, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quotation created successfully",
		"data":    quotation,
	})
}

// GetQuotation handles GET /quotations/:id
func (h *QuotationHandler) GetQuotation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	quotation, err := h.salesService.GetQuotation(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quotation retrieved successfully",
		"data":    quotation,
	})
}

// GetQuotations handles GET /quotations
func (h *QuotationHandler) GetQuotations(c *gin.Context) {
	var req sales.QuotationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	quotations, total, err := h.salesService.GetQuotations(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve quotations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quotations retrieved successfully",
		"data": gin.H{
			"quotations": quotations,
			"total":      total,
			"page":       req.Page,
			"limit":      req.Limit,
		},
	})
}

// DeleteQuotation handles DELETE /quotations/:id
func (h *QuotationHandler) DeleteQuotation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.salesService.DeleteQuotation(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quotation deleted successfully",
	})
}

// ConvertToInvoice handles POST /quotations/:id/convert
func (h *QuotationHandler) ConvertToInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	invoice, err := h.salesService.ConvertToInvoice(id, actor)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, sales.ErrTransactionAborted):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quotation converted to invoice successfully",
		"data":    invoice,
	})
}

// DownloadQuotationPDF handles GET /quotations/:id/pdf
func (h *QuotationHandler) DownloadQuotationPDF(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	quotation, err := h.salesService.GetQuotation(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	buffer, err := h.pdfService.GenerateQuotation(quotation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	filename := fmt.Sprintf("%s.pdf", quotation.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buffer.Bytes())
}
