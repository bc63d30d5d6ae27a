// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/sales"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/interfaces/http/middleware"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/pkg/email"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	salesService *sales.Service
	pdfService   *pdf.Service
	emailService *email.Service
	config       *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *InvoiceHandler {
	auditService := audit.NewService(db, logger)
	return &InvoiceHandler{
		salesService: sales.NewService(db, cfg, logger, auditService),
		pdfService:   pdf.NewService(cfg),
		emailService: email.NewService(cfg, logger),
		config:       cfg,
	}
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	invoice, err := h.salesService.GetInvoice(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice retrieved successfully",
		"data":    invoice,
	})
}

// GetInvoices handles GET /invoices
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	var req sales.InvoiceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	invoices, total, err := h.salesService.GetInvoices(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve invoices",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoices retrieved successfully",
		"data": gin.H{
			"invoices": invoices,
			"total":    total,
			"page":     req.Page,
			"limit":    req.Limit,
		},
	})
}

// CancelInvoice handles POST /invoices/:id/cancel
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	invoice, err := h.salesService.CancelInvoice(id, actor)
	if err != nil {
		if errors.Is(err, sales.ErrTransactionAborted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
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
		"message": "Invoice cancelled successfully",
		"data":    invoice,
	})
}

// MarkPaid handles POST /invoices/:id/paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	invoice, err := h.salesService.MarkInvoicePaid(id, actor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice marked as paid successfully",
		"data":    invoice,
	})
}

// MarkUnpaid handles POST /invoices/:id/unpaid
func (h *InvoiceHandler) MarkUnpaid(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	invoice, err := h.salesService.MarkInvoiceUnpaid(id, actor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice marked as unpaid successfully",
		"data":    invoice,
	})
}

// RecordAdvancePayment handles POST /invoices/:id/advance
func (h *InvoiceHandler) RecordAdvancePayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "amount is required",
		})
		return
	}

	actor := middleware.ActorFromContext(c)
	invoice, err := h.salesService.RecordAdvancePayment(id, req.Amount, actor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Advance payment recorded successfully",
		"data":    invoice,
	})
}

// DownloadInvoicePDF handles GET /invoices/:id/pdf
func (h *InvoiceHandler) DownloadInvoicePDF(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	invoice, err := h.salesService.GetInvoice(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	buffer, err := h.pdfService.GenerateInvoice(invoice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	filename := fmt.Sprintf("%s.pdf", invoice.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buffer.Bytes())
}

// EmailInvoice handles POST /invoices/:id/email. The invoice PDF is sent
// to the customer's email address on file unless an override is given.
func (h *InvoiceHandler) EmailInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req struct {
		To string `json:"to"`
	}
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	invoice, err := h.salesService.GetInvoice(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	recipient := req.To
	if recipient == "" {
		recipient = invoice.Customer.Email
	}
	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Customer has no email address on file",
		})
		return
	}

	buffer, err := h.pdfService.GenerateInvoice(invoice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	message := &email.Email{
		To:      []string{recipient},
		Subject: fmt.Sprintf("Invoice %s from %s", invoice.Number, h.config.Company.Name),
		HTMLBody: fmt.Sprintf(
			"<p>Dear %s,</p><p>Please find invoice <strong>%s</strong> attached.</p><p>Thank you for your business.</p><p>%s</p>",
			invoice.Customer.Name, invoice.Number, h.config.Company.Name,
		),
		Attachments: []email.Attachment{
			{
				Filename:    fmt.Sprintf("%s.pdf", invoice.Number),
				ContentType: "application/pdf",
				Content:     buffer.Bytes(),
			},
		},
	}

	if err := h.emailService.Send(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to send invoice email",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice emailed successfully",
	})
}
