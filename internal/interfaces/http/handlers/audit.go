// internal/interfaces/http/handlers/audit.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditHandler handles audit trail endpoints
type AuditHandler struct {
	auditService *audit.Service
	config       *config.Config
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: audit.NewService(db, logger),
		config:       cfg,
	}
}

// GetEntries handles GET /audit
func (h *AuditHandler) GetEntries(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.GetEntries(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve audit entries",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Audit entries retrieved successfully",
		"data":    entries,
	})
}
