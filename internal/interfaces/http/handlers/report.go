// internal/interfaces/http/handlers/report.go
package handlers

import (
	"net/http"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/report"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReportHandler handles reporting and dashboard endpoints
type ReportHandler struct {
	reportService *report.Service
	config        *config.Config
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: report.NewService(db, cfg, logger, redisClient),
		config:        cfg,
	}
}

// GetDashboard handles GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	stats, err := h.reportService.GetDashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve dashboard stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard stats retrieved successfully",
		"data":    stats,
	})
}

// GetSalesSummary handles GET /reports/sales
func (h *ReportHandler) GetSalesSummary(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	summary, err := h.reportService.GetSalesSummary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sales summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales summary retrieved successfully",
		"data":    summary,
	})
}

// GetImportSpend handles GET /reports/imports
func (h *ReportHandler) GetImportSpend(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	spend, err := h.reportService.GetImportSpend(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve import spend",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Import spend retrieved successfully",
		"data":    spend,
	})
}

// GetProfitEstimate handles GET /reports/profit
func (h *ReportHandler) GetProfitEstimate(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	estimate, err := h.reportService.GetProfitEstimate(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve profit estimate",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profit estimate retrieved successfully",
		"data":    estimate,
	})
}

// GetStockValuation handles GET /reports/valuation
func (h *ReportHandler) GetStockValuation(c *gin.Context) {
	valuation, err := h.reportService.GetStockValuation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock valuation",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock valuation retrieved successfully",
		"data":    valuation,
	})
}

// parseDateRange reads optional from/to query parameters (YYYY-MM-DD),
// defaulting to the last 30 days. Writes the error response on bad input.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid from date, expected YYYY-MM-DD",
			})
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}

	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid to date, expected YYYY-MM-DD",
			})
			return time.Time{}, time.Time{}, false
		}
		// Include the whole end day
		to = parsed.AddDate(0, 0, 1)
	}

	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Date range is inverted",
		})
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
