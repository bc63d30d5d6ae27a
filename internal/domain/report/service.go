// internal/domain/report/service.go
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/customer"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/importing"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/sales"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Aggregates are cached briefly, long enough to absorb dashboard refreshes
// without serving stale numbers all day.
const cacheTTL = 5 * time.Minute

// Service computes financial reports over invoices, imports and stock
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	redis  *redis.Client
}

// NewService creates a new report service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}
}

// DashboardStats represents the business overview counters
type DashboardStats struct {
	Customers       int64   `json:"customers"`
	StockItems      int64   `json:"stock_items"`
	LowStockItems   int64   `json:"low_stock_items"`
	DraftQuotations int64   `json:"draft_quotations"`
	UnpaidInvoices  int64   `json:"unpaid_invoices"`
	SalesToday      float64 `json:"sales_today"`
	SalesThisMonth  float64 `json:"sales_this_month"`
}

// SalesSummary represents invoice totals over a date range
type SalesSummary struct {
	From             string  `json:"from"`
	To               string  `json:"to"`
	InvoiceCount     int64   `json:"invoice_count"`
	CancelledCount   int64   `json:"cancelled_count"`
	TotalInvoiced    float64 `json:"total_invoiced"`
	TotalPaid        float64 `json:"total_paid"`
	TotalUnpaid      float64 `json:"total_unpaid"`
	AdvanceCollected float64 `json:"advance_collected"`
}

// ImportSpend represents import cost totals over a date range
type ImportSpend struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	ShipmentCount   int64   `json:"shipment_count"`
	ForeignValue    float64 `json:"foreign_value"`
	GrandTotalLocal float64 `json:"grand_total_local"`
}

// ProfitEstimate represents the margin realized on serialized units sold in a
// date range: invoiced unit price minus landed unit cost.
type ProfitEstimate struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	UnitsSold   int64   `json:"units_sold"`
	Revenue     float64 `json:"revenue"`
	LandedCost  float64 `json:"landed_cost"`
	GrossProfit float64 `json:"gross_profit"`
}

// StockValuation represents the current inventory value
type StockValuation struct {
	ItemCount    int64   `json:"item_count"`
	UnitsOnHand  int64   `json:"units_on_hand"`
	CostValue    float64 `json:"cost_value"`
	SellingValue float64 `json:"selling_value"`
}

// GetDashboardStats computes the overview counters
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if s.fromCache(ctx, "report:dashboard", &stats) {
		return &stats, nil
	}

	if err := s.db.Model(&customer.Customer{}).Where("is_active = ?", true).Count(&stats.Customers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := s.db.Model(&stock.StockItem{}).Count(&stats.StockItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock items: %w", err)
	}
	if err := s.db.Model(&stock.StockItem{}).Where("quantity <= reorder_level").Count(&stats.LowStockItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock items: %w", err)
	}
	if err := s.db.Model(&sales.Quotation{}).Where("status = ?", sales.QuotationStatusDraft).Count(&stats.DraftQuotations).Error; err != nil {
		return nil, fmt.Errorf("failed to count quotations: %w", err)
	}
	if err := s.db.Model(&sales.Invoice{}).Where("status = ?", sales.InvoiceStatusUnpaid).Count(&stats.UnpaidInvoices).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if err := s.sumInvoices(today, now, &stats.SalesToday); err != nil {
		return nil, err
	}
	if err := s.sumInvoices(monthStart, now, &stats.SalesThisMonth); err != nil {
		return nil, err
	}

	s.toCache(ctx, "report:dashboard", &stats)
	return &stats, nil
}

func (s *Service) sumInvoices(from, to time.Time, out *float64) error {
	err := s.db.Model(&sales.Invoice{}).
		Where("issued_at >= ? AND issued_at <= ? AND status <> ?", from, to, sales.InvoiceStatusCancelled).
		Select("COALESCE(SUM(grand_total), 0)").Scan(out).Error
	if err != nil {
		return fmt.Errorf("failed to sum invoices: %w", err)
	}
	return nil
}

// GetSalesSummary computes invoice totals for a date range
func (s *Service) GetSalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := fmt.Sprintf("report:sales:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	var summary SalesSummary
	if s.fromCache(ctx, key, &summary) {
		return &summary, nil
	}

	summary.From = from.Format("2006-01-02")
	summary.To = to.Format("2006-01-02")

	active := s.db.Model(&sales.Invoice{}).
		Where("issued_at >= ? AND issued_at <= ? AND status <> ?", from, to, sales.InvoiceStatusCancelled)

	if err := active.Session(&gorm.Session{}).Count(&summary.InvoiceCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	if err := active.Session(&gorm.Session{}).Select("COALESCE(SUM(grand_total), 0)").Scan(&summary.TotalInvoiced).Error; err != nil {
		return nil, fmt.Errorf("failed to sum invoices: %w", err)
	}
	if err := active.Session(&gorm.Session{}).Select("COALESCE(SUM(advance_payment), 0)").Scan(&summary.AdvanceCollected).Error; err != nil {
		return nil, fmt.Errorf("failed to sum advances: %w", err)
	}

	if err := s.db.Model(&sales.Invoice{}).
		Where("issued_at >= ? AND issued_at <= ? AND status = ?", from, to, sales.InvoiceStatusPaid).
		Select("COALESCE(SUM(grand_total), 0)").Scan(&summary.TotalPaid).Error; err != nil {
		return nil, fmt.Errorf("failed to sum paid invoices: %w", err)
	}
	if err := s.db.Model(&sales.Invoice{}).
		Where("issued_at >= ? AND issued_at <= ? AND status = ?", from, to, sales.InvoiceStatusUnpaid).
		Select("COALESCE(SUM(grand_total), 0)").Scan(&summary.TotalUnpaid).Error; err != nil {
		return nil, fmt.Errorf("failed to sum unpaid invoices: %w", err)
	}
	if err := s.db.Model(&sales.Invoice{}).
		Where("issued_at >= ? AND issued_at <= ? AND status = ?", from, to, sales.InvoiceStatusCancelled).
		Count(&summary.CancelledCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count cancelled invoices: %w", err)
	}

	s.toCache(ctx, key, &summary)
	return &summary, nil
}

// GetImportSpend computes import cost totals for a date range
func (s *Service) GetImportSpend(ctx context.Context, from, to time.Time) (*ImportSpend, error) {
	key := fmt.Sprintf("report:imports:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	var spend ImportSpend
	if s.fromCache(ctx, key, &spend) {
		return &spend, nil
	}

	spend.From = from.Format("2006-01-02")
	spend.To = to.Format("2006-01-02")

	query := s.db.Model(&importing.ImportRecord{}).
		Where("created_at >= ? AND created_at <= ?", from, to)

	if err := query.Session(&gorm.Session{}).Count(&spend.ShipmentCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count imports: %w", err)
	}
	if err := query.Session(&gorm.Session{}).Select("COALESCE(SUM(total_foreign_value), 0)").Scan(&spend.ForeignValue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum foreign value: %w", err)
	}
	if err := query.Session(&gorm.Session{}).Select("COALESCE(SUM(grand_total_local), 0)").Scan(&spend.GrandTotalLocal).Error; err != nil {
		return nil, fmt.Errorf("failed to sum grand totals: %w", err)
	}

	s.toCache(ctx, key, &spend)
	return &spend, nil
}

// GetProfitEstimate computes realized margin over serialized units sold in a
// date range, using each unit's landed cost against its invoiced price.
func (s *Service) GetProfitEstimate(ctx context.Context, from, to time.Time) (*ProfitEstimate, error) {
	key := fmt.Sprintf("report:profit:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	var estimate ProfitEstimate
	if s.fromCache(ctx, key, &estimate) {
		return &estimate, nil
	}

	estimate.From = from.Format("2006-01-02")
	estimate.To = to.Format("2006-01-02")

	row := struct {
		Units   int64
		Revenue float64
		Cost    float64
	}{}

	err := s.db.Table("invoice_item_serials").
		Select("COUNT(*) AS units, COALESCE(SUM(invoice_items.unit_price), 0) AS revenue, COALESCE(SUM(serial_units.unit_cost), 0) AS cost").
		Joins("JOIN invoice_items ON invoice_items.id = invoice_item_serials.invoice_item_id").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Joins("JOIN serial_units ON serial_units.id = invoice_item_serials.serial_unit_id").
		Where("invoices.issued_at >= ? AND invoices.issued_at <= ? AND invoices.status <> ?",
			from, to, sales.InvoiceStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute profit estimate: %w", err)
	}

	estimate.UnitsSold = row.Units
	estimate.Revenue = row.Revenue
	estimate.LandedCost = row.Cost
	estimate.GrossProfit = row.Revenue - row.Cost

	s.toCache(ctx, key, &estimate)
	return &estimate, nil
}

// GetStockValuation computes the current inventory value at cost and at
// selling price.
func (s *Service) GetStockValuation(ctx context.Context) (*StockValuation, error) {
	var valuation StockValuation
	if s.fromCache(ctx, "report:valuation", &valuation) {
		return &valuation, nil
	}

	if err := s.db.Model(&stock.StockItem{}).Count(&valuation.ItemCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock items: %w", err)
	}
	if err := s.db.Model(&stock.StockItem{}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&valuation.UnitsOnHand).Error; err != nil {
		return nil, fmt.Errorf("failed to sum quantities: %w", err)
	}
	if err := s.db.Model(&stock.StockItem{}).
		Select("COALESCE(SUM(quantity * selling_price), 0)").Scan(&valuation.SellingValue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute selling value: %w", err)
	}

	// Cost value comes from the owned serial units, each carrying its own
	// landed cost.
	if err := s.db.Model(&stock.SerialUnit{}).
		Where("status IN ?", []stock.SerialStatus{stock.SerialStatusUnassigned, stock.SerialStatusAssigned}).
		Select("COALESCE(SUM(unit_cost), 0)").Scan(&valuation.CostValue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute cost value: %w", err)
	}

	s.toCache(ctx, "report:valuation", &valuation)
	return &valuation, nil
}

// CACHE HELPERS

// fromCache loads a cached report. A cache failure only means a recompute.
func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}

	payload, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Dropping malformed cached report")
		s.redis.Del(ctx, key)
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache report")
	}
}
