// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/interfaces/http/handlers"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group onto the versioned router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	SetupAuthRoutes(rg, db, cfg)
	SetupStaffRoutes(rg, db, cfg)
	SetupCustomerRoutes(rg, db, cfg)
	SetupSupplierRoutes(rg, db, cfg)
	SetupShopRoutes(rg, db, cfg)
	SetupStockRoutes(rg, db, cfg)
	SetupImportRoutes(rg, db, cfg, logger)
	SetupProductRoutes(rg, db, cfg)
	SetupQuotationRoutes(rg, db, cfg, logger)
	SetupInvoiceRoutes(rg, db, cfg, logger)
	SetupReportRoutes(rg, db, redisClient, cfg, logger)
	SetupAuditRoutes(rg, db, cfg, logger)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupStaffRoutes sets up staff administration routes (admin only)
func SetupStaffRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	staff := rg.Group("/staff")
	staff.Use(middleware.AuthMiddleware(cfg))
	staff.Use(middleware.AdminMiddleware())
	{
		staff.POST("", authHandler.CreateStaff)
		staff.GET("", authHandler.GetStaff)
		staff.POST("/:id/reset-password", authHandler.ResetStaffPassword)
		staff.PUT("/:id/active", authHandler.SetStaffActive)
	}
}

// SetupCustomerRoutes sets up customer management routes
func SetupCustomerRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	customerHandler := handlers.NewCustomerHandler(db, cfg)

	customers := rg.Group("/customers")
	customers.Use(middleware.AuthMiddleware(cfg))
	{
		customers.POST("", customerHandler.CreateCustomer)
		customers.GET("", customerHandler.GetCustomers)
		customers.GET("/:id", customerHandler.GetCustomer)
		customers.PUT("/:id", customerHandler.UpdateCustomer)
		customers.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}

// SetupSupplierRoutes sets up supplier management routes
func SetupSupplierRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	supplierHandler := handlers.NewSupplierHandler(db, cfg)

	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		suppliers.POST("", supplierHandler.CreateSupplier)
		suppliers.GET("", supplierHandler.GetSuppliers)
		suppliers.GET("/:id", supplierHandler.GetSupplier)
		suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
		suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
	}
}

// SetupShopRoutes sets up sales outlet routes
func SetupShopRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	shopHandler := handlers.NewShopHandler(db, cfg)

	shops := rg.Group("/shops")
	shops.Use(middleware.AuthMiddleware(cfg))
	{
		shops.POST("", shopHandler.CreateShop)
		shops.GET("", shopHandler.GetShops)
		shops.GET("/:id", shopHandler.GetShop)
		shops.PUT("/:id", shopHandler.UpdateShop)
		shops.DELETE("/:id", shopHandler.DeleteShop)
		shops.GET("/:id/inventory", shopHandler.GetShopInventory)
	}
}

// SetupStockRoutes sets up stock catalog and serial unit routes
func SetupStockRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	stockHandler := handlers.NewStockHandler(db, cfg)

	stock := rg.Group("/stock")
	stock.Use(middleware.AuthMiddleware(cfg))
	{
		stock.POST("", stockHandler.CreateStockItem)
		stock.GET("", stockHandler.GetStockItems)
		stock.GET("/low", stockHandler.GetLowStockItems)
		stock.GET("/:id", stockHandler.GetStockItem)
		stock.PUT("/:id", stockHandler.UpdateStockItem)
		stock.GET("/:id/serials", stockHandler.GetSerials)
		stock.POST("/:id/image", stockHandler.UploadStockImage)
		stock.DELETE("/:id/image", stockHandler.DeleteStockImage)

		// Deleting a catalog entry is destructive
		stock.DELETE("/:id", middleware.AdminMiddleware(), stockHandler.DeleteStockItem)
	}

	serials := rg.Group("/serials")
	serials.Use(middleware.AuthMiddleware(cfg))
	{
		serials.POST("/:id/assign", stockHandler.AssignSerial)
		serials.POST("/:id/recall", stockHandler.RecallSerial)
		serials.POST("/:id/return", stockHandler.ReturnSerial)
	}
}

// SetupImportRoutes sets up supplier shipment routes
func SetupImportRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	importHandler := handlers.NewImportHandler(db, cfg, logger)

	imports := rg.Group("/imports")
	imports.Use(middleware.AuthMiddleware(cfg))
	{
		imports.POST("", importHandler.CreateImport)
		imports.GET("", importHandler.GetImports)
		imports.GET("/:id", importHandler.GetImport)

		// Deleting an import reverses stock, admin only
		imports.DELETE("/:id", middleware.AdminMiddleware(), importHandler.DeleteImport)
	}
}

// SetupProductRoutes sets up finished product routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("/:id/recalculate", productHandler.RecalculatePrice)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupQuotationRoutes sets up quotation routes
func SetupQuotationRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	quotationHandler := handlers.NewQuotationHandler(db, cfg, logger)

	quotations := rg.Group("/quotations")
	quotations.Use(middleware.AuthMiddleware(cfg))
	{
		quotations.POST("", quotationHandler.CreateQuotation)
		quotations.GET("", quotationHandler.GetQuotations)
		quotations.GET("/:id", quotationHandler.GetQuotation)
		quotations.DELETE("/:id", quotationHandler.DeleteQuotation)
		quotations.POST("/:id/convert", quotationHandler.ConvertToInvoice)
		quotations.GET("/:id/pdf", quotationHandler.DownloadQuotationPDF)
	}
}

// SetupInvoiceRoutes sets up invoice routes
func SetupInvoiceRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg, logger)

	invoices := rg.Group("/invoices")
	invoices.Use(middleware.AuthMiddleware(cfg))
	{
		invoices.GET("", invoiceHandler.GetInvoices)
		invoices.GET("/:id", invoiceHandler.GetInvoice)
		invoices.POST("/:id/cancel", invoiceHandler.CancelInvoice)
		invoices.POST("/:id/paid", invoiceHandler.MarkPaid)
		invoices.POST("/:id/unpaid", invoiceHandler.MarkUnpaid)
		invoices.POST("/:id/advance", invoiceHandler.RecordAdvancePayment)
		invoices.GET("/:id/pdf", invoiceHandler.DownloadInvoicePDF)
		invoices.POST("/:id/email", invoiceHandler.EmailInvoice)
	}
}

// SetupReportRoutes sets up reporting routes
func SetupReportRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	reportHandler := handlers.NewReportHandler(db, redisClient, cfg, logger)

	reports := rg.Group("/reports")
	reports.Use(middleware.AuthMiddleware(cfg))
	{
		reports.GET("/dashboard", reportHandler.GetDashboard)
		reports.GET("/sales", reportHandler.GetSalesSummary)
		reports.GET("/imports", reportHandler.GetImportSpend)
		reports.GET("/profit", reportHandler.GetProfitEstimate)
		reports.GET("/valuation", reportHandler.GetStockValuation)
	}
}

// SetupAuditRoutes sets up audit trail routes (admin only)
func SetupAuditRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	auditHandler := handlers.NewAuditHandler(db, cfg, logger)

	auditTrail := rg.Group("/audit")
	auditTrail.Use(middleware.AuthMiddleware(cfg))
	auditTrail.Use(middleware.AdminMiddleware())
	{
		auditTrail.GET("", auditHandler.GetEntries)
	}
}
