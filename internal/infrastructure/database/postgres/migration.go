// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/audit"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/customer"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/importing"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/product"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/sales"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/shop"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/supplier"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Base tables
		&user.User{},
		&customer.Customer{},
		&supplier.Supplier{},
		&shop.Shop{},

		// Stock catalog
		&stock.StockItem{},
		&stock.SerialUnit{},

		// Imports
		&importing.ImportRecord{},
		&importing.ImportItem{},
		&importing.ImportCost{},

		// Finished products
		&product.FinishedProduct{},
		&product.ProductComponent{},

		// Sales
		&sales.Quotation{},
		&sales.QuotationItem{},
		&sales.QuotationItemSerial{},
		&sales.Invoice{},
		&sales.InvoiceItem{},
		&sales.InvoiceItemSerial{},

		// Audit log
		&audit.Entry{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional database indexes beyond the GORM tags
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Stock indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_items_quantity ON stock_items(quantity)",
		"CREATE INDEX IF NOT EXISTS idx_serial_units_status ON serial_units(status)",
		"CREATE INDEX IF NOT EXISTS idx_serial_units_shop ON serial_units(shop_id)",
		"CREATE INDEX IF NOT EXISTS idx_serial_units_import ON serial_units(import_record_id)",

		// Import indexes
		"CREATE INDEX IF NOT EXISTS idx_import_records_supplier ON import_records(supplier_id)",
		"CREATE INDEX IF NOT EXISTS idx_import_records_created_at ON import_records(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_import_items_record ON import_items(import_record_id)",

		// Sales indexes
		"CREATE INDEX IF NOT EXISTS idx_quotations_customer_status ON quotations(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_quotations_created_at ON quotations(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_customer_status ON invoices(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_issued_at ON invoices(issued_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_entries_created_at ON audit_entries(created_at DESC)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database indexes created")
	return nil
}

// SeedInitialData seeds the database with required initial data
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return err
	}

	log.Println("✅ Initial data seeding completed")
	return nil
}

// seedAdminUser creates the initial admin account if none exists
func (m *Migration) seedAdminUser() error {
	var count int64
	if err := m.db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin accounts: %w", err)
	}
	if count > 0 {
		log.Println("⏭️ Admin account already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("ChangeMe!2024"), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Email:    "admin@irnsolar.lk",
		Password: string(hashedPassword),
		Name:     "Administrator",
		Role:     user.RoleAdmin,
		IsActive: true,
	}

	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@irnsolar.lk (change the password after first login)")
	return nil
}

// DropAllTables drops every table; used by tests and local resets only
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ Dropping all database tables...")

	tables := []string{
		"audit_entries",
		"invoice_item_serials",
		"invoice_items",
		"invoices",
		"quotation_item_serials",
		"quotation_items",
		"quotations",
		"product_components",
		"finished_products",
		"import_costs",
		"import_items",
		"import_records",
		"serial_units",
		"stock_items",
		"shops",
		"suppliers",
		"customers",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ All tables dropped")
	return nil
}
