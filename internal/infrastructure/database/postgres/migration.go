// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/domain/backup"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
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

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},

		// Catalog domain
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},

		// Coupon domain
		&coupon.Coupon{},

		// Payment domain
		&payment.PaymentMethod{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderItem{},
		&order.OrderNote{},

		// Analytics domain
		&analytics.Visit{},

		// Backup domain
		&backup.Record{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id, sort_order)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_code ON coupons(code)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_window ON coupons(is_active, valid_from, valid_until)",

		// Payment method indexes
		"CREATE INDEX IF NOT EXISTS idx_payment_methods_code ON payment_methods(code)",
		"CREATE INDEX IF NOT EXISTS idx_payment_methods_active ON payment_methods(is_active)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_intent ON orders(payment_intent_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Order notes indexes
		"CREATE INDEX IF NOT EXISTS idx_order_notes_order ON order_notes(order_id, created_at DESC)",

		// Visit indexes
		"CREATE INDEX IF NOT EXISTS idx_visits_created_at ON visits(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_visits_ip_address ON visits(ip_address)",
		"CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path)",
		"CREATE INDEX IF NOT EXISTS idx_visits_country ON visits(country)",

		// Backup indexes
		"CREATE INDEX IF NOT EXISTS idx_backup_records_created_at ON backup_records(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_backup_records_type ON backup_records(backup_type)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// Create default payment methods
	if err := m.seedPaymentMethods(); err != nil {
		return fmt.Errorf("failed to seed payment methods: %w", err)
	}

	// Create default admin user
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedPaymentMethods creates the default payment method catalog
func (m *Migration) seedPaymentMethods() error {
	log.Println("💳 Seeding payment methods...")

	methods := []payment.PaymentMethod{
		{
			Name:          "Credit Card",
			Code:          payment.MethodCreditCard,
			Description:   "Pay securely by credit or debit card",
			IsActive:      true,
			RequiresProof: false,
		},
		{
			Name:          "Cash on Delivery",
			Code:          payment.MethodCashOnDelivery,
			Description:   "Pay in cash when your order arrives",
			IsActive:      true,
			RequiresProof: false,
		},
		{
			Name:          "Bank Transfer",
			Code:          "bank_transfer",
			Description:   "Transfer to our bank account and upload the receipt",
			Instructions:  "Transfer the order total and upload a photo of the receipt",
			IsActive:      true,
			RequiresProof: true,
		},
	}

	for _, method := range methods {
		var existing payment.PaymentMethod
		result := m.db.Where("code = ?", method.Code).First(&existing)
		if result.Error != nil {
			// Method doesn't exist, create it
			if err := m.db.Create(&method).Error; err != nil {
				return err
			}
			log.Printf("✅ Created payment method: %s", method.Name)
		} else {
			log.Printf("⏭️ Payment method already exists: %s", method.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:     "admin@example.com",
			Password:  string(hashedPassword),
			FirstName: "Admin",
			LastName:  "User",
			IsActive:  true,
			IsAdmin:   true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			log.Printf("❌ Failed to create admin user: %v", err)
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"backup_records",
		"visits",
		"order_notes",
		"order_items",
		"orders",
		"payment_methods",
		"coupons",
		"product_categories",
		"product_images",
		"products",
		"categories",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
