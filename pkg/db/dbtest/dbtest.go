// Package dbtest opens isolated in-memory sqlite databases with the full
// schema for repository tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/migrate"
)

// OneOpenQuotePerCustomer is the partial unique index from the quotes migration.
const OneOpenQuotePerCustomer = `CREATE UNIQUE INDEX IF NOT EXISTS idx_quotes_one_open_per_customer ON quotes (customer_id) WHERE is_open AND customer_id IS NOT NULL`

// Open returns a migrated database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	// AutoMigrate cannot express partial indexes; mirror the one the SQL
	// migrations declare.
	if err := conn.Exec(OneOpenQuotePerCustomer).Error; err != nil {
		t.Fatalf("create open quote index: %v", err)
	}
	return conn
}

// SeedLookups inserts the order status and payment method rows checkout needs.
func SeedLookups(t testing.TB, db *gorm.DB) {
	t.Helper()
	if err := migrate.SeedLookups(context.Background(), db); err != nil {
		t.Fatalf("seed lookups: %v", err)
	}
}

// Product inserts a product at the given price.
func Product(t testing.TB, db *gorm.DB, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:  "Product " + price,
		SKU:   "SKU-" + uuid.NewString()[:8],
		Price: decimal.RequireFromString(price),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// Country inserts a country with an optional state and returns both.
func Country(t testing.TB, db *gorm.DB, code, stateCode string) (*models.Country, *models.State) {
	t.Helper()
	country := &models.Country{Name: code, Code: code}
	if err := db.Create(country).Error; err != nil {
		t.Fatalf("seed country: %v", err)
	}
	if stateCode == "" {
		return country, nil
	}
	state := &models.State{CountryID: country.ID, Name: stateCode, Code: stateCode}
	if err := db.Create(state).Error; err != nil {
		t.Fatalf("seed state: %v", err)
	}
	return country, state
}
