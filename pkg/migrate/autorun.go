package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/db"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

// MaybeRunDev migrates the schema automatically when the app is running in dev
// mode and the feature flag is enabled. SQLite databases are migrated from the
// models since the SQL migrations target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.FeatureFlags.UseSQLite {
		ctx = logg.WithField(ctx, "env", cfg.App.Env)
		logg.Info(ctx, "auto-migrating sqlite schema (dev auto-run)")
		if err := AutoMigrate(ctx, client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "source": "embedded"}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrate creates the schema from the models and inserts the lookup rows
// checkout depends on. It is safe to run repeatedly.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	if err := conn.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return SeedLookups(ctx, conn)
}

// SeedLookups inserts the order statuses and payment methods if missing.
func SeedLookups(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx)
	for _, name := range []string{enums.OrderStatusPending, enums.OrderStatusShipped, enums.OrderStatusCancelled} {
		status := models.OrderStatus{Name: name}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&status).Error; err != nil {
			return fmt.Errorf("seed order status %q: %w", name, err)
		}
	}
	for _, name := range []string{enums.PaymentMethodFreeOrder, enums.PaymentMethodCreditCard} {
		method := models.PaymentMethod{Name: name}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&method).Error; err != nil {
			return fmt.Errorf("seed payment method %q: %w", name, err)
		}
	}
	return nil
}
