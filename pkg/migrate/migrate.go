package migrate

import (
	"context"
	"fmt"

	"github.com/wirasakti/partmap/pkg/config"
	"github.com/wirasakti/partmap/pkg/db"
	"github.com/wirasakti/partmap/pkg/db/models"
	"github.com/wirasakti/partmap/pkg/logger"
)

// Run applies the schema via gorm AutoMigrate. The persistent surface is a
// handful of lookup tables plus users; tag/cart state never touches the
// database.
func Run(ctx context.Context, client *db.Client) error {
	return client.DB().WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Part{},
		&models.CustomerPart{},
		&models.CompanyPart{},
		&models.Unit{},
		&models.Supplier{},
		&models.Material{},
		&models.ImportSource{},
		&models.LocalSource{},
		&models.Maker{},
	)
}

// MaybeRunDev migrates automatically when the app is running in dev mode and
// the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "running schema migration (dev auto-run)")

	if err := Run(ctx, client); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}

	logg.Info(ctx, "schema migration completed")
	return nil
}
