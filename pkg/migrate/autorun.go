package migrate

import (
	"context"
	"fmt"

	"github.com/hzpumpworks/workshop-backend/pkg/config"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
)

// MaybeRunDev executes migrations for both stores automatically when the app
// is running in dev mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, catalog, docs *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	targets := []struct {
		client *db.Client
		dir    string
	}{
		{catalog, CatalogDir},
		{docs, DocsDir},
	}

	for _, target := range targets {
		sqlDB, err := target.client.DB().DB()
		if err != nil {
			return fmt.Errorf("extracting sql.DB for %s store: %w", target.client.Name(), err)
		}

		runCtx := logg.WithFields(ctx, map[string]any{
			"env":   cfg.App.Env,
			"store": target.client.Name(),
			"dir":   target.dir,
		})
		logg.Info(runCtx, "running Goose migrations (dev auto-run)")

		if err := Run(runCtx, sqlDB, target.dir, "up"); err != nil {
			return fmt.Errorf("running goose up for %s store: %w", target.client.Name(), err)
		}

		logg.Info(runCtx, "Goose migrations completed")
	}
	return nil
}
