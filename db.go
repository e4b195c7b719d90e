package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clubdash/pkg/auth"
	"clubdash/pkg/config"
	"clubdash/pkg/store"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// initDB opens the database, migrates it when enabled, keeps the shared
// accounts in sync with configuration and seeds demo data when asked. The
// returned handle is usable even when a later step failed.
func initDB(ctx context.Context, cfg config.Config, log *slog.Logger, now time.Time) (*gorm.DB, error) {
	db, err := store.Open(cfg.DSN, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// a database that is down at startup must not keep the dashboard from serving
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}
	return db, prepareDB(ctx, db, cfg, log, now)
}

func prepareDB(ctx context.Context, db *gorm.DB, cfg config.Config, log *slog.Logger, now time.Time) error {
	if cfg.AutoMigrate {
		// individual table failures are logged and do not stop the rest
		if err := store.AutoMigrate(db, log); err != nil {
			log.Warn("migration warning", "err", err)
		}
	}
	if err := auth.EnsureSharedAccounts(db, cfg.AdminPassword, cfg.VisitorPassword); err != nil {
		return fmt.Errorf("shared accounts: %w", err)
	}
	if cfg.SeedDemo {
		seeded, err := store.SeedDemo(ctx, db, now)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("demo data seeded")
		}
	}
	return nil
}
