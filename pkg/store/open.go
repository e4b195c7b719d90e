package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clubdash/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// IsPostgresDSN reports whether dsn points at Postgres rather than a sqlite file.
func IsPostgresDSN(dsn string) bool {
	d := strings.TrimSpace(dsn)
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") || strings.Contains(d, "host=")
}

// Dialector picks the gorm driver for dsn. Anything that is not a Postgres DSN
// is opened as sqlite; an optional "sqlite:" prefix is stripped.
func Dialector(dsn string) gorm.Dialector {
	if IsPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
}

// Open connects to dsn.
func Open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	db, err := gorm.Open(Dialector(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates every table. Models are migrated one by one
// so a failure on one table does not block the others; all failures are
// returned together.
func AutoMigrate(db *gorm.DB, log *slog.Logger) error {
	// roles first so the users FK can be applied
	tables := []struct {
		name  string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"members", &models.Member{}},
		{"events", &models.Event{}},
		{"treasury_transactions", &models.Transaction{}},
		{"dues_statuses", &models.DuesStatus{}},
		{"attendances", &models.Attendance{}},
		{"receipts", &models.Receipt{}},
	}
	var errs []error
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			log.Warn("migration failed", "table", t.name, "err", err)
			errs = append(errs, fmt.Errorf("migrate %s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}
