// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"clubdash/pkg/auth"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const devJWTSecret = "clubdash-dev-secret"

type Config struct {
	Addr        string `env:"ADDR" envDefault:":8081"`
	DSN         string `env:"DB_DSN" envDefault:"file:clubdash.db?_foreign_keys=on"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"clubdash-dev-secret"`
	// AdminPassword and VisitorPassword must have at least
	// auth.MinPasswordLen characters.
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"cascao"`
	// VisitorPassword grants read-only access.
	VisitorPassword string          `env:"VISITOR_PASSWORD" envDefault:"zegotinha"`
	DuesRate        decimal.Decimal `env:"DUES_RATE" envDefault:"25.00"`
	SeedDemo        bool            `env:"SEED_DEMO" envDefault:"false"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	AdjustmentTTL time.Duration `env:"ADJUSTMENT_TTL" envDefault:"24h"`

	UploadBase       string  `env:"UPLOAD_BASE" envDefault:"uploads"`
	OCRMinConfidence float64 `env:"OCR_MIN_CONFIDENCE" envDefault:"0.15"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse builds a Config from the process environment, or from vars when it
// is not nil.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DuesRate.IsNegative() {
		return Config{}, fmt.Errorf("DUES_RATE must not be negative")
	}
	if cfg.OCRMinConfidence < 0 || cfg.OCRMinConfidence > 1 {
		return Config{}, fmt.Errorf("OCR_MIN_CONFIDENCE must be within [0,1]")
	}
	for name, pw := range map[string]string{"ADMIN_PASSWORD": cfg.AdminPassword, "VISITOR_PASSWORD": cfg.VisitorPassword} {
		if len(pw) < auth.MinPasswordLen {
			return Config{}, fmt.Errorf("%s must have at least %d characters", name, auth.MinPasswordLen)
		}
	}
	return cfg, nil
}

// DevSecret reports whether the JWT secret is the built-in development value.
func (c Config) DevSecret() bool { return c.JWTSecret == devJWTSecret }

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
