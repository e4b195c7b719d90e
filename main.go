package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubdash/pkg/adjust"
	"clubdash/pkg/config"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr)
	slog.SetDefault(log)
	if cfg.DevSecret() {
		log.Warn("JWT_SECRET not set, using development secret")
	}

	// `clubdash migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg.AutoMigrate = true
		if _, err := initDB(context.Background(), cfg, log, time.Now()); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		fmt.Println("migration and seeding completed")
		return
	}

	db, err := initDB(context.Background(), cfg, log, time.Now())
	if db == nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	if err != nil {
		// the dashboard still starts; reads degrade and writes answer 503
		log.Error("database not ready", "err", err)
	}

	adj, closeAdj := adjustmentStore(cfg, log)
	defer closeAdj()

	gin.SetMode(gin.ReleaseMode)
	s := newServer(cfg, db, adj, log, time.Now)
	r := gin.New()
	s.setupRoutes(r)

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// adjustmentStore uses Redis when REDIS_ADDR is set and falls back to process
// memory otherwise, or when Redis cannot be reached.
func adjustmentStore(cfg config.Config, log *slog.Logger) (adjust.Store, func()) {
	if cfg.RedisAddr == "" {
		return adjust.NewMemory(cfg.AdjustmentTTL), func() {}
	}
	r, err := adjust.NewRedis(adjust.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.AdjustmentTTL,
	})
	if err != nil {
		log.Warn("redis unavailable, keeping adjustments in memory", "addr", cfg.RedisAddr, "err", err)
		return adjust.NewMemory(cfg.AdjustmentTTL), func() {}
	}
	return r, func() { _ = r.Close() }
}
