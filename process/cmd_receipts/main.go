package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"clubdash/pkg/config"
	"clubdash/pkg/metrics"
	"clubdash/pkg/store"
	"clubdash/process/receipts"

	"gorm.io/gorm"
)

// Scans a directory of receipt images, records a Receipt row per file and an
// Outflow transaction for every amount read, optionally watching for new files.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr)

	dir := flag.String("dir", cfg.UploadBase, "directory to scan for receipt images")
	processed := flag.String("processed", "", "move linked receipts into this directory")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	lang := flag.String("lang", "por", "tesseract language")
	retry := flag.Bool("retry-failed", false, "run OCR again on receipts previously marked as failed")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9101)")
	flag.Parse()

	db, err := store.Open(cfg.DSN, &gorm.Config{})
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if *metricsAddr != "" {
		serveMetrics(ctx, metricsServer(*metricsAddr, m), log)
	}

	in := &receipts.Ingester{
		Store:         store.NewGorm(db, store.WithLogger(log), store.WithChangeHook(m.Mutation)),
		Extract:       receipts.TesseractExtractor(*lang),
		MinConfidence: cfg.OCRMinConfidence,
		Metrics:       m,
		Log:           log,
		ProcessedDir:  *processed,
	}

	if *retry {
		got, err := in.RetryFailed(ctx, *workers)
		if err != nil {
			log.Error("retry failed receipts", "err", err)
			os.Exit(1)
		}
		log.Info("retry finished", "created", got[receipts.OutcomeCreated], "failed", got[receipts.OutcomeFailed])
	}

	got := in.Scan(ctx, *dir, *workers)
	log.Info("scan finished", "dir", *dir,
		"created", got[receipts.OutcomeCreated],
		"failed", got[receipts.OutcomeFailed],
		"duplicate", got[receipts.OutcomeDuplicate])

	if *watch {
		if err := in.Watch(ctx, *dir, *workers); err != nil {
			log.Error("watch failed", "err", err)
			os.Exit(1)
		}
	}
}
