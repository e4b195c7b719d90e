// Package receipts turns receipt images into treasury Outflow transactions.
// It is shared by the upload endpoint and the directory watcher.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"clubdash/models"
	"clubdash/pkg/club"
	"clubdash/pkg/metrics"
	"clubdash/pkg/ocr"
	"clubdash/pkg/store"
)

// Outcome of a single ingestion, also used as the metrics label.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeFailed    Outcome = "failed"
	OutcomeDuplicate Outcome = "duplicate"
)

// ExtractFunc reads the paid amount from an image file.
type ExtractFunc func(path string) (ocr.Result, error)

// TesseractExtractor returns an ExtractFunc backed by gosseract.
func TesseractExtractor(langs ...string) ExtractFunc {
	r := ocr.Tesseract{Languages: langs}
	return func(path string) (ocr.Result, error) { return ocr.ExtractAmount(r, path) }
}

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

type Ingester struct {
	Store         store.Store
	Extract       ExtractFunc
	MinConfidence float64
	Metrics       *metrics.Registry
	Log           *slog.Logger
	Now           func() time.Time
	// ProcessedDir, when set, receives files whose transaction was created.
	ProcessedDir string
}

func (in *Ingester) logger() *slog.Logger {
	if in.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return in.Log
}

func (in *Ingester) now() time.Time {
	if in.Now == nil {
		return time.Now()
	}
	return in.Now()
}

func (in *Ingester) count(o Outcome) {
	if in.Metrics != nil {
		in.Metrics.Receipt(string(o))
	}
}

// Ingest processes the image at path. A receipt already linked to a
// transaction is left untouched and reported as a duplicate; a receipt whose
// amount cannot be read is stored as failed and retried on the next call.
func (in *Ingester) Ingest(ctx context.Context, path, uploadedBy string) (models.Receipt, Outcome, error) {
	name := filepath.Base(path)
	log := in.logger().With("file", name)

	r, err := in.Store.ReceiptByFileName(ctx, name)
	switch {
	case err == nil && r.TransactionID != nil:
		log.Debug("skip receipt already linked", "transaction_id", *r.TransactionID)
		in.count(OutcomeDuplicate)
		return r, OutcomeDuplicate, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return models.Receipt{}, "", err
	case err != nil:
		r = models.Receipt{FileName: name}
	}
	r.StorePath = filepath.ToSlash(path)
	r.ContentType = extMime[strings.ToLower(filepath.Ext(name))]
	if uploadedBy != "" {
		r.UploadedBy = uploadedBy
	}

	res, exErr := in.Extract(path)
	reason := ""
	switch {
	case exErr != nil:
		reason = exErr.Error()
	case !res.Amount.IsPositive():
		reason = "no amount detected"
	case res.Confidence < in.MinConfidence:
		reason = fmt.Sprintf("low confidence %.2f for %s", res.Confidence, res.Raw)
	}
	if reason != "" {
		if len(reason) > 255 {
			reason = reason[:255]
		}
		r.Failed = true
		r.FailedReason = reason
		if err := in.Store.SaveReceipt(ctx, &r, nil); err != nil {
			return models.Receipt{}, "", err
		}
		log.Info("receipt failed", "reason", reason)
		in.count(OutcomeFailed)
		return r, OutcomeFailed, nil
	}

	tx := models.Transaction{
		Date:        club.Day(in.now()),
		Description: "Recibo " + name,
		Kind:        models.Outflow,
		Amount:      res.Amount.Neg(),
	}
	if err := in.Store.SaveReceipt(ctx, &r, &tx); err != nil {
		return models.Receipt{}, "", err
	}
	log.Info("receipt linked", "transaction_id", tx.ID, "amount", club.FormatBRL(tx.Amount), "confidence", res.Confidence)
	in.count(OutcomeCreated)

	if in.ProcessedDir != "" {
		if err := moveToProcessed(path, in.ProcessedDir); err != nil {
			log.Warn("failed to move processed file", "err", err)
		}
	}
	return r, OutcomeCreated, nil
}
