package receipts

import (
	"context"
	"os"
)

// RetryFailed runs OCR again on stored receipts that are still marked as
// failed and whose file is still on disk.
func (in *Ingester) RetryFailed(ctx context.Context, workers int) (map[Outcome]int, error) {
	list, err := in.Store.FailedReceipts(ctx)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, r := range list {
		if !r.Failed || r.TransactionID != nil || r.StorePath == "" {
			continue
		}
		if _, err := os.Stat(r.StorePath); err != nil {
			in.logger().Warn("failed receipt file missing", "file", r.FileName, "path", r.StorePath)
			continue
		}
		paths = append(paths, r.StorePath)
	}
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)
	return in.Run(ctx, "", ch, workers), nil
}
