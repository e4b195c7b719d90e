package receipts

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"clubdash/pkg/ocr"

	"github.com/fsnotify/fsnotify"
)

// ListImages returns the supported image files directly inside dir, sorted.
func ListImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupported(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupported(name string) bool {
	// ignore temp files written by other tools
	if strings.HasPrefix(name, ".") || strings.Contains(name, ".ocr.") {
		return false
	}
	return ocr.IsImage(name)
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

// Run ingests every name received on names (relative to dir) with a pool of
// workers until names is closed or ctx is done. It returns the number of
// files processed per outcome.
func (in *Ingester) Run(ctx context.Context, dir string, names <-chan string, workers int) map[Outcome]int {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = map[Outcome]int{}
	)
	for i := 0; i < effectiveWorkers(workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case name, ok := <-names:
					if !ok {
						return
					}
					_, o, err := in.Ingest(ctx, filepath.Join(dir, name), "")
					if err != nil {
						in.logger().Error("ingest receipt", "file", name, "err", err)
						continue
					}
					mu.Lock()
					out[o]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return out
}

// Scan ingests the images currently in dir.
func (in *Ingester) Scan(ctx context.Context, dir string, workers int) map[Outcome]int {
	files := ListImages(dir)
	ch := make(chan string, len(files))
	for _, f := range files {
		ch <- f
	}
	close(ch)
	return in.Run(ctx, dir, ch, workers)
}

// Watch feeds newly created images in dir to a worker pool until ctx is done.
// Events are debounced so files still being written are not read early.
func (in *Ingester) Watch(ctx context.Context, dir string, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	in.logger().Info("watching receipts", "dir", dir)

	fileCh := make(chan string, 256)
	go func() {
		defer close(fileCh)
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					name := filepath.Base(ev.Name)
					if isSupported(name) {
						pending[name] = time.Now()
					}
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				in.logger().Warn("watch error", "err", err)
			}
		}
	}()

	in.Run(ctx, dir, fileCh, workers)
	return nil
}
