package receipts

import (
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const maxArchivedBytes = 1_000_000

// moveToProcessed moves src into dir, downscaling images above
// maxArchivedBytes. It attempts an atomic rename and falls back to
// copy+remove when necessary.
func moveToProcessed(src, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, filepath.Base(src))

	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if fi.Size() <= maxArchivedBytes {
		return rename(src, dst)
	}
	img, err := imaging.Open(src)
	if err != nil {
		return rename(src, dst)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxArchivedBytes) / float64(fi.Size()))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	img = imaging.Resize(img, w, 0, imaging.Lanczos)
	if err := imaging.Save(img, dst); err != nil {
		return rename(src, dst)
	}
	return os.Remove(src)
}

func rename(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
