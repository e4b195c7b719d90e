// Package ocr reads the paid amount off a photographed or scanned receipt.
package ocr

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/shopspring/decimal"
)

// Result is the outcome of reading one receipt.
type Result struct {
	Amount     decimal.Decimal
	Confidence float64
	Raw        string
	Text       string
}

// Recognizer turns an image file into text.
type Recognizer interface {
	Text(path string) (string, error)
}

// Tesseract is the gosseract-backed Recognizer. It runs a full-text pass on
// the preprocessed image and a digits-focused pass on the raw file.
type Tesseract struct {
	Languages []string
}

func (t Tesseract) Text(path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	prepped, err := writeTemp(preprocess(img))
	if err != nil {
		return "", err
	}
	defer os.Remove(prepped)

	client := gosseract.NewClient()
	defer client.Close()
	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}

	var parts []string
	if err := client.SetImage(prepped); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	parts = append(parts, text)

	if err := client.SetWhitelist("0123456789R$.,:TOALVtoalv "); err == nil {
		if err := client.SetImage(path); err == nil {
			if digits, err := client.Text(); err == nil {
				parts = append(parts, digits)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}

func writeTemp(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "receipt-*.png")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := imaging.Save(img, name); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("save preprocessed: %w", err)
	}
	return name, nil
}

// IsImage reports whether the file extension is one the recognizer accepts.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".gif":
		return true
	}
	return false
}

// ExtractAmount reads an image with r and extracts the paid amount.
func ExtractAmount(r Recognizer, path string) (Result, error) {
	text, err := r.Text(path)
	if err != nil {
		return Result{}, err
	}
	return ExtractAmountFromText(text)
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:valor\s+(?:pago|total)|total(?:\s+a\s+pagar)?|valor|pago)\s*:?\s*(?:R\$)?\s*[0-9][0-9.,]*)`),
	regexp.MustCompile(`(?i)(R\$\s*[0-9][0-9.,]*)`),
	regexp.MustCompile(`\b([0-9]{1,3}(?:\.[0-9]{3})+,[0-9]{2})\b`),
	regexp.MustCompile(`\b([0-9]+,[0-9]{2})\b`),
}

var keywordPrefixRE = regexp.MustCompile(`(?i)^[^0-9]*`)

// FindMatches returns every plausible amount-like substring of text. Matches
// keep their currency or total marker so scoring can weigh them.
func FindMatches(text string) []string {
	norm := normalizeOCRText(text)
	seen := map[string]bool{}
	var out []string
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(norm, -1) {
			raw := strings.TrimRight(strings.TrimSpace(m[1]), ".,:")
			if raw == "" || seen[raw] || !isPlausibleAmount(raw) {
				continue
			}
			seen[raw] = true
			out = append(out, raw)
		}
	}
	return out
}

// ExtractAmountFromText picks the most likely paid amount out of OCR text.
func ExtractAmountFromText(text string) (Result, error) {
	matches := FindMatches(text)
	amt, raw, ok := BestAmountFromMatches(matches)
	if !ok {
		return Result{Text: text}, fmt.Errorf("%w: %q", ErrNoAmount, snippet(normalizeOCRText(text), 80))
	}
	return Result{Amount: amt, Confidence: confidence(raw), Raw: raw, Text: text}, nil
}

// amountOnly strips a keyword prefix such as "TOTAL R$" from a match.
func amountOnly(raw string) string {
	return keywordPrefixRE.ReplaceAllString(raw, "")
}

func confidence(raw string) float64 {
	c := 0.4
	if hasCurrencyHint(raw) {
		c += 0.25
	}
	if hasTotalHint(raw) {
		c += 0.2
	}
	if centsRE.MatchString(amountOnly(raw)) {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return c
}
