package ocr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var centsRE = regexp.MustCompile(`[.,]\d{2}$`)

// ParseAmount normalizes a matched substring such as "R$ 1.234,56",
// "1,234.56" or "45,9" into a decimal amount. A trailing separator followed
// by one or two digits is the decimal separator; every other separator groups
// thousands.
func ParseAmount(found string) (decimal.Decimal, error) {
	s := strings.TrimSpace(found)
	s = strings.TrimRight(s, ".,")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty")
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}
	var intPart, frac string
	if sep >= 0 {
		tail := onlyDigits(s[sep+1:])
		if len(tail) >= 1 && len(tail) <= 2 && len(s[sep+1:]) == len(tail) {
			intPart, frac = s[:sep], tail
		} else {
			intPart = s
		}
	} else {
		intPart = s
	}
	digits := onlyDigits(intPart)
	if digits == "" {
		digits = "0"
		if frac == "" {
			return decimal.Zero, fmt.Errorf("no digits extracted from %q", found)
		}
	}
	num := digits
	if frac != "" {
		num += "." + frac
	}
	amt, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", num, err)
	}
	return amt.Abs(), nil
}
