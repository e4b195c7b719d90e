package ocr

import "strings"

// isPlausibleAmount decides whether a matched substring looks like money
// rather than a CNPJ, phone number or authorisation code. Currency markers and
// a cents part are strong hints; long bare digit runs are rejected.
func isPlausibleAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	d := onlyDigits(s)
	if d == "" {
		return false
	}
	if hasCurrencyHint(s) || hasTotalHint(s) {
		return len(d) <= 10
	}
	if centsRE.MatchString(s) {
		return len(d) <= 10
	}
	// bare integers: accept short values only
	if d[0] == '0' || len(d) > 5 {
		return false
	}
	return len(d) >= 2
}
