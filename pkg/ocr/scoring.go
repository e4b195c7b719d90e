package ocr

import (
	"github.com/shopspring/decimal"
)

// BestAmountFromMatches selects the best amount using scoring priorities:
// currency marker, total/valor context, cents part, then the larger value.
func BestAmountFromMatches(matches []string) (decimal.Decimal, string, bool) {
	type cand struct {
		amt   decimal.Decimal
		raw   string
		score int
	}
	scoreFor := func(raw string) int {
		s := 0
		if hasCurrencyHint(raw) {
			s += 10
		}
		if hasTotalHint(raw) {
			s += 8
		}
		if centsRE.MatchString(raw) {
			s += 5
		}
		if len(onlyDigits(raw)) >= 3 {
			s++
		}
		return s
	}
	var best *cand
	for _, m := range matches {
		amt, err := ParseAmount(m)
		if err != nil || !amt.IsPositive() {
			continue
		}
		c := cand{amt: amt, raw: m, score: scoreFor(m)}
		if best == nil {
			best = &c
			continue
		}
		switch {
		case c.score > best.score:
			best = &c
		case c.score == best.score && c.amt.GreaterThan(best.amt):
			best = &c
		case c.score == best.score && c.amt.Equal(best.amt) && len(c.raw) > len(best.raw):
			best = &c
		}
	}
	if best == nil {
		return decimal.Zero, "", false
	}
	return best.amt, best.raw, true
}
