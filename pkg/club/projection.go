package club

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MonthKey identifies a calendar month. Its text form is "<month>-<year>",
// e.g. "8-2025".
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(t time.Time) MonthKey { return MonthKey{Year: t.Year(), Month: t.Month()} }

func (k MonthKey) String() string { return fmt.Sprintf("%d-%d", int(k.Month), k.Year) }

func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

func (k MonthKey) Valid() bool {
	return k.Month >= time.January && k.Month <= time.December && k.Year > 0
}

// ParseMonthKey accepts "8-2025" and "2025-08".
func ParseMonthKey(s string) (MonthKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthKey{}, fmt.Errorf("invalid month key %q", s)
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q", s)
	}
	k := MonthKey{Year: b, Month: time.Month(a)}
	if len(parts[0]) == 4 {
		k = MonthKey{Year: a, Month: time.Month(b)}
	}
	if !k.Valid() {
		return MonthKey{}, fmt.Errorf("invalid month key %q", s)
	}
	return k, nil
}

var ErrNegativeAdjustment = errors.New("extra inflow and outflow must not be negative")

// Adjustment is a simulated extra movement for one month of the projection.
type Adjustment struct {
	ExtraInflow  decimal.Decimal `json:"extra_inflow"`
	ExtraOutflow decimal.Decimal `json:"extra_outflow"`
}

func (a Adjustment) Validate() error {
	if a.ExtraInflow.IsNegative() || a.ExtraOutflow.IsNegative() {
		return ErrNegativeAdjustment
	}
	return nil
}

// Adjustments maps a month to its simulated extras. Absent months count as zero.
type Adjustments map[MonthKey]Adjustment

// ProjectionRow is one month of the cash-flow forecast.
type ProjectionRow struct {
	Month          MonthKey        `json:"month"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	FixedIncome    decimal.Decimal `json:"fixed_income"`
	ExtraInflow    decimal.Decimal `json:"extra_inflow"`
	ExtraOutflow   decimal.Decimal `json:"extra_outflow"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ProjectionWindow lists the months from now's month through December of the
// same year.
func ProjectionWindow(now time.Time) []MonthKey {
	out := make([]MonthKey, 0, 13-int(now.Month()))
	for m := now.Month(); m <= time.December; m++ {
		out = append(out, MonthKey{Year: now.Year(), Month: m})
	}
	return out
}

// InWindow reports whether k belongs to the projection window of now.
func InWindow(now time.Time, k MonthKey) bool {
	return k.Year == now.Year() && k.Month >= now.Month() && k.Month <= time.December
}

// Project forecasts the treasury balance month by month, starting at the
// month of now and ending in December. Each month adds the fixed income and
// that month's extras to the running balance. No rounding happens here.
func Project(now time.Time, currentBalance, fixedMonthlyIncome decimal.Decimal, adj Adjustments) []ProjectionRow {
	window := ProjectionWindow(now)
	rows := make([]ProjectionRow, 0, len(window))
	running := currentBalance
	for _, k := range window {
		a := adj[k]
		closing := running.Add(fixedMonthlyIncome).Add(a.ExtraInflow).Sub(a.ExtraOutflow)
		rows = append(rows, ProjectionRow{
			Month:          k,
			OpeningBalance: running,
			FixedIncome:    fixedMonthlyIncome,
			ExtraInflow:    a.ExtraInflow,
			ExtraOutflow:   a.ExtraOutflow,
			ClosingBalance: closing,
		})
		running = closing
	}
	return rows
}
