package club

import (
	"errors"
	"fmt"
	"time"

	"clubdash/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrUnknownKind       = errors.New("unknown transaction kind")
	ErrAmountPrecision   = errors.New("amount must have at most two decimal places")
	ErrAmountTooLarge    = errors.New("amount is too large")
)

// MaxAmount is the largest magnitude the ledger column holds (decimal(14,2)).
var MaxAmount = decimal.RequireFromString("999999999999.99")

// CheckAmount rejects magnitudes the ledger cannot store exactly.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s", ErrAmountPrecision, amount)
	}
	if amount.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, amount)
	}
	return nil
}

// SignedAmount turns the positive amount typed into a form into the signed
// value stored on the ledger.
func SignedAmount(kind models.TransactionKind, amount decimal.Decimal) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	if err := CheckAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if kind == models.Outflow {
		return amount.Neg(), nil
	}
	return amount, nil
}

// CheckSign reports whether the stored amount agrees with the transaction kind.
func CheckSign(t models.Transaction) error {
	if err := CheckAmount(t.Amount); err != nil {
		return err
	}
	switch t.Kind {
	case models.Inflow:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("inflow %d has non-positive amount %s", t.ID, t.Amount)
		}
	case models.Outflow:
		if !t.Amount.IsNegative() {
			return fmt.Errorf("outflow %d has non-negative amount %s", t.ID, t.Amount)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	return nil
}

// CurrentBalance sums every ledger line regardless of its date.
func CurrentBalance(txs []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// MonthTotals is the treasury movement of one calendar month.
type MonthTotals struct {
	Month   MonthKey
	Count   int
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
}

func (m MonthTotals) Net() decimal.Decimal { return m.Inflow.Add(m.Outflow) }

// TotalsForMonth aggregates the transactions dated inside key. Outflow keeps
// its negative sign.
func TotalsForMonth(txs []models.Transaction, key MonthKey) MonthTotals {
	out := MonthTotals{Month: key, Inflow: decimal.Zero, Outflow: decimal.Zero}
	for _, t := range txs {
		if t.Date.Year() != key.Year || t.Date.Month() != key.Month {
			continue
		}
		out.Count++
		if t.Amount.IsNegative() {
			out.Outflow = out.Outflow.Add(t.Amount)
		} else {
			out.Inflow = out.Inflow.Add(t.Amount)
		}
	}
	return out
}

// Day truncates t to its calendar day, expressed as UTC midnight so it can be
// compared with stored date columns.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
