// Package report prints treasury summaries for the command line.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"clubdash/models"
	"clubdash/pkg/club"
	"clubdash/pkg/store"

	"github.com/shopspring/decimal"
)

// Month writes the inflow, outflow and net of one month and, when list is
// set, every transaction dated in it ordered by date then id.
func Month(ctx context.Context, w io.Writer, s store.Store, key club.MonthKey, list bool) error {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	totals := club.TotalsForMonth(txs, key)

	fmt.Fprintf(w, "Tesouraria %s/%d\n", club.MonthName(key.Month), key.Year)
	fmt.Fprintf(w, "  lançamentos=%d entradas=%s saídas=%s saldo do mês=%s\n",
		totals.Count, club.FormatBRL(totals.Inflow), club.FormatBRL(totals.Outflow), club.FormatBRL(totals.Net()))
	fmt.Fprintf(w, "  saldo atual=%s\n", club.FormatBRL(club.CurrentBalance(txs)))

	if !list {
		return nil
	}
	var rows []models.Transaction
	for _, t := range txs {
		if club.MonthOf(t.Date) == key {
			rows = append(rows, t)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].ID < rows[j].ID
	})
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, club.FormatDate(t.Date), t.Kind, club.FormatBRL(t.Amount), t.Description)
	}
	return tw.Flush()
}

// Projection writes the forecast for the month of now through December with
// no adjustments.
func Projection(ctx context.Context, w io.Writer, s store.Store, rate decimal.Decimal, now time.Time) error {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	members, err := s.Members(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	income := club.FixedMonthlyIncome(members, rate)
	rows := club.Project(now, club.CurrentBalance(txs), income, nil)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Mês\tAbertura\tMensalidades\tEntradas extras\tSaídas extras\tFechamento")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s/%d\t%s\t%s\t%s\t%s\t%s\n", club.MonthName(r.Month.Month), r.Month.Year,
			club.FormatBRL(r.OpeningBalance), club.FormatBRL(r.FixedIncome),
			club.FormatBRL(r.ExtraInflow), club.FormatBRL(r.ExtraOutflow), club.FormatBRL(r.ClosingBalance))
	}
	return tw.Flush()
}
