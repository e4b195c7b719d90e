package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"clubdash/pkg/club"
	"clubdash/pkg/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.August, 3, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) store.Store {
	t.Helper()
	db := store.NewSQLiteTestDB(t)
	ok, err := store.SeedDemo(context.Background(), db, fixedNow)
	require.NoError(t, err)
	require.True(t, ok)
	return store.NewGorm(db)
}

func TestMonthReport(t *testing.T) {
	s := seeded(t)
	var buf bytes.Buffer
	require.NoError(t, Month(context.Background(), &buf, s, club.MonthKey{Year: 2025, Month: time.August}, true))
	out := buf.String()
	assert.Contains(t, out, "Tesouraria Agosto/2025")
	assert.Contains(t, out, "lançamentos=3")
	assert.Contains(t, out, "entradas=R$ 40,00")
	assert.Contains(t, out, "saídas=R$ -15,50")
	assert.Contains(t, out, "saldo do mês=R$ 24,50")
	assert.Contains(t, out, "Compra de materiais")
	assert.Contains(t, out, "05/08/2025")
	// header + balance + three rows
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)
}

func TestMonthReportEmptyMonth(t *testing.T) {
	s := seeded(t)
	var buf bytes.Buffer
	require.NoError(t, Month(context.Background(), &buf, s, club.MonthKey{Year: 2025, Month: time.March}, true))
	assert.Contains(t, buf.String(), "lançamentos=0")
	assert.Contains(t, buf.String(), "saldo atual=R$ 24,50")
}

func TestProjectionReport(t *testing.T) {
	s := seeded(t)
	var buf bytes.Buffer
	require.NoError(t, Projection(context.Background(), &buf, s, decimal.RequireFromString("25"), fixedNow))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "Agosto/2025")
	assert.Contains(t, lines[1], "R$ 24,50")
	assert.Contains(t, lines[1], "R$ 99,50")
	assert.Contains(t, lines[5], "Dezembro/2025")
	assert.Contains(t, lines[5], "R$ 399,50")
}
