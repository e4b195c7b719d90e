package club

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s got %s %v", want, got, msg)
}

var august = time.Date(2025, time.August, 14, 10, 30, 0, 0, time.UTC)

func TestProjectLengthFollowsCurrentMonth(t *testing.T) {
	rows := Project(august, d("0"), d("0"), nil)
	require.Len(t, rows, 5)
	assert.Equal(t, MonthKey{Year: 2025, Month: time.August}, rows[0].Month)
	assert.Equal(t, MonthKey{Year: 2025, Month: time.December}, rows[4].Month)

	dec := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	rows = Project(dec, d("10"), d("5"), nil)
	require.Len(t, rows, 1)
	assert.Equal(t, time.December, rows[0].Month.Month)

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Len(t, Project(jan, d("0"), d("0"), nil), 12)
}

func TestProjectRunningBalance(t *testing.T) {
	rows := Project(august, d("100.00"), d("50.00"), nil)
	want := [][2]string{{"100", "150"}, {"150", "200"}, {"200", "250"}, {"250", "300"}, {"300", "350"}}
	require.Len(t, rows, len(want))
	for i, w := range want {
		assertDec(t, w[0], rows[i].OpeningBalance, rows[i].Month)
		assertDec(t, w[1], rows[i].ClosingBalance, rows[i].Month)
		assertDec(t, "50", rows[i].FixedIncome)
	}
}

func TestProjectAdjustmentPropagates(t *testing.T) {
	adj := Adjustments{
		{Year: 2025, Month: time.September}: {ExtraInflow: d("20.00"), ExtraOutflow: d("5.00")},
	}
	rows := Project(august, d("100.00"), d("50.00"), adj)
	require.Len(t, rows, 5)
	assertDec(t, "150", rows[0].ClosingBalance)
	assertDec(t, "215", rows[1].ClosingBalance)
	assertDec(t, "20", rows[1].ExtraInflow)
	assertDec(t, "5", rows[1].ExtraOutflow)
	assertDec(t, "215", rows[2].OpeningBalance)
	assertDec(t, "365", rows[4].ClosingBalance)
}

func TestProjectIgnoresMonthsOutsideWindow(t *testing.T) {
	adj := Adjustments{
		{Year: 2025, Month: time.July}:    {ExtraInflow: d("1000")},
		{Year: 2026, Month: time.January}: {ExtraOutflow: d("1000")},
	}
	rows := Project(august, d("0"), d("0"), adj)
	assertDec(t, "0", rows[len(rows)-1].ClosingBalance)
}

func TestProjectIsDeterministic(t *testing.T) {
	adj := Adjustments{{Year: 2025, Month: time.October}: {ExtraInflow: d("0.10"), ExtraOutflow: d("0.20")}}
	first := Project(august, d("1.10"), d("0.30"), adj)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Project(august, d("1.10"), d("0.30"), adj))
	}
}

func TestProjectKeepsFractionalPrecision(t *testing.T) {
	rows := Project(august, d("0"), d("0.005"), nil)
	assertDec(t, "0.025", rows[4].ClosingBalance)
	assert.Equal(t, "R$ 0,03", FormatBRL(rows[4].ClosingBalance))
}

func TestProjectWithoutIncome(t *testing.T) {
	adj := Adjustments{{Year: 2025, Month: time.November}: {ExtraOutflow: d("40")}}
	rows := Project(august, d("100"), decimal.Zero, adj)
	assertDec(t, "100", rows[2].ClosingBalance)
	assertDec(t, "60", rows[3].ClosingBalance)
	assertDec(t, "60", rows[4].ClosingBalance)
}

func TestParseMonthKey(t *testing.T) {
	k, err := ParseMonthKey("8-2025")
	require.NoError(t, err)
	assert.Equal(t, MonthKey{Year: 2025, Month: time.August}, k)
	assert.Equal(t, "8-2025", k.String())

	k, err = ParseMonthKey("2025-09")
	require.NoError(t, err)
	assert.Equal(t, MonthKey{Year: 2025, Month: time.September}, k)

	for _, bad := range []string{"", "13-2025", "2025", "x-2025", "0-2025"} {
		_, err := ParseMonthKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestInWindow(t *testing.T) {
	assert.True(t, InWindow(august, MonthKey{Year: 2025, Month: time.August}))
	assert.True(t, InWindow(august, MonthKey{Year: 2025, Month: time.December}))
	assert.False(t, InWindow(august, MonthKey{Year: 2025, Month: time.July}))
	assert.False(t, InWindow(august, MonthKey{Year: 2026, Month: time.August}))
}

func TestAdjustmentValidate(t *testing.T) {
	assert.NoError(t, Adjustment{ExtraInflow: d("0"), ExtraOutflow: d("3")}.Validate())
	assert.ErrorIs(t, Adjustment{ExtraInflow: d("-1")}.Validate(), ErrNegativeAdjustment)
}
