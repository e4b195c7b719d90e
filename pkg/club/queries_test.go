package club

import (
	"testing"
	"time"

	"clubdash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() []models.Member {
	return []models.Member{
		{ID: 2, Name: "Carlos Pereira", Status: models.MemberActive},
		{ID: 1, Name: "João da Silva", Status: models.MemberActive},
		{ID: 3, Name: "Pedro Almeida", Status: models.MemberSenior},
	}
}

func TestActiveMemberCountAndIncome(t *testing.T) {
	assert.Equal(t, 2, ActiveMemberCount(roster()))
	assert.Equal(t, 0, ActiveMemberCount(nil))
	assertDec(t, "50", FixedMonthlyIncome(roster(), d("25.00")))
	assertDec(t, "0", FixedMonthlyIncome(nil, d("25.00")))
}

func TestCurrentBalance(t *testing.T) {
	assertDec(t, "0", CurrentBalance(nil))
	txs := []models.Transaction{
		{ID: 1, Kind: models.Inflow, Amount: d("20.00")},
		{ID: 2, Kind: models.Outflow, Amount: d("-15.50")},
		{ID: 3, Kind: models.Inflow, Amount: d("20.00")},
	}
	assertDec(t, "24.5", CurrentBalance(txs))
}

func TestSignedAmount(t *testing.T) {
	v, err := SignedAmount(models.Outflow, d("15.50"))
	require.NoError(t, err)
	assertDec(t, "-15.5", v)

	v, err = SignedAmount(models.Inflow, d("3"))
	require.NoError(t, err)
	assertDec(t, "3", v)

	_, err = SignedAmount(models.Inflow, d("0"))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = SignedAmount(models.Outflow, d("-2"))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = SignedAmount("Refund", d("2"))
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = SignedAmount(models.Inflow, d("0.001"))
	assert.ErrorIs(t, err, ErrAmountPrecision)
	_, err = SignedAmount(models.Outflow, d("1000000000000"))
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	v, err = SignedAmount(models.Inflow, d("12.500"))
	require.NoError(t, err, "trailing zeros fit the column")
	assertDec(t, "12.5", v)
	v, err = SignedAmount(models.Inflow, MaxAmount)
	require.NoError(t, err)
	assertDec(t, "999999999999.99", v)

	assert.NoError(t, CheckSign(models.Transaction{Kind: models.Outflow, Amount: d("-1")}))
	assert.Error(t, CheckSign(models.Transaction{Kind: models.Outflow, Amount: d("1")}))
	assert.ErrorIs(t, CheckSign(models.Transaction{Kind: models.Inflow, Amount: d("0.001")}), ErrAmountPrecision)
}

func TestTotalsForMonth(t *testing.T) {
	txs := []models.Transaction{
		{Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Amount: d("20")},
		{Date: time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), Amount: d("-15.50")},
		{Date: time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), Amount: d("99")},
	}
	tot := TotalsForMonth(txs, MonthKey{Year: 2025, Month: time.July})
	assert.Equal(t, 2, tot.Count)
	assertDec(t, "20", tot.Inflow)
	assertDec(t, "-15.5", tot.Outflow)
	assertDec(t, "4.5", tot.Net())
}

func TestNextUpcomingEvent(t *testing.T) {
	events := []models.Event{
		{ID: 103, Date: time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)},
		{ID: 102, Date: time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)},
		{ID: 104, Date: time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)},
		{ID: 101, Date: time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)},
	}
	e, ok := NextUpcomingEvent(events, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, int64(102), e.ID)

	// An event later on the same day is still upcoming.
	e, ok = NextUpcomingEvent(events, time.Date(2025, 8, 16, 22, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, int64(103), e.ID)

	_, ok = NextUpcomingEvent(events, time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
	_, ok = NextUpcomingEvent(nil, time.Now())
	assert.False(t, ok)
}

func TestDuesReconciliationDefaultsToUnpaid(t *testing.T) {
	members := []models.Member{
		{ID: 1, Name: "A", Status: models.MemberActive},
		{ID: 2, Name: "B", Status: models.MemberActive},
		{ID: 3, Name: "C", Status: models.MemberSenior},
	}
	dues := []models.DuesStatus{{MemberID: 1, Status: models.Paid}, {MemberID: 3, Status: models.Paid}}
	got := DuesReconciliation(members, dues)
	assert.Equal(t, []DuesLine{
		{MemberID: 1, MemberName: "A", Status: models.Paid},
		{MemberID: 2, MemberName: "B", Status: models.Unpaid},
	}, got)
	assert.Empty(t, DuesReconciliation(nil, dues))
}

func TestAttendanceReconciliation(t *testing.T) {
	records := []models.Attendance{
		{EventID: 101, MemberID: 1, Present: true},
		{EventID: 101, MemberID: 3, Present: false},
		{EventID: 101, MemberID: 9, Present: true},
		{EventID: 102, MemberID: 2, Present: true},
	}
	got := AttendanceReconciliation(101, records, roster())
	assert.Equal(t, []AttendanceLine{
		{MemberID: 1, MemberName: "João da Silva", MemberStatus: models.MemberActive, Present: PresentLabel},
		{MemberID: 3, MemberName: "Pedro Almeida", MemberStatus: models.MemberSenior, Present: AbsentLabel},
	}, got)
	assert.Empty(t, AttendanceReconciliation(999, records, roster()))
}

func TestPendingRollCall(t *testing.T) {
	records := []models.Attendance{{EventID: 101, MemberID: 1, Present: true}}
	pending := PendingRollCall(101, roster(), records)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].ID)

	pending = PendingRollCall(102, roster(), records)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(2), pending[1].ID)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, int64(1), NextID(nil))
	assert.Equal(t, int64(6), NextID([]any{1, 3, 5}))
	assert.Equal(t, int64(1), NextID([]any{0, 0}))
	assert.Equal(t, int64(1), NextID([]any{nil, "", "abc"}))
	assert.Equal(t, int64(8), NextID([]any{"7", nil, 2.0, "x"}))
	assert.Equal(t, int64(104), NextID([]any{int64(101), float64(103), "102"}))
	assert.Equal(t, int64(1), NextIDFromInts(nil))
	assert.Equal(t, int64(6), NextIDFromInts([]int64{1, 3, 5}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(d("1234.56")))
	assert.Equal(t, "R$ 0,00", FormatBRL(d("0")))
	assert.Equal(t, "R$ -15,50", FormatBRL(d("-15.5")))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(d("1000000")))
	assert.Equal(t, "09/08/2025", FormatDate(time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Agosto", MonthName(time.August))
	assert.Equal(t, "", MonthName(0))
}
