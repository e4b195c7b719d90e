package adjust

import (
	"context"
	"os"
	"testing"
	"time"

	"clubdash/pkg/club"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sep = club.MonthKey{Year: 2025, Month: time.September}

func exercise(t *testing.T, s Store) {
	ctx := context.Background()
	got, err := s.Get(ctx, "sid-a")
	require.NoError(t, err)
	assert.Empty(t, got)

	a := club.Adjustment{ExtraInflow: decimal.RequireFromString("20.00"), ExtraOutflow: decimal.RequireFromString("5")}
	require.NoError(t, s.Set(ctx, "sid-a", sep, a))

	got, err = s.Get(ctx, "sid-a")
	require.NoError(t, err)
	require.Contains(t, got, sep)
	assert.True(t, a.ExtraInflow.Equal(got[sep].ExtraInflow))
	assert.True(t, a.ExtraOutflow.Equal(got[sep].ExtraOutflow))

	other, err := s.Get(ctx, "sid-b")
	require.NoError(t, err)
	assert.Empty(t, other, "sessions do not share adjustments")

	require.NoError(t, s.Reset(ctx, "sid-a"))
	got, err = s.Get(ctx, "sid-a")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory(time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(context.Background(), "sid", sep, club.Adjustment{ExtraInflow: decimal.NewFromInt(1)}))

	now = now.Add(2 * time.Minute)
	got, err := m.Get(context.Background(), "sid")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemorySetSweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	one := club.Adjustment{ExtraInflow: decimal.NewFromInt(1)}
	require.NoError(t, m.Set(ctx, "gone-1", sep, one))
	require.NoError(t, m.Set(ctx, "gone-2", sep, one))

	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Set(ctx, "active", sep, one))
	assert.Len(t, m.m, 1)
	assert.Contains(t, m.m, "active")
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory(time.Hour)
	require.NoError(t, m.Set(context.Background(), "sid", sep, club.Adjustment{ExtraInflow: decimal.NewFromInt(1)}))
	got, _ := m.Get(context.Background(), "sid")
	delete(got, sep)
	again, _ := m.Get(context.Background(), "sid")
	assert.Contains(t, again, sep)
}

// Redis tests are opt-in. Set REDIS_TEST_ADDR to run them.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("redis tests are disabled; set REDIS_TEST_ADDR to enable")
	}
	s, err := NewRedis(RedisConfig{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()
	s.prefix = "clubdash:test:" + t.Name() + ":"
	exercise(t, s)
}
