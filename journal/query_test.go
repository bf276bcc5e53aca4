package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/market"
)

func mustInstrument(t *testing.T, symbol string) market.Instrument {
	t.Helper()
	inst, ok := market.Lookup(symbol)
	require.True(t, ok, symbol)
	return inst
}

func instrument(symbol string, tick, value float64) market.Instrument {
	return market.Instrument{Symbol: symbol, TickSize: tick, TickValue: value}
}

func seedTrades(t *testing.T, s *Store, trades ...Trade) []Trade {
	t.Helper()
	out := make([]Trade, 0, len(trades))
	for _, tr := range trades {
		tr := tr
		require.NoError(t, s.CreateTrade(context.Background(), &tr))
		out = append(out, tr)
	}
	return out
}

func TestGetTradeNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	_, err := s.GetTrade(context.Background(), testUser, "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestListTradesOrdering(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	base := time.Date(2024, 4, 10, 14, 0, 0, 0, time.UTC)

	seeded := seedTrades(t, s,
		closedTrade("NQ", Long, 18000, 18010, base.Add(2*time.Hour)),
		closedTrade("ES", Long, 5000, 5001, base),
		closedTrade("CL", Short, 80, 79.5, base.Add(time.Hour)),
	)

	got, err := s.ListTrades(context.Background(), Filter{UserID: testUser})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, seeded[1].ID, got[0].ID)
	assert.Equal(t, seeded[2].ID, got[1].ID)
	assert.Equal(t, seeded[0].ID, got[2].ID)
}

func TestListTradesFilters(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	acct := &Account{UserID: testUser, Name: "Combine"}
	require.NoError(t, s.CreateAccount(ctx, acct))

	day1 := time.Date(2024, 4, 10, 14, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	a := closedTrade("ES", Long, 5000, 5001, day1)
	a.AccountID = acct.ID
	a.Setup = "ORB"
	b := closedTrade("NQ", Long, 18000, 18010, day2)
	b.Setup = "VWAP reclaim"
	open := Trade{UserID: testUser, Symbol: "ES", Side: Long, EntryPrice: 5002, EntryTime: day2, Contracts: 1}
	other := closedTrade("ES", Long, 5000, 5001, day1)
	other.UserID = "user-2"
	seedTrades(t, s, a, b, open, other)

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"all of user", Filter{UserID: testUser}, 3},
		{"account", Filter{UserID: testUser, AccountID: acct.ID}, 1},
		{"symbol normalized", Filter{UserID: testUser, Symbol: "esm24"}, 2},
		{"setup case-insensitive", Filter{UserID: testUser, Setup: "orb"}, 1},
		{"from inclusive", Filter{UserID: testUser, From: day2}, 2},
		{"to exclusive", Filter{UserID: testUser, To: day2}, 1},
		{"closed only", Filter{UserID: testUser, ClosedOnly: true}, 2},
		{"limit", Filter{UserID: testUser, Limit: 2}, 2},
		{"offset", Filter{UserID: testUser, Limit: 2, Offset: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTrades(ctx, tt.f)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestListTradesEmptyIsNotNil(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	got, err := s.ListTrades(context.Background(), Filter{UserID: testUser})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	start := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	// Exits land at entry + 10m.
	before := closedTrade("ES", Long, 5000, 5001, start.Add(-20*time.Minute))
	atStart := closedTrade("ES", Long, 5000, 5001, start.Add(-10*time.Minute))
	inside := closedTrade("NQ", Long, 18000, 18001, start.Add(5*time.Hour))
	atEnd := closedTrade("CL", Long, 80, 81, end.Add(-10*time.Minute))
	seeded := seedTrades(t, s, before, atStart, inside, atEnd)

	got, err := s.ListTradesClosedBetween(context.Background(), testUser, start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, seeded[1].ID, got[0].ID, "start is inclusive")
	assert.Equal(t, seeded[2].ID, got[1].ID)
}

func TestListTradesClosedBetweenSkipsDeleted(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	seeded := seedTrades(t, s, closedTrade("ES", Long, 5000, 5001, start.Add(time.Hour)))
	require.NoError(t, s.SoftDeleteTrade(ctx, testUser, seeded[0].ID))

	got, err := s.ListTradesClosedBetween(ctx, testUser, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}
