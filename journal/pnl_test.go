package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/market"
)

func TestComputePnL(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		trade     Trade
		symbol    string
		wantGross float64
		wantNet   float64
		wantR     *float64
	}{
		{
			name:      "ES long winner",
			trade:     Trade{Side: Long, EntryPrice: 5000, ExitPrice: 5002.5, Contracts: 2, Commission: 5},
			symbol:    "ES",
			wantGross: 250,
			wantNet:   245,
		},
		{
			name:      "NQ short winner",
			trade:     Trade{Side: Short, EntryPrice: 18000, ExitPrice: 17990, Contracts: 1, Commission: 2.5, Fees: 1.5},
			symbol:    "NQ",
			wantGross: 200,
			wantNet:   196,
		},
		{
			name:      "CL long loser with stop",
			trade:     Trade{Side: Long, EntryPrice: 80, ExitPrice: 79.8, StopLoss: 79.8, Contracts: 1},
			symbol:    "CL",
			wantGross: -200,
			wantNet:   -200,
			wantR:     ptr(-1.0),
		},
		{
			name:      "MES short loser",
			trade:     Trade{Side: Short, EntryPrice: 5000, ExitPrice: 5001, Contracts: 3},
			symbol:    "MES",
			wantGross: -15,
			wantNet:   -15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.trade
			tr.EntryTime = at
			tr.ExitTime = at.Add(time.Minute)
			ComputePnL(&tr, mustInstrument(t, tt.symbol))

			assert.InDelta(t, tt.wantGross, tr.GrossPnL, 1e-9)
			assert.InDelta(t, tt.wantNet, tr.NetPnL, 1e-9)
			if tt.wantR == nil {
				assert.Nil(t, tr.RMultiple)
				return
			}
			require.NotNil(t, tr.RMultiple)
			assert.InDelta(t, *tt.wantR, *tr.RMultiple, 1e-9)
		})
	}
}

func TestComputePnLOpenTrade(t *testing.T) {
	t.Parallel()

	tr := Trade{Side: Long, EntryPrice: 5000, Contracts: 1, GrossPnL: 99, NetPnL: 99, EntryTime: time.Now()}
	ComputePnL(&tr, mustInstrument(t, "ES"))

	assert.Zero(t, tr.GrossPnL)
	assert.Zero(t, tr.NetPnL)
	assert.Nil(t, tr.RMultiple)
}

func TestComputePnLRoundsToCents(t *testing.T) {
	t.Parallel()

	at := time.Now()
	tr := Trade{Side: Long, EntryPrice: 1.1, ExitPrice: 1.3, Contracts: 1, EntryTime: at, ExitTime: at}
	ComputePnL(&tr, market.Instrument{TickSize: 1, TickValue: 1})

	assert.Equal(t, 0.2, tr.GrossPnL)
}

func TestRecalculateNormalizesSymbol(t *testing.T) {
	t.Parallel()

	at := time.Now()
	tr := Trade{Symbol: "/MNQZ4", Side: Long, EntryPrice: 100, ExitPrice: 110, Contracts: 1, EntryTime: at, ExitTime: at}
	Recalculate(&tr, market.NewResolver(nil))

	assert.Equal(t, "MNQ", tr.Symbol)
	assert.InDelta(t, 20.0, tr.GrossPnL, 1e-9)
}

func TestRecalculateKeepsReportedPnL(t *testing.T) {
	t.Parallel()

	at := time.Now()
	tr := Trade{Symbol: "NQ", Side: Long, EntryPrice: 18000, Contracts: 1, EntryTime: at, ExitTime: at,
		GrossPnL: 250, NetPnL: 250, PnLSource: PnLReported}
	Recalculate(&tr, market.NewResolver(nil))

	assert.InDelta(t, 250.0, tr.NetPnL, 1e-9)
	assert.Equal(t, PnLReported, tr.PnLSource)
}

func TestRevise(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	reported := Trade{Symbol: "FOO", Side: Long, EntryPrice: 10, ExitPrice: 12, Contracts: 1,
		EntryTime: at, ExitTime: at.Add(time.Minute), GrossPnL: 150, NetPnL: 150, PnLSource: PnLReported}
	foo := market.NewResolver([]market.Instrument{{Symbol: "FOO", TickSize: 0.5, TickValue: 25}})

	tests := []struct {
		name     string
		resolver *market.Resolver
		edit     func(*Trade)
		wantNet  float64
		wantFrom PnLSource
	}{
		{"annotation keeps reported", foo, func(t *Trade) { t.Notes = "late"; t.Tags = []string{"a"} }, 150, PnLReported},
		{"price edit on unknown instrument keeps reported", market.NewResolver(nil), func(t *Trade) { t.ExitPrice = 13 }, 150, PnLReported},
		{"price edit without exit time keeps reported", foo, func(t *Trade) { t.ExitPrice = 13; t.ExitTime = time.Time{} }, 150, PnLReported},
		{"price edit on known instrument recomputes", foo, func(t *Trade) { t.ExitPrice = 12.5 }, 125, PnLComputed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := reported
			tt.edit(&tr)
			Revise(reported, &tr, tt.resolver)
			assert.InDelta(t, tt.wantNet, tr.NetPnL, 1e-9)
			assert.Equal(t, tt.wantFrom, tr.PnLSource)
		})
	}

	computed := Trade{Symbol: "ES", Side: Long, EntryPrice: 5000, ExitPrice: 5002, Contracts: 1,
		EntryTime: at, ExitTime: at.Add(time.Minute), PnLSource: PnLComputed}
	edited := computed
	edited.Commission = 5
	Revise(computed, &edited, market.NewResolver(nil))
	assert.InDelta(t, 95.0, edited.NetPnL, 1e-9)
}

func TestTradeOutcome(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	win := Trade{EntryPrice: 1, ExitPrice: 2, EntryTime: at, ExitTime: at.Add(3 * time.Minute), NetPnL: 10}
	loss := Trade{EntryPrice: 1, ExitPrice: 2, EntryTime: at, ExitTime: at, NetPnL: -10}
	open := Trade{EntryPrice: 1, EntryTime: at, NetPnL: 10}
	noExitTime := Trade{EntryPrice: 1, ExitPrice: 2, EntryTime: at, NetPnL: 10}
	assert.True(t, noExitTime.IsOpen())
	assert.Zero(t, noExitTime.HoldDuration())

	assert.True(t, win.IsWin())
	assert.False(t, win.IsLoss())
	assert.True(t, loss.IsLoss())
	assert.False(t, open.IsWin())
	assert.Equal(t, 3*time.Minute, win.HoldDuration())
	assert.Zero(t, open.HoldDuration())
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"long", "BUY", " b ", "Bot"} {
		s, err := ParseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, Long, s)
	}
	for _, in := range []string{"short", "Sell", "SLD", "s"} {
		s, err := ParseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, Short, s)
	}
	_, err := ParseSide("flat")
	assert.Error(t, err)
}

func ptr(f float64) *float64 { return &f }
