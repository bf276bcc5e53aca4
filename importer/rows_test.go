package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

func parseCSV(t *testing.T, data string, opt Options) *Preview {
	t.Helper()
	p, err := Parse(strings.NewReader(data), opt)
	require.NoError(t, err)
	return p
}

func onlyRow(t *testing.T, p *Preview) RowResult {
	t.Helper()
	require.Len(t, p.Rows, 1)
	return p.Rows[0]
}

func TestNormalizeTradovateFills(t *testing.T) {
	t.Parallel()

	data := strings.Join(tradovateHeader, ",") + "\n" +
		`MESZ4,-3,2,0.25,1,2,2,5000.25,5002.75,$25.00,12/02/2024 09:31:05,12/02/2024 09:35:10,4min` + "\n" +
		`MNQZ4,-3,2,0.25,3,4,1,20990.00,21000.00,$20.00,12/02/2024 10:05:00,12/02/2024 10:01:00,4min` + "\n"

	p := parseCSV(t, data, Options{UserID: "u1", DefaultCommissionPerContract: 0.62})
	require.Len(t, p.Rows, 2)
	assert.Equal(t, 2, p.Valid)

	long := p.Rows[0]
	require.True(t, long.OK(), long.Errors)
	lt := long.Trade
	assert.Equal(t, "MES", lt.Symbol)
	assert.Equal(t, journal.Long, lt.Side)
	assert.Equal(t, 2, lt.Contracts)
	assert.Equal(t, 5000.25, lt.EntryPrice)
	assert.Equal(t, 5002.75, lt.ExitPrice)
	assert.Equal(t, time.Date(2024, 12, 2, 9, 31, 5, 0, time.UTC), lt.EntryTime)
	assert.Equal(t, time.Date(2024, 12, 2, 9, 35, 10, 0, time.UTC), lt.ExitTime)
	assert.InDelta(t, 1.24, lt.Commission, 1e-9)
	assert.InDelta(t, 25.0, lt.GrossPnL, 1e-9)
	assert.InDelta(t, 23.76, lt.NetPnL, 1e-9)
	assert.Equal(t, journal.SourceImport, lt.Source)
	assert.Equal(t, "u1", lt.UserID)
	assert.Contains(t, long.Warnings, "side inferred from bought before sold")
	assert.Contains(t, long.Warnings, `symbol "MESZ4" normalized to MES`)

	short := p.Rows[1]
	require.True(t, short.OK(), short.Errors)
	st := short.Trade
	assert.Equal(t, "MNQ", st.Symbol)
	assert.Equal(t, journal.Short, st.Side)
	assert.Equal(t, 21000.0, st.EntryPrice)
	assert.Equal(t, 20990.0, st.ExitPrice)
	assert.Equal(t, time.Date(2024, 12, 2, 10, 1, 0, 0, time.UTC), st.EntryTime)
	assert.Equal(t, time.Date(2024, 12, 2, 10, 5, 0, 0, time.UTC), st.ExitTime)
	assert.InDelta(t, 20.0, st.GrossPnL, 1e-9)
	assert.Contains(t, short.Warnings, "side inferred from sold before bought")
}

func TestNormalizeNinjaTraderExport(t *testing.T) {
	t.Parallel()

	data := strings.Join(ninjaHeader, ",") + "\n" +
		`1,MNQ 12-24,Sim101,,Long,2,21000.00,21012.00,12/2/2024 9:31:05 AM,12/2/2024 9:45:00 AM,Entry,Exit,$46.52,$46.52,$1.48,$0.00,$10.00,$30.00,$2.00,14` + "\n"

	r := onlyRow(t, parseCSV(t, data, Options{UserID: "u1"}))
	require.True(t, r.OK(), r.Errors)
	assert.Equal(t, "Sim101", r.Account)

	tr := r.Trade
	assert.Equal(t, "MNQ", tr.Symbol)
	assert.Equal(t, journal.Long, tr.Side)
	assert.Equal(t, time.Date(2024, 12, 2, 9, 31, 5, 0, time.UTC), tr.EntryTime)
	assert.InDelta(t, 1.48, tr.Commission, 1e-9)
	assert.InDelta(t, 48.0, tr.GrossPnL, 1e-9)
	assert.InDelta(t, 46.52, tr.NetPnL, 1e-9)
	for _, w := range r.Warnings {
		assert.NotContains(t, w, "differs")
	}
}

func TestNormalizeRowLocation(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
		"ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
	r := onlyRow(t, parseCSV(t, data, Options{Location: ny}))
	require.True(t, r.OK(), r.Errors)
	assert.Equal(t, time.Date(2026, 1, 22, 14, 30, 0, 0, time.UTC), r.Trade.EntryTime)
	assert.Equal(t, time.UTC, r.Trade.EntryTime.Location())
}

func TestCommissionBackCalculation(t *testing.T) {
	t.Parallel()

	header := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Net P&L\n"
	opt := Options{DefaultCommissionPerContract: 1, MaxCommissionPerContract: 10}

	t.Run("plausible difference becomes commission", func(t *testing.T) {
		t.Parallel()
		r := onlyRow(t, parseCSV(t, header+"ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,195.50\n", opt))
		require.True(t, r.OK(), r.Errors)
		assert.InDelta(t, 4.50, r.Trade.Commission, 1e-9)
		assert.InDelta(t, 200.0, r.Trade.GrossPnL, 1e-9)
		assert.InDelta(t, 195.50, r.Trade.NetPnL, 1e-9)
		assert.Empty(t, r.Warnings)
	})

	t.Run("implausible difference falls back to default", func(t *testing.T) {
		t.Parallel()
		r := onlyRow(t, parseCSV(t, header+"ES,Long,2,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,150\n", opt))
		require.True(t, r.OK(), r.Errors)
		assert.InDelta(t, 2.0, r.Trade.Commission, 1e-9)
		assert.InDelta(t, 400.0, r.Trade.GrossPnL, 1e-9)
		assert.InDelta(t, 398.0, r.Trade.NetPnL, 1e-9)
		assert.NotEmpty(t, r.Warnings)
	})

	t.Run("gross and net give commission", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Gross P&L,Net P&L,Fees\n" +
			"NQ,Short,1,21000,20990,2026-01-22 09:30:00,2026-01-22 09:40:00,200,195,1.00\n"
		r := onlyRow(t, parseCSV(t, data, opt))
		require.True(t, r.OK(), r.Errors)
		assert.InDelta(t, 1.0, r.Trade.Fees, 1e-9)
		assert.InDelta(t, 4.0, r.Trade.Commission, 1e-9)
		assert.InDelta(t, 195.0, r.Trade.NetPnL, 1e-9)
	})

	t.Run("explicit column wins", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Commission,Net P&L\n" +
			"ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,$2.50,197.50\n"
		r := onlyRow(t, parseCSV(t, data, opt))
		require.True(t, r.OK(), r.Errors)
		assert.InDelta(t, 2.50, r.Trade.Commission, 1e-9)
		assert.InDelta(t, 197.50, r.Trade.NetPnL, 1e-9)
	})
}

func TestSideInference(t *testing.T) {
	t.Parallel()

	t.Run("negative quantity", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
			"ES,-1,5000,4990,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
		r := onlyRow(t, parseCSV(t, data, Options{}))
		require.True(t, r.OK(), r.Errors)
		assert.Equal(t, journal.Short, r.Trade.Side)
		assert.Equal(t, 1, r.Trade.Contracts)
		assert.InDelta(t, 500.0, r.Trade.GrossPnL, 1e-9)
		assert.Contains(t, r.Warnings, "side inferred from negative quantity")
	})

	t.Run("prices against pnl", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Qty,Entry Price,Exit Price,Entry Time,Exit Time,P&L\n" +
			"ES,1,5000,4990,2026-01-22 09:30:00,2026-01-22 09:40:00,500\n"
		r := onlyRow(t, parseCSV(t, data, Options{}))
		require.True(t, r.OK(), r.Errors)
		assert.Equal(t, journal.Short, r.Trade.Side)
		assert.Contains(t, r.Warnings, "side inferred from prices and P&L")
	})

	t.Run("no evidence assumes long", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
			"ES,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
		r := onlyRow(t, parseCSV(t, data, Options{}))
		require.True(t, r.OK(), r.Errors)
		assert.Equal(t, journal.Long, r.Trade.Side)
		assert.Contains(t, r.Warnings, "side not found; assumed long")
	})

	t.Run("unrecognized side column", func(t *testing.T) {
		t.Parallel()
		data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
			"ES,sideways,-1,5000,4990,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
		r := onlyRow(t, parseCSV(t, data, Options{}))
		require.True(t, r.OK(), r.Errors)
		assert.Equal(t, journal.Short, r.Trade.Side)
		assert.Contains(t, r.Warnings, `side "sideways" not recognized`)
	})
}

func TestNormalizeRowErrors(t *testing.T) {
	t.Parallel()

	header := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n"
	cases := []struct {
		name string
		row  string
		want string
	}{
		{"missing symbol", ",Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00", "missing symbol"},
		{"missing contracts", "ES,Long,,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00", "missing contracts"},
		{"bad contracts", "ES,Long,abc,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00", "contracts: not a number"},
		{"zero contracts", "ES,Long,0,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00", "contracts must be at least 1"},
		{"bad price", "ES,Long,1,five,5004,2026-01-22 09:30:00,2026-01-22 09:40:00", "entry_price: not a number"},
		{"bad date", "ES,Long,1,5000,5004,someday,2026-01-22 09:40:00", "entry_time: unrecognized date"},
		{"exit before entry", "ES,Long,1,5000,5004,2026-01-22 09:40:00,2026-01-22 09:30:00", "is before entry time"},
		{"nothing to anchor", "ES,Long,1,,,,", "row needs a price or a date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := parseCSV(t, header+tc.row+"\n", Options{})
			r := onlyRow(t, p)
			assert.False(t, r.OK())
			assert.Nil(t, r.Trade)
			require.NotEmpty(t, r.Errors)
			assert.Contains(t, strings.Join(r.Errors, "; "), tc.want)
			assert.Equal(t, 1, p.Invalid)
			assert.Equal(t, 0, p.Valid)
		})
	}
}

func TestNormalizeRowOpenTrade(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Price,Entry Time,Stop\n" +
		"ES,Long,1,5000,2026-01-22 09:30:00,4990\n"
	r := onlyRow(t, parseCSV(t, data, Options{}))
	require.True(t, r.OK(), r.Errors)
	assert.True(t, r.Trade.IsOpen())
	assert.Zero(t, r.Trade.NetPnL)
	assert.Nil(t, r.Trade.RMultiple)
	assert.Equal(t, 4990.0, r.Trade.StopLoss)
	assert.Contains(t, r.Warnings, "no exit; trade left open")
}

func TestNormalizeRowReportedPnLOnly(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Time,Net P&L\n" +
		"ES,Long,1,2026-01-22 09:30:00,150\n"
	r := onlyRow(t, parseCSV(t, data, Options{}))
	require.True(t, r.OK(), r.Errors)

	tr := r.Trade
	assert.False(t, tr.IsOpen())
	assert.Equal(t, tr.EntryTime, tr.ExitTime)
	assert.InDelta(t, 150.0, tr.NetPnL, 1e-9)
	assert.InDelta(t, 150.0, tr.GrossPnL, 1e-9)
	assert.Nil(t, tr.RMultiple)
	assert.Contains(t, r.Warnings, "no exit; reported P&L booked at entry time")
	assert.Equal(t, journal.PnLReported, tr.PnLSource)
}

func TestNormalizeRowExitPriceWithoutTime(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time\n" +
		"ES,Long,1,5000,5002,2026-01-22 09:30:00\n" +
		"ES,Long,1,5000,5002,\n"
	p := parseCSV(t, data, Options{})
	require.Len(t, p.Rows, 2)

	r := p.Rows[0]
	require.True(t, r.OK(), r.Errors)
	assert.False(t, r.Trade.IsOpen())
	assert.Equal(t, r.Trade.EntryTime, r.Trade.ExitTime)
	assert.InDelta(t, 100.0, r.Trade.GrossPnL, 1e-9)
	assert.Contains(t, r.Warnings, "no exit time; using entry time")

	assert.Contains(t, p.Rows[1].Errors, "exit price needs an exit time")
}

func TestNormalizeRowUnknownInstrument(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Net P&L\n" +
		"FOO,Long,1,10,12,2026-01-22 09:30:00,2026-01-22 09:40:00,150\n"
	r := onlyRow(t, parseCSV(t, data, Options{}))
	require.True(t, r.OK(), r.Errors)
	assert.Equal(t, "FOO", r.Trade.Symbol)
	assert.InDelta(t, 150.0, r.Trade.NetPnL, 1e-9)
	assert.Nil(t, r.Trade.RMultiple)
	assert.Contains(t, r.Warnings, `unknown instrument "FOO"; point value 1 assumed`)
	assert.Equal(t, journal.PnLReported, r.Trade.PnLSource)
}

func TestNormalizeRowCustomInstrument(t *testing.T) {
	t.Parallel()

	resolver := market.NewResolver([]market.Instrument{
		{Symbol: "FOO", TickSize: 0.5, TickValue: 25, Currency: "USD"},
	})
	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
		"FOO,Long,1,10,12,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
	r := onlyRow(t, parseCSV(t, data, Options{Resolver: resolver}))
	require.True(t, r.OK(), r.Errors)
	assert.InDelta(t, 100.0, r.Trade.GrossPnL, 1e-9)
	assert.Equal(t, journal.PnLComputed, r.Trade.PnLSource)
	for _, w := range r.Warnings {
		assert.NotContains(t, w, "unknown instrument")
	}
}

func TestNormalizeRowCustomContractMonth(t *testing.T) {
	t.Parallel()

	resolver := market.NewResolver([]market.Instrument{
		{Symbol: "KE", TickSize: 0.25, TickValue: 12.5, Currency: "USD"},
	})
	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
		"KEZ4,Long,1,600,601,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
	r := onlyRow(t, parseCSV(t, data, Options{Resolver: resolver}))
	require.True(t, r.OK(), r.Errors)
	assert.Equal(t, "KE", r.Trade.Symbol)
	assert.InDelta(t, 50.0, r.Trade.GrossPnL, 1e-9)
	assert.Contains(t, r.Warnings, `symbol "KEZ4" normalized to KE`)
}

func TestNormalizeRowAnnotations(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Stop,Target,Setup,Notes,Emotions,Mistakes,Tags,Rating\n" +
		`ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,4998,5010,ORB,"clean, patient",calm;focused,,a|b,4` + "\n"
	r := onlyRow(t, parseCSV(t, data, Options{}))
	require.True(t, r.OK(), r.Errors)

	tr := r.Trade
	assert.Equal(t, 4998.0, tr.StopLoss)
	assert.Equal(t, 5010.0, tr.TakeProfit)
	assert.Equal(t, "ORB", tr.Setup)
	assert.Equal(t, "clean, patient", tr.Notes)
	assert.Equal(t, []string{"calm", "focused"}, tr.Emotions)
	assert.Equal(t, []string{}, tr.Mistakes)
	assert.Equal(t, []string{"a", "b"}, tr.Tags)
	assert.Equal(t, 4, tr.Rating)
	require.NotNil(t, tr.RMultiple)
	assert.InDelta(t, 2.0, *tr.RMultiple, 1e-9)
}

func TestNormalizeRowRatingOutOfRange(t *testing.T) {
	t.Parallel()

	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Rating\n" +
		"ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,9\n"
	r := onlyRow(t, parseCSV(t, data, Options{}))
	require.True(t, r.OK(), r.Errors)
	assert.Zero(t, r.Trade.Rating)
	assert.Contains(t, r.Warnings, "rating 9 outside 1-5; ignored")
}

func TestNormalizeRowAccountOption(t *testing.T) {
	t.Parallel()

	data := "Account,Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" +
		"Sim101,ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00\n"

	r := onlyRow(t, parseCSV(t, data, Options{AccountID: "acct-1"}))
	assert.Empty(t, r.Account)
	assert.Equal(t, "acct-1", r.Trade.AccountID)

	r = onlyRow(t, parseCSV(t, data, Options{}))
	assert.Equal(t, "Sim101", r.Account)
	assert.Empty(t, r.Trade.AccountID)
}
