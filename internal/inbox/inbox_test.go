package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
)

const goodCSV = `Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time
MES,Long,1,5000,5005,2026-01-22 14:30:00,2026-01-22 14:35:00
`

func setup(t *testing.T) (*Inbox, *journal.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := journal.NewSQLite(filepath.Join(dir, "inbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	drop := filepath.Join(dir, "drop")
	im := importer.New(store, importer.Options{}, zap.NewNop())
	in, err := New(im, drop, "user-1", "", zap.NewNop())
	require.NoError(t, err)
	return in, store, drop
}

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New(nil, "", "u", "", nil)
	assert.Error(t, err)
}

func TestScanMovesFiles(t *testing.T) {
	in, store, drop := setup(t)
	write(t, drop, "a.csv", goodCSV)
	write(t, drop, "b.CSV", "just,junk\n1,2\n")
	write(t, drop, "notes.txt", "ignored")

	out, err := in.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a.csv", out[0].File)
	assert.Equal(t, 1, out[0].Imported)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, "b.CSV", out[1].File)
	assert.ErrorIs(t, out[1].Err, importer.ErrFormat)

	assert.FileExists(t, filepath.Join(drop, ProcessedDir, "a.csv"))
	assert.FileExists(t, filepath.Join(drop, FailedDir, "b.CSV"))
	assert.FileExists(t, filepath.Join(drop, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(drop, "a.csv"))

	trades, err := store.ListTrades(context.Background(), journal.Filter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "MES", trades[0].Symbol)
	assert.InDelta(t, 25.0, trades[0].NetPnL, 1e-9)
}

func TestScanDuplicateFileIsProcessed(t *testing.T) {
	in, store, drop := setup(t)
	write(t, drop, "day.csv", goodCSV)
	_, err := in.Scan(context.Background())
	require.NoError(t, err)

	write(t, drop, "day-again.csv", goodCSV)
	out, err := in.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NoError(t, out[0].Err)
	assert.Zero(t, out[0].Imported)
	assert.FileExists(t, filepath.Join(drop, ProcessedDir, "day-again.csv"))

	trades, err := store.ListTrades(context.Background(), journal.Filter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestScanEmpty(t *testing.T) {
	in, _, _ := setup(t)
	out, err := in.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	in, _, _ := setup(t)
	assert.Error(t, in.Start(context.Background(), "every now and then"))

	require.NoError(t, in.Start(context.Background(), "@every 1h"))
	in.Stop()
}
