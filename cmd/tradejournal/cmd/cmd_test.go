package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
)

func TestDayRange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	from, to, err := dayRange("2026-01-05", "2026-01-09", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, loc), to)

	from, to, err = dayRange("", "", loc)
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	_, _, err = dayRange("01/05/2026", "", loc)
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	// Flag variables keep their values between executions.
	importAccount, importDryRun, importMap, importTZ = "", false, nil, ""
	exportFormat, exportOutput = "csv", ""
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCommandsAgainstTempDB(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "cli.db")
	base := []string{"--db", db, "--config", filepath.Join(dir, "none.yaml")}

	require.NoError(t, run(t, append(base, "accounts", "add", "Apex 50K", "--balance", "50000")...))
	assert.Error(t, run(t, append(base, "accounts", "add", "Apex 50K")...), "duplicate name")

	csv := filepath.Join(dir, "fills.csv")
	require.NoError(t, os.WriteFile(csv, []byte(
		"Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n"+
			"MES,Long,2,5000,5004,2026-01-22 09:35:00,2026-01-22 09:50:00\n"), 0o644))

	require.NoError(t, run(t, append(base, "import", csv, "--account", "apex 50k", "--dry-run")...))
	require.NoError(t, run(t, append(base, "import", csv, "--account", "apex 50k")...))
	require.NoError(t, run(t, append(base, "import", csv)...), "all duplicates is not an error")

	store, err := journal.NewSQLite(db)
	require.NoError(t, err)
	defer store.Close()

	cfg := config.Default()
	trades, err := store.ListTrades(context.Background(), journal.Filter{UserID: cfg.User.ID})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.NotEmpty(t, trades[0].AccountID)
	assert.InDelta(t, 40.0, trades[0].NetPnL, 1e-9)

	out := filepath.Join(dir, "out.org")
	require.NoError(t, run(t, append(base, "trades", "export", "--format", "org", "-o", out)...))
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "MES")

	backup := filepath.Join(dir, "backup.db")
	require.NoError(t, run(t, append(base, "trades", "export", "--format", "sqlite", "-o", backup)...))
	copied, err := journal.NewSQLite(backup)
	require.NoError(t, err)
	defer copied.Close()
	got, err := copied.GetTrade(context.Background(), cfg.User.ID, trades[0].ID)
	require.NoError(t, err)
	assert.Equal(t, trades[0].NetPnL, got.NetPnL)

	require.NoError(t, run(t, append(base, "trades", "day", "2026-01-22")...))

	batches, err := store.ListImportBatches(context.Background(), cfg.User.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.NoError(t, run(t, append(base, "import", "batches")...))
	require.NoError(t, run(t, append(base, "import", "undo", batches[0].ID)...))
	trades, err = store.ListTrades(context.Background(), journal.Filter{UserID: cfg.User.ID})
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.ErrorIs(t, run(t, append(base, "import", "undo", batches[0].ID)...), journal.ErrNotFound)

	cfgPath := filepath.Join(dir, "tj.yaml")
	require.NoError(t, run(t, "config", "init", "-o", cfgPath))
	require.NoError(t, run(t, "config", "validate", "-f", cfgPath))
}
