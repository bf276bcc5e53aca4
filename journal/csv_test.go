package journal

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	assert.Equal(t, CSVHeader, header)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	r := 1.5
	entry := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	tr := Trade{
		ID:         "T1",
		AccountID:  "acct-1",
		Symbol:     "ES",
		Side:       Short,
		Contracts:  2,
		EntryTime:  entry,
		ExitTime:   entry.Add(5 * time.Minute),
		EntryPrice: 5000.25,
		ExitPrice:  4998.25,
		StopLoss:   5001.5,
		Commission: 9,
		GrossPnL:   200,
		NetPnL:     191,
		RMultiple:  &r,
		Setup:      "failed breakout",
		Emotions:   []string{"calm", "patient"},
		Notes:      "held, to target",
		Rating:     5,
	}
	require.NoError(t, j.RecordTrade(tr))
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := map[string]string{}
	for i, col := range CSVHeader {
		row[col] = rows[1][i]
	}
	assert.Equal(t, "T1", row["trade_id"])
	assert.Equal(t, "short", row["side"])
	assert.Equal(t, "2", row["contracts"])
	assert.Equal(t, "2024-01-02T14:30:00Z", row["entry_time"])
	assert.Equal(t, "5000.25", row["entry_price"])
	assert.Equal(t, "", row["take_profit"])
	assert.Equal(t, "9.00", row["commission"])
	assert.Equal(t, "0.00", row["fees"])
	assert.Equal(t, "191.00", row["net_pnl"])
	assert.Equal(t, "1.50", row["r_multiple"])
	assert.Equal(t, "calm;patient", row["emotions"])
	assert.Equal(t, "", row["mistakes"])
	assert.Equal(t, "5", row["rating"])
	assert.Equal(t, "held, to target", row["notes"])
}

func TestWriteCSVOpenTrade(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	open := Trade{ID: "T2", Symbol: "NQ", Side: Long, Contracts: 1, EntryPrice: 18000, EntryTime: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)}
	require.NoError(t, WriteCSV(&buf, []Trade{open}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	rec, err := csv.NewReader(strings.NewReader(lines[1])).Read()
	require.NoError(t, err)
	assert.Equal(t, "", rec[6], "exit_time")
	assert.Equal(t, "", rec[8], "exit_price")
	assert.Equal(t, "", rec[15], "r_multiple")
	assert.Equal(t, "", rec[20], "rating")
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestCSVJournalImplementsJournal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	j, err := NewCSVWriter(&buf)
	require.NoError(t, err)

	var _ Journal = j
	require.NoError(t, j.Close())
}
