package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
)

const testUser = "user-1"

const sampleCSV = `Account,Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time,Net P&L
Apex,ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00,195.50
Apex,NQ,Short,1,21000,21010,2026-01-22 10:00:00,2026-01-22 10:05:00,-204.50
Apex,ES,Long,,5000,5004,2026-01-22 11:00:00,2026-01-22 11:10:00,195.50
`

func newTestImporter(t *testing.T) (*Importer, *journal.Store) {
	t.Helper()

	s, err := journal.NewSQLite(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	im := New(s, Options{DefaultCommissionPerContract: 4.5, MaxCommissionPerContract: 10}, zap.NewNop())
	return im, s
}

func TestImporterPreviewWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, s := newTestImporter(t)

	p, err := im.Preview(ctx, Request{UserID: testUser, FileName: "day.csv"}, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "day.csv", p.FileName)
	assert.Equal(t, 2, p.Valid)
	assert.Equal(t, 1, p.Invalid)
	assert.Equal(t, 0, p.Duplicates)

	// The Apex account does not exist yet.
	assert.Contains(t, p.Rows[0].Warnings, `unknown account "Apex"; left unassigned`)

	trades, err := s.ListTrades(ctx, journal.Filter{UserID: testUser})
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestImporterCommit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, s := newTestImporter(t)

	acct := journal.Account{UserID: testUser, Name: "Apex"}
	require.NoError(t, s.CreateAccount(ctx, &acct))

	res, err := im.Commit(ctx, Request{UserID: testUser, FileName: "day.csv"}, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Batch.ID)
	assert.Equal(t, 3, res.Batch.Rows)
	assert.Equal(t, 2, res.Batch.Imported)
	assert.Equal(t, 1, res.Batch.Skipped)
	assert.Equal(t, 0, res.Batch.Duplicates)

	trades, err := s.ListTrades(ctx, journal.Filter{UserID: testUser})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	for _, tr := range trades {
		assert.Equal(t, acct.ID, tr.AccountID)
		assert.Equal(t, res.Batch.ID, tr.ImportBatchID)
		assert.Equal(t, journal.SourceImport, tr.Source)
	}

	batch, err := s.GetImportBatch(ctx, testUser, res.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Imported)
}

func TestImporterSecondCommitIsAllDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, s := newTestImporter(t)
	req := Request{UserID: testUser, FileName: "day.csv"}

	_, err := im.Commit(ctx, req, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	res, err := im.Commit(ctx, req, strings.NewReader(sampleCSV))
	require.ErrorIs(t, err, ErrNothingToImport)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Preview.Duplicates)
	assert.Equal(t, 0, res.Preview.Valid)
	assert.True(t, res.Preview.Rows[0].Duplicate)

	trades, err := s.ListTrades(ctx, journal.Filter{UserID: testUser})
	require.NoError(t, err)
	assert.Len(t, trades, 2)

	batches, err := s.ListImportBatches(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestImporterDeletedTradesAreNotDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, s := newTestImporter(t)
	req := Request{UserID: testUser, FileName: "day.csv"}

	res, err := im.Commit(ctx, req, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	trades, err := s.ListBatchTrades(ctx, testUser, res.Batch.ID)
	require.NoError(t, err)
	for _, tr := range trades {
		require.NoError(t, s.SoftDeleteTrade(ctx, testUser, tr.ID))
	}

	p, err := im.Preview(ctx, req, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Valid)
	assert.Equal(t, 0, p.Duplicates)
}

func TestImporterRequestAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, s := newTestImporter(t)

	acct := journal.Account{UserID: testUser, Name: "Eval 50K"}
	require.NoError(t, s.CreateAccount(ctx, &acct))

	res, err := im.Commit(ctx, Request{UserID: testUser, Account: "eval 50k", FileName: "day.csv"}, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, acct.ID, res.Batch.AccountID)

	for _, r := range res.Preview.Rows {
		if r.Trade != nil {
			assert.Equal(t, acct.ID, r.Trade.AccountID)
		}
	}

	_, err = im.Preview(ctx, Request{UserID: testUser, Account: "missing"}, strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestImporterOverrides(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	im, _ := newTestImporter(t)

	data := "Contract,Qty,Px In,Px Out,Opened,Closed\n" +
		"ES,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
	req := Request{
		UserID:    testUser,
		Overrides: map[string]string{"Px In": "entry_price", "Px Out": "exit_price"},
	}
	p, err := im.Preview(ctx, req, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, p.Valid)
	assert.Equal(t, 5000.0, p.Rows[0].Trade.EntryPrice)
	assert.Equal(t, 5004.0, p.Rows[0].Trade.ExitPrice)
	assert.Empty(t, p.Unmapped)
}

func TestImporterRejectsFilesWithoutSymbol(t *testing.T) {
	t.Parallel()

	im, _ := newTestImporter(t)
	_, err := im.Preview(context.Background(), Request{UserID: testUser}, strings.NewReader("a,b\n1,2\n"))
	assert.ErrorContains(t, err, "no symbol column")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = im.Preview(context.Background(), Request{UserID: testUser}, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseMarksInFileDuplicates(t *testing.T) {
	t.Parallel()

	row := "ES,Long,1,5000,5004,2026-01-22 09:30:00,2026-01-22 09:40:00\n"
	data := "Symbol,Side,Qty,Entry Price,Exit Price,Entry Time,Exit Time\n" + row + row

	p := parseCSV(t, data, Options{})
	assert.Equal(t, 1, p.Valid)
	assert.Equal(t, 1, p.Duplicates)
	assert.False(t, p.Rows[0].Duplicate)
	assert.True(t, p.Rows[1].Duplicate)
	assert.Len(t, p.Trades(), 1)
}

func TestReadSkipsBOMAndBlankRows(t *testing.T) {
	t.Parallel()

	data := "\xEF\xBB\xBFSymbol,Qty\n\nES,1\n,\nNQ,2,extra\n"
	header, recs, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Symbol", "Qty"}, header)
	require.Len(t, recs, 2)
	assert.Equal(t, 3, recs[0].Line)
	assert.Equal(t, []string{"NQ", "2", "extra"}, recs[1].Fields)
	assert.Equal(t, 5, recs[1].Line)
}
