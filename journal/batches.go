package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// CreateImport writes an import batch and its trades in one transaction.
// Either every trade lands or none do.
func (s *Store) CreateImport(ctx context.Context, b *ImportBatch, trades []Trade) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()
	b.Imported = len(trades)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO import_batches (id, user_id, account_id, file_name, rows_total, imported, skipped, duplicates, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			b.ID, b.UserID, nullString(b.AccountID), b.FileName, b.Rows, b.Imported, b.Skipped, b.Duplicates, b.CreatedAt)
		if err != nil {
			return mapErr(err, "insert import batch")
		}

		for i := range trades {
			t := &trades[i]
			t.UserID = b.UserID
			t.Source = SourceImport
			t.ImportBatchID = b.ID
			if t.AccountID == "" {
				t.AccountID = b.AccountID
			}
			if t.ID == "" {
				t.ID = id.NewAt(t.EntryTime)
			}
			if err := s.insertTrade(ctx, tx, t); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (s *Store) GetImportBatch(ctx context.Context, userID, batchID string) (ImportBatch, error) {
	var b ImportBatch
	var acct sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, user_id, account_id, file_name, rows_total, imported, skipped, duplicates, created_at
		FROM import_batches WHERE id = ? AND user_id = ?`), batchID, userID).
		Scan(&b.ID, &b.UserID, &acct, &b.FileName, &b.Rows, &b.Imported, &b.Skipped, &b.Duplicates, &b.CreatedAt)
	if err != nil {
		return ImportBatch{}, mapErr(err, fmt.Sprintf("import batch %q", batchID))
	}
	b.AccountID = acct.String
	return b, nil
}

// ListImportBatches returns batches newest first.
func (s *Store) ListImportBatches(ctx context.Context, userID string) ([]ImportBatch, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, account_id, file_name, rows_total, imported, skipped, duplicates, created_at
		FROM import_batches WHERE user_id = ? ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	defer rows.Close()

	out := []ImportBatch{}
	for rows.Next() {
		var b ImportBatch
		var acct sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &acct, &b.FileName, &b.Rows, &b.Imported, &b.Skipped, &b.Duplicates, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.AccountID = acct.String
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteImportBatch undoes an import: the batch and all of its trades are
// removed.
func (s *Store) DeleteImportBatch(ctx context.Context, userID, batchID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM trades WHERE import_batch_id = ? AND user_id = ?`), batchID, userID); err != nil {
			return mapErr(err, "delete batch trades")
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM import_batches WHERE id = ? AND user_id = ?`), batchID, userID)
		if err != nil {
			return mapErr(err, "delete import batch")
		}
		return affected(res, fmt.Sprintf("import batch %q", batchID))
	})
}

// AddScreenshot attaches an image reference to a trade the user owns.
func (s *Store) AddScreenshot(ctx context.Context, sc *Screenshot) error {
	if _, err := s.GetTrade(ctx, sc.UserID, sc.TradeID); err != nil {
		return err
	}
	if sc.ID == "" {
		sc.ID = id.New()
	}
	sc.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journal_screenshots (id, user_id, trade_id, url, caption, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		sc.ID, sc.UserID, sc.TradeID, sc.URL, sc.Caption, sc.CreatedAt)
	return mapErr(err, "add screenshot")
}

func (s *Store) ListScreenshots(ctx context.Context, userID, tradeID string) ([]Screenshot, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, trade_id, url, caption, created_at
		FROM journal_screenshots WHERE user_id = ? AND trade_id = ?
		ORDER BY created_at ASC, id ASC`), userID, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	out := []Screenshot{}
	for rows.Next() {
		var sc Screenshot
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.TradeID, &sc.URL, &sc.Caption, &sc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) DeleteScreenshot(ctx context.Context, userID, screenshotID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM journal_screenshots WHERE id = ? AND user_id = ?`), screenshotID, userID)
	if err != nil {
		return mapErr(err, "delete screenshot")
	}
	return affected(res, fmt.Sprintf("screenshot %q", screenshotID))
}
