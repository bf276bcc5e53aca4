package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

const tradeColumns = `id, user_id, account_id, symbol, side, entry_price, exit_price,
	entry_time, exit_time, contracts, stop_loss, take_profit, commission, fees,
	gross_pnl, net_pnl, r_multiple, pnl_source, setup, notes, emotions, mistakes, tags,
	rating, entry_rating, exit_rating, is_public, share_token, source,
	import_batch_id, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (Trade, error) {
	var (
		t                           Trade
		accountID, shareTok, batch  sql.NullString
		entryTime, exitTime, delAt  sql.NullTime
		rMultiple                   sql.NullFloat64
		emotions, mistakes, tagsRaw string
		side, source, pnlSource     string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &accountID, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice,
		&entryTime, &exitTime, &t.Contracts, &t.StopLoss, &t.TakeProfit, &t.Commission, &t.Fees,
		&t.GrossPnL, &t.NetPnL, &rMultiple, &pnlSource, &t.Setup, &t.Notes, &emotions, &mistakes, &tagsRaw,
		&t.Rating, &t.EntryRating, &t.ExitRating, &t.IsPublic, &shareTok, &source,
		&batch, &delAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Trade{}, err
	}

	t.AccountID = accountID.String
	t.ShareToken = shareTok.String
	t.ImportBatchID = batch.String
	t.Side = Side(side)
	t.Source = Source(source)
	t.PnLSource = PnLSource(pnlSource)
	t.EntryTime = fromNullTime(entryTime)
	t.ExitTime = fromNullTime(exitTime)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if delAt.Valid {
		d := delAt.Time.UTC()
		t.DeletedAt = &d
	}
	if rMultiple.Valid {
		r := rMultiple.Float64
		t.RMultiple = &r
	}
	if t.Emotions, err = decodeList(emotions); err != nil {
		return Trade{}, fmt.Errorf("emotions: %w", err)
	}
	if t.Mistakes, err = decodeList(mistakes); err != nil {
		return Trade{}, fmt.Errorf("mistakes: %w", err)
	}
	if t.Tags, err = decodeList(tagsRaw); err != nil {
		return Trade{}, fmt.Errorf("tags: %w", err)
	}
	return t, nil
}

func encodeList(xs []string) string {
	clean := cleanList(xs)
	b, _ := json.Marshal(clean)
	return string(b)
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// cleanList trims entries and drops blanks and case-insensitive repeats.
func cleanList(xs []string) []string {
	out := make([]string, 0, len(xs))
	seen := make(map[string]bool, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		k := strings.ToLower(x)
		if x == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, x)
	}
	return out
}

func (s *Store) insertTrade(ctx context.Context, q querier, t *Trade) error {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = id.New()
	}
	if t.Source == "" {
		t.Source = SourceManual
	}
	if t.PnLSource == "" {
		t.PnLSource = PnLComputed
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.Emotions = cleanList(t.Emotions)
	t.Mistakes = cleanList(t.Mistakes)
	t.Tags = cleanList(t.Tags)

	var rm any
	if t.RMultiple != nil {
		rm = *t.RMultiple
	}
	_, err := q.ExecContext(ctx, s.rebind(`
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UserID, nullString(t.AccountID), t.Symbol, string(t.Side), t.EntryPrice, t.ExitPrice,
		nullTime(t.EntryTime), nullTime(t.ExitTime), t.Contracts, t.StopLoss, t.TakeProfit, t.Commission, t.Fees,
		t.GrossPnL, t.NetPnL, rm, string(t.PnLSource), t.Setup, t.Notes, encodeList(t.Emotions), encodeList(t.Mistakes), encodeList(t.Tags),
		t.Rating, t.EntryRating, t.ExitRating, t.IsPublic, nullString(t.ShareToken), string(t.Source),
		nullString(t.ImportBatchID), nil, utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	return mapErr(err, "insert trade")
}

// CreateTrade inserts a new trade, assigning an ID when empty.
func (s *Store) CreateTrade(ctx context.Context, t *Trade) error {
	return s.insertTrade(ctx, s.db, t)
}

// RecordTrade inserts a copy of t, keeping its ID. Account and batch links
// are dropped since those rows may not exist in this store.
func (s *Store) RecordTrade(t Trade) error {
	t.AccountID, t.ImportBatchID = "", ""
	return s.CreateTrade(context.Background(), &t)
}

// GetTrade returns a single trade owned by userID, including soft-deleted ones.
func (s *Store) GetTrade(ctx context.Context, userID, tradeID string) (Trade, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE id = ? AND user_id = ?`), tradeID, userID)

	t, err := scanTrade(row)
	if err != nil {
		return Trade{}, mapErr(err, fmt.Sprintf("trade %q", tradeID))
	}
	return t, nil
}

// UpdateTrade overwrites the editable fields of an existing trade.
func (s *Store) UpdateTrade(ctx context.Context, t *Trade) error {
	t.UpdatedAt = time.Now().UTC()
	t.Emotions = cleanList(t.Emotions)
	t.Mistakes = cleanList(t.Mistakes)
	t.Tags = cleanList(t.Tags)

	var rm any
	if t.RMultiple != nil {
		rm = *t.RMultiple
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE trades SET
			account_id = ?, symbol = ?, side = ?, entry_price = ?, exit_price = ?,
			entry_time = ?, exit_time = ?, contracts = ?, stop_loss = ?, take_profit = ?,
			commission = ?, fees = ?, gross_pnl = ?, net_pnl = ?, r_multiple = ?, pnl_source = ?,
			setup = ?, notes = ?, emotions = ?, mistakes = ?, tags = ?,
			rating = ?, entry_rating = ?, exit_rating = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		nullString(t.AccountID), t.Symbol, string(t.Side), t.EntryPrice, t.ExitPrice,
		nullTime(t.EntryTime), nullTime(t.ExitTime), t.Contracts, t.StopLoss, t.TakeProfit,
		t.Commission, t.Fees, t.GrossPnL, t.NetPnL, rm, string(t.PnLSource),
		t.Setup, t.Notes, encodeList(t.Emotions), encodeList(t.Mistakes), encodeList(t.Tags),
		t.Rating, t.EntryRating, t.ExitRating, utc(t.UpdatedAt),
		t.ID, t.UserID,
	)
	if err != nil {
		return mapErr(err, "update trade")
	}
	return affected(res, fmt.Sprintf("trade %q", t.ID))
}

// SoftDeleteTrade hides a trade from listings and analytics.
func (s *Store) SoftDeleteTrade(ctx context.Context, userID, tradeID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE trades SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`),
		time.Now().UTC(), time.Now().UTC(), tradeID, userID)
	if err != nil {
		return mapErr(err, "delete trade")
	}
	return affected(res, fmt.Sprintf("trade %q", tradeID))
}

// RestoreTrade undoes a soft delete.
func (s *Store) RestoreTrade(ctx context.Context, userID, tradeID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE trades SET deleted_at = NULL, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NOT NULL`),
		time.Now().UTC(), tradeID, userID)
	if err != nil {
		return mapErr(err, "restore trade")
	}
	return affected(res, fmt.Sprintf("deleted trade %q", tradeID))
}

// DeleteTrade removes a trade and its screenshots permanently.
func (s *Store) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM trades WHERE id = ? AND user_id = ?`), tradeID, userID)
	if err != nil {
		return mapErr(err, "delete trade")
	}
	return affected(res, fmt.Sprintf("trade %q", tradeID))
}

// SetShare publishes (token != "") or unpublishes a trade.
func (s *Store) SetShare(ctx context.Context, userID, tradeID, token string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE trades SET is_public = ?, share_token = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		token != "", nullString(token), time.Now().UTC(), tradeID, userID)
	if err != nil {
		return mapErr(err, "share trade")
	}
	return affected(res, fmt.Sprintf("trade %q", tradeID))
}

// GetSharedTrade looks up a public trade by its share token.
func (s *Store) GetSharedTrade(ctx context.Context, token string) (Trade, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE share_token = ? AND is_public = ? AND deleted_at IS NULL`), token, true)
	t, err := scanTrade(row)
	if err != nil {
		return Trade{}, mapErr(err, "shared trade")
	}
	return t, nil
}
