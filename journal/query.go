package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/market"
)

// ListTrades returns the trades matching f ordered by entry time, then ID.
func (s *Store) ListTrades(ctx context.Context, f Filter) ([]Trade, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{f.UserID}
	)
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, market.NormalizeSymbol(f.Symbol))
	}
	if f.Setup != "" {
		where = append(where, "LOWER(setup) = ?")
		args = append(args, strings.ToLower(f.Setup))
	}
	if !f.From.IsZero() {
		where = append(where, "entry_time >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "entry_time < ?")
		args = append(args, f.To.UTC())
	}
	if f.ClosedOnly {
		where = append(where, "(exit_time IS NOT NULL OR exit_price <> 0)")
	}
	switch {
	case f.OnlyDeleted:
		where = append(where, "deleted_at IS NOT NULL")
	case !f.IncludeDeleted:
		where = append(where, "deleted_at IS NULL")
	}

	q := `SELECT ` + tradeColumns + ` FROM trades WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY entry_time ASC, id ASC`
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return collectTrades(rows)
}

// ListTradesClosedBetween returns trades whose exit time is within [start, end).
func (s *Store) ListTradesClosedBetween(ctx context.Context, userID string, start, end time.Time) ([]Trade, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE user_id = ? AND deleted_at IS NULL
			AND exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC, id ASC`), userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list closed trades: %w", err)
	}
	return collectTrades(rows)
}

// ListBatchTrades returns every trade written by an import batch.
func (s *Store) ListBatchTrades(ctx context.Context, userID, batchID string) ([]Trade, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE user_id = ? AND import_batch_id = ?
		ORDER BY entry_time ASC, id ASC`), userID, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch trades: %w", err)
	}
	return collectTrades(rows)
}

func collectTrades(rows *sql.Rows) ([]Trade, error) {
	defer rows.Close()

	out := []Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
