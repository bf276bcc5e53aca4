package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = id.New()
	}
	if a.Currency == "" {
		a.Currency = "USD"
	}
	a.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO accounts (id, user_id, name, broker, currency, starting_balance, archived, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.UserID, a.Name, a.Broker, a.Currency, a.StartingBalance, a.Archived, a.CreatedAt)
	return mapErr(err, fmt.Sprintf("account %q", a.Name))
}

func (s *Store) GetAccount(ctx context.Context, userID, accountID string) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, user_id, name, broker, currency, starting_balance, archived, created_at
		FROM accounts WHERE id = ? AND user_id = ?`), accountID, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Broker, &a.Currency, &a.StartingBalance, &a.Archived, &a.CreatedAt)
	if err != nil {
		return Account{}, mapErr(err, fmt.Sprintf("account %q", accountID))
	}
	return a, nil
}

// FindAccount resolves an account by ID or, failing that, by name.
func (s *Store) FindAccount(ctx context.Context, userID, ref string) (Account, error) {
	a, err := s.GetAccount(ctx, userID, ref)
	if err == nil {
		return a, nil
	}
	accts, lerr := s.ListAccounts(ctx, userID)
	if lerr != nil {
		return Account{}, lerr
	}
	for _, a := range accts {
		if strings.EqualFold(a.Name, ref) {
			return a, nil
		}
	}
	return Account{}, err
}

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, name, broker, currency, starting_balance, archived, created_at
		FROM accounts WHERE user_id = ? ORDER BY name ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Broker, &a.Currency, &a.StartingBalance, &a.Archived, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, a *Account) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE accounts SET name = ?, broker = ?, currency = ?, starting_balance = ?, archived = ?
		WHERE id = ? AND user_id = ?`),
		a.Name, a.Broker, a.Currency, a.StartingBalance, a.Archived, a.ID, a.UserID)
	if err != nil {
		return mapErr(err, fmt.Sprintf("account %q", a.Name))
	}
	return affected(res, fmt.Sprintf("account %q", a.ID))
}

// DeleteAccount removes the account; its trades keep existing unassigned.
func (s *Store) DeleteAccount(ctx context.Context, userID, accountID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM accounts WHERE id = ? AND user_id = ?`), accountID, userID)
	if err != nil {
		return mapErr(err, "delete account")
	}
	return affected(res, fmt.Sprintf("account %q", accountID))
}

// UpsertInstrument stores a user-defined contract spec.
func (s *Store) UpsertInstrument(ctx context.Context, userID string, inst market.Instrument) error {
	if inst.Currency == "" {
		inst.Currency = "USD"
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO instruments (user_id, symbol, name, exchange, tick_size, tick_value, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			name = excluded.name, exchange = excluded.exchange, tick_size = excluded.tick_size,
			tick_value = excluded.tick_value, currency = excluded.currency`),
		userID, strings.ToUpper(inst.Symbol), inst.Name, inst.Exchange, inst.TickSize, inst.TickValue, inst.Currency)
	return mapErr(err, fmt.Sprintf("instrument %q", inst.Symbol))
}

func (s *Store) ListInstruments(ctx context.Context, userID string) ([]market.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT symbol, name, exchange, tick_size, tick_value, currency
		FROM instruments WHERE user_id = ? ORDER BY symbol ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	out := []market.Instrument{}
	for rows.Next() {
		var i market.Instrument
		if err := rows.Scan(&i.Symbol, &i.Name, &i.Exchange, &i.TickSize, &i.TickValue, &i.Currency); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) DeleteInstrument(ctx context.Context, userID, symbol string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM instruments WHERE user_id = ? AND symbol = ?`),
		userID, strings.ToUpper(symbol))
	if err != nil {
		return mapErr(err, "delete instrument")
	}
	return affected(res, fmt.Sprintf("instrument %q", symbol))
}

// Resolver builds a market.Resolver that includes the user's instruments.
func (s *Store) Resolver(ctx context.Context, userID string) (*market.Resolver, error) {
	custom, err := s.ListInstruments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return market.NewResolver(custom), nil
}
