// journal/journal.go
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ParseSide accepts the spellings brokers and users commonly type.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "l", "buy", "b", "bot", "bought", "buy to open":
		return Long, nil
	case "short", "s", "sell", "sld", "sold", "ss", "sell short", "sell to open":
		return Short, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Direction is +1 for long and -1 for short.
func (s Side) Direction() float64 {
	if s == Short {
		return -1
	}
	return 1
}

type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// PnLSource records where a trade's P&L came from. Reported P&L was taken
// from a broker file that lacked what ComputePnL needs, so it is kept
// until prices make it computable.
type PnLSource string

const (
	PnLComputed PnLSource = "computed"
	PnLReported PnLSource = "reported"
)

// Trade is one round-trip futures trade plus its journal annotations.
type Trade struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id,omitempty"`

	Symbol     string    `json:"symbol" validate:"required,max=32"`
	Side       Side      `json:"side" validate:"required,oneof=long short"`
	EntryPrice float64   `json:"entry_price" validate:"gte=0"`
	ExitPrice  float64   `json:"exit_price" validate:"gte=0"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	Contracts  int       `json:"contracts" validate:"gt=0"`
	StopLoss   float64   `json:"stop_loss" validate:"gte=0"`
	TakeProfit float64   `json:"take_profit" validate:"gte=0"`
	Commission float64   `json:"commission" validate:"gte=0"`
	Fees       float64   `json:"fees" validate:"gte=0"`

	// Computed by ComputePnL.
	GrossPnL  float64   `json:"gross_pnl"`
	NetPnL    float64   `json:"net_pnl"`
	RMultiple *float64  `json:"r_multiple"`
	PnLSource PnLSource `json:"pnl_source"`

	Setup       string   `json:"setup" validate:"max=128"`
	Notes       string   `json:"notes"`
	Emotions    []string `json:"emotions"`
	Mistakes    []string `json:"mistakes"`
	Tags        []string `json:"tags"`
	Rating      int      `json:"rating" validate:"min=0,max=5"`
	EntryRating int      `json:"entry_rating" validate:"min=0,max=5"`
	ExitRating  int      `json:"exit_rating" validate:"min=0,max=5"`

	IsPublic   bool   `json:"is_public"`
	ShareToken string `json:"share_token,omitempty"`

	Source        Source     `json:"source"`
	ImportBatchID string     `json:"import_batch_id,omitempty"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOpen reports whether the trade has no exit yet. The exit time closes a
// trade; validation rejects an exit price without one.
func (t Trade) IsOpen() bool {
	return t.ExitTime.IsZero()
}

func (t Trade) IsWin() bool  { return !t.IsOpen() && t.NetPnL > 0 }
func (t Trade) IsLoss() bool { return !t.IsOpen() && t.NetPnL < 0 }

// HoldDuration is the time between entry and exit, zero while open.
func (t Trade) HoldDuration() time.Duration {
	if t.IsOpen() || t.EntryTime.IsZero() {
		return 0
	}
	d := t.ExitTime.Sub(t.EntryTime)
	if d < 0 {
		return 0
	}
	return d
}

// Key identifies a fill for duplicate detection across imports.
func (t Trade) Key() string {
	return fmt.Sprintf("%s|%s|%d|%.6f|%d",
		t.Symbol, t.Side, t.EntryTime.UTC().Unix(), t.EntryPrice, t.Contracts)
}

type Account struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name" validate:"required,max=64"`
	Broker          string    `json:"broker" validate:"max=64"`
	Currency        string    `json:"currency" validate:"omitempty,len=3"`
	StartingBalance float64   `json:"starting_balance" validate:"gte=0"`
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
}

// Rule is a user-defined discipline rule ("no trades in the first 5 minutes").
type Rule struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name" validate:"required,max=128"`
	Description string    `json:"description"`
	Category    string    `json:"category" validate:"max=64"`
	Active      bool      `json:"active"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// RuleCheck records whether a rule was followed on a trading day.
type RuleCheck struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	RuleID   string `json:"rule_id"`
	Day      string `json:"day"` // YYYY-MM-DD
	Followed bool   `json:"followed"`
	Note     string `json:"note,omitempty"`
}

// DayLayout is the format of RuleCheck.Day.
const DayLayout = "2006-01-02"

// Screenshot references a chart image kept elsewhere.
type Screenshot struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TradeID   string    `json:"trade_id"`
	URL       string    `json:"url" validate:"required,url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportBatch groups the trades written by one CSV import.
type ImportBatch struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AccountID  string    `json:"account_id,omitempty"`
	FileName   string    `json:"file_name"`
	Rows       int       `json:"rows"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows ListTrades. Zero values mean "any".
type Filter struct {
	UserID         string
	AccountID      string
	Symbol         string
	Setup          string
	From           time.Time // entry_time >= From
	To             time.Time // entry_time < To
	ClosedOnly     bool
	IncludeDeleted bool
	OnlyDeleted    bool
	Limit          int
	Offset         int
}
